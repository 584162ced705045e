// Package logging provides structured logging via zap.
//
// Logging is controlled by the OTPGATE_LOG_LEVEL environment variable. When
// unset or empty, the logger is a no-op so the interactive prompt renders
// without interleaved log lines. Set OTPGATE_LOG_LEVEL to "debug", "info",
// "warn", or "error" to enable output; logs go to stderr so they never
// corrupt the TUI on stdout.
package logging
