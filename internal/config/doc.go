// Package config manages the user configuration file.
//
// Settings are stored as YAML in the OS-appropriate configuration directory
// ($XDG_CONFIG_HOME/otpgate on Linux). The file holds entry-widget
// preferences (auto-submit, attempt limit), verifier selection, and the
// default verification-service address. Saves are atomic (write to a
// temporary file, then rename) so a crash never leaves a half-written
// config behind.
package config
