// Otpgate-server is a demo verification service for the otpgate prompt.
//
// It answers code submissions over plain HTTP and over WebSocket, verifying
// against a fixed code or a TOTP secret, and can announce itself on the
// local network via mDNS so prompts find it with --discover.
//
// Usage:
//
//	otpgate-server server [flags]
//
// See 'otpgate-server server --help' for available options.
package main

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/otpgate/otpgate/internal/config"
	"github.com/otpgate/otpgate/internal/discovery"
	"github.com/otpgate/otpgate/internal/server"
	"github.com/otpgate/otpgate/internal/verify"
	"github.com/otpgate/otpgate/internal/version"
)

// TOTPSecretEnvVar overrides the stored TOTP secret, mirroring the client.
const TOTPSecretEnvVar = "OTPGATE_TOTP_SECRET"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "otpgate-server",
	Short: "Otpgate Verification Service",
	Long: `A standalone verification service for the otpgate entry prompt.

The service accepts code submissions over HTTP (POST /verify) and WebSocket
(GET /verify/ws) and answers with a JSON verdict. Codes are checked against
a fixed code or a TOTP secret.

Note: for the interactive entry prompt, use the separate 'otpgate' utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(versionCmd)
}

// Server command and flags
var (
	listenAddr string
	staticCode string
	totpSecret string
	logLevel   string
	announce   bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the verification service",
	Long: `Start the otpgate verification service to answer code submissions.

With no verifier flags the service accepts the built-in demo code. Use
--code for a fixed code or --totp-secret (or ` + TOTPSecretEnvVar + `) for
time-based codes. With --announce the service advertises itself via mDNS so
prompts on the same network can find it with 'otpgate --discover'.`,
	Example: `  # Start on the default address, accepting the demo code
  otpgate-server server

  # Accept a fixed code on a custom port with debug logging
  otpgate-server server --addr :9000 --code 847201 --log-level debug

  # Verify TOTP codes and announce the service on the LAN
  OTPGATE_TOTP_SECRET=JBSWY3DPEHPK3PXP otpgate-server server --announce`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (default from config file, or 127.0.0.1:8970)")
	serverCmd.Flags().StringVar(&staticCode, "code", "", "Expected 6-digit code (static verifier)")
	serverCmd.Flags().StringVar(&totpSecret, "totp-secret", "", "Base32 TOTP secret (or set "+TOTPSecretEnvVar+")")
	serverCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serverCmd.Flags().BoolVar(&announce, "announce", false, "Announce the service via mDNS")
}

func runServer(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	addr := listenAddr
	if addr == "" {
		addr = settings.ServerAddr
	}
	if addr == "" {
		addr = "127.0.0.1:8970"
	}

	verifier, err := buildVerifier(settings)
	if err != nil {
		return err
	}

	srv, err := server.New(&server.Config{
		Addr:     addr,
		LogLevel: logLevel,
		Verify:   verifier,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if announce || settings.AnnounceSvc {
		port, err := announcePort(addr)
		if err != nil {
			return err
		}
		shutdown, err := discovery.Announce("otpgate", port, version.Version)
		if err != nil {
			return fmt.Errorf("failed to announce service: %w", err)
		}
		defer shutdown()
	}

	return srv.Start()
}

// buildVerifier resolves the service's verification function from flags, the
// environment and the config file.
func buildVerifier(settings *config.Settings) (verify.Func, error) {
	secret := totpSecret
	if secret == "" {
		secret = os.Getenv(TOTPSecretEnvVar)
	}

	switch {
	case secret != "":
		return verify.TOTP(secret)
	case staticCode != "":
		return verify.Static(staticCode)
	}

	if v := settings.Verifier; v != nil {
		switch v.Mode {
		case "totp":
			if v.TOTPSecret != "" {
				return verify.TOTP(v.TOTPSecret)
			}
		case "static", "":
			if v.Code != "" {
				return verify.Static(v.Code)
			}
		}
	}

	return verify.Static(verify.DemoCode)
}

// announcePort extracts the TCP port from the listen address for the mDNS
// record.
func announcePort(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("cannot determine port from address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid port in address %q: %w", addr, err)
	}
	return port, nil
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("otpgate-server %s (commit: %s)\n", version.Version, version.Commit)
	},
}
