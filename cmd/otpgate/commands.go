package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/otpgate/otpgate/internal/config"
	"github.com/otpgate/otpgate/internal/discovery"
	"github.com/otpgate/otpgate/internal/entry"
	"github.com/otpgate/otpgate/internal/logging"
	"github.com/otpgate/otpgate/internal/tui"
	"github.com/otpgate/otpgate/internal/verify"
)

// TOTPSecretEnvVar overrides the stored TOTP secret. Preferred over putting
// a real secret in the config file.
const TOTPSecretEnvVar = "OTPGATE_TOTP_SECRET"

// Verifier and prompt flags
var (
	staticCode    string
	totpSecret    string
	serverURL     string
	useDiscovery  bool
	autoSubmit    bool
	maxAttempts   int
	browseTimeout int
)

func init() {
	// Verifier selection flags (persistent on root so the bare `otpgate`
	// prompt picks them up too)
	rootCmd.PersistentFlags().StringVar(&staticCode, "code", "", "Expected 6-digit code (static verifier)")
	rootCmd.PersistentFlags().StringVar(&totpSecret, "totp-secret", "", "Base32 TOTP secret (or set "+TOTPSecretEnvVar+")")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Verification service WebSocket URL, e.g. ws://host:8970/verify/ws")
	rootCmd.PersistentFlags().BoolVar(&useDiscovery, "discover", false, "Find a verification service via mDNS and verify against it")

	rootCmd.Flags().BoolVar(&autoSubmit, "auto-submit", true, "Submit automatically when the sixth digit is entered")
	rootCmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "Lock the prompt after this many failed attempts (0 = unlimited)")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(totpCmd)
	rootCmd.AddCommand(scanCmd)
}

func runPrompt(cmd *cobra.Command, args []string) error {
	if err := logging.InitializeFromEnv(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	opts := entry.DefaultOptions()
	if settings.Entry != nil {
		opts.AutoSubmit = settings.Entry.AutoSubmit
		opts.MaxAttempts = settings.Entry.MaxAttempts
	}
	if cmd.Flags().Changed("auto-submit") {
		opts.AutoSubmit = autoSubmit
	}
	if cmd.Flags().Changed("max-attempts") {
		opts.MaxAttempts = maxAttempts
	}

	verifier, err := buildVerifier(settings)
	if err != nil {
		return err
	}

	model, err := tui.Run(opts, verifier)
	if err != nil {
		return fmt.Errorf("prompt error: %w", err)
	}

	if !model.Succeeded() {
		return fmt.Errorf("code was not verified")
	}
	fmt.Println("✓ Code verified")
	return nil
}

// checkCmd verifies a single code non-interactively
var checkCmd = &cobra.Command{
	Use:   "check <code>",
	Short: "Verify a code without the interactive prompt",
	Long: `Verify a single 6-digit code against the configured verifier and exit.

The exit status reports the result: 0 when the code verifies, non-zero
otherwise. Useful for scripting and for testing a verifier setup before
using the interactive prompt.`,
	Example: `  # Check against the demo code
  otpgate check 123456

  # Check against a fixed code
  otpgate check 847201 --code 847201

  # Check a TOTP code
  OTPGATE_TOTP_SECRET=JBSWY3DPEHPK3PXP otpgate check 102938

  # Check against a remote verification service
  otpgate check 123456 --server ws://192.168.1.50:8970/verify/ws`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	if err := logging.InitializeFromEnv(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	code := args[0]
	if !verify.ValidCode(code) {
		return fmt.Errorf("code must be exactly 6 digits, got %q", code)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	verifier, err := buildVerifier(settings)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ok, err := verifier(ctx, code)
	if err != nil {
		if verify.IsRemoteUnavailable(err) {
			return fmt.Errorf("verification service unreachable: %w (check the URL, or run 'otpgate scan')", err)
		}
		return fmt.Errorf("verification failed: %w", err)
	}
	if !ok {
		fmt.Println("✗ Invalid code")
		return fmt.Errorf("code rejected")
	}

	fmt.Println("✓ Code verified")
	return nil
}

// totpCmd prints the currently valid TOTP code
var totpCmd = &cobra.Command{
	Use:   "totp",
	Short: "Print the current TOTP code for the configured secret",
	Long: `Print the TOTP code that is valid right now for the configured secret.

The secret is taken from --totp-secret, the ` + TOTPSecretEnvVar + ` environment
variable, or the config file, in that order. With no secret configured the
built-in demo secret is used, which pairs with the demo TOTP verifier.`,
	Example: `  # Print the demo code, then verify it interactively
  otpgate totp
  otpgate --totp-secret ` + verify.DemoTOTPSecret + `

  # Print the code for a specific secret
  OTPGATE_TOTP_SECRET=JBSWY3DPEHPK3PXP otpgate totp`,
	RunE: runTOTP,
}

func runTOTP(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	code, err := verify.CurrentTOTP(resolveTOTPSecret(settings))
	if err != nil {
		return err
	}

	fmt.Println(code)
	return nil
}

// scanCmd discovers verification services on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for verification services on the network",
	Long: `Scan for otpgate verification services using mDNS/DNS-SD discovery.

This command listens for mDNS broadcasts from running otpgate-server
instances and displays each service with its address and metadata.`,
	Example: `  # Scan with the default 5 second timeout
  otpgate scan

  # Longer scan for slower networks
  otpgate scan --timeout 15`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&browseTimeout, "timeout", 5, "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for verification services (timeout: %ds)...\n\n", browseTimeout)

	browser := discovery.NewBrowser()
	browser.Timeout = time.Duration(browseTimeout) * time.Second

	services, err := browser.Browse()
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(services) == 0 {
		fmt.Println("No services found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure 'otpgate-server server --announce' is running on this network")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use --server flag to specify the service URL manually")
		return nil
	}

	fmt.Printf("Found %d service(s):\n\n", len(services))

	for i, svc := range services {
		fmt.Printf("%d. %s\n", i+1, svc.Instance)
		fmt.Printf("   Address: %s:%d\n", svc.IP, svc.Port)
		fmt.Printf("   URL:     %s\n", svc.WebSocketURL())
		if len(svc.Metadata) > 0 {
			fmt.Printf("   Metadata: %v\n", svc.Metadata)
		}
		fmt.Println()
	}

	fmt.Println("Use 'otpgate --discover' to verify against a discovered service")
	fmt.Println("Use 'otpgate --server <url>' to pick one explicitly")

	return nil
}

// buildVerifier resolves the verification collaborator from flags, the
// environment and the config file. Flags win over the config file; with
// nothing configured the static demo verifier is used.
func buildVerifier(settings *config.Settings) (verify.Func, error) {
	switch {
	case useDiscovery:
		url, err := discoverServiceURL()
		if err != nil {
			return nil, err
		}
		return verify.Remote(url, verify.DefaultRemoteTimeout), nil

	case serverURL != "":
		return verify.Remote(serverURL, verify.DefaultRemoteTimeout), nil

	case totpSecret != "" || os.Getenv(TOTPSecretEnvVar) != "":
		return verify.TOTP(resolveTOTPSecret(settings))

	case staticCode != "":
		return verify.Static(staticCode)
	}

	if v := settings.Verifier; v != nil {
		switch v.Mode {
		case "totp":
			return verify.TOTP(resolveTOTPSecret(settings))
		case "remote":
			if v.RemoteURL == "" {
				return nil, fmt.Errorf("verifier mode is \"remote\" but remote_url is not set")
			}
			return verify.Remote(v.RemoteURL, verify.DefaultRemoteTimeout), nil
		case "static", "":
			if v.Code != "" {
				return verify.Static(v.Code)
			}
		}
	}

	return verify.Static(verify.DemoCode)
}

// resolveTOTPSecret picks the TOTP secret: flag, environment, config file,
// then the built-in demo secret.
func resolveTOTPSecret(settings *config.Settings) string {
	if totpSecret != "" {
		return totpSecret
	}
	if env := os.Getenv(TOTPSecretEnvVar); env != "" {
		return env
	}
	if settings.Verifier != nil && settings.Verifier.TOTPSecret != "" {
		return settings.Verifier.TOTPSecret
	}
	return verify.DemoTOTPSecret
}

// discoverServiceURL finds the first verification service announced on the
// local network.
func discoverServiceURL() (string, error) {
	fmt.Println("Looking for a verification service...")

	ctx, cancel := context.WithTimeout(context.Background(), discovery.DefaultBrowseTimeout)
	defer cancel()

	browser := discovery.NewBrowser()
	svc, err := browser.FindFirst(ctx)
	if err != nil {
		return "", fmt.Errorf("discovery failed: %w (use --server to specify the URL manually)", err)
	}

	fmt.Printf("Found service: %s (%s:%d)\n\n", svc.Instance, svc.IP, svc.Port)
	return svc.WebSocketURL(), nil
}
