// Otpgate is a terminal one-time-code entry prompt.
//
// It renders six digit cells with focus and paste handling, submits the
// completed code to a configurable verifier (a fixed code, a TOTP secret, or
// a remote verification service), and shows the verification lifecycle
// inline. Running without arguments launches the interactive prompt.
//
// Usage:
//
//	otpgate [command] [flags]
//
// See 'otpgate --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/otpgate/otpgate/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "otpgate",
	Short: "Terminal one-time-code entry prompt",
	Long: `A terminal prompt for entering and verifying 6-digit one-time codes.

The prompt shows six digit cells with cursor movement, backspace and paste
handling. Once all six digits are entered the code is submitted to the
configured verifier and the result is shown inline.

If no command is specified, the interactive prompt launches automatically.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch the prompt when no subcommand is given
		return runPrompt(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("otpgate %s (commit: %s)\n", version.Version, version.Commit)
	},
}
