package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bankprobe",
	Short: "Black-box probing for a retail-banking deployment",
	Long: `bankprobe drives a retail-banking web application from the outside:
members, accounts, transactions, transfers, statements, alerts and
security behaviors, exercised over HTTP with retries, correlation IDs
and response-shape validation.

Get started:
  bankprobe run        Run configured suites (headless)
  bankprobe check      Run a single check group against one environment
  bankprobe watch      Run suites with a live progress view
  bankprobe validate   Lint a configuration file`,
	Version: fmt.Sprintf("%s (built %s)", version, buildTime),
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// SetVersion sets the version info
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}
