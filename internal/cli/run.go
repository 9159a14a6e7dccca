package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var configPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run configured suites (headless mode)",
	Long: `Run every configured suite using a YAML configuration file.
This is the mode used in CI pipelines; the exit code is non-zero when
any check fails.

Example:
  bankprobe run --config bankprobe.yaml`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&configPath, "config", "c", "bankprobe.yaml", "Path to configuration file")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	h, err := buildHarness(configPath)
	if err != nil {
		return err
	}
	defer h.stop()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Cancel the run on SIGINT/SIGTERM so workers drain.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := h.start(ctx); err != nil {
		return err
	}

	fmt.Printf("bankprobe starting (config: %s)\n", configPath)
	fmt.Printf("  Environments: %d\n", len(h.cfg.Environments))
	fmt.Printf("  Suites: %d\n", len(h.cfg.Suites))
	fmt.Printf("  Checks: %d\n", h.runner.CountChecks())
	fmt.Println()

	summary, err := h.runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("run aborted: %w", err)
	}

	fmt.Print(summary.String())
	if !summary.Ok() {
		os.Exit(1)
	}
	return nil
}
