package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bankprobe/internal/runner"
	"github.com/bankprobe/internal/tui"
)

var watchConfigPath string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run configured suites with a live progress view",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchConfigPath, "config", "c", "bankprobe.yaml", "Path to configuration file")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	h, err := buildHarness(watchConfigPath)
	if err != nil {
		return err
	}
	defer h.stop()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if err := h.start(ctx); err != nil {
		return err
	}

	program := tea.NewProgram(tui.NewModel(h.runner.CountChecks()))

	h.runner.OnResult = func(res runner.Result) {
		program.Send(tui.ResultMsg{
			Group:    res.Group,
			Name:     res.Name,
			Passed:   res.Passed(),
			Duration: res.Duration,
			Err:      res.Err,
		})
	}

	var summary *runner.Summary
	var runErr error
	go func() {
		summary, runErr = h.runner.Run(ctx)
		report := ""
		ok := false
		if summary != nil {
			report = summary.String()
			ok = summary.Ok()
		}
		program.Send(tui.DoneMsg{Report: report, Ok: ok && runErr == nil})
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		return fmt.Errorf("failed to run watch view: %w", err)
	}
	cancel()

	if runErr != nil {
		return fmt.Errorf("run aborted: %w", runErr)
	}
	if summary != nil && !summary.Ok() {
		os.Exit(1)
	}
	return nil
}
