package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bankprobe/internal/config"
)

var (
	checkConfigPath  string
	checkEnvironment string
)

var checkCmd = &cobra.Command{
	Use:   "check [group]",
	Short: "Run a single check group against one environment",
	Long: `Run one check group (members, accounts, transactions, transfers,
statements, alerts, security) against a named environment, bypassing the
configured suites.

Example:
  bankprobe check transfers --config bankprobe.yaml --env staging`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkConfigPath, "config", "c", "bankprobe.yaml", "Path to configuration file")
	checkCmd.Flags().StringVarP(&checkEnvironment, "env", "e", "", "Environment name (defaults to the first configured)")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	group := args[0]
	known := false
	for _, g := range config.KnownGroups {
		if g == group {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown check group %q (known: %v)", group, config.KnownGroups)
	}

	h, err := buildHarness(checkConfigPath)
	if err != nil {
		return err
	}
	defer h.stop()

	env := checkEnvironment
	if env == "" {
		env = h.cfg.Environments[0].Name
	}
	if _, ok := h.cfg.EnvironmentByName(env); !ok {
		return fmt.Errorf("unknown environment %q", env)
	}

	// Replace the configured suites with a one-off suite for this group.
	h.cfg.Suites = []config.Suite{{
		Name:        "adhoc-" + group,
		Environment: env,
		Groups:      []string{group},
	}}

	ctx := cmd.Context()
	if err := h.start(ctx); err != nil {
		return err
	}

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
