package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bankprobe/internal/config"
)

var validateConfigPath string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Lint a configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(validateConfigPath)
		if err != nil {
			return err
		}

		fmt.Printf("%s is valid\n", validateConfigPath)
		fmt.Printf("  Environments: %d\n", len(cfg.Environments))
		for _, e := range cfg.Environments {
			fmt.Printf("    %-12s %s (timeout %s, retries %d)\n", e.Name, e.APIBaseURL, e.Timeout, e.MaxRetries)
		}
		fmt.Printf("  Suites: %d\n", len(cfg.Suites))
		for _, s := range cfg.Suites {
			fmt.Printf("    %-12s env=%s groups=%v\n", s.Name, s.Environment, s.Groups)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateConfigPath, "config", "c", "bankprobe.yaml", "Path to configuration file")
	rootCmd.AddCommand(validateCmd)
}
