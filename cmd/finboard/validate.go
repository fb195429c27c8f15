package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/finboard/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a FinBoard configuration file without starting the server.

This command parses the YAML, expands environment variables, validates
all fields and builds every widget. It's useful for CI/CD pipelines or
pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  finboard validate -c config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// building catches what only the SDK checks, e.g. template keys
	if _, err := config.BuildWidgets(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	direct := len(cfg.Widgets)
	total := config.WidgetCount(cfg)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Port:     %d\n", cfg.Port)
	fmt.Fprintf(out, "  Cache:    %s\n", cacheDescription(cfg))
	fmt.Fprintf(out, "  Widgets:  %d direct + %d from grids = %d total\n",
		direct, total-direct, total)

	return nil
}

func cacheDescription(cfg *config.Config) string {
	if cfg.Cache.RedisURL != "" {
		return "redis"
	}
	return "memory"
}
