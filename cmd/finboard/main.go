// Package main is the entry point for the finboard CLI.
//
// FinBoard can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	finboard serve -c config.yaml     # Start the dashboard
//	finboard validate -c config.yaml  # Validate configuration
//	finboard discover <url>           # List the fields of a JSON endpoint
//	finboard version                  # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd only displays help; functionality lives in subcommands.
var rootCmd = &cobra.Command{
	Use:   "finboard",
	Short: "A self-refreshing market data dashboard",
	Long: `FinBoard is a configurable dashboard of market data widgets.

Each widget fetches quotes, time series or any JSON endpoint on its own
refresh interval, and the web UI updates live via Server-Sent Events.

Quick start:
  1. Create a config file (finboard.yaml)
  2. Run: finboard serve -c finboard.yaml
  3. Open http://localhost:8080 in your browser

Example config:
  api_key: ${ALPHA_VANTAGE_KEY}
  widgets:
    - id: aapl
      type: card
      symbol: AAPL
      field_mappings:
        - { display_name: Price, field_path: "05. price", format: currency }`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

func main() {
	Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this finboard binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "finboard %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
