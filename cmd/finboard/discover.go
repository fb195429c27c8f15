package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/finboard/fields"
	"github.com/jpalmerr/finboard/internal/fetch"
)

var discoverCmd = &cobra.Command{
	Use:   "discover <endpoint>",
	Short: "List the fields of a JSON endpoint",
	Long: `Fetch a JSON endpoint once and list every field it returns, in the
order the API sends them. Paths can be pasted into field_path of a widget's
field_mappings.

Example:
  finboard discover https://www.alphavantage.co/query \
      -p function=GLOBAL_QUOTE -p symbol=IBM -p apikey=demo
  finboard discover https://api.example.com/data --depth 2 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().StringArrayP("param", "p", nil, "query parameter as key=value (repeatable)")
	discoverCmd.Flags().Int("depth", fields.DefaultMaxDepth, "maximum nesting depth to explore")
	discoverCmd.Flags().Duration("timeout", 10*time.Second, "request timeout")
	discoverCmd.Flags().Bool("json", false, "print fields as JSON")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	endpoint := args[0]
	rawParams, _ := cmd.Flags().GetStringArray("param")
	depth, _ := cmd.Flags().GetInt("depth")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	asJSON, _ := cmd.Flags().GetBool("json")

	if depth < 1 {
		return fmt.Errorf("depth must be at least 1, got %d", depth)
	}

	params, err := parseParams(rawParams)
	if err != nil {
		return err
	}

	client := fetch.NewClient(fetch.WithTimeout(timeout))
	defer client.Close()

	body, err := client.FetchRaw(cmd.Context(), endpoint, params)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", endpoint, err)
	}

	found, err := fields.ExploreJSONDepth(body, "", depth)
	if err != nil {
		return fmt.Errorf("response is not JSON: %w", err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(found)
	}

	if len(found) == 0 {
		fmt.Fprintln(out, "No fields found.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tTYPE\tSAMPLE")
	for _, d := range found {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Path, d.Type, truncate(d.SampleValue, 40))
	}
	return tw.Flush()
}

// parseParams turns repeated key=value flags into query parameters.
func parseParams(raw []string) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(raw))
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid param %q, expected key=value", kv)
		}
		params[strings.TrimSpace(k)] = v
	}
	return params, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
