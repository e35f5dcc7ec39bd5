/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/jacobarthurs/a11yscan/internal/output"
	"github.com/jacobarthurs/a11yscan/internal/store"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved reports",
	Long: `List the most recent reports saved with "a11yscan analyze --save" or by
"a11yscan serve", newest first.`,
	Example: `  # Last 10 reports from the default profile
  a11yscan history

  # Last 50 from a named profile, as JSON
  a11yscan history --profile prod --limit 50 --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		format, _ := cmd.Flags().GetString("format")

		if format != "text" && format != "json" {
			return fmt.Errorf("invalid output format %q: must be \"text\" or \"json\"", format)
		}

		connStr, err := resolveConnStr(cmd)
		if err != nil {
			return err
		}
		if connStr == "" {
			return fmt.Errorf("no database configured: pass --db or --profile, set A11YSCAN_DB, or set a default profile")
		}

		records, err := store.Recent(cmd.Context(), connStr, limit)
		if err != nil {
			return err
		}

		switch format {
		case "json":
			return output.RenderJSON(os.Stdout, records)
		case "text":
			return output.RenderHistoryText(os.Stdout, records)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 10, "Number of reports to list")
	historyCmd.Flags().StringP("format", "f", "text", "Output format: text, json")
	addStoreFlags(historyCmd)
}
