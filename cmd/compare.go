/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/jacobarthurs/a11yscan/internal/comparator"
	"github.com/jacobarthurs/a11yscan/internal/input"
	"github.com/jacobarthurs/a11yscan/internal/output"

	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare <old> <new>",
	Short: "Compare accessibility of two HTML documents",
	Long: `Analyze two versions of an HTML document and show which issues were resolved,
which were introduced, and how the compliance score moved.

Either file (but not both) can be "-" to read from stdin.`,
	Example: `  # Compare two builds of a page
  a11yscan compare before/index.html after/index.html

  # Read the new version from stdin
  cat index.html | a11yscan compare old.html -

  # Ignore score changes of up to 4 points
  a11yscan compare old.html new.html --threshold 4`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		threshold, _ := cmd.Flags().GetInt("threshold")

		if format != "text" && format != "json" {
			return fmt.Errorf("invalid output format %q: must be \"text\" or \"json\"", format)
		}
		if args[0] == "-" && args[1] == "-" {
			return fmt.Errorf("only one input can be read from stdin")
		}
		if threshold < 0 {
			return fmt.Errorf("threshold must not be negative, got %d", threshold)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		a, err := cfg.Analyzer()
		if err != nil {
			return err
		}

		oldMarkup, err := input.Read(args[0], cfg.MaxUploadBytes())
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		newMarkup, err := input.Read(args[1], cfg.MaxUploadBytes())
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[1], err)
		}

		c := comparator.Comparator{Threshold: threshold}
		result := c.Compare(a.Analyze(string(oldMarkup)), a.Analyze(string(newMarkup)))

		switch format {
		case "json":
			return output.RenderJSON(os.Stdout, result)
		case "text":
			return output.RenderComparisonText(os.Stdout, result)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringP("format", "f", "text", "Output format: text, json")
	compareCmd.Flags().IntP("threshold", "t", 0, "Score change treated as unchanged")
	addAnalyzerFlags(compareCmd)
}
