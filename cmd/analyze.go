/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/jacobarthurs/a11yscan/internal/analyzer"
	"github.com/jacobarthurs/a11yscan/internal/input"
	"github.com/jacobarthurs/a11yscan/internal/logging"
	"github.com/jacobarthurs/a11yscan/internal/output"
	"github.com/jacobarthurs/a11yscan/internal/store"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a single HTML document",
	Long: `Analyze an HTML document for accessibility issues and report a compliance score.

Input must be an .html or .htm file. Use "-" to read from stdin.
If no file is provided, enters interactive mode.

With --save, the report is stored in PostgreSQL for "a11yscan history".`,
	Example: `  # Analyze from file
  a11yscan analyze index.html

  # Read from stdin and emit JSON
  curl -s https://example.com | a11yscan analyze - --format json

  # Fail a CI job below 90
  a11yscan analyze dist/index.html --fail-under 90

  # Save to the default profile's database
  a11yscan analyze index.html --save`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		save, _ := cmd.Flags().GetBool("save")
		failUnder, _ := cmd.Flags().GetInt("fail-under")

		render, err := reportRenderer(format)
		if err != nil {
			return err
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		a, err := cfg.Analyzer()
		if err != nil {
			return err
		}

		var file string
		if len(args) > 0 {
			file = args[0]
		}

		markup, err := input.Read(file, cfg.MaxUploadBytes())
		if err != nil {
			return err
		}

		report := a.Analyze(string(markup))
		logging.Logger.Debugw("analyzed document", "source", sourceName(file), "issues", len(report.Issues), "score", report.ComplianceScore)

		if save {
			if err := saveReport(cmd, sourceName(file), markup, report); err != nil {
				return err
			}
		}

		if err := render(os.Stdout, report); err != nil {
			return err
		}

		if failUnder > 0 && report.ComplianceScore < failUnder {
			return fmt.Errorf("compliance score %d is below %d", report.ComplianceScore, failUnder)
		}
		return nil
	},
}

func reportRenderer(format string) (func(io.Writer, analyzer.Report) error, error) {
	switch format {
	case "text":
		return output.RenderReportText, nil
	case "json":
		return func(w io.Writer, r analyzer.Report) error { return output.RenderJSON(w, r) }, nil
	case "markdown", "md":
		return output.RenderMarkdown, nil
	case "html":
		return output.RenderHTML, nil
	}
	return nil, fmt.Errorf("invalid output format %q: must be \"text\", \"json\", \"markdown\" or \"html\"", format)
}

func saveReport(cmd *cobra.Command, source string, markup []byte, report analyzer.Report) error {
	connStr, err := resolveConnStr(cmd)
	if err != nil {
		return err
	}
	if connStr == "" {
		return fmt.Errorf("--save needs a database: pass --db or --profile, set A11YSCAN_DB, or set a default profile")
	}

	id, err := store.Save(cmd.Context(), connStr, source, store.Digest(markup), report)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Saved report #%d.\n", id)
	return nil
}

func sourceName(file string) string {
	if file == "" || file == "-" {
		return "stdin"
	}
	return file
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringP("format", "f", "text", "Output format: text, json, markdown, html")
	analyzeCmd.Flags().Bool("save", false, "Save the report to PostgreSQL")
	analyzeCmd.Flags().Int("fail-under", 0, "Exit with an error when the score is below this value")
	addAnalyzerFlags(analyzeCmd)
	addStoreFlags(analyzeCmd)
}
