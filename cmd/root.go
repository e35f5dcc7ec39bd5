/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/jacobarthurs/a11yscan/internal/config"
	"github.com/jacobarthurs/a11yscan/internal/logging"

	"github.com/spf13/cobra"
)

var Version = "dev"

func init() {
	if Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "(devel)" {
			Version = info.Main.Version
		}
	}
	rootCmd.Version = Version
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

var rootCmd = &cobra.Command{
	Use:          "a11yscan",
	SilenceUsage: true,
	Short:        "Check HTML documents for accessibility issues",
	Long: `a11yscan is a CLI tool for finding accessibility problems in HTML markup.

It reports missing alt text, skipped headings, unlabeled form controls, low
contrast and more, with a compliance score from 0 to 100. Reports can be
compared, saved to PostgreSQL, or served over HTTP.`,
	Example: `  # Analyze a page
  a11yscan analyze index.html

  # Compare two versions of a page
  a11yscan compare old.html new.html

  # Run the upload API
  a11yscan serve --addr :8080`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debugLogging, _ := cmd.Flags().GetBool("debug")
		return logging.Init(debugLogging)
	},
}

func Execute() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// resolveConnStr picks the report store from --db, --profile, A11YSCAN_DB,
// then the default profile.
func resolveConnStr(cmd *cobra.Command) (string, error) {
	db, _ := cmd.Flags().GetString("db")
	profileName, _ := cmd.Flags().GetString("profile")

	if db == "" && profileName == "" {
		db = os.Getenv("A11YSCAN_DB")
	}
	return config.ResolveConnStr(db, profileName)
}

// loadConfig reads the config file and applies --penalty and --disable.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if f := cmd.Flags().Lookup("penalty"); f != nil && f.Changed {
		cfg.PenaltyPerIssue, _ = cmd.Flags().GetInt("penalty")
	}
	if f := cmd.Flags().Lookup("disable"); f != nil && f.Changed {
		disabled, _ := cmd.Flags().GetStringSlice("disable")
		cfg.DisabledRules = append(cfg.DisabledRules, disabled...)
	}

	if err := cfg.Validate(); err != nil {
		path, _ := config.Path()
		return nil, fmt.Errorf("invalid configuration (%s): %w", path, err)
	}
	return cfg, nil
}

func addAnalyzerFlags(cmd *cobra.Command) {
	cmd.Flags().Int("penalty", 0, "Points deducted per issue (overrides config)")
	cmd.Flags().StringSlice("disable", nil, "Rule IDs to skip, comma separated")
}

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("db", "d", "", "PostgreSQL connection string for report history")
	cmd.Flags().StringP("profile", "p", "", "Use named profile from config")
	cmd.MarkFlagsMutuallyExclusive("db", "profile")
}
