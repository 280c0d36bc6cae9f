// Package cmd defines the command-line interface for timesplit.
package cmd

import (
	"github.com/huangsam/timesplit/internal/contract"
	"github.com/huangsam/timesplit/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeMigrateCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeImportCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or yaml or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("since", "", "Only count time after this point (RFC3339, YYYY-MM-DD, '2 days ago' or '7 days')")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: trace or debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().String("log-file", "", "Optional path to write logs to")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of trackCmd to Viper
	trackCmd.Flags().String("idle-threshold", contract.DefaultIdleThreshold.String(), "Inactivity after which time counts as inactive (e.g., '90s', '5 minutes')")
	trackCmd.Flags().String("idle-check", contract.DefaultIdleCheckInterval.String(), "How often to check for inactivity")
	trackCmd.Flags().String("poll-interval", contract.DefaultPollInterval.String(), "How often to re-read the checked-out branch")
	trackCmd.Flags().String("refresh-interval", contract.DefaultRefreshInterval.String(), "How often to refresh the dashboard")
	trackCmd.Flags().Bool("headless", false, "Print notices to stdout instead of running the dashboard")
	trackCmd.Flags().Bool("watch-activity", false, "Count file writes in the worktree as activity")
	trackCmd.Flags().String("exclude", "", "Comma-separated list of path prefixes or patterns to ignore for activity")
	if err := viper.BindPFlags(trackCmd.Flags()); err != nil {
		contract.LogFatal("Error binding track flags", err)
	}

	// Bind all flags of reportCmd to Viper
	reportCmd.Flags().String("sort", string(schema.SortByLastSeen), "Sort key: last-seen or total or active or inactive or first-seen or branch")
	reportCmd.Flags().String("order", "desc", "Sort order: asc or desc")
	reportCmd.Flags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	reportCmd.Flags().Bool("intervals", false, "List raw intervals instead of per-branch metrics")
	if err := viper.BindPFlags(reportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding report flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}

	// Bind all flags of storeImportCmd to Viper
	storeImportCmd.Flags().String("repo", "", "Repository root the imported intervals belong to (defaults to the current repository root)")
	if err := viper.BindPFlags(storeImportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store import flags", err)
	}
}
