package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/huangsam/timesplit/internal/contract"
	"github.com/huangsam/timesplit/internal/store"
	"github.com/huangsam/timesplit/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeConfig reads the backend settings that store commands need.
func storeConfig() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("store-backend"))
	if backend == "" {
		backend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("store-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	since, err := contract.ParseSince(viper.GetString("since"), time.Now())
	if err != nil {
		return err
	}

	cfg.Backend = backend
	cfg.DBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	cfg.Since = since
	return nil
}

// storeSetup loads minimal configuration and opens the interval store.
// Store commands skip the repository resolution done by sharedSetup.
func storeSetup() error {
	if err := storeConfig(); err != nil {
		return err
	}
	if err := store.InitStore(cfg.Backend, cfg.DBConnect); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeMigrateSetupWrapper only reads configuration. Opening the store would
// migrate it to the latest version before the command runs.
func storeMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeConfig()
}

// storeCmd focused on interval store management.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the interval store",
	Long: `Manage the store that keeps every closed interval.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show store statistics and connection info
  clear   - Remove all stored intervals
  migrate - Run database schema migrations
  export  - Export intervals and branch metrics to Parquet
  import  - Import a JSON file written by the editor extension

Examples:
  # Check store status
  timesplit store status

  # Use PostgreSQL (set connection string via env variable)
  TIMESPLIT_STORE_BACKEND=postgresql TIMESPLIT_STORE_DB_CONNECT="host=... dbname=..." timesplit store status`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show the backend, schema version and contents of the interval store.

Examples:
  timesplit store status`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := store.Manager.GetIntervalStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		store.PrintStatus(status)
	},
}

// storeClearCmd clears the store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored intervals",
	Long: `Delete every stored interval from the configured backend.

WARNING: This action cannot be undone. Consider exporting data first.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the interval and migration tables

Examples:
  timesplit store export --output-file backup
  timesplit store clear`,
	PreRunE: storeMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := store.ClearStore(cfg.Backend, cfg.DBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
	},
}

// storeMigrateCmd runs database migrations for the interval store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the interval store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  timesplit store migrate

  # Rollback to initial state
  timesplit store migrate --target-version 0`,
	PreRunE: storeMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := store.Migrate(cfg.Backend, cfg.DBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

// storeExportCmd exports stored data to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export intervals and branch metrics to Parquet",
	Long: `Export stored intervals and the branch metrics computed from them to Parquet.

Writes two files next to the --output-file prefix:
  <prefix>.intervals.parquet
  <prefix>.branch_metrics.parquet

Examples:
  timesplit store export --output-file timesplit
  duckdb -c "SELECT * FROM read_parquet('timesplit.intervals.parquet') LIMIT 10"`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := store.ExecuteExport(cfg.OutputFile, schema.ListQuery{Since: cfg.Since}); err != nil {
			contract.LogFatal("Failed to export store data", err)
		}
	},
}

// storeImportCmd imports a legacy JSON data file.
var storeImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import intervals from a legacy JSON data file",
	Long: `Import the branch time data saved by the editor extension.

Entries without an end time are skipped, and intervals that are already
stored are not duplicated, so the same file can be imported twice.

Examples:
  timesplit store import timesplit-data.json --repo ~/src/app`,
	Args:    cobra.ExactArgs(1),
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		repo, err := importRepo()
		if err != nil {
			contract.LogFatal("Failed to resolve repository", err)
		}
		if err := store.ExecuteImport(args[0], repo); err != nil {
			contract.LogFatal("Failed to import data", err)
		}
	},
}

// importRepo returns --repo as an absolute path, or the root of the current repository.
func importRepo() (string, error) {
	if path := viper.GetString("repo"); path != "" {
		return filepath.Abs(path)
	}
	return contract.NewLocalGitClient().GetRepoRoot(rootCtx, ".")
}
