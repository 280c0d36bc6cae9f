package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/huangsam/timesplit/internal/contract"
	"github.com/huangsam/timesplit/internal/logging"
	"github.com/huangsam/timesplit/internal/store"
	"github.com/huangsam/timesplit/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// storeManager is the global persistence manager instance.
var storeManager contract.StoreManager

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "timesplit",
	Short:              "Track how much time you spend on each Git branch.",
	Long:               `Timesplit follows the checked-out branch of a repository and splits your time on it into active and inactive intervals.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setConfigPaths()

	// Set environment variable prefix
	viper.SetEnvPrefix("TIMESPLIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("limit", contract.DefaultResultLimit)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("sort", schema.SortByLastSeen)
	viper.SetDefault("order", "desc")
	viper.SetDefault("idle-threshold", contract.DefaultIdleThreshold.String())
	viper.SetDefault("store-backend", schema.SQLiteBackend)
	viper.SetDefault("store-db-connect", "")
	viper.SetDefault("color", "yes")
	viper.SetDefault("log-level", "warn")
	viper.SetDefault("log-format", "text")
}

// setConfigPaths points Viper at --config or the default .timesplit.yaml locations.
func setConfigPaths() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".timesplit") // Name of config file (without extension)
	viper.SetConfigType("yaml")       // We'll use YAML format
	viper.AddConfigPath(".")          // Look in the current directory
	viper.AddConfigPath("$HOME")      // Look in the home directory
}

// loadConfigFile reads the config file if one exists.
func loadConfigFile() error {
	setConfigPaths()
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}
	return nil
}

// sharedSetup unmarshals config, runs validation and opens the interval store.
// The repository is resolved from the positional argument, or the working
// directory when requireRepo is set.
func sharedSetup(ctx context.Context, args []string, requireRepo bool) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Handle positional arguments (which Viper doesn't do).
	switch {
	case len(args) == 1:
		input.RepoPathStr = args[0]
	case requireRepo:
		input.RepoPathStr = "."
	default:
		input.RepoPathStr = ""
	}

	// 4. Run all validation and complex parsing.
	client := contract.NewLocalGitClient()
	if err := contract.ProcessAndValidate(ctx, cfg, client, input); err != nil {
		return err
	}

	// 5. Logging goes to stderr unless a file is configured.
	if err := logging.Configure(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile}); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	// 6. Initialize persistence layer with validated config
	if err := store.InitStore(cfg.Backend, cfg.DBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return nil
}

// repoSetupWrapper runs sharedSetup for commands that work on one repository.
func repoSetupWrapper(_ *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, args, true)
}

// optionalRepoSetupWrapper runs sharedSetup for commands where the repository narrows the data.
func optionalRepoSetupWrapper(_ *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, args, false)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetStoreManager sets the global store manager.
func SetStoreManager(mgr contract.StoreManager) {
	storeManager = mgr
}
