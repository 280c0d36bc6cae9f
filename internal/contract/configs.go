package contract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/timesplit/schema"
)

// Default values for configuration.
const (
	DefaultIdleThreshold     = 60 * time.Second
	DefaultIdleCheckInterval = 30 * time.Second
	DefaultPollInterval      = 5 * time.Second
	DefaultRefreshInterval   = 5 * time.Second
	DefaultResultLimit       = 50
	MaxResultLimit           = 1000
)

// DefaultExcludes are worktree paths whose writes never count as activity.
var DefaultExcludes = []string{
	".git/", "node_modules/", "vendor/", "dist/", "build/", "target/", "bin/",
	".DS_Store", ".swp", ".swx", "~", ".tmp",
}

// Config holds the runtime configuration for tracking and reporting.
// This struct remains the "final, validated" config.
type Config struct {
	RepoPath string // Empty when the command does not need a repository

	IdleThreshold     time.Duration
	IdleCheckInterval time.Duration
	PollInterval      time.Duration
	RefreshInterval   time.Duration

	Backend   schema.DatabaseBackend
	DBConnect string // Please use env var as this is plaintext

	Output     schema.OutputMode
	OutputFile string
	SortKey    schema.SortKey
	SortDesc   bool
	Limit      int
	Since      time.Time
	Intervals  bool // Report raw intervals instead of per-branch metrics
	Width      int  // Terminal width override (0 = auto-detect)
	UseColors  bool

	Headless      bool
	WatchActivity bool
	Excludes      []string

	LogLevel  string
	LogFormat string
	LogFile   string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Backend    string `mapstructure:"store-backend"`
	DBConnect  string `mapstructure:"store-db-connect"`
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Color      string `mapstructure:"color"`
	Width      int    `mapstructure:"width"`
	LogLevel   string `mapstructure:"log-level"`
	LogFormat  string `mapstructure:"log-format"`
	LogFile    string `mapstructure:"log-file"`

	// --- Fields from trackCmd.Flags() ---
	IdleThreshold     string `mapstructure:"idle-threshold"`
	IdleCheckInterval string `mapstructure:"idle-check"`
	PollInterval      string `mapstructure:"poll-interval"`
	RefreshInterval   string `mapstructure:"refresh-interval"`
	Headless          bool   `mapstructure:"headless"`
	WatchActivity     bool   `mapstructure:"watch-activity"`
	Exclude           string `mapstructure:"exclude"`

	// --- Fields from reportCmd.Flags() ---
	Sort      string `mapstructure:"sort"`
	Order     string `mapstructure:"order"`
	Limit     int    `mapstructure:"limit"`
	Since     string `mapstructure:"since"`
	Intervals bool   `mapstructure:"intervals"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Excludes != nil {
		clone.Excludes = make([]string, len(c.Excludes))
		copy(clone.Excludes, c.Excludes)
	}
	return &clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct. The repository is only resolved when
// input.RepoPathStr is set.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processDurations(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processReportInputs(cfg, input); err != nil {
		return err
	}
	if input.RepoPathStr == "" {
		return nil
	}
	return resolveRepoPath(ctx, cfg, client, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates the interval store backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	backend := strings.ToLower(strings.TrimSpace(input.Backend))
	if backend == "" {
		backend = string(schema.SQLiteBackend)
	}
	cfg.Backend = schema.DatabaseBackend(backend)
	if _, ok := schema.ValidDatabaseBackends[cfg.Backend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.Backend)
	}
	cfg.DBConnect = input.DBConnect
	return ValidateDatabaseConnectionString(cfg.Backend, cfg.DBConnect)
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Headless = input.Headless
	cfg.WatchActivity = input.WatchActivity
	cfg.LogFile = input.LogFile
	cfg.Intervals = input.Intervals

	// --- 1. Color flag ---
	colorStr := input.Color
	if colorStr == "" {
		colorStr = "yes"
	}
	colors, err := ParseBoolString(colorStr)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 2. Output Validation ---
	output := strings.ToLower(input.Output)
	if output == "" {
		output = string(schema.TextOut)
	}
	cfg.Output = schema.OutputMode(output)
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, yaml, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	// --- 3. Logging ---
	cfg.LogLevel = strings.ToLower(input.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	switch cfg.LogLevel {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level '%s'. must be trace, debug, info, warn, error", input.LogLevel)
	}
	cfg.LogFormat = strings.ToLower(input.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("invalid log format '%s'. must be text, json", input.LogFormat)
	}

	// --- 4. Excludes Processing ---
	cfg.Excludes = append([]string{}, DefaultExcludes...)
	if input.Exclude != "" {
		for p := range strings.SplitSeq(input.Exclude, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cfg.Excludes = append(cfg.Excludes, trimmed)
			}
		}
	}

	return nil
}

// processDurations parses the tracking cadence settings. Empty values fall back to defaults.
func processDurations(cfg *Config, input *ConfigRawInput) error {
	fields := []struct {
		name   string
		raw    string
		target *time.Duration
		def    time.Duration
	}{
		{"idle-threshold", input.IdleThreshold, &cfg.IdleThreshold, DefaultIdleThreshold},
		{"idle-check", input.IdleCheckInterval, &cfg.IdleCheckInterval, DefaultIdleCheckInterval},
		{"poll-interval", input.PollInterval, &cfg.PollInterval, DefaultPollInterval},
		{"refresh-interval", input.RefreshInterval, &cfg.RefreshInterval, DefaultRefreshInterval},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.raw) == "" {
			*f.target = f.def
			continue
		}
		d, err := ParseLookbackDuration(f.raw)
		if err != nil {
			return fmt.Errorf("invalid --%s value: %w", f.name, err)
		}
		*f.target = d
	}
	return nil
}

// processReportInputs handles the sort, limit and time window of reports.
func processReportInputs(cfg *Config, input *ConfigRawInput) error {
	sortKey := strings.ToLower(input.Sort)
	if sortKey == "" {
		sortKey = string(schema.SortByLastSeen)
	}
	cfg.SortKey = schema.SortKey(sortKey)
	if _, ok := schema.ValidSortKeys[cfg.SortKey]; !ok {
		return fmt.Errorf("invalid sort key '%s'. must be branch, active, inactive, total, first-seen, last-seen", input.Sort)
	}

	switch strings.ToLower(input.Order) {
	case "", "desc":
		cfg.SortDesc = true
	case "asc":
		cfg.SortDesc = false
	default:
		return fmt.Errorf("invalid order '%s'. must be asc, desc", input.Order)
	}

	limit := input.Limit
	if limit == 0 {
		limit = DefaultResultLimit
	}
	if limit < 0 || limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.Limit = limit

	since, err := ParseSince(input.Since, time.Now())
	if err != nil {
		return err
	}
	cfg.Since = since
	return nil
}

// resolveRepoPath resolves the Git repository root from the positional path.
func resolveRepoPath(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	absSearchPath, err := filepath.Abs(input.RepoPathStr)
	if err != nil {
		return err
	}
	absSearchPath = filepath.Clean(absSearchPath)

	gitContextPath := absSearchPath
	if info, statErr := os.Stat(absSearchPath); statErr == nil && !info.IsDir() {
		gitContextPath = filepath.Dir(absSearchPath)
	}

	gitRoot, err := client.GetRepoRoot(ctx, gitContextPath)
	if err != nil {
		return err
	}
	cfg.RepoPath = gitRoot
	return nil
}
