package schema

// Custom string types for type safety.
type (
	// Kind classifies how the time of an interval is bucketed.
	Kind string

	// OutputMode represents the format of the output.
	OutputMode string

	// SortKey represents the column used to order branch metrics.
	SortKey string

	// DatabaseBackend represents the database backend for interval storage.
	DatabaseBackend string

	// NoticeLevel represents the severity of a user-facing notification.
	NoticeLevel string
)

// All interval kinds supported.
const (
	ActiveKind   Kind = "active"
	InactiveKind Kind = "inactive"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	YAMLOut    OutputMode = "yaml"
	ParquetOut OutputMode = "parquet"
)

// All sort keys supported.
const (
	SortByBranch    SortKey = "branch"
	SortByActive    SortKey = "active"
	SortByInactive  SortKey = "inactive"
	SortByTotal     SortKey = "total"
	SortByFirstSeen SortKey = "first-seen"
	SortByLastSeen  SortKey = "last-seen" // default
)

// All storage backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All notice levels supported.
const (
	NoticeInfo  NoticeLevel = "info"
	NoticeWarn  NoticeLevel = "warn"
	NoticeError NoticeLevel = "error"
)

// ValidKinds lists all valid interval kinds.
var ValidKinds = map[Kind]struct{}{
	ActiveKind:   {},
	InactiveKind: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	YAMLOut:    {},
	ParquetOut: {},
}

// ValidSortKeys lists all valid sort keys.
var ValidSortKeys = map[SortKey]struct{}{
	SortByBranch:    {},
	SortByActive:    {},
	SortByInactive:  {},
	SortByTotal:     {},
	SortByFirstSeen: {},
	SortByLastSeen:  {},
}

// ValidDatabaseBackends lists all valid storage backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// AllSortKeys returns the sort keys in the order the dashboard cycles through them.
var AllSortKeys = []SortKey{SortByLastSeen, SortByTotal, SortByActive, SortByInactive, SortByFirstSeen, SortByBranch}
