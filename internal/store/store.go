// Package store persists closed branch intervals in SQLite, MySQL or PostgreSQL.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/huangsam/timesplit/internal/contract"
	"github.com/huangsam/timesplit/internal/logging"
	"github.com/huangsam/timesplit/schema"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// intervalsTable is the name of the table holding closed intervals.
const intervalsTable = "timesplit_intervals"

// ErrInvalidInterval is returned by Record for intervals that carry no time.
var ErrInvalidInterval = errors.New("invalid interval")

var tableNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// IntervalStoreImpl implements the IntervalStore interface.
type IntervalStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	target  string // Connection target shown in status output
	logger  *logrus.Entry
	now     func() time.Time
}

var _ contract.IntervalStore = &IntervalStoreImpl{} // Compile-time check

// NewIntervalStore creates a new IntervalStore with the specified backend
// and migrates it to the latest schema.
func NewIntervalStore(backend schema.DatabaseBackend, connStr string) (*IntervalStoreImpl, error) {
	logger := logging.NewLogger("store")
	if backend == schema.NoneBackend {
		// No-op store when persistence is disabled
		return &IntervalStoreImpl{backend: backend, logger: logger, now: time.Now}, nil
	}

	db, target, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if err := applyMigrations(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare %s schema: %w", backend, err)
	}

	logger.WithFields(logrus.Fields{"backend": backend, "target": target}).Debug("interval store ready")
	return &IntervalStoreImpl{db: db, backend: backend, target: target, logger: logger, now: time.Now}, nil
}

// openDB opens and pings the database behind a backend.
// It returns the connection and a display target without credentials.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, string, error) {
	var db *sql.DB
	var err error
	target := ""

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetDBFilePath()
		}
		target = dbPath
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		cfg, parseErr := mysql.ParseDSN(connStr)
		if parseErr != nil {
			return nil, "", fmt.Errorf("failed to parse MySQL connection string: %w. Check format: user:password@tcp(host:port)/dbname", parseErr)
		}
		target = fmt.Sprintf("%s/%s", cfg.Addr, cfg.DBName)
		db, err = sql.Open("mysql", connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		target = postgresTarget(connStr)
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... dbname=... user=... password=...", err)
		}

	default:
		return nil, "", fmt.Errorf("unsupported backend: %s", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is accessible."
		}
		return nil, "", fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}
	return db, target, nil
}

// postgresTarget extracts host and dbname from a keyword/value connection string.
func postgresTarget(connStr string) string {
	var host, dbname string
	for field := range strings.FieldsSeq(connStr) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch key {
		case "host":
			host = value
		case "dbname":
			dbname = value
		}
	}
	return host + "/" + dbname
}

// Record stores a closed interval. Duplicates are ignored.
func (s *IntervalStoreImpl) Record(repo string, iv schema.Interval) error {
	if err := validateInterval(iv); err != nil {
		return err
	}
	if s.backend == schema.NoneBackend || s.db == nil {
		return nil
	}

	table := quoteTableName(intervalsTable, s.backend)
	columns := "(repo, subject, kind, start_ms, end_ms, session_id, recorded_ms)"
	var query string
	switch s.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf("INSERT IGNORE INTO %s %s VALUES (?, ?, ?, ?, ?, ?, ?)", table, columns)
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf("INSERT INTO %s %s VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT DO NOTHING", table, columns)
	default: // SQLite
		query = fmt.Sprintf("INSERT OR IGNORE INTO %s %s VALUES (?, ?, ?, ?, ?, ?, ?)", table, columns)
	}

	_, err := s.db.Exec(query,
		repo, iv.Subject, string(iv.Kind), iv.Start.UnixMilli(), iv.End.UnixMilli(), iv.SessionID, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert interval for %s: %w", iv.Subject, err)
	}
	s.logger.WithFields(logrus.Fields{
		"subject": iv.Subject,
		"kind":    iv.Kind,
		"start":   iv.Start,
		"end":     *iv.End,
	}).Debug("interval recorded")
	return nil
}

// validateInterval rejects intervals that are open, unnamed or carry no time.
func validateInterval(iv schema.Interval) error {
	switch {
	case iv.Subject == "":
		return fmt.Errorf("%w: empty subject", ErrInvalidInterval)
	case iv.Start.IsZero():
		return fmt.Errorf("%w: missing start for %s", ErrInvalidInterval, iv.Subject)
	case iv.End == nil:
		return fmt.Errorf("%w: open interval for %s", ErrInvalidInterval, iv.Subject)
	case iv.End.UnixMilli() <= iv.Start.UnixMilli():
		return fmt.Errorf("%w: non-positive duration for %s", ErrInvalidInterval, iv.Subject)
	}
	return nil
}

// List returns stored intervals matching the query, ordered by start time.
func (s *IntervalStoreImpl) List(q schema.ListQuery) ([]schema.IntervalRecord, error) {
	if s.backend == schema.NoneBackend || s.db == nil {
		return nil, nil
	}

	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, s.placeholder(len(args))))
	}
	if q.Repo != "" {
		add("repo = %s", q.Repo)
	}
	if q.Subject != "" {
		add("subject = %s", q.Subject)
	}
	if !q.Since.IsZero() {
		add("end_ms > %s", q.Since.UnixMilli())
	}

	query := fmt.Sprintf("SELECT repo, subject, kind, start_ms, end_ms, session_id, recorded_ms FROM %s",
		quoteTableName(intervalsTable, s.backend))
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY start_ms, subject"
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query intervals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.IntervalRecord
	for rows.Next() {
		var (
			record                      schema.IntervalRecord
			kind                        string
			startMs, endMs, recordedMs int64
		)
		if err := rows.Scan(&record.Repo, &record.Interval.Subject, &kind, &startMs, &endMs,
			&record.Interval.SessionID, &recordedMs); err != nil {
			return nil, fmt.Errorf("failed to scan interval: %w", err)
		}
		end := time.UnixMilli(endMs)
		record.Interval.Kind = schema.Kind(kind)
		record.Interval.Start = time.UnixMilli(startMs)
		record.Interval.End = &end
		record.RecordedAt = time.UnixMilli(recordedMs)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating intervals: %w", err)
	}
	return results, nil
}

// Intervals returns the plain intervals of a query, dropping the record metadata.
func Intervals(records []schema.IntervalRecord) []schema.Interval {
	out := make([]schema.Interval, len(records))
	for i, r := range records {
		out[i] = r.Interval
	}
	return out
}

// GetStatus returns status information about the interval store.
func (s *IntervalStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:   string(s.backend),
		Target:    s.target,
		Connected: s.db != nil,
	}
	if s.backend == schema.NoneBackend || s.db == nil {
		return status, nil
	}

	table := quoteTableName(intervalsTable, s.backend)
	var oldest, latest sql.NullInt64
	query := fmt.Sprintf(`SELECT COUNT(*), COUNT(DISTINCT subject), COUNT(DISTINCT session_id),
		MIN(start_ms), MAX(end_ms) FROM %s`, table)
	if err := s.db.QueryRow(query).Scan(&status.TotalIntervals, &status.TotalBranches,
		&status.TotalSessions, &oldest, &latest); err != nil {
		return status, fmt.Errorf("failed to get interval counts: %w", err)
	}
	if oldest.Valid {
		status.OldestStartTime = time.UnixMilli(oldest.Int64)
	}
	if latest.Valid {
		status.LastEndTime = time.UnixMilli(latest.Int64)
	}

	versionQuery := fmt.Sprintf("SELECT version FROM %s LIMIT 1", quoteTableName(migrationsTable, s.backend))
	var version int64
	if err := s.db.QueryRow(versionQuery).Scan(&version); err == nil && version > 0 {
		status.SchemaVersion = uint(version)
	}
	return status, nil
}

// Close closes the underlying connection.
func (s *IntervalStoreImpl) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// placeholder returns the n-th bind parameter for the backend.
func (s *IntervalStoreImpl) placeholder(n int) string {
	if s.backend == schema.PostgreSQLBackend {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// validateTableName validates that the table name is a safe SQL identifier.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNameRe.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$)", name)
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	if backend == schema.MySQLBackend {
		return fmt.Sprintf("`%s`", name)
	}
	return fmt.Sprintf("%q", name)
}
