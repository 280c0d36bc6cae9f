package store

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/timesplit/internal/contract"
	"github.com/huangsam/timesplit/schema"
)

// StoreManager holds the interval store shared by commands.
type StoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	intervals    contract.IntervalStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// GetIntervalStore returns the IntervalStore.
func (mgr *StoreManager) GetIntervalStore() contract.IntervalStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.intervals
}

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStore initializes the global manager with the configured interval store.
func InitStore(backend schema.DatabaseBackend, connStr string) error {
	var initErr error

	initOnce.Do(func() {
		intervalStore, err := NewIntervalStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize interval store: %w", err)
			return
		}
		Manager.Lock()
		defer Manager.Unlock()
		Manager.intervals = intervalStore
	})

	return initErr
}

// CloseStore should be called on application shutdown.
func CloseStore() {
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.intervals != nil {
			_ = Manager.intervals.Close()
		}
	})
}

// ClearStore removes all stored intervals for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the tables.
// For NoneBackend, it does nothing.
func ClearStore(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		dbFilePath := connStr
		if dbFilePath == "" {
			dbFilePath = contract.GetDBFilePath()
		}
		if dbFilePath == ":memory:" {
			return nil
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend:
		return clearSQLTables("mysql", backend, connStr)

	case schema.PostgreSQLBackend:
		return clearSQLTables("pgx", backend, connStr)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported store backend for clearing: %s", backend)
	}
}

// clearSQLTables connects to the SQL database and drops the interval and migration tables.
// The migration table goes too so the next open recreates the schema.
func clearSQLTables(driverName string, backend schema.DatabaseBackend, connStr string) error {
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	for _, table := range []string{intervalsTable, migrationsTable} {
		if err := validateTableName(table); err != nil {
			return err
		}
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(table, backend))
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
