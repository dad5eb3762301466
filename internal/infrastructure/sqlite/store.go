// Package sqlite implements the graph cache repository on an embedded
// SQLite database, using the pure-Go modernc driver through gorm.
// Referential integrity between the namespace header and its node and
// edge rows is declared in the schema (ON DELETE CASCADE) and enforced
// by enabling foreign keys on every connection.
package sqlite

import (
	"fmt"
	"net/url"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// StoreConfig holds the connection settings for the embedded database.
type StoreConfig struct {
	// Path is the database file path. ":memory:" is valid for tests but
	// restricts the pool to a single connection.
	Path string

	// BusyTimeoutMillis is how long a writer waits on a locked database
	// before the engine reports SQLITE_BUSY.
	BusyTimeoutMillis int

	// MaxOpenConns bounds the connection pool. Pooling is a throughput
	// optimization, not a correctness requirement.
	MaxOpenConns int

	// WAL enables write-ahead logging, which lets readers proceed while
	// an unrelated namespace is being written.
	WAL bool
}

// DefaultStoreConfig returns production defaults.
func DefaultStoreConfig(path string) StoreConfig {
	return StoreConfig{
		Path:              path,
		BusyTimeoutMillis: 5000,
		MaxOpenConns:      4,
		WAL:               true,
	}
}

// Open opens the database with default settings.
func Open(path string) (*gorm.DB, error) {
	return OpenWithConfig(DefaultStoreConfig(path))
}

// OpenWithConfig opens the database, applying pragmas through the DSN
// so every pooled connection gets them.
func OpenWithConfig(cfg StoreConfig) (*gorm.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite store: empty database path")
	}

	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        buildDSN(cfg),
	}, &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open %s: %w", cfg.Path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite store: unwrap connection pool: %w", err)
	}
	maxConns := cfg.MaxOpenConns
	if maxConns <= 0 || cfg.Path == ":memory:" {
		maxConns = 1
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns)

	return db, nil
}

func buildDSN(cfg StoreConfig) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	if cfg.BusyTimeoutMillis > 0 {
		q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeoutMillis))
	}
	if cfg.WAL && cfg.Path != ":memory:" {
		q.Add("_pragma", "journal_mode(WAL)")
	}
	return "file:" + cfg.Path + "?" + q.Encode()
}
