// Package store persists chat messages in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/tOgg1/scrollback/internal/logging"
)

// Options tune the connection.
type Options struct {
	// BusyTimeoutMs is how long sqlite waits on a locked database.
	BusyTimeoutMs int
	// MaxConnections caps the pool.
	MaxConnections int
	// RetryAttempts bounds TransactionWithRetry (default 3).
	RetryAttempts int
	// RetryBackoff is the first wait between attempts (default 50ms).
	RetryBackoff time.Duration
}

// DB wraps the sqlite handle.
type DB struct {
	*sql.DB
	path   string
	logger zerolog.Logger
	retry  retryPolicy
}

// Open opens (creating if needed) the database at path and bootstraps the
// schema.
func Open(ctx context.Context, path string, opts Options) (*DB, error) {
	if opts.BusyTimeoutMs <= 0 {
		opts.BusyTimeoutMs = 5000
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)", path, opts.BusyTimeoutMs)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if opts.MaxConnections > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxConnections)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:     sqlDB,
		path:   path,
		logger: logging.Component("store"),
		retry:  newRetryPolicy(opts.RetryAttempts, opts.RetryBackoff),
	}
	if err := db.ensureSchema(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	db.logger.Debug().Str("path", path).Msg("database opened")
	return db, nil
}

// Path is the database file.
func (db *DB) Path() string { return db.path }

// Close closes the database.
func (db *DB) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	return db.DB.Close()
}

func (db *DB) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uid TEXT NOT NULL UNIQUE,
			history TEXT NOT NULL,
			kind TEXT NOT NULL,
			author TEXT NOT NULL,
			body TEXT NOT NULL,
			link TEXT,
			group_id INTEGER NOT NULL DEFAULT 0,
			can_forward INTEGER NOT NULL DEFAULT 1,
			can_delete INTEGER NOT NULL DEFAULT 1,
			migrate_marker INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS messages_history_idx ON messages(history, id)`,
		`CREATE INDEX IF NOT EXISTS messages_group_idx ON messages(group_id) WHERE group_id != 0`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// Transaction runs fn inside a transaction, rolling back on error.
func (db *DB) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
