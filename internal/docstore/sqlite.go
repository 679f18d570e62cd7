// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package docstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/erolledph/new-cms/internal/model"

	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

//go:embed migrations/*.sql
var migrations embed.FS

// DBConfig holds database configuration options.
type DBConfig struct {
	// MaxOpenConns is the maximum number of open connections to the database.
	MaxOpenConns int
	// MaxIdleConns is the maximum number of connections in the idle connection pool.
	MaxIdleConns int
	// ConnMaxLifetime is the maximum amount of time a connection may be reused.
	ConnMaxLifetime time.Duration
	// ConnMaxIdleTime is the maximum amount of time a connection may be idle.
	ConnMaxIdleTime time.Duration
}

// DefaultDBConfig returns sensible defaults for SQLite.
func DefaultDBConfig() DBConfig {
	return DBConfig{
		// WAL mode allows many readers next to the single writer
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
	}
}

// NewDB opens a SQLite database connection and configures it for the read-heavy API workload.
func NewDB(path string) (*sql.DB, error) {
	return NewDBWithConfig(path, DefaultDBConfig())
}

// NewDBWithConfig opens a SQLite database connection with custom configuration.
func NewDBWithConfig(path string, cfg DBConfig) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-64000",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA mmap_size=268435456",
		"PRAGMA wal_autocheckpoint=1000",
		"PRAGMA optimize",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// Migrate runs all pending database migrations.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

// SchemaVersion returns the latest applied migration version.
func (s *SQLite) SchemaVersion(ctx context.Context) (int64, error) {
	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, fmt.Errorf("setting dialect: %w", err)
	}
	return goose.GetDBVersionContext(ctx, s.db)
}

// SQLite is the embedded Store backend. Items are kept as JSON documents
// with their status, slug and timestamps mirrored into indexed columns.
type SQLite struct {
	db *sql.DB
}

// NewSQLite wraps an open, migrated database.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// OpenSQLite opens the database at path, runs migrations and returns the backend.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := NewDB(path)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewSQLite(db), nil
}

// DB exposes the underlying connection pool.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// Ping verifies the database connection.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// WriteEventLog persists a system event log entry.
func (s *SQLite) WriteEventLog(ctx context.Context, e model.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO event_log (level, category, message, metadata, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.Level, e.Category, e.Message, e.Metadata, e.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("inserting event log entry: %w", err)
	}
	return nil
}

// ListEventLog returns the most recent event log entries, newest first.
func (s *SQLite) ListEventLog(ctx context.Context, limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, level, category, message, metadata, created_at FROM event_log ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("listing event log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		var created int64
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.Metadata, &created); err != nil {
			return nil, fmt.Errorf("scanning event log: %w", err)
		}
		e.CreatedAt = time.UnixMilli(created).UTC()
		events = append(events, e)
	}
	return events, rows.Err()
}

func millis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullMillis(v any) sql.NullInt64 {
	t, ok := timeValue(v)
	if !ok {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
