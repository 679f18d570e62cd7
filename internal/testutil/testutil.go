// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the CMS.
package testutil

import (
	"database/sql"
	"log/slog"
	"os"
	"testing"

	"github.com/erolledph/new-cms/internal/docstore"
	"github.com/pressly/goose/v3"

	_ "github.com/mattn/go-sqlite3"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates an in-memory database with migrations applied. The pool is
// limited to one connection so every query sees the same memory database.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	goose.SetLogger(goose.NopLogger())
	if err := docstore.Migrate(db); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// TestStore returns a SQLite-backed store over TestDB.
func TestStore(t *testing.T) *docstore.SQLite {
	t.Helper()
	return docstore.NewSQLite(TestDB(t))
}

// TestAccessor returns an accessor over TestStore.
func TestAccessor(t *testing.T) (*docstore.Accessor, *docstore.SQLite) {
	t.Helper()
	s := TestStore(t)
	return docstore.NewStaticAccessor(s), s
}
