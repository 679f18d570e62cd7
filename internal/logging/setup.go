// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Log output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// NewHandler creates the base handler for the given format and level.
func NewHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == FormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// NewLogger builds a logger writing to w. When sink is non-nil, WARN and
// above are also persisted through it.
func NewLogger(w io.Writer, format string, level slog.Level, sink EventLogSink) *slog.Logger {
	handler := NewHandler(w, format, level)
	if sink != nil {
		handler = NewEventLogHandler(handler, sink)
	}
	return slog.New(handler)
}
