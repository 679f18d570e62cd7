// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides the slog setup and a handler that integrates with
// the event log. Records at WARN level and above are also persisted to the
// backend's event log for later inspection.
package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/erolledph/new-cms/internal/model"
)

// EventLogSink persists event log entries.
type EventLogSink interface {
	WriteEventLog(ctx context.Context, e model.Event) error
}

// EventLogHandler is a slog.Handler that wraps another handler and also writes
// WARN and ERROR level logs to an EventLogSink.
type EventLogHandler struct {
	inner slog.Handler
	sink  EventLogSink
	attrs []slog.Attr
	level slog.Level // Minimum level to forward to the event log (default: WARN)
}

// NewEventLogHandler creates a new EventLogHandler that wraps the given handler.
func NewEventLogHandler(inner slog.Handler, sink EventLogSink) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, sink, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel creates a new EventLogHandler with a custom minimum level.
func NewEventLogHandlerWithLevel(inner slog.Handler, sink EventLogSink, level slog.Level) *EventLogHandler {
	return &EventLogHandler{
		inner: inner,
		sink:  sink,
		level: level,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	// Always forward to the inner handler first
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level && h.sink != nil {
		h.writeToEventLog(r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EventLogHandler{
		inner: h.inner.WithAttrs(attrs),
		sink:  h.sink,
		attrs: append(append([]slog.Attr(nil), h.attrs...), attrs...),
		level: h.level,
	}
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	return &EventLogHandler{
		inner: h.inner.WithGroup(name),
		sink:  h.sink,
		attrs: h.attrs,
		level: h.level,
	}
}

func (h *EventLogHandler) writeToEventLog(r slog.Record) {
	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})

	created := r.Time
	if created.IsZero() {
		created = time.Now()
	}

	// The request context may already be cancelled.
	_ = h.sink.WriteEventLog(context.Background(), model.Event{
		Level:     slogLevelToEventLevel(r.Level),
		Category:  extractCategory(r.Message, attrs),
		Message:   r.Message,
		Metadata:  extractMetadata(attrs),
		CreatedAt: created,
	})
}

func slogLevelToEventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// extractCategory uses an explicit "category" attribute or infers one from
// the message.
func extractCategory(msg string, attrs []slog.Attr) string {
	for _, a := range attrs {
		if a.Key == "category" {
			return a.Value.String()
		}
	}

	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "analytics") || strings.Contains(msg, "event") || strings.Contains(msg, "rate limit"):
		return model.EventCategoryAnalytics
	case strings.Contains(msg, "product"):
		return model.EventCategoryProduct
	case strings.Contains(msg, "post") || strings.Contains(msg, "content"):
		return model.EventCategoryContent
	case strings.Contains(msg, "site"):
		return model.EventCategorySite
	case strings.Contains(msg, "config") || strings.Contains(msg, "credential"):
		return model.EventCategoryConfig
	case strings.Contains(msg, "backend") || strings.Contains(msg, "store") || strings.Contains(msg, "blob"):
		return model.EventCategoryStorage
	default:
		return model.EventCategorySystem
	}
}

// extractMetadata collects attributes into a JSON object of strings.
func extractMetadata(attrs []slog.Attr) string {
	meta := make(map[string]string, len(attrs))
	for _, a := range attrs {
		if a.Key == "category" {
			continue
		}
		meta[a.Key] = a.Value.String()
	}
	if len(meta) == 0 {
		return "{}"
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return "{}"
	}
	return string(data)
}
