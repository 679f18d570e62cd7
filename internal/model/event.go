// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryContent   = "content"
	EventCategoryProduct   = "product"
	EventCategoryAnalytics = "analytics"
	EventCategorySite      = "site"
	EventCategoryConfig    = "config"
	EventCategoryStorage   = "storage"
	EventCategorySystem    = "system"
)

// Event represents a system event log entry.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	Metadata  string // JSON string
	CreatedAt time.Time
}
