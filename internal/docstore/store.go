// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package docstore provides access to the hierarchical document store that
// holds accounts, sites, their posts and products, uploaded files and
// analytics events. Two backends implement Store: an embedded SQLite
// database and Cloud Firestore.
package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/erolledph/new-cms/internal/model"
)

// Sentinel errors returned by every backend. Backend-native errors are
// wrapped so callers can match them with errors.Is.
var (
	ErrNotFound         = errors.New("document not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrQuotaExceeded    = errors.New("quota exceeded")
	ErrInvalidQuery     = errors.New("invalid query")
)

// Item fields that may appear in filters and ordering.
const (
	FieldStatus      = "status"
	FieldSlug        = "slug"
	FieldPublishDate = "publishDate"
	FieldCreatedAt   = "createdAt"
	FieldUpdatedAt   = "updatedAt"
)

// TimestampFields are the item fields stored as backend timestamps.
var TimestampFields = []string{FieldPublishDate, FieldCreatedAt, FieldUpdatedAt}

// Document is a raw stored post or product. Timestamp fields hold time.Time.
type Document struct {
	ID   string
	Data map[string]any
}

// Filter is an equality condition on a document field.
type Filter struct {
	Field string
	Value any
}

// Query selects items in one site's item collection.
type Query struct {
	UID     string
	SiteID  string
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

// Where returns a copy of q with an additional equality filter.
func (q Query) Where(field string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Value: value})
	return q
}

// ItemStore reads and writes the items (posts or products) of a site.
type ItemStore interface {
	QueryItems(ctx context.Context, q Query) ([]Document, error)
	GetItem(ctx context.Context, uid, siteID, id string) (Document, error)
	SetItem(ctx context.Context, uid, siteID string, doc Document) error
	DeleteItem(ctx context.Context, uid, siteID, id string) error
	// DeleteItems removes every item of a site and reports how many were removed.
	DeleteItems(ctx context.Context, uid, siteID string) (int, error)
	CountItems(ctx context.Context, uid, siteID string) (int, error)
}

// AccountStore manages account documents and their settings.
type AccountStore interface {
	GetAccount(ctx context.Context, uid string) (*model.Account, error)
	SetAccount(ctx context.Context, a *model.Account) error
	ListAccounts(ctx context.Context) ([]model.Account, error)
}

// SiteStore manages site documents.
type SiteStore interface {
	// ListSites returns the sites of an account; an empty kind lists all kinds.
	ListSites(ctx context.Context, uid string, kind model.SiteKind) ([]model.Site, error)
	GetSite(ctx context.Context, uid, siteID string) (*model.Site, error)
	SetSite(ctx context.Context, s *model.Site) error
	DeleteSite(ctx context.Context, uid, siteID string) error
}

// FileStore manages uploaded file records.
type FileStore interface {
	SetFile(ctx context.Context, f *model.File) error
	GetFile(ctx context.Context, uid, id string) (*model.File, error)
	ListFiles(ctx context.Context, uid string) ([]model.File, error)
	DeleteFile(ctx context.Context, uid, id string) error
}

// EventStore appends and reads analytics events.
type EventStore interface {
	AddEvent(ctx context.Context, e *model.AnalyticsEvent) error
	// ListEvents returns events of one site, or of all sites when siteID is empty.
	ListEvents(ctx context.Context, uid, siteID string) ([]model.AnalyticsEvent, error)
}

// Store is the full backend contract.
type Store interface {
	ItemStore
	AccountStore
	SiteStore
	FileStore
	EventStore
	Ping(ctx context.Context) error
	Close() error
}

func isTimestampField(field string) bool {
	for _, f := range TimestampFields {
		if f == field {
			return true
		}
	}
	return false
}

// timeValue extracts a time from the representations a document may hold.
func timeValue(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}
