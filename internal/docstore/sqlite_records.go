// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/erolledph/new-cms/internal/model"
)

// GetAccount returns an account with its settings. Missing settings fall
// back to model.DefaultSettings.
func (s *SQLite) GetAccount(ctx context.Context, uid string) (*model.Account, error) {
	var (
		a                          model.Account
		created                    int64
		currency, timezone, locale sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT a.uid, a.email, a.display_name, a.created_at, s.currency, s.timezone, s.locale
		FROM accounts a LEFT JOIN account_settings s ON s.uid = a.uid
		WHERE a.uid = ?`, uid).
		Scan(&a.UID, &a.Email, &a.DisplayName, &created, &currency, &timezone, &locale)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", uid, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting account: %w", err)
	}

	a.CreatedAt = fromMillis(created)
	a.Settings = model.DefaultSettings()
	if currency.Valid {
		a.Settings = model.Settings{Currency: currency.String, Timezone: timezone.String, Locale: locale.String}
	}
	return &a, nil
}

// SetAccount creates or updates an account and its settings.
func (s *SQLite) SetAccount(ctx context.Context, a *model.Account) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (uid, email, display_name, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET email = excluded.email, display_name = excluded.display_name`,
		a.UID, a.Email, a.DisplayName, millis(a.CreatedAt)); err != nil {
		return fmt.Errorf("saving account: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO account_settings (uid, currency, timezone, locale) VALUES (?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET currency = excluded.currency, timezone = excluded.timezone, locale = excluded.locale`,
		a.UID, a.Settings.Currency, a.Settings.Timezone, a.Settings.Locale); err != nil {
		return fmt.Errorf("saving account settings: %w", err)
	}

	return tx.Commit()
}

// ListAccounts returns all accounts ordered by creation time.
func (s *SQLite) ListAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT uid FROM accounts ORDER BY created_at, uid`)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	var uids []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		uids = append(uids, uid)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	accounts := make([]model.Account, 0, len(uids))
	for _, uid := range uids {
		a, err := s.GetAccount(ctx, uid)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, nil
}

const siteSelect = `SELECT uid, id, kind, name, slug, description, default_currency, tax_rate,
	tax_included, content_count, created_at, updated_at FROM sites`

// ListSites returns the sites of an account in creation order.
func (s *SQLite) ListSites(ctx context.Context, uid string, kind model.SiteKind) ([]model.Site, error) {
	query := siteSelect + ` WHERE uid = ?`
	args := []any{uid}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sites: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sites := []model.Site{}
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, *site)
	}
	return sites, rows.Err()
}

// GetSite returns one site.
func (s *SQLite) GetSite(ctx context.Context, uid, siteID string) (*model.Site, error) {
	site, err := scanSite(s.db.QueryRowContext(ctx, siteSelect+` WHERE uid = ? AND id = ?`, uid, siteID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("site %s: %w", siteID, ErrNotFound)
	}
	return site, err
}

// SetSite creates or replaces a site.
func (s *SQLite) SetSite(ctx context.Context, site *model.Site) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sites (uid, id, kind, name, slug, description, default_currency, tax_rate,
			tax_included, content_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid, id) DO UPDATE SET
			kind = excluded.kind,
			name = excluded.name,
			slug = excluded.slug,
			description = excluded.description,
			default_currency = excluded.default_currency,
			tax_rate = excluded.tax_rate,
			tax_included = excluded.tax_included,
			content_count = excluded.content_count,
			updated_at = excluded.updated_at`,
		site.UID, site.ID, string(site.Kind), site.Name, site.Slug, site.Description,
		site.DefaultCurrency, site.TaxRate, boolInt(site.TaxIncluded), site.ContentCount,
		millis(site.CreatedAt), millis(site.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving site: %w", err)
	}
	return nil
}

// DeleteSite removes a site record. Its items are removed separately.
func (s *SQLite) DeleteSite(ctx context.Context, uid, siteID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sites WHERE uid = ? AND id = ?`, uid, siteID)
	if err != nil {
		return fmt.Errorf("deleting site: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("site %s: %w", siteID, ErrNotFound)
	}
	return nil
}

func scanSite(row rowScanner) (*model.Site, error) {
	var (
		site             model.Site
		kind             string
		taxIncluded      int
		created, updated int64
	)
	err := row.Scan(&site.UID, &site.ID, &kind, &site.Name, &site.Slug, &site.Description,
		&site.DefaultCurrency, &site.TaxRate, &taxIncluded, &site.ContentCount, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning site: %w", err)
	}
	site.Kind = model.SiteKind(kind)
	site.TaxIncluded = taxIncluded != 0
	site.CreatedAt = fromMillis(created)
	site.UpdatedAt = fromMillis(updated)
	return &site, nil
}

const fileSelect = `SELECT uid, id, name, storage_key, url, mime_type, size, width, height,
	compressed, compression_ratio, uploaded_at FROM files`

// SetFile creates or replaces a file record.
func (s *SQLite) SetFile(ctx context.Context, f *model.File) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO files (uid, id, name, storage_key, url, mime_type, size, width, height,
			compressed, compression_ratio, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.UID, f.ID, f.Name, f.StorageKey, f.URL, f.MimeType, f.Size, f.Width, f.Height,
		boolInt(f.Compressed), f.CompressionRatio, millis(f.UploadedAt))
	if err != nil {
		return fmt.Errorf("saving file: %w", err)
	}
	return nil
}

// GetFile returns one file record.
func (s *SQLite) GetFile(ctx context.Context, uid, id string) (*model.File, error) {
	f, err := scanFile(s.db.QueryRowContext(ctx, fileSelect+` WHERE uid = ? AND id = ?`, uid, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("file %s: %w", id, ErrNotFound)
	}
	return f, err
}

// ListFiles returns an account's files, newest first.
func (s *SQLite) ListFiles(ctx context.Context, uid string) ([]model.File, error) {
	rows, err := s.db.QueryContext(ctx, fileSelect+` WHERE uid = ? ORDER BY uploaded_at DESC, id`, uid)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	files := []model.File{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *f)
	}
	return files, rows.Err()
}

// DeleteFile removes a file record.
func (s *SQLite) DeleteFile(ctx context.Context, uid, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE uid = ? AND id = ?`, uid, id)
	if err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("file %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanFile(row rowScanner) (*model.File, error) {
	var (
		f          model.File
		compressed int
		uploaded   int64
	)
	err := row.Scan(&f.UID, &f.ID, &f.Name, &f.StorageKey, &f.URL, &f.MimeType, &f.Size,
		&f.Width, &f.Height, &compressed, &f.CompressionRatio, &uploaded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning file: %w", err)
	}
	f.Compressed = compressed != 0
	f.UploadedAt = fromMillis(uploaded)
	return &f, nil
}

// AddEvent appends an analytics event.
func (s *SQLite) AddEvent(ctx context.Context, e *model.AnalyticsEvent) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analytics_events (uid, site_id, id, type, timestamp, data) VALUES (?, ?, ?, ?, ?, ?)`,
		e.UID, e.SiteID, e.ID, e.Type, millis(e.Timestamp), string(data))
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

// ListEvents returns events in chronological order.
func (s *SQLite) ListEvents(ctx context.Context, uid, siteID string) ([]model.AnalyticsEvent, error) {
	query := `SELECT data FROM analytics_events WHERE uid = ?`
	args := []any{uid}
	if siteID != "" {
		query += ` AND site_id = ?`
		args = append(args, siteID)
	}
	query += ` ORDER BY timestamp, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := []model.AnalyticsEvent{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		var e model.AnalyticsEvent
		if err := json.Unmarshal([]byte(data), &e); err != nil {
			return nil, fmt.Errorf("decoding event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
