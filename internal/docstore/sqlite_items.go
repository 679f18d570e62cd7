// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// itemColumns maps document fields to their indexed columns.
var itemColumns = map[string]string{
	FieldStatus:      "status",
	FieldSlug:        "slug",
	FieldPublishDate: "publish_date",
	FieldCreatedAt:   "created_at",
	FieldUpdatedAt:   "updated_at",
}

const itemSelect = `SELECT id, data, publish_date, created_at, updated_at FROM items`

// QueryItems runs an equality-filtered, optionally ordered and limited query.
// Ordering by a field excludes items that lack it.
func (s *SQLite) QueryItems(ctx context.Context, q Query) ([]Document, error) {
	var (
		where = []string{"uid = ?", "site_id = ?"}
		args  = []any{q.UID, q.SiteID}
	)

	for _, f := range q.Filters {
		col, ok := itemColumns[f.Field]
		if !ok {
			return nil, fmt.Errorf("%w: unsupported filter field %q", ErrInvalidQuery, f.Field)
		}
		where = append(where, col+" = ?")
		if isTimestampField(f.Field) {
			args = append(args, nullMillis(f.Value))
		} else {
			args = append(args, f.Value)
		}
	}

	query := itemSelect + " WHERE " + strings.Join(where, " AND ")

	if q.OrderBy != "" {
		col, ok := itemColumns[q.OrderBy]
		if !ok {
			return nil, fmt.Errorf("%w: unsupported order field %q", ErrInvalidQuery, q.OrderBy)
		}
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		query += " AND " + col + " IS NOT NULL ORDER BY " + col + " " + dir + ", id " + dir
	}

	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	docs := []Document{}
	for rows.Next() {
		doc, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}
	return docs, nil
}

// GetItem fetches a single item by id.
func (s *SQLite) GetItem(ctx context.Context, uid, siteID, id string) (Document, error) {
	row := s.db.QueryRowContext(ctx, itemSelect+` WHERE uid = ? AND site_id = ? AND id = ?`, uid, siteID, id)
	doc, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return doc, err
}

// SetItem creates or replaces an item.
func (s *SQLite) SetItem(ctx context.Context, uid, siteID string, doc Document) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: item id is required", ErrInvalidQuery)
	}

	body := make(map[string]any, len(doc.Data))
	for k, v := range doc.Data {
		if isTimestampField(k) {
			continue
		}
		body[k] = v
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding item: %w", err)
	}

	status, _ := doc.Data[FieldStatus].(string)
	slug, _ := doc.Data[FieldSlug].(string)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO items (uid, site_id, id, status, slug, publish_date, created_at, updated_at, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid, site_id, id) DO UPDATE SET
			status = excluded.status,
			slug = excluded.slug,
			publish_date = excluded.publish_date,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			data = excluded.data`,
		uid, siteID, doc.ID, nullString(status), nullString(slug),
		nullMillis(doc.Data[FieldPublishDate]),
		nullMillis(doc.Data[FieldCreatedAt]),
		nullMillis(doc.Data[FieldUpdatedAt]),
		string(data))
	if err != nil {
		return fmt.Errorf("saving item: %w", err)
	}
	return nil
}

// DeleteItem removes one item.
func (s *SQLite) DeleteItem(ctx context.Context, uid, siteID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE uid = ? AND site_id = ? AND id = ?`, uid, siteID, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteItems removes all items of a site.
func (s *SQLite) DeleteItems(ctx context.Context, uid, siteID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE uid = ? AND site_id = ?`, uid, siteID)
	if err != nil {
		return 0, fmt.Errorf("deleting items: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// CountItems counts all items of a site regardless of status.
func (s *SQLite) CountItems(ctx context.Context, uid, siteID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE uid = ? AND site_id = ?`, uid, siteID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (Document, error) {
	var (
		id                            string
		data                          string
		publishDate, created, updated sql.NullInt64
	)
	if err := row.Scan(&id, &data, &publishDate, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, err
		}
		return Document{}, fmt.Errorf("scanning item: %w", err)
	}

	fields := map[string]any{}
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return Document{}, fmt.Errorf("decoding item %s: %w", id, err)
	}

	overlay := map[string]sql.NullInt64{
		FieldPublishDate: publishDate,
		FieldCreatedAt:   created,
		FieldUpdatedAt:   updated,
	}
	for field, v := range overlay {
		if v.Valid {
			fields[field] = fromMillis(v.Int64)
		}
	}

	return Document{ID: id, Data: fields}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
