// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/erolledph/new-cms/internal/docstore"
	"github.com/erolledph/new-cms/internal/model"
	"github.com/erolledph/new-cms/internal/util"
)

// itemStore holds the parts shared by the post and product services.
type itemStore struct {
	store docstore.Store
	sites *SiteService
	opts  Options
	kind  model.SiteKind
}

func newItemStore(store docstore.Store, opts Options, kind model.SiteKind) itemStore {
	opts = opts.withDefaults()
	return itemStore{store: store, sites: NewSiteService(store, opts), opts: opts, kind: kind}
}

func (s itemStore) site(ctx context.Context, uid, siteID string) (*model.Site, error) {
	return s.sites.Get(ctx, uid, siteID, s.kind)
}

// list returns a site's items newest first, optionally filtered by status.
func (s itemStore) list(ctx context.Context, uid, siteID, status string) ([]docstore.Document, error) {
	if _, err := s.site(ctx, uid, siteID); err != nil {
		return nil, err
	}
	q := docstore.Query{UID: uid, SiteID: siteID, OrderBy: docstore.FieldCreatedAt, Desc: true}
	if status != "" {
		if err := validateStatus(status); err != nil {
			return nil, err
		}
		q = q.Where(docstore.FieldStatus, status)
	}
	return s.store.QueryItems(ctx, q)
}

func (s itemStore) get(ctx context.Context, uid, siteID, id string) (docstore.Document, error) {
	if _, err := s.site(ctx, uid, siteID); err != nil {
		return docstore.Document{}, err
	}
	return s.store.GetItem(ctx, uid, siteID, id)
}

// checkSlug fails when another item of the site already uses slug.
func (s itemStore) checkSlug(ctx context.Context, uid, siteID, slug, selfID string) error {
	if err := util.ValidateSlug(slug, util.MaxItemSlugLength); err != nil {
		return invalid("slug", "%s", err.Error())
	}
	docs, err := s.store.QueryItems(ctx, docstore.Query{UID: uid, SiteID: siteID}.Where(docstore.FieldSlug, slug))
	if err != nil {
		return fmt.Errorf("checking slug: %w", err)
	}
	for _, d := range docs {
		if d.ID != selfID {
			return fmt.Errorf("%w: %s", ErrSlugTaken, slug)
		}
	}
	return nil
}

// save writes doc and refreshes the site's content count.
func (s itemStore) save(ctx context.Context, uid, siteID string, doc docstore.Document) error {
	if err := s.store.SetItem(ctx, uid, siteID, doc); err != nil {
		return err
	}
	s.refreshCount(ctx, uid, siteID)
	return nil
}

func (s itemStore) delete(ctx context.Context, uid, siteID, id string) error {
	if _, err := s.site(ctx, uid, siteID); err != nil {
		return err
	}
	if err := s.store.DeleteItem(ctx, uid, siteID, id); err != nil {
		return err
	}
	s.refreshCount(ctx, uid, siteID)
	s.opts.Logger.Info("item deleted", logAttrs(uid, siteID, id)...)
	return nil
}

// refreshCount keeps the denormalized count current. The scheduled recount
// repairs it if this fails.
func (s itemStore) refreshCount(ctx context.Context, uid, siteID string) {
	if _, err := s.sites.RefreshCount(ctx, uid, siteID); err != nil {
		s.opts.Logger.Warn("failed to update site content count", "uid", uid, "site", siteID, "error", err)
	}
}

func validateStatus(status string) error {
	if status != model.StatusDraft && status != model.StatusPublished {
		return invalid("status", "must be %q or %q", model.StatusDraft, model.StatusPublished)
	}
	return nil
}

// timeField returns a stored timestamp, or the zero time.
func timeField(data map[string]any, key string) (time.Time, bool) {
	switch t := data[key].(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t != nil && !t.IsZero() {
			return *t, true
		}
	}
	return time.Time{}, false
}

// optionalTime stores a missing timestamp as nil.
func optionalTime(t time.Time, ok bool) any {
	if !ok {
		return nil
	}
	return t
}
