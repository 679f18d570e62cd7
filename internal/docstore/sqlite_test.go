// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package docstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erolledph/new-cms/internal/docstore"
	"github.com/erolledph/new-cms/internal/model"
	"github.com/erolledph/new-cms/internal/testutil"
)

func day(d int) time.Time {
	return time.Date(2025, 1, d, 12, 0, 0, 0, time.UTC)
}

func seedPosts(t *testing.T, s docstore.Store) {
	t.Helper()
	ctx := context.Background()
	posts := []docstore.Document{
		{ID: "p1", Data: map[string]any{"title": "One", "slug": "one", "status": "published", "publishDate": day(1), "createdAt": day(1)}},
		{ID: "p2", Data: map[string]any{"title": "Two", "slug": "two", "status": "published", "publishDate": day(3), "createdAt": day(2)}},
		{ID: "p3", Data: map[string]any{"title": "Three", "slug": "three", "status": "draft", "publishDate": day(5), "createdAt": day(3)}},
		{ID: "p4", Data: map[string]any{"title": "Four", "slug": "four", "status": "published", "createdAt": day(4)}},
	}
	for _, p := range posts {
		require.NoError(t, s.SetItem(ctx, "u1", "blog_1", p))
	}
}

func TestQueryItemsPublishedOrdered(t *testing.T) {
	s := testutil.TestStore(t)
	seedPosts(t, s)

	q := docstore.Query{UID: "u1", SiteID: "blog_1", OrderBy: docstore.FieldPublishDate, Desc: true}.
		Where(docstore.FieldStatus, model.StatusPublished)

	docs, err := s.QueryItems(context.Background(), q)
	require.NoError(t, err)

	// p3 is a draft and p4 has no publish date, so neither is returned.
	require.Len(t, docs, 2)
	assert.Equal(t, "p2", docs[0].ID)
	assert.Equal(t, "p1", docs[1].ID)
	assert.Equal(t, day(3), docs[0].Data["publishDate"])
	assert.Equal(t, "Two", docs[0].Data["title"])
}

func TestQueryItemsBySlug(t *testing.T) {
	s := testutil.TestStore(t)
	seedPosts(t, s)
	ctx := context.Background()

	base := docstore.Query{UID: "u1", SiteID: "blog_1", Limit: 1}

	docs, err := s.QueryItems(ctx, base.Where("slug", "two").Where("status", "published"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "p2", docs[0].ID)

	docs, err = s.QueryItems(ctx, base.Where("slug", "three").Where("status", "published"))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestQueryItemsIsolatedBySite(t *testing.T) {
	s := testutil.TestStore(t)
	seedPosts(t, s)

	docs, err := s.QueryItems(context.Background(), docstore.Query{UID: "u1", SiteID: "blog_2"})
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)

	docs, err = s.QueryItems(context.Background(), docstore.Query{UID: "u2", SiteID: "blog_1"})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestQueryItemsRejectsUnknownFields(t *testing.T) {
	s := testutil.TestStore(t)

	_, err := s.QueryItems(context.Background(), docstore.Query{UID: "u1", SiteID: "b", OrderBy: "title"})
	assert.ErrorIs(t, err, docstore.ErrInvalidQuery)

	_, err = s.QueryItems(context.Background(), docstore.Query{UID: "u1", SiteID: "b"}.Where("author", "x"))
	assert.ErrorIs(t, err, docstore.ErrInvalidQuery)
}

func TestItemLifecycle(t *testing.T) {
	s := testutil.TestStore(t)
	seedPosts(t, s)
	ctx := context.Background()

	n, err := s.CountItems(ctx, "u1", "blog_1")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	doc, err := s.GetItem(ctx, "u1", "blog_1", "p1")
	require.NoError(t, err)
	doc.Data["title"] = "One (edited)"
	require.NoError(t, s.SetItem(ctx, "u1", "blog_1", doc))

	doc, err = s.GetItem(ctx, "u1", "blog_1", "p1")
	require.NoError(t, err)
	assert.Equal(t, "One (edited)", doc.Data["title"])

	require.NoError(t, s.DeleteItem(ctx, "u1", "blog_1", "p1"))
	_, err = s.GetItem(ctx, "u1", "blog_1", "p1")
	assert.True(t, errors.Is(err, docstore.ErrNotFound))
	assert.ErrorIs(t, s.DeleteItem(ctx, "u1", "blog_1", "p1"), docstore.ErrNotFound)

	removed, err := s.DeleteItems(ctx, "u1", "blog_1")
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
}

func TestSitesAndAccounts(t *testing.T) {
	s := testutil.TestStore(t)
	ctx := context.Background()

	_, err := s.GetAccount(ctx, "u1")
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	acct := &model.Account{UID: "u1", Email: "a@example.com", Settings: model.Settings{Currency: "EUR", Timezone: "Europe/Berlin", Locale: "de-DE"}, CreatedAt: day(1)}
	require.NoError(t, s.SetAccount(ctx, acct))

	got, err := s.GetAccount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "EUR", got.Settings.Currency)
	assert.Equal(t, day(1), got.CreatedAt)

	blog := &model.Site{ID: "blog_1", UID: "u1", Kind: model.SiteKindBlog, Name: "Blog", Slug: "blog", CreatedAt: day(1), UpdatedAt: day(1)}
	shop := &model.Site{ID: "product_1", UID: "u1", Kind: model.SiteKindProduct, Name: "Shop", Slug: "shop", DefaultCurrency: "EUR", TaxRate: 19, TaxIncluded: true, CreatedAt: day(2), UpdatedAt: day(2)}
	require.NoError(t, s.SetSite(ctx, blog))
	require.NoError(t, s.SetSite(ctx, shop))

	all, err := s.ListSites(ctx, "u1", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "blog_1", all[0].ID)

	products, err := s.ListSites(ctx, "u1", model.SiteKindProduct)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.True(t, products[0].TaxIncluded)
	assert.Equal(t, 19.0, products[0].TaxRate)

	require.NoError(t, s.DeleteSite(ctx, "u1", "blog_1"))
	_, err = s.GetSite(ctx, "u1", "blog_1")
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	accounts, err := s.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "u1", accounts[0].UID)
}

func TestEventsAndFiles(t *testing.T) {
	s := testutil.TestStore(t)
	ctx := context.Background()

	depth := 42.5
	events := []*model.AnalyticsEvent{
		{ID: "e2", UID: "u1", SiteID: "blog_1", Type: "click", Timestamp: day(2)},
		{ID: "e1", UID: "u1", SiteID: "blog_1", Type: "view", Timestamp: day(1), Metadata: model.EventMetadata{ScrollDepth: &depth, Tags: []string{"go"}}},
		{ID: "e3", UID: "u1", SiteID: "blog_2", Type: "view", Timestamp: day(3)},
	}
	for _, e := range events {
		require.NoError(t, s.AddEvent(ctx, e))
	}

	got, err := s.ListEvents(ctx, "u1", "blog_1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "e1", got[0].ID)
	require.NotNil(t, got[0].Metadata.ScrollDepth)
	assert.Equal(t, 42.5, *got[0].Metadata.ScrollDepth)

	got, err = s.ListEvents(ctx, "u1", "")
	require.NoError(t, err)
	assert.Len(t, got, 3)

	f := &model.File{ID: "f1", UID: "u1", Name: "a.png", StorageKey: "u1/f1.png", URL: "/uploads/u1/f1.png", MimeType: "image/png", Size: 10, Width: 2, Height: 3, CompressionRatio: 1, UploadedAt: day(1)}
	require.NoError(t, s.SetFile(ctx, f))

	files, err := s.ListFiles(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, 2, files[0].Width)

	require.NoError(t, s.DeleteFile(ctx, "u1", "f1"))
	_, err = s.GetFile(ctx, "u1", "f1")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestEventLog(t *testing.T) {
	s := testutil.TestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteEventLog(ctx, model.Event{Level: "warning", Category: "system", Message: "first", Metadata: "{}", CreatedAt: day(1)}))
	require.NoError(t, s.WriteEventLog(ctx, model.Event{Level: "error", Category: "system", Message: "second", Metadata: "{}", CreatedAt: day(2)}))

	entries, err := s.ListEventLog(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Message)
}

func TestSchemaVersion(t *testing.T) {
	v, err := testutil.TestStore(t).SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}
