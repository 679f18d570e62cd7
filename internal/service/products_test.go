// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erolledph/new-cms/internal/model"
	"github.com/erolledph/new-cms/internal/testutil"
)

func TestComputePricing(t *testing.T) {
	tests := []struct {
		name              string
		original, percent float64
		want              Pricing
	}{
		{"no discount", 50, 0, Pricing{Price: 50, OriginalPrice: 50, DiscountedPrice: 50}},
		{"twenty percent", 100, 20, Pricing{Price: 80, OriginalPrice: 100, PercentOff: 20, DiscountedPrice: 80, Savings: 20}},
		{"free", 0, 0, Pricing{}},
		{"full discount", 40, 100, Pricing{OriginalPrice: 40, PercentOff: 100, Savings: 40}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePricing(tt.original, tt.percent)
			assert.InDelta(t, tt.want.Price, got.Price, 1e-9)
			assert.InDelta(t, tt.want.OriginalPrice, got.OriginalPrice, 1e-9)
			assert.InDelta(t, tt.want.PercentOff, got.PercentOff, 1e-9)
			assert.InDelta(t, tt.want.DiscountedPrice, got.DiscountedPrice, 1e-9)
			assert.InDelta(t, tt.want.Savings, got.Savings, 1e-9)
			assert.Equal(t, got.Price, got.DiscountedPrice)
		})
	}
}

func TestProductCreate(t *testing.T) {
	ctx := context.Background()
	store := testutil.TestStore(t)
	shop, err := NewSiteService(store, testOptions()).Create(ctx, testUID, SiteInput{
		Kind: model.SiteKindProduct, Name: "Shop", DefaultCurrency: "EUR",
	})
	require.NoError(t, err)
	svc := NewProductService(store, testOptions())

	doc, err := svc.Create(ctx, testUID, shop.ID, ProductInput{
		Name:          "Walnut Desk",
		OriginalPrice: 250,
		PercentOff:    10,
		ImageURLs:     []string{"https://img.example.com/a.jpg", " ", "https://img.example.com/b.jpg"},
		Tags:          []string{"office"},
		Status:        model.StatusPublished,
	})
	require.NoError(t, err)

	assert.Regexp(t, `^item_\d+_[0-9a-z]{9}$`, doc.ID)
	assert.Equal(t, "walnut-desk", doc.Data["slug"])
	assert.Equal(t, "EUR", doc.Data["currency"], "currency defaults to the site's")
	assert.InDelta(t, 225.0, doc.Data["price"], 1e-9)
	assert.InDelta(t, 225.0, doc.Data["discountedPrice"], 1e-9)
	assert.InDelta(t, 25.0, doc.Data["savings"], 1e-9)
	assert.Equal(t, []string{"https://img.example.com/a.jpg", "https://img.example.com/b.jpg"}, doc.Data["imageUrls"])

	stored, err := store.GetItem(ctx, testUID, shop.ID, doc.ID)
	require.NoError(t, err)
	assert.InDelta(t, 250.0, stored.Data["originalPrice"], 1e-9)

	site, err := store.GetSite(ctx, testUID, shop.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, site.ContentCount)
}

func TestProductUpdateRecomputesPricing(t *testing.T) {
	ctx := context.Background()
	store := testutil.TestStore(t)
	shop := newTestSite(t, store, model.SiteKindProduct, "Shop")
	svc := NewProductService(store, testOptions())

	doc, err := svc.Create(ctx, testUID, shop.ID, ProductInput{Name: "Lamp", OriginalPrice: 80, Currency: "usd"})
	require.NoError(t, err)
	assert.Equal(t, "USD", doc.Data["currency"])

	updated, err := svc.Update(ctx, testUID, shop.ID, doc.ID, ProductInput{Name: "Lamp", Slug: "lamp", OriginalPrice: 80, PercentOff: 25})
	require.NoError(t, err)
	assert.InDelta(t, 60.0, updated.Data["price"], 1e-9)
	assert.InDelta(t, 20.0, updated.Data["savings"], 1e-9)

	list, err := svc.List(ctx, testUID, shop.ID, "")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, testUID, shop.ID, doc.ID))
	_, err = svc.Get(ctx, testUID, shop.ID, doc.ID)
	require.Error(t, err)
}

func TestProductValidation(t *testing.T) {
	ctx := context.Background()
	store := testutil.TestStore(t)
	shop := newTestSite(t, store, model.SiteKindProduct, "Shop")
	blog := newTestSite(t, store, model.SiteKindBlog, "Blog")
	svc := NewProductService(store, testOptions())

	tests := []struct {
		name  string
		in    ProductInput
		field string
	}{
		{"missing name", ProductInput{}, "name"},
		{"negative price", ProductInput{Name: "Desk", OriginalPrice: -1}, "originalPrice"},
		{"discount over 100", ProductInput{Name: "Desk", PercentOff: 120}, "percentOff"},
		{"negative discount", ProductInput{Name: "Desk", PercentOff: -5}, "percentOff"},
		{"currency", ProductInput{Name: "Desk", Currency: "dollars"}, "currency"},
		{"status", ProductInput{Name: "Desk", Status: "sold"}, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, testUID, shop.ID, tt.in)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	_, err := svc.Create(ctx, testUID, blog.ID, ProductInput{Name: "Desk"})
	require.ErrorIs(t, err, ErrWrongKind)

	_, err = svc.Create(ctx, testUID, shop.ID, ProductInput{Name: "Desk"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, testUID, shop.ID, ProductInput{Name: "desk"})
	require.ErrorIs(t, err, ErrSlugTaken)
}
