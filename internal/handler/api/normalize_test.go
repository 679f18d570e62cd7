// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/erolledph/new-cms/internal/docstore"
)

func newGolden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestNormalizePostDefaults(t *testing.T) {
	post := NormalizePost(docstore.Document{ID: "p1", Data: map[string]any{"title": "Hello"}})

	data, err := json.Marshal(post)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	newGolden(t).Assert(t, "normalize_post_defaults", data)
}

func TestNormalizeProduct(t *testing.T) {
	product := NormalizeProduct(docstore.Document{ID: "prod1", Data: map[string]any{
		"name":          "Mug",
		"slug":          "mug",
		"price":         20,
		"originalPrice": 25.0,
		"percentOff":    json.Number("20"),
		"savings":       5,
		"imageUrls":     []any{"a.png", 3, "b.png"},
		"createdAt":     time.Date(2025, 1, 2, 3, 4, 5, 6e6, time.UTC),
		"updatedAt":     "2025-01-03T00:00:00+02:00",
	}})

	data, err := json.Marshal(product)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	newGolden(t).Assert(t, "normalize_product", data)
}

func TestNormalizeTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"missing", nil, ""},
		{"zero time", time.Time{}, ""},
		{"garbage string", "yesterday", ""},
		{"millis", int64(1736935200000), "2025-01-15T10:00:00.000Z"},
		{"float millis", float64(1736935200000), "2025-01-15T10:00:00.000Z"},
		{"offset string", "2025-01-15T12:00:00+02:00", "2025-01-15T10:00:00.000Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fields{"at": tt.value}.timestamp("at")
			if tt.want == "" {
				if got != nil {
					t.Errorf("timestamp = %q, want nil", *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Errorf("timestamp = %v, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeProductKeepsExplicitPrices(t *testing.T) {
	p := NormalizeProduct(docstore.Document{ID: "x", Data: map[string]any{
		"price":           100.0,
		"originalPrice":   120.0,
		"discountedPrice": 90.0,
		"currency":        "EUR",
	}})

	if p.OriginalPrice != 120 {
		t.Errorf("OriginalPrice = %v, want 120", p.OriginalPrice)
	}
	if p.DiscountedPrice != 90 {
		t.Errorf("DiscountedPrice = %v, want 90", p.DiscountedPrice)
	}
	if p.Currency != "EUR" {
		t.Errorf("Currency = %q, want %q", p.Currency, "EUR")
	}
}
