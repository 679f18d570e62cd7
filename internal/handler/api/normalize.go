// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"time"

	"github.com/erolledph/new-cms/internal/docstore"
	"github.com/erolledph/new-cms/internal/model"
)

// DefaultCurrency is used for products that do not declare one.
const DefaultCurrency = "USD"

// PublicPost is the stable public shape of a blog post. Every field is
// always present; timestamps are ISO-8601 strings or null.
type PublicPost struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Slug             string   `json:"slug"`
	Content          string   `json:"content"`
	FeaturedImageURL string   `json:"featuredImageUrl"`
	MetaDescription  string   `json:"metaDescription"`
	SEOTitle         string   `json:"seoTitle"`
	Keywords         []string `json:"keywords"`
	Author           string   `json:"author"`
	Categories       []string `json:"categories"`
	Tags             []string `json:"tags"`
	ContentURL       string   `json:"contentUrl"`
	PublishDate      *string  `json:"publishDate"`
	CreatedAt        *string  `json:"createdAt"`
	UpdatedAt        *string  `json:"updatedAt"`
}

// PublicProduct is the stable public shape of a product.
type PublicProduct struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Slug            string   `json:"slug"`
	Description     string   `json:"description"`
	Price           float64  `json:"price"`
	OriginalPrice   float64  `json:"originalPrice"`
	PercentOff      float64  `json:"percentOff"`
	DiscountedPrice float64  `json:"discountedPrice"`
	Savings         float64  `json:"savings"`
	Currency        string   `json:"currency"`
	ImageURL        string   `json:"imageUrl"`
	ImageURLs       []string `json:"imageUrls"`
	ProductURL      string   `json:"productUrl"`
	Category        string   `json:"category"`
	Tags            []string `json:"tags"`
	CreatedAt       *string  `json:"createdAt"`
	UpdatedAt       *string  `json:"updatedAt"`
}

// NormalizePost maps a stored post onto PublicPost.
func NormalizePost(doc docstore.Document) PublicPost {
	f := fields(doc.Data)
	title := f.str("title")

	seoTitle := f.str("seoTitle")
	if seoTitle == "" {
		seoTitle = title
	}

	return PublicPost{
		ID:               doc.ID,
		Title:            title,
		Slug:             f.str("slug"),
		Content:          f.str("content"),
		FeaturedImageURL: f.str("featuredImageUrl"),
		MetaDescription:  f.str("metaDescription"),
		SEOTitle:         seoTitle,
		Keywords:         f.strs("keywords"),
		Author:           f.str("author"),
		Categories:       f.strs("categories"),
		Tags:             f.strs("tags"),
		ContentURL:       f.str("contentUrl"),
		PublishDate:      f.timestamp("publishDate"),
		CreatedAt:        f.timestamp("createdAt"),
		UpdatedAt:        f.timestamp("updatedAt"),
	}
}

// NormalizeProduct maps a stored product onto PublicProduct. A zero
// originalPrice or discountedPrice falls back to price.
func NormalizeProduct(doc docstore.Document) PublicProduct {
	f := fields(doc.Data)
	price := f.num("price")

	originalPrice := f.num("originalPrice")
	if originalPrice == 0 {
		originalPrice = price
	}
	discountedPrice := f.num("discountedPrice")
	if discountedPrice == 0 {
		discountedPrice = price
	}
	currency := f.str("currency")
	if currency == "" {
		currency = DefaultCurrency
	}

	return PublicProduct{
		ID:              doc.ID,
		Name:            f.str("name"),
		Slug:            f.str("slug"),
		Description:     f.str("description"),
		Price:           price,
		OriginalPrice:   originalPrice,
		PercentOff:      f.num("percentOff"),
		DiscountedPrice: discountedPrice,
		Savings:         f.num("savings"),
		Currency:        currency,
		ImageURL:        f.str("imageUrl"),
		ImageURLs:       f.strs("imageUrls"),
		ProductURL:      f.str("productUrl"),
		Category:        f.str("category"),
		Tags:            f.strs("tags"),
		CreatedAt:       f.timestamp("createdAt"),
		UpdatedAt:       f.timestamp("updatedAt"),
	}
}

// fields wraps raw document data with typed, defaulting getters.
type fields map[string]any

func (f fields) str(key string) string {
	s, _ := f[key].(string)
	return s
}

func (f fields) num(key string) float64 {
	switch v := f[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// strs returns the string elements of a list; the result is never nil.
func (f fields) strs(key string) []string {
	out := []string{}
	switch v := f[key].(type) {
	case []string:
		out = append(out, v...)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

func (f fields) timestamp(key string) *string {
	var t time.Time
	switch v := f[key].(type) {
	case time.Time:
		t = v
	case *time.Time:
		if v != nil {
			t = *v
		}
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil
		}
		t = parsed
	case int64:
		t = time.UnixMilli(v)
	case float64:
		t = time.UnixMilli(int64(v))
	default:
		return nil
	}
	if t.IsZero() {
		return nil
	}
	s := model.FormatISO(t)
	return &s
}
