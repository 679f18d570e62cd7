// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"strings"

	"github.com/erolledph/new-cms/internal/docstore"
	"github.com/erolledph/new-cms/internal/model"
	"github.com/erolledph/new-cms/internal/util"
)

// Product field limits.
const (
	MaxProductNameLength = 200
	MaxProductImages     = 10
)

// ProductInput holds the editable fields of a product.
type ProductInput struct {
	Name          string
	Slug          string
	Description   string
	OriginalPrice float64
	PercentOff    float64
	Currency      string
	ImageURL      string
	ImageURLs     []string
	ProductURL    string
	Category      string
	Tags          []string
	Status        string
}

// Pricing is the stored price breakdown of a product.
type Pricing struct {
	Price           float64
	OriginalPrice   float64
	PercentOff      float64
	DiscountedPrice float64
	Savings         float64
}

// ComputePricing derives the sale price from the list price and discount.
func ComputePricing(original, percentOff float64) Pricing {
	savings := original * percentOff / 100
	final := original - savings
	return Pricing{
		Price:           final,
		OriginalPrice:   original,
		PercentOff:      percentOff,
		DiscountedPrice: final,
		Savings:         savings,
	}
}

// ProductService manages the products of product sites.
type ProductService struct {
	items itemStore
}

// NewProductService creates a product service.
func NewProductService(store docstore.Store, opts Options) *ProductService {
	return &ProductService{items: newItemStore(store, opts, model.SiteKindProduct)}
}

// List returns a site's products, newest first. An empty status lists all.
func (s *ProductService) List(ctx context.Context, uid, siteID, status string) ([]docstore.Document, error) {
	return s.items.list(ctx, uid, siteID, status)
}

// Get returns one product.
func (s *ProductService) Get(ctx context.Context, uid, siteID, productID string) (docstore.Document, error) {
	return s.items.get(ctx, uid, siteID, productID)
}

// Create validates in and stores a new product. The currency defaults to
// the site's default currency.
func (s *ProductService) Create(ctx context.Context, uid, siteID string, in ProductInput) (docstore.Document, error) {
	site, err := s.items.site(ctx, uid, siteID)
	if err != nil {
		return docstore.Document{}, err
	}
	in = normalizeProductInput(in, site.DefaultCurrency)
	if err := validateProductInput(in); err != nil {
		return docstore.Document{}, err
	}
	if err := s.items.checkSlug(ctx, uid, siteID, in.Slug, ""); err != nil {
		return docstore.Document{}, err
	}

	now := s.items.opts.Now().UTC()
	doc := docstore.Document{ID: model.NewID("item", now), Data: productData(in)}
	doc.Data[docstore.FieldCreatedAt] = now
	doc.Data[docstore.FieldUpdatedAt] = now

	if err := s.items.save(ctx, uid, siteID, doc); err != nil {
		return docstore.Document{}, err
	}
	s.items.opts.Logger.Info("product created", logAttrs(uid, siteID, doc.ID)...)
	return doc, nil
}

// Update replaces the editable fields of a product and recomputes pricing.
func (s *ProductService) Update(ctx context.Context, uid, siteID, productID string, in ProductInput) (docstore.Document, error) {
	site, err := s.items.site(ctx, uid, siteID)
	if err != nil {
		return docstore.Document{}, err
	}
	existing, err := s.items.store.GetItem(ctx, uid, siteID, productID)
	if err != nil {
		return docstore.Document{}, err
	}
	in = normalizeProductInput(in, site.DefaultCurrency)
	if err := validateProductInput(in); err != nil {
		return docstore.Document{}, err
	}
	if err := s.items.checkSlug(ctx, uid, siteID, in.Slug, productID); err != nil {
		return docstore.Document{}, err
	}

	doc := docstore.Document{ID: productID, Data: productData(in)}
	created, ok := timeField(existing.Data, docstore.FieldCreatedAt)
	doc.Data[docstore.FieldCreatedAt] = optionalTime(created, ok)
	doc.Data[docstore.FieldUpdatedAt] = s.items.opts.Now().UTC()

	if err := s.items.save(ctx, uid, siteID, doc); err != nil {
		return docstore.Document{}, err
	}
	return doc, nil
}

// Delete removes a product.
func (s *ProductService) Delete(ctx context.Context, uid, siteID, productID string) error {
	return s.items.delete(ctx, uid, siteID, productID)
}

func productData(in ProductInput) map[string]any {
	p := ComputePricing(in.OriginalPrice, in.PercentOff)
	return map[string]any{
		"name":            in.Name,
		"slug":            in.Slug,
		"description":     in.Description,
		"price":           p.Price,
		"originalPrice":   p.OriginalPrice,
		"percentOff":      p.PercentOff,
		"discountedPrice": p.DiscountedPrice,
		"savings":         p.Savings,
		"currency":        in.Currency,
		"imageUrl":        in.ImageURL,
		"imageUrls":       in.ImageURLs,
		"productUrl":      in.ProductURL,
		"category":        in.Category,
		"tags":            in.Tags,
		"status":          in.Status,
	}
}

func normalizeProductInput(in ProductInput, siteCurrency string) ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Slug == "" {
		in.Slug = util.Slugify(in.Name)
	}
	in.Description = strings.TrimSpace(in.Description)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = siteCurrency
	}
	if in.Currency == "" {
		in.Currency = model.DefaultSettings().Currency
	}
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.ImageURLs = splitList(in.ImageURLs)
	in.ProductURL = strings.TrimSpace(in.ProductURL)
	in.Category = strings.TrimSpace(in.Category)
	in.Tags = splitList(in.Tags)
	if in.Status == "" {
		in.Status = model.StatusDraft
	}
	return in
}

func validateProductInput(in ProductInput) error {
	if in.Name == "" {
		return invalid("name", "is required")
	}
	if runeLen(in.Name) > MaxProductNameLength {
		return invalid("name", "must be at most %d characters", MaxProductNameLength)
	}
	if in.OriginalPrice < 0 {
		return invalid("originalPrice", "must not be negative")
	}
	if in.PercentOff < 0 || in.PercentOff > 100 {
		return invalid("percentOff", "must be between 0 and 100")
	}
	if !isCurrencyCode(in.Currency) {
		return invalid("currency", "must be a 3-letter currency code")
	}
	if len(in.ImageURLs) > MaxProductImages {
		return invalid("imageUrls", "at most %d images", MaxProductImages)
	}
	return validateStatus(in.Status)
}
