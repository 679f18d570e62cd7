// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/erolledph/new-cms/internal/docstore"
	"github.com/erolledph/new-cms/internal/model"
	"github.com/erolledph/new-cms/internal/util"
)

// Site field limits.
const (
	MaxSiteNameLength        = 100
	MaxSiteDescriptionLength = 500
)

// SiteInput holds the editable fields of a site.
type SiteInput struct {
	Kind        model.SiteKind
	Name        string
	Slug        string
	Description string
	// Product sites only.
	DefaultCurrency string
	TaxRate         float64
	TaxIncluded     bool
}

// SiteService manages blog and product sites.
type SiteService struct {
	store docstore.Store
	opts  Options
}

// NewSiteService creates a site service.
func NewSiteService(store docstore.Store, opts Options) *SiteService {
	return &SiteService{store: store, opts: opts.withDefaults()}
}

// List returns an account's sites of the given kind, or all kinds when
// kind is empty.
func (s *SiteService) List(ctx context.Context, uid string, kind model.SiteKind) ([]model.Site, error) {
	return s.store.ListSites(ctx, uid, kind)
}

// Get returns a site and checks its kind when kind is not empty.
func (s *SiteService) Get(ctx context.Context, uid, siteID string, kind model.SiteKind) (*model.Site, error) {
	site, err := s.store.GetSite(ctx, uid, siteID)
	if err != nil {
		return nil, err
	}
	if kind != "" && site.Kind != kind {
		return nil, fmt.Errorf("site %s is a %s site: %w", siteID, site.Kind, ErrWrongKind)
	}
	return site, nil
}

// Create validates in and stores a new site.
func (s *SiteService) Create(ctx context.Context, uid string, in SiteInput) (*model.Site, error) {
	if !in.Kind.Valid() {
		return nil, invalid("type", "must be %q or %q", model.SiteKindBlog, model.SiteKindProduct)
	}
	if strings.TrimSpace(uid) == "" {
		return nil, invalid("uid", "is required")
	}
	account, err := s.ensureAccount(ctx, uid)
	if err != nil {
		return nil, err
	}
	in = normalizeSiteInput(in)
	if in.Kind == model.SiteKindProduct && in.DefaultCurrency == "" {
		in.DefaultCurrency = account.Settings.Currency
	}
	if err := validateSiteInput(in); err != nil {
		return nil, err
	}

	existing, err := s.store.ListSites(ctx, uid, in.Kind)
	if err != nil {
		return nil, fmt.Errorf("listing sites: %w", err)
	}
	if len(existing) >= model.MaxSitesPerKind {
		return nil, fmt.Errorf("%w: at most %d %s sites per account", ErrSiteLimit, model.MaxSitesPerKind, in.Kind)
	}
	if slugInUse(existing, in.Slug, "") {
		return nil, fmt.Errorf("%w: %s", ErrSlugTaken, in.Slug)
	}

	now := s.opts.Now().UTC()
	site := &model.Site{
		ID:          model.NewID(in.Kind.IDPrefix(), now),
		UID:         uid,
		Kind:        in.Kind,
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	applyProductSettings(site, in)

	if err := s.store.SetSite(ctx, site); err != nil {
		return nil, err
	}
	s.opts.Logger.Info("site created", "uid", uid, "site", site.ID, "type", site.Kind)
	return site, nil
}

// Update replaces the editable fields of an existing site. The kind
// cannot change.
func (s *SiteService) Update(ctx context.Context, uid, siteID string, in SiteInput) (*model.Site, error) {
	site, err := s.store.GetSite(ctx, uid, siteID)
	if err != nil {
		return nil, err
	}
	in.Kind = site.Kind
	in = normalizeSiteInput(in)
	if in.Kind == model.SiteKindProduct && in.DefaultCurrency == "" {
		in.DefaultCurrency = site.DefaultCurrency
	}
	if err := validateSiteInput(in); err != nil {
		return nil, err
	}

	existing, err := s.store.ListSites(ctx, uid, site.Kind)
	if err != nil {
		return nil, fmt.Errorf("listing sites: %w", err)
	}
	if slugInUse(existing, in.Slug, site.ID) {
		return nil, fmt.Errorf("%w: %s", ErrSlugTaken, in.Slug)
	}

	site.Name = in.Name
	site.Slug = in.Slug
	site.Description = in.Description
	applyProductSettings(site, in)
	site.UpdatedAt = s.opts.Now().UTC()

	if err := s.store.SetSite(ctx, site); err != nil {
		return nil, err
	}
	return site, nil
}

// Delete removes a site's items and then the site. Item removal is best
// effort: a failure is logged and the site is still deleted.
func (s *SiteService) Delete(ctx context.Context, uid, siteID string) (int, error) {
	if _, err := s.store.GetSite(ctx, uid, siteID); err != nil {
		return 0, err
	}

	removed, err := s.store.DeleteItems(ctx, uid, siteID)
	if err != nil {
		s.opts.Logger.Warn("failed to delete site items", "uid", uid, "site", siteID, "error", err)
	}
	if err := s.store.DeleteSite(ctx, uid, siteID); err != nil {
		return removed, err
	}
	s.opts.Logger.Info("site deleted", "uid", uid, "site", siteID, "items", removed)
	return removed, nil
}

// RefreshCount stores the current number of items of a site.
func (s *SiteService) RefreshCount(ctx context.Context, uid, siteID string) (int, error) {
	site, err := s.store.GetSite(ctx, uid, siteID)
	if err != nil {
		return 0, err
	}
	n, err := s.store.CountItems(ctx, uid, siteID)
	if err != nil {
		return 0, err
	}
	if site.ContentCount == n {
		return n, nil
	}
	site.ContentCount = n
	if err := s.store.SetSite(ctx, site); err != nil {
		return 0, err
	}
	return n, nil
}

// ensureAccount returns the account, creating it with default settings on
// first use.
func (s *SiteService) ensureAccount(ctx context.Context, uid string) (*model.Account, error) {
	account, err := s.store.GetAccount(ctx, uid)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("loading account: %w", err)
	}
	account = &model.Account{UID: uid, Settings: model.DefaultSettings(), CreatedAt: s.opts.Now().UTC()}
	if err := s.store.SetAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}
	return account, nil
}

func normalizeSiteInput(in SiteInput) SiteInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Slug == "" {
		in.Slug = util.Slugify(in.Name)
	}
	in.DefaultCurrency = strings.ToUpper(strings.TrimSpace(in.DefaultCurrency))
	return in
}

func validateSiteInput(in SiteInput) error {
	if in.Name == "" {
		return invalid("name", "is required")
	}
	if runeLen(in.Name) > MaxSiteNameLength {
		return invalid("name", "must be at most %d characters", MaxSiteNameLength)
	}
	if runeLen(in.Description) > MaxSiteDescriptionLength {
		return invalid("description", "must be at most %d characters", MaxSiteDescriptionLength)
	}
	if err := util.ValidateSlug(in.Slug, util.MaxSiteSlugLength); err != nil {
		return invalid("slug", "%s", err.Error())
	}
	if in.Kind != model.SiteKindProduct {
		return nil
	}
	if !isCurrencyCode(in.DefaultCurrency) {
		return invalid("defaultCurrency", "must be a 3-letter currency code")
	}
	if in.TaxRate < 0 || in.TaxRate > 100 {
		return invalid("taxRate", "must be between 0 and 100")
	}
	return nil
}

func applyProductSettings(site *model.Site, in SiteInput) {
	if site.Kind != model.SiteKindProduct {
		return
	}
	site.DefaultCurrency = in.DefaultCurrency
	site.TaxRate = in.TaxRate
	site.TaxIncluded = in.TaxIncluded
}

// slugInUse compares slugs case-insensitively, ignoring the site with id skip.
func slugInUse(sites []model.Site, slug, skip string) bool {
	for _, s := range sites {
		if s.ID != skip && strings.EqualFold(s.Slug, slug) {
			return true
		}
	}
	return false
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// logAttrs is shared by the content services.
func logAttrs(uid, siteID, id string) []any {
	return []any{slog.String("uid", uid), slog.String("site", siteID), slog.String("id", id)}
}
