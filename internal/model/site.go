// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// SiteKind distinguishes blog sites from product sites.
type SiteKind string

// Site kinds
const (
	SiteKindBlog    SiteKind = "blog"
	SiteKindProduct SiteKind = "product"
)

// Valid reports whether k is a known site kind.
func (k SiteKind) Valid() bool {
	return k == SiteKindBlog || k == SiteKindProduct
}

// IDPrefix returns the prefix used when minting site identifiers.
func (k SiteKind) IDPrefix() string {
	if k == SiteKindProduct {
		return "product"
	}
	return "blog"
}

// Content statuses shared by posts and products.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// MaxSitesPerKind is the number of sites of one kind an account may own.
const MaxSitesPerKind = 3

// Site is a blog or product site owned by an account.
type Site struct {
	ID              string    `json:"id" firestore:"-"`
	UID             string    `json:"uid" firestore:"-"`
	Kind            SiteKind  `json:"type" firestore:"type"`
	Name            string    `json:"name" firestore:"name"`
	Slug            string    `json:"slug" firestore:"slug"`
	Description     string    `json:"description" firestore:"description"`
	DefaultCurrency string    `json:"defaultCurrency,omitempty" firestore:"defaultCurrency"`
	TaxRate         float64   `json:"taxRate,omitempty" firestore:"taxRate"`
	TaxIncluded     bool      `json:"taxIncluded,omitempty" firestore:"taxIncluded"`
	ContentCount    int       `json:"contentCount" firestore:"contentCount"`
	CreatedAt       time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" firestore:"updatedAt"`
}
