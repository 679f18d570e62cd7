// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"

	"github.com/erolledph/new-cms/internal/docstore"
)

// RecountResult reports a reconciliation pass.
type RecountResult struct {
	Accounts int `json:"accounts"`
	Sites    int `json:"sites"`
	Updated  int `json:"updated"`
	Failed   int `json:"failed"`
}

// Recounter recomputes the denormalized content count of every site.
type Recounter struct {
	store docstore.Store
	opts  Options
}

// NewRecounter creates a recounter.
func NewRecounter(store docstore.Store, opts Options) *Recounter {
	return &Recounter{store: store, opts: opts.withDefaults()}
}

// Run walks all accounts and sites. A failing site is logged and counted;
// the pass continues with the next one.
func (r *Recounter) Run(ctx context.Context) (RecountResult, error) {
	var res RecountResult

	accounts, err := r.store.ListAccounts(ctx)
	if err != nil {
		return res, fmt.Errorf("listing accounts: %w", err)
	}

	for _, a := range accounts {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Accounts++

		sites, err := r.store.ListSites(ctx, a.UID, "")
		if err != nil {
			r.opts.Logger.Warn("failed to list sites for recount", "uid", a.UID, "error", err)
			res.Failed++
			continue
		}
		for i := range sites {
			site := &sites[i]
			res.Sites++

			n, err := r.store.CountItems(ctx, a.UID, site.ID)
			if err != nil {
				r.opts.Logger.Warn("failed to count site items", "uid", a.UID, "site", site.ID, "error", err)
				res.Failed++
				continue
			}
			if n == site.ContentCount {
				continue
			}
			site.ContentCount = n
			if err := r.store.SetSite(ctx, site); err != nil {
				r.opts.Logger.Warn("failed to store site count", "uid", a.UID, "site", site.ID, "error", err)
				res.Failed++
				continue
			}
			res.Updated++
		}
	}

	r.opts.Logger.Info("content counts reconciled", "accounts", res.Accounts, "sites", res.Sites,
		"updated", res.Updated, "failed", res.Failed)
	return res, nil
}
