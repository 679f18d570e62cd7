// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"

	"github.com/erolledph/new-cms/internal/geoip"
	"github.com/erolledph/new-cms/internal/service"
)

// Built-in job names.
const (
	JobRecount      = "recount"
	JobGeoIPReload  = "geoip-reload"
	GeoIPReloadSpec = "@weekly"
)

// AddRecount schedules the content count reconciliation.
func (s *Scheduler) AddRecount(schedule string, r *service.Recounter) error {
	return s.Add(JobRecount, "Recompute the content count of every site", schedule,
		func(ctx context.Context) error {
			_, err := r.Run(ctx)
			return err
		})
}

// AddGeoIPReload schedules reopening the GeoIP database so an updated
// file on disk is picked up without a restart.
func (s *Scheduler) AddGeoIPReload(schedule string, lookup *geoip.Lookup) error {
	return s.Add(JobGeoIPReload, "Reload the GeoIP country database", schedule,
		func(context.Context) error {
			return lookup.Reload()
		})
}
