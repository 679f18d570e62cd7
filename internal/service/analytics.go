// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/erolledph/new-cms/internal/docstore"
	"github.com/erolledph/new-cms/internal/geoip"
	"github.com/erolledph/new-cms/internal/model"
)

// Summary limits.
const (
	TopListSize     = 5
	DirectReferrer  = "Direct / Unknown"
	summaryDayStamp = "2006-01-02"
)

// Count is one row of a ranked list.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// DailyCount is the number of views on one UTC day.
type DailyCount struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

// Summary aggregates the view events of one site or of all sites.
type Summary struct {
	SiteID         string         `json:"siteId"`
	TotalEvents    int            `json:"totalEvents"`
	TotalViews     int            `json:"totalViews"`
	UniqueVisitors int            `json:"uniqueVisitors"`
	EventsByType   map[string]int `json:"eventsByType"`
	TopContent     []Count        `json:"topContent"`
	TopReferrers   []Count        `json:"topReferrers"`
	TopCountries   []Count        `json:"topCountries"`
	Devices        []Count        `json:"devices"`
	DailyViews     []DailyCount   `json:"dailyViews"`
}

// SummaryOptions narrows a summary.
type SummaryOptions struct {
	// SiteID limits the summary to one site; empty means all sites.
	SiteID string
	// Since drops events before it when not zero.
	Since time.Time
}

// AnalyticsService reports on collected analytics events.
type AnalyticsService struct {
	store docstore.Store
	opts  Options
}

// NewAnalyticsService creates an analytics service.
func NewAnalyticsService(store docstore.Store, opts Options) *AnalyticsService {
	return &AnalyticsService{store: store, opts: opts.withDefaults()}
}

// Summary loads the account's events and aggregates them.
func (s *AnalyticsService) Summary(ctx context.Context, uid string, so SummaryOptions) (*Summary, error) {
	events, err := s.store.ListEvents(ctx, uid, so.SiteID)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	if !so.Since.IsZero() {
		kept := events[:0]
		for _, e := range events {
			if !e.Timestamp.Before(so.Since) {
				kept = append(kept, e)
			}
		}
		events = kept
	}
	sum := Summarize(events)
	sum.SiteID = so.SiteID
	return sum, nil
}

// Summarize aggregates events. All statistics except EventsByType count
// view events only.
func Summarize(events []model.AnalyticsEvent) *Summary {
	var (
		byType    = map[string]int{}
		sessions  = map[string]bool{}
		content   = map[string]int{}
		referrers = map[string]int{}
		countries = map[string]int{}
		devices   = map[string]int{}
		daily     = map[string]int{}
		views     int
	)

	for _, e := range events {
		byType[e.Type]++
		if e.Type != model.EventTypeView {
			continue
		}
		views++
		if e.SessionID != "" {
			sessions[e.SessionID] = true
		}
		if e.ContentID != "" {
			content[e.ContentID]++
		}
		referrers[referrerHost(e.Referrer)]++
		if e.Country != "" {
			countries[geoip.CountryName(e.Country)]++
		}
		if e.Device.DeviceType != "" {
			devices[e.Device.DeviceType]++
		}
		daily[e.Timestamp.UTC().Format(summaryDayStamp)]++
	}

	sum := &Summary{
		TotalEvents:    len(events),
		TotalViews:     views,
		UniqueVisitors: len(sessions),
		EventsByType:   byType,
		TopContent:     ranked(content, TopListSize),
		TopReferrers:   ranked(referrers, TopListSize),
		TopCountries:   ranked(countries, TopListSize),
		Devices:        ranked(devices, 0),
		DailyViews:     make([]DailyCount, 0, len(daily)),
	}
	for day, n := range daily {
		sum.DailyViews = append(sum.DailyViews, DailyCount{Date: day, Views: n})
	}
	sort.Slice(sum.DailyViews, func(i, j int) bool {
		return sum.DailyViews[i].Date < sum.DailyViews[j].Date
	})
	return sum
}

// referrerHost reduces a referrer URL to its host name.
func referrerHost(ref string) string {
	if ref == "" {
		return DirectReferrer
	}
	if !strings.Contains(ref, "://") {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil || u.Hostname() == "" {
		return ref
	}
	return u.Hostname()
}

// ranked orders counts descending, ties by key, and keeps at most limit
// entries (all when limit is 0).
func ranked(counts map[string]int, limit int) []Count {
	out := make([]Count, 0, len(counts))
	for k, n := range counts {
		out = append(out, Count{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
