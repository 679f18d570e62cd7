// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erolledph/new-cms/internal/model"
	"github.com/erolledph/new-cms/internal/testutil"
)

func viewEvent(day int, session, content, referrer, country string) model.AnalyticsEvent {
	return model.AnalyticsEvent{
		Type:      model.EventTypeView,
		Timestamp: time.Date(2025, 3, day, 12, 0, 0, 0, time.UTC),
		SessionID: session,
		ContentID: content,
		Referrer:  referrer,
		Country:   country,
		Device:    model.DeviceInfo{DeviceType: "desktop"},
	}
}

func TestSummarize(t *testing.T) {
	events := []model.AnalyticsEvent{
		viewEvent(2, "s1", "post-a", "https://news.example.com/item?id=1", "NL"),
		viewEvent(1, "s1", "post-a", "", "NL"),
		viewEvent(1, "s2", "post-b", "https://www.google.com/search?q=cms", "US"),
		viewEvent(3, "s3", "post-a", "", ""),
		viewEvent(3, "s3", "", "android-app", "ZZ"),
		{Type: model.EventTypeClick, SessionID: "s9", ContentID: "post-z", Timestamp: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Type: model.EventTypeInteraction, SessionID: "s9"},
	}

	sum := Summarize(events)

	assert.Equal(t, 7, sum.TotalEvents)
	assert.Equal(t, 5, sum.TotalViews)
	assert.Equal(t, 3, sum.UniqueVisitors, "click-only sessions are not visitors")
	assert.Equal(t, map[string]int{"view": 5, "click": 1, "interaction": 1}, sum.EventsByType)
	assert.Equal(t, []Count{{"post-a", 3}, {"post-b", 1}}, sum.TopContent)
	assert.Equal(t, []Count{
		{DirectReferrer, 2},
		{"android-app", 1},
		{"news.example.com", 1},
		{"www.google.com", 1},
	}, sum.TopReferrers)
	assert.Equal(t, []Count{{"Netherlands", 2}, {"United States", 1}, {"ZZ", 1}}, sum.TopCountries)
	assert.Equal(t, []Count{{"desktop", 5}}, sum.Devices)
	assert.Equal(t, []DailyCount{
		{"2025-03-01", 2},
		{"2025-03-02", 1},
		{"2025-03-03", 2},
	}, sum.DailyViews)
}

func TestSummarizeTopListsCapped(t *testing.T) {
	var events []model.AnalyticsEvent
	for i := 0; i < 8; i++ {
		for j := 0; j <= i; j++ {
			events = append(events, viewEvent(1, "s", fmt.Sprintf("post-%d", i), "", ""))
		}
	}

	sum := Summarize(events)
	require.Len(t, sum.TopContent, TopListSize)
	assert.Equal(t, Count{"post-7", 8}, sum.TopContent[0])
	assert.Equal(t, Count{"post-3", 4}, sum.TopContent[4])
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil)
	assert.Zero(t, sum.TotalViews)
	assert.NotNil(t, sum.TopContent)
	assert.NotNil(t, sum.DailyViews)
	assert.Empty(t, sum.DailyViews)
}

func TestAnalyticsSummaryFromStore(t *testing.T) {
	ctx := context.Background()
	store := testutil.TestStore(t)

	add := func(siteID, id string, e model.AnalyticsEvent) {
		e.UID, e.SiteID, e.ID = testUID, siteID, id
		require.NoError(t, store.AddEvent(ctx, &e))
	}
	add("blog_a", "e1", viewEvent(1, "s1", "post-a", "", ""))
	add("blog_a", "e2", viewEvent(5, "s2", "post-a", "", ""))
	add("blog_b", "e3", viewEvent(5, "s3", "post-b", "", ""))

	svc := NewAnalyticsService(store, testOptions())

	all, err := svc.Summary(ctx, testUID, SummaryOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.TotalViews)
	assert.Empty(t, all.SiteID)

	one, err := svc.Summary(ctx, testUID, SummaryOptions{SiteID: "blog_a"})
	require.NoError(t, err)
	assert.Equal(t, 2, one.TotalViews)
	assert.Equal(t, "blog_a", one.SiteID)

	recent, err := svc.Summary(ctx, testUID, SummaryOptions{Since: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, 2, recent.TotalViews)
	assert.Equal(t, []DailyCount{{"2025-03-05", 2}}, recent.DailyViews)
}

func TestReferrerHost(t *testing.T) {
	tests := map[string]string{
		"":                                DirectReferrer,
		"https://blog.example.org/a/b?c=d": "blog.example.org",
		"http://localhost:3000/":          "localhost",
		"newsletter":                      "newsletter",
	}
	for in, want := range tests {
		assert.Equal(t, want, referrerHost(in), "referrerHost(%q)", in)
	}
}
