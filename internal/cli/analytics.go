// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/erolledph/new-cms/internal/service"
)

// summaryView renders an analytics summary.
type summaryView struct {
	*service.Summary
}

func (v summaryView) RenderText(w io.Writer) error {
	scope := v.SiteID
	if scope == "" {
		scope = "all sites"
	}
	types := make([]string, 0, len(v.EventsByType))
	for t, n := range v.EventsByType {
		types = append(types, t+"="+strconv.Itoa(n))
	}
	sort.Strings(types)

	if err := writeFields(w, [][2]string{
		{"Scope", scope},
		{"Events", strconv.Itoa(v.TotalEvents)},
		{"By type", strings.Join(types, " ")},
		{"Views", strconv.Itoa(v.TotalViews)},
		{"Unique visitors", strconv.Itoa(v.UniqueVisitors)},
	}); err != nil {
		return err
	}

	sections := []struct {
		title string
		rows  []service.Count
	}{
		{"Top content", v.TopContent},
		{"Top referrers", v.TopReferrers},
		{"Top countries", v.TopCountries},
		{"Devices", v.Devices},
	}
	for _, s := range sections {
		if len(s.rows) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "\n%s:\n", s.title)
		rows := make([][]string, 0, len(s.rows))
		for _, c := range s.rows {
			rows = append(rows, []string{"  " + c.Key, strconv.Itoa(c.Count)})
		}
		if err := writeTable(w, []string{"  KEY", "COUNT"}, rows); err != nil {
			return err
		}
	}

	if len(v.DailyViews) > 0 {
		_, _ = fmt.Fprintln(w, "\nDaily views:")
		rows := make([][]string, 0, len(v.DailyViews))
		for _, d := range v.DailyViews {
			rows = append(rows, []string{"  " + d.Date, strconv.Itoa(d.Views)})
		}
		return writeTable(w, []string{"  DATE", "VIEWS"}, rows)
	}
	return nil
}

// parseSince accepts a date (2006-01-02), an RFC 3339 time, a Go duration
// or a day count such as "7d", the latter two relative to now.
func parseSince(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil && n >= 0 {
			return now.AddDate(0, 0, -n), nil
		}
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return now.Add(-d), nil
	}
	return time.Time{}, fmt.Errorf("invalid --since %q: use a date, RFC 3339 time, duration or day count like 7d", s)
}

// NewAnalyticsCommand creates the analytics command group.
func NewAnalyticsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Report on collected analytics events",
	}
	cmd.AddCommand(newAnalyticsSummaryCommand(rootOpts))
	return cmd
}

func newAnalyticsSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	var siteID, since string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize view events of one site or all sites",
		Long: `Summarize view events: totals, unique visitors, top content, referrers,
countries and devices, and views per UTC day.

Example:
  cmsctl analytics summary --uid u1 --site blog_1 --since 30d`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, true, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				now := time.Now
				if env.Now != nil {
					now = env.Now
				}
				from, err := parseSince(since, now().UTC())
				if err != nil {
					_ = f.Error(ErrCodeValidation, err.Error(), nil)
					return WrapExitError(ExitCommandError, "parsing flags", err)
				}
				sum, err := env.analytics().Summary(ctx, rootOpts.UID, service.SummaryOptions{SiteID: siteID, Since: from})
				if err != nil {
					return f.Fail("summarize analytics", err)
				}
				return f.Success(summaryView{sum})
			})
		},
	}
	cmd.Flags().StringVar(&siteID, "site", "", "site id (default all sites)")
	cmd.Flags().StringVar(&since, "since", "", "only count events from this date, time, duration or day count")
	return cmd
}
