// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/erolledph/new-cms/internal/model"
	"github.com/erolledph/new-cms/internal/service"
)

// schemaVersioner is implemented by backends with a migrated schema.
type schemaVersioner interface {
	SchemaVersion(ctx context.Context) (int64, error)
}

// eventLogReader is implemented by backends that persist the event log.
type eventLogReader interface {
	ListEventLog(ctx context.Context, limit int) ([]model.Event, error)
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Apply pending migrations to the SQLite backend and print the schema
version. Firestore needs no migrations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Opening the SQLite backend applies pending migrations.
			return rootOpts.run(cmd, false, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				sv, ok := env.Store.(schemaVersioner)
				if !ok {
					return f.Success(notice{
						text: "Backend has no schema to migrate.",
						data: map[string]any{"migrated": false},
					})
				}
				v, err := sv.SchemaVersion(ctx)
				if err != nil {
					return f.Fail("read schema version", err)
				}
				return f.Success(notice{
					text: fmt.Sprintf("Database schema is at version %d.", v),
					data: map[string]any{"migrated": true, "version": v},
				})
			})
		},
	}
}

// recountView renders a reconciliation result.
type recountView service.RecountResult

func (v recountView) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Checked %d site(s) in %d account(s): %d updated, %d failed.\n",
		v.Sites, v.Accounts, v.Updated, v.Failed)
	return err
}

// NewRecountCommand creates the recount command.
func NewRecountCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recount",
		Short: "Recompute the content count of every site",
		Long: `Recompute the content count of every site from its stored items. The
server runs the same job on CMS_RECOUNT_SCHEDULE.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, false, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				res, err := service.NewRecounter(env.Store, env.options()).Run(ctx)
				if err != nil {
					return f.Fail("recount", err)
				}
				return f.Success(recountView(res))
			})
		},
	}
}

// eventLogView renders event log entries.
type eventLogView []model.Event

func (l eventLogView) RenderText(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, "No events.")
		return err
	}
	rows := make([][]string, 0, len(l))
	for _, e := range l {
		rows = append(rows, []string{formatDate(e.CreatedAt), e.Level, e.Category, e.Message})
	}
	return writeTable(w, []string{"TIME", "LEVEL", "CATEGORY", "MESSAGE"}, rows)
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent warnings and errors from the event log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, false, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				r, ok := env.Store.(eventLogReader)
				if !ok {
					return f.Success(eventLogView(nil))
				}
				events, err := r.ListEventLog(ctx, limit)
				if err != nil {
					return f.Fail("read event log", err)
				}
				return f.Success(eventLogView(events))
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "number of entries")
	return cmd
}
