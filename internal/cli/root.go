// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cli implements cmsctl, the operator command line for managing
// sites, posts, products, files and analytics.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{FormatText, FormatJSON}

// OpenFunc builds the environment a command runs against.
type OpenFunc func(ctx context.Context, opts *RootOptions) (*Env, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	UID     string // account the command acts on

	open OpenFunc
}

// NewRootCommand creates the root command wired to the configured backend.
func NewRootCommand() *cobra.Command {
	return newRootCommand(OpenEnv)
}

func newRootCommand(open OpenFunc) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "cmsctl",
		Short: "Manage newcms sites and content",
		Long: `cmsctl manages the accounts, blog and product sites, posts, products,
uploaded files and analytics served by newcms.

Configuration is read from the same CMS_* environment variables (and .env
file) as the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.UID, "uid", os.Getenv("CMS_UID"), "account uid (default $CMS_UID)")

	cmd.AddCommand(NewAccountCommand(opts))
	cmd.AddCommand(NewSiteCommand(opts))
	cmd.AddCommand(NewPostCommand(opts))
	cmd.AddCommand(NewProductCommand(opts))
	cmd.AddCommand(NewFileCommand(opts))
	cmd.AddCommand(NewAnalyticsCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewRecountCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// run opens the environment, runs fn and closes the environment again.
// needUID rejects the command early when no account is selected.
func (o *RootOptions) run(cmd *cobra.Command, needUID bool, fn func(ctx context.Context, env *Env, f *OutputFormatter) error) error {
	f := o.formatter(cmd)
	if needUID && o.UID == "" {
		_ = f.Error(ErrCodeValidation, "--uid is required (or set CMS_UID)", nil)
		return NewExitError(ExitCommandError, "--uid is required")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := o.open(ctx, o)
	if err != nil {
		_ = f.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening environment", err)
	}
	defer func() {
		if cerr := env.Close(); cerr != nil {
			f.VerboseLog("close: %v", cerr)
		}
	}()

	return fn(ctx, env, f)
}
