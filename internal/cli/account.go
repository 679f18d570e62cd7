// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/erolledph/new-cms/internal/model"
	"github.com/erolledph/new-cms/internal/service"
)

// accountView renders an account.
type accountView struct {
	*model.Account
}

func (v accountView) RenderText(w io.Writer) error {
	return writeFields(w, [][2]string{
		{"UID", v.UID},
		{"Email", v.Email},
		{"Name", v.DisplayName},
		{"Currency", v.Settings.Currency},
		{"Timezone", v.Settings.Timezone},
		{"Locale", v.Settings.Locale},
		{"Created", formatDate(v.CreatedAt)},
	})
}

// NewAccountCommand creates the account command group.
func NewAccountCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Show or change an account",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, true, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				a, err := env.accounts().Get(ctx, rootOpts.UID)
				if err != nil {
					return f.Fail("show account", err)
				}
				return f.Success(accountView{a})
			})
		},
	})

	var in service.AccountInput
	set := &cobra.Command{
		Use:   "set",
		Short: "Create the account or change its settings",
		Long:  "Create the account or change its settings. Only the given flags are changed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, true, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				a, err := env.accounts().Save(ctx, rootOpts.UID, in)
				if err != nil {
					return f.Fail("save account", err)
				}
				return f.Success(accountView{a})
			})
		},
	}
	set.Flags().StringVar(&in.Email, "email", "", "contact email; its local part is the default post author")
	set.Flags().StringVar(&in.DisplayName, "name", "", "display name")
	set.Flags().StringVar(&in.Currency, "currency", "", "default currency for new product sites")
	set.Flags().StringVar(&in.Timezone, "timezone", "", "IANA time zone")
	set.Flags().StringVar(&in.Locale, "locale", "", "locale such as en-US")
	cmd.AddCommand(set)
	return cmd
}
