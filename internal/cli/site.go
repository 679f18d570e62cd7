// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/erolledph/new-cms/internal/model"
	"github.com/erolledph/new-cms/internal/service"
)

// siteFlags holds the editable site fields.
type siteFlags struct {
	kind        string
	name        string
	slug        string
	description string
	currency    string
	taxRate     float64
	taxIncluded bool
}

func (sf *siteFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sf.name, "name", "", "site name")
	cmd.Flags().StringVar(&sf.slug, "slug", "", "URL slug (derived from the name when empty)")
	cmd.Flags().StringVar(&sf.description, "description", "", "site description")
	cmd.Flags().StringVar(&sf.currency, "currency", "", "default currency of a product site")
	cmd.Flags().Float64Var(&sf.taxRate, "tax-rate", 0, "tax rate percent of a product site")
	cmd.Flags().BoolVar(&sf.taxIncluded, "tax-included", false, "prices include tax")
}

// siteList renders sites as a table.
type siteList []model.Site

func (l siteList) RenderText(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, "No sites.")
		return err
	}
	rows := make([][]string, 0, len(l))
	for _, s := range l {
		rows = append(rows, []string{s.ID, string(s.Kind), s.Name, s.Slug, strconv.Itoa(s.ContentCount), formatDate(s.CreatedAt)})
	}
	return writeTable(w, []string{"ID", "TYPE", "NAME", "SLUG", "ITEMS", "CREATED"}, rows)
}

// siteView renders one site.
type siteView struct {
	*model.Site
}

func (v siteView) RenderText(w io.Writer) error {
	fields := [][2]string{
		{"ID", v.ID},
		{"Type", string(v.Kind)},
		{"Name", v.Name},
		{"Slug", v.Slug},
		{"Description", v.Description},
		{"Items", strconv.Itoa(v.ContentCount)},
	}
	if v.Kind == model.SiteKindProduct {
		fields = append(fields,
			[2]string{"Currency", v.DefaultCurrency},
			[2]string{"Tax rate", strconv.FormatFloat(v.TaxRate, 'f', -1, 64) + "%"},
			[2]string{"Tax included", strconv.FormatBool(v.TaxIncluded)},
		)
	}
	fields = append(fields, [2]string{"Created", formatDate(v.CreatedAt)}, [2]string{"Updated", formatDate(v.UpdatedAt)})
	return writeFields(w, fields)
}

// NewSiteCommand creates the site command group.
func NewSiteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "site",
		Short: "Manage blog and product sites",
	}
	cmd.AddCommand(newSiteCreateCommand(rootOpts))
	cmd.AddCommand(newSiteListCommand(rootOpts))
	cmd.AddCommand(newSiteShowCommand(rootOpts))
	cmd.AddCommand(newSiteUpdateCommand(rootOpts))
	cmd.AddCommand(newSiteDeleteCommand(rootOpts))
	return cmd
}

func newSiteCreateCommand(rootOpts *RootOptions) *cobra.Command {
	sf := &siteFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a site",
		Long: `Create a blog or product site. An account may own at most 3 sites of
each type.

Example:
  cmsctl site create --uid u1 --kind blog --name "Engineering notes"
  cmsctl site create --uid u1 --kind product --name Shop --currency EUR --tax-rate 21`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, true, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				site, err := env.sites().Create(ctx, rootOpts.UID, service.SiteInput{
					Kind:            model.SiteKind(sf.kind),
					Name:            sf.name,
					Slug:            sf.slug,
					Description:     sf.description,
					DefaultCurrency: sf.currency,
					TaxRate:         sf.taxRate,
					TaxIncluded:     sf.taxIncluded,
				})
				if err != nil {
					return f.Fail("create site", err)
				}
				return f.Success(siteView{site})
			})
		},
	}
	cmd.Flags().StringVar(&sf.kind, "kind", string(model.SiteKindBlog), "site type (blog|product)")
	sf.bind(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newSiteListCommand(rootOpts *RootOptions) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the account's sites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, true, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				sites, err := env.sites().List(ctx, rootOpts.UID, model.SiteKind(kind))
				if err != nil {
					return f.Fail("list sites", err)
				}
				return f.Success(siteList(sites))
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only list sites of this type (blog|product)")
	return cmd
}

func newSiteShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <site-id>",
		Short: "Show one site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, true, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				site, err := env.sites().Get(ctx, rootOpts.UID, args[0], "")
				if err != nil {
					return f.Fail("show site", err)
				}
				return f.Success(siteView{site})
			})
		},
	}
}

func newSiteUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	sf := &siteFlags{}
	cmd := &cobra.Command{
		Use:   "update <site-id>",
		Short: "Change a site's settings",
		Long:  "Change a site's settings. Only the given flags are changed; the type is fixed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, true, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				svc := env.sites()
				site, err := svc.Get(ctx, rootOpts.UID, args[0], "")
				if err != nil {
					return f.Fail("update site", err)
				}

				in := service.SiteInput{
					Name:            site.Name,
					Slug:            site.Slug,
					Description:     site.Description,
					DefaultCurrency: site.DefaultCurrency,
					TaxRate:         site.TaxRate,
					TaxIncluded:     site.TaxIncluded,
				}
				flags := cmd.Flags()
				if flags.Changed("name") {
					in.Name = sf.name
				}
				if flags.Changed("slug") {
					in.Slug = sf.slug
				}
				if flags.Changed("description") {
					in.Description = sf.description
				}
				if flags.Changed("currency") {
					in.DefaultCurrency = sf.currency
				}
				if flags.Changed("tax-rate") {
					in.TaxRate = sf.taxRate
				}
				if flags.Changed("tax-included") {
					in.TaxIncluded = sf.taxIncluded
				}

				site, err = svc.Update(ctx, rootOpts.UID, args[0], in)
				if err != nil {
					return f.Fail("update site", err)
				}
				return f.Success(siteView{site})
			})
		},
	}
	sf.bind(cmd)
	return cmd
}

func newSiteDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <site-id>",
		Short: "Delete a site and all of its content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, true, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				n, err := env.sites().Delete(ctx, rootOpts.UID, args[0])
				if err != nil {
					return f.Fail("delete site", err)
				}
				return f.Success(notice{
					text: fmt.Sprintf("Deleted site %s and %d item(s).", args[0], n),
					data: map[string]any{"id": args[0], "itemsDeleted": n},
				})
			})
		},
	}
}
