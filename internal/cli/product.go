// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erolledph/new-cms/internal/docstore"
	"github.com/erolledph/new-cms/internal/model"
	"github.com/erolledph/new-cms/internal/service"
)

// productFlags holds the editable product fields.
type productFlags struct {
	name        string
	slug        string
	description string
	price       float64
	percentOff  float64
	currency    string
	image       string
	images      []string
	url         string
	category    string
	tags        []string
	status      string
}

func (pf *productFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&pf.name, "name", "", "product name")
	fl.StringVar(&pf.slug, "slug", "", "URL slug (derived from the name when empty)")
	fl.StringVar(&pf.description, "description", "", "markdown description")
	fl.Float64Var(&pf.price, "price", 0, "original price")
	fl.Float64Var(&pf.percentOff, "percent-off", 0, "discount percent (0-100)")
	fl.StringVar(&pf.currency, "currency", "", "currency (defaults to the site currency)")
	fl.StringVar(&pf.image, "image", "", "main image URL")
	fl.StringSliceVar(&pf.images, "images", nil, "comma-separated gallery image URLs")
	fl.StringVar(&pf.url, "url", "", "external product URL")
	fl.StringVar(&pf.category, "category", "", "category")
	fl.StringSliceVar(&pf.tags, "tags", nil, "comma-separated tags")
	fl.StringVar(&pf.status, "status", model.StatusDraft, "draft|published")
}

func (pf *productFlags) apply(cmd *cobra.Command, in *service.ProductInput) {
	fl := cmd.Flags()
	if fl.Changed("name") {
		in.Name = pf.name
	}
	if fl.Changed("slug") {
		in.Slug = pf.slug
	}
	if fl.Changed("description") {
		in.Description = pf.description
	}
	if fl.Changed("price") {
		in.OriginalPrice = pf.price
	}
	if fl.Changed("percent-off") {
		in.PercentOff = pf.percentOff
	}
	if fl.Changed("currency") {
		in.Currency = pf.currency
	}
	if fl.Changed("image") {
		in.ImageURL = pf.image
	}
	if fl.Changed("images") {
		in.ImageURLs = pf.images
	}
	if fl.Changed("url") {
		in.ProductURL = pf.url
	}
	if fl.Changed("category") {
		in.Category = pf.category
	}
	if fl.Changed("tags") {
		in.Tags = pf.tags
	}
	if fl.Changed("status") || in.Status == "" {
		in.Status = pf.status
	}
}

func productInputFrom(doc docstore.Document) service.ProductInput {
	d := doc.Data
	in := service.ProductInput{
		Name:        str(d, "name"),
		Slug:        str(d, "slug"),
		Description: str(d, "description"),
		Currency:    str(d, "currency"),
		ImageURL:    str(d, "imageUrl"),
		ImageURLs:   strs(d, "imageUrls"),
		ProductURL:  str(d, "productUrl"),
		Category:    str(d, "category"),
		Tags:        strs(d, "tags"),
		Status:      str(d, "status"),
	}
	in.OriginalPrice, _ = d["originalPrice"].(float64)
	in.PercentOff, _ = d["percentOff"].(float64)
	return in
}

// productList renders products as a table.
type productList []docstore.Document

func (l productList) MarshalJSON() ([]byte, error) {
	return json.Marshal(flattenAll(l))
}

func (l productList) RenderText(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, "No products.")
		return err
	}
	rows := make([][]string, 0, len(l))
	for _, doc := range l {
		d := doc.Data
		rows = append(rows, []string{doc.ID, str(d, "name"), str(d, "slug"),
			strings.TrimSpace(num(d, "price") + " " + str(d, "currency")), str(d, "status")})
	}
	return writeTable(w, []string{"ID", "NAME", "SLUG", "PRICE", "STATUS"}, rows)
}

// productView renders one product.
type productView docstore.Document

func (v productView) MarshalJSON() ([]byte, error) {
	return json.Marshal(flatten(docstore.Document(v)))
}

func (v productView) RenderText(w io.Writer) error {
	d := v.Data
	price := num(d, "price") + " " + str(d, "currency")
	if off := num(d, "percentOff"); off != "" && off != "0.00" {
		price += fmt.Sprintf(" (was %s, %s%% off)", num(d, "originalPrice"), off)
	}
	return writeFields(w, [][2]string{
		{"ID", v.ID},
		{"Name", str(d, "name")},
		{"Slug", str(d, "slug")},
		{"Status", str(d, "status")},
		{"Price", price},
		{"Category", str(d, "category")},
		{"Tags", strings.Join(strs(d, "tags"), ", ")},
		{"Image", str(d, "imageUrl")},
		{"URL", str(d, "productUrl")},
		{"Updated", formatDate(timeOf(d, docstore.FieldUpdatedAt))},
	})
}

// NewProductCommand creates the product command group.
func NewProductCommand(rootOpts *RootOptions) *cobra.Command {
	var siteID string
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage the products of a product site",
	}
	cmd.PersistentFlags().StringVar(&siteID, "site", "", "product site id (required)")
	_ = cmd.MarkPersistentFlagRequired("site")

	site := func() string { return siteID }
	cmd.AddCommand(newProductCreateCommand(rootOpts, site))
	cmd.AddCommand(newProductUpdateCommand(rootOpts, site))
	cmd.AddCommand(newProductListCommand(rootOpts, site))
	cmd.AddCommand(newProductShowCommand(rootOpts, site))
	cmd.AddCommand(newProductDeleteCommand(rootOpts, site))
	return cmd
}

func newProductCreateCommand(rootOpts *RootOptions, site func() string) *cobra.Command {
	pf := &productFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		Long: `Create a product. The sale price and savings are computed from the
original price and the discount percent.

Example:
  cmsctl product create --uid u1 --site product_1 --name Mug --price 25 --percent-off 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, true, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				var in service.ProductInput
				pf.apply(cmd, &in)
				doc, err := env.products().Create(ctx, rootOpts.UID, site(), in)
				if err != nil {
					return f.Fail("create product", err)
				}
				return f.Success(productView(doc))
			})
		},
	}
	pf.bind(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newProductUpdateCommand(rootOpts *RootOptions, site func() string) *cobra.Command {
	pf := &productFlags{}
	cmd := &cobra.Command{
		Use:   "update <product-id>",
		Short: "Change a product",
		Long:  "Change a product. Only the given flags are changed; pricing is recomputed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, true, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				svc := env.products()
				existing, err := svc.Get(ctx, rootOpts.UID, site(), args[0])
				if err != nil {
					return f.Fail("update product", err)
				}
				in := productInputFrom(existing)
				pf.apply(cmd, &in)
				doc, err := svc.Update(ctx, rootOpts.UID, site(), args[0], in)
				if err != nil {
					return f.Fail("update product", err)
				}
				return f.Success(productView(doc))
			})
		},
	}
	pf.bind(cmd)
	return cmd
}

func newProductListCommand(rootOpts *RootOptions, site func() string) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, true, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				docs, err := env.products().List(ctx, rootOpts.UID, site(), status)
				if err != nil {
					return f.Fail("list products", err)
				}
				return f.Success(productList(docs))
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only list products with this status")
	return cmd
}

func newProductShowCommand(rootOpts *RootOptions, site func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <product-id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, true, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				doc, err := env.products().Get(ctx, rootOpts.UID, site(), args[0])
				if err != nil {
					return f.Fail("show product", err)
				}
				return f.Success(productView(doc))
			})
		},
	}
}

func newProductDeleteCommand(rootOpts *RootOptions, site func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <product-id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, true, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				if err := env.products().Delete(ctx, rootOpts.UID, site(), args[0]); err != nil {
					return f.Fail("delete product", err)
				}
				return f.Success(notice{
					text: "Deleted product " + args[0] + ".",
					data: map[string]string{"id": args[0]},
				})
			})
		},
	}
}
