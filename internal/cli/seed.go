// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/erolledph/new-cms/internal/model"
	"github.com/erolledph/new-cms/internal/service"
	"github.com/erolledph/new-cms/internal/util"
)

// Fixtures is the YAML seed file layout.
type Fixtures struct {
	Accounts []AccountFixture `yaml:"accounts"`
}

// AccountFixture describes one account and its sites.
type AccountFixture struct {
	UID      string        `yaml:"uid"`
	Email    string        `yaml:"email"`
	Name     string        `yaml:"name"`
	Currency string        `yaml:"currency"`
	Sites    []SiteFixture `yaml:"sites"`
}

// SiteFixture describes a site and its content.
type SiteFixture struct {
	Kind        string           `yaml:"kind"`
	Name        string           `yaml:"name"`
	Slug        string           `yaml:"slug"`
	Description string           `yaml:"description"`
	Currency    string           `yaml:"currency"`
	TaxRate     float64          `yaml:"taxRate"`
	TaxIncluded bool             `yaml:"taxIncluded"`
	Posts       []PostFixture    `yaml:"posts"`
	Products    []ProductFixture `yaml:"products"`
}

// PostFixture describes a blog post.
type PostFixture struct {
	Title           string   `yaml:"title"`
	Slug            string   `yaml:"slug"`
	Content         string   `yaml:"content"`
	Image           string   `yaml:"image"`
	MetaDescription string   `yaml:"metaDescription"`
	Author          string   `yaml:"author"`
	Keywords        []string `yaml:"keywords"`
	Categories      []string `yaml:"categories"`
	Tags            []string `yaml:"tags"`
	Status          string   `yaml:"status"`
}

// ProductFixture describes a product.
type ProductFixture struct {
	Name        string   `yaml:"name"`
	Slug        string   `yaml:"slug"`
	Description string   `yaml:"description"`
	Price       float64  `yaml:"price"`
	PercentOff  float64  `yaml:"percentOff"`
	Currency    string   `yaml:"currency"`
	Image       string   `yaml:"image"`
	Images      []string `yaml:"images"`
	URL         string   `yaml:"url"`
	Category    string   `yaml:"category"`
	Tags        []string `yaml:"tags"`
	Status      string   `yaml:"status"`
}

// SeedResult counts what a seed run created.
type SeedResult struct {
	Accounts int `json:"accounts"`
	Sites    int `json:"sites"`
	Posts    int `json:"posts"`
	Products int `json:"products"`
	Skipped  int `json:"skipped"`
}

func (r SeedResult) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Seeded %d account(s), %d site(s), %d post(s), %d product(s); skipped %d existing.\n",
		r.Accounts, r.Sites, r.Posts, r.Products, r.Skipped)
	return err
}

// LoadFixtures decodes a seed file. Unknown keys are rejected.
func LoadFixtures(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var fx Fixtures
	if err := dec.Decode(&fx); err != nil {
		if errors.Is(err, io.EOF) {
			return &fx, nil
		}
		return nil, fmt.Errorf("decoding fixtures: %w", err)
	}
	return &fx, nil
}

// Seed creates the fixtures' accounts, sites and content. Sites matched by
// slug and items whose slug exists are reused, so seeding twice is safe.
func Seed(ctx context.Context, env *Env, fx *Fixtures) (SeedResult, error) {
	var res SeedResult
	accounts, sites, posts, products := env.accounts(), env.sites(), env.posts(), env.products()

	for _, af := range fx.Accounts {
		if _, err := accounts.Save(ctx, af.UID, service.AccountInput{
			Email: af.Email, DisplayName: af.Name, Currency: af.Currency,
		}); err != nil {
			return res, fmt.Errorf("account %q: %w", af.UID, err)
		}
		res.Accounts++

		for _, sf := range af.Sites {
			site, created, err := seedSite(ctx, sites, af.UID, sf)
			if err != nil {
				return res, fmt.Errorf("site %q: %w", sf.Name, err)
			}
			if created {
				res.Sites++
			} else {
				res.Skipped++
			}

			for _, pf := range sf.Posts {
				_, err := posts.Create(ctx, af.UID, site.ID, service.PostInput{
					Title: pf.Title, Slug: pf.Slug, Content: pf.Content, FeaturedImageURL: pf.Image,
					MetaDescription: pf.MetaDescription, Author: pf.Author, Keywords: pf.Keywords,
					Categories: pf.Categories, Tags: pf.Tags, Status: pf.Status,
				})
				switch {
				case errors.Is(err, service.ErrSlugTaken):
					res.Skipped++
				case err != nil:
					return res, fmt.Errorf("post %q: %w", pf.Title, err)
				default:
					res.Posts++
				}
			}

			for _, pf := range sf.Products {
				_, err := products.Create(ctx, af.UID, site.ID, service.ProductInput{
					Name: pf.Name, Slug: pf.Slug, Description: pf.Description, OriginalPrice: pf.Price,
					PercentOff: pf.PercentOff, Currency: pf.Currency, ImageURL: pf.Image,
					ImageURLs: pf.Images, ProductURL: pf.URL, Category: pf.Category, Tags: pf.Tags,
					Status: pf.Status,
				})
				switch {
				case errors.Is(err, service.ErrSlugTaken):
					res.Skipped++
				case err != nil:
					return res, fmt.Errorf("product %q: %w", pf.Name, err)
				default:
					res.Products++
				}
			}
		}
	}
	return res, nil
}

func seedSite(ctx context.Context, sites *service.SiteService, uid string, sf SiteFixture) (*model.Site, bool, error) {
	kind := model.SiteKind(sf.Kind)
	slug := sf.Slug
	if slug == "" {
		slug = util.Slugify(sf.Name)
	}
	existing, err := sites.List(ctx, uid, kind)
	if err != nil {
		return nil, false, err
	}
	for i := range existing {
		if strings.EqualFold(existing[i].Slug, slug) {
			return &existing[i], false, nil
		}
	}
	site, err := sites.Create(ctx, uid, service.SiteInput{
		Kind: kind, Name: sf.Name, Slug: sf.Slug, Description: sf.Description,
		DefaultCurrency: sf.Currency, TaxRate: sf.TaxRate, TaxIncluded: sf.TaxIncluded,
	})
	if err != nil {
		return nil, false, err
	}
	return site, true, nil
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <fixtures.yaml>",
		Short: "Create accounts, sites and content from a YAML file",
		Long: `Create accounts, sites, posts and products from a YAML fixtures file.
Existing sites (by slug) are reused and existing item slugs are skipped.

Example file:
  accounts:
    - uid: demo
      email: editor@example.com
      sites:
        - kind: blog
          name: Engineering Notes
          posts:
            - title: Hello world
              content: "First **post**."
              status: published`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, false, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				file, err := os.Open(args[0])
				if err != nil {
					_ = f.Error(ErrCodeIO, err.Error(), nil)
					return WrapExitError(ExitCommandError, "opening fixtures", err)
				}
				defer func() { _ = file.Close() }()

				fx, err := LoadFixtures(file)
				if err != nil {
					_ = f.Error(ErrCodeValidation, err.Error(), nil)
					return WrapExitError(ExitFailure, "loading fixtures", err)
				}
				res, err := Seed(ctx, env, fx)
				if err != nil {
					return f.Fail("seed", err)
				}
				return f.Success(res)
			})
		},
	}
}
