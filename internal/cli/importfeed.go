// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/erolledph/new-cms/internal/service"
	"github.com/erolledph/new-cms/internal/util"
)

const feedClientTimeout = 30 * time.Second

// importView renders a feed import result.
type importView struct {
	*service.ImportResult
}

func (v importView) RenderText(w io.Writer) error {
	_, _ = fmt.Fprintf(w, "Imported %d post(s) as drafts, skipped %d.\n", len(v.Imported), len(v.Skipped))
	for _, s := range v.Skipped {
		_, _ = fmt.Fprintf(w, "  skipped %q: %s\n", s.Title, s.Reason)
	}
	return nil
}

// NewImportCommand creates the import command group.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import content from external sources",
	}
	cmd.AddCommand(newImportFeedCommand(rootOpts))
	return cmd
}

func newImportFeedCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		blogID string
		max    int
	)
	cmd := &cobra.Command{
		Use:   "feed <url-or-path>",
		Short: "Import RSS, Atom or JSON feed items as draft posts",
		Long: `Import the items of an RSS, Atom or JSON feed into a blog as draft posts.
Items whose slug already exists or that fail validation are skipped.

Example:
  cmsctl import feed --uid u1 --blog blog_1 https://example.com/feed.xml
  cmsctl import feed --uid u1 --blog blog_1 --max 10 ./export.xml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, true, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				src := args[0]
				var (
					res *service.ImportResult
					err error
				)
				if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
					if verr := util.ValidateFetchURL(src); verr != nil {
						_ = f.Error(ErrCodeValidation, verr.Error(), nil)
						return WrapExitError(ExitFailure, "invalid feed URL", verr)
					}
					f.VerboseLog("fetching %s", src)
					im := service.NewImporter(env.posts(), util.SafeHTTPClient(feedClientTimeout))
					res, err = im.ImportURL(ctx, rootOpts.UID, blogID, src, max)
				} else {
					file, oerr := os.Open(src)
					if oerr != nil {
						_ = f.Error(ErrCodeIO, oerr.Error(), nil)
						return WrapExitError(ExitCommandError, "opening feed", oerr)
					}
					defer func() { _ = file.Close() }()
					res, err = service.NewImporter(env.posts(), nil).Import(ctx, rootOpts.UID, blogID, file, max)
				}
				if err != nil {
					return f.Fail("import feed", err)
				}
				return f.Success(importView{res})
			})
		},
	}
	cmd.Flags().StringVar(&blogID, "blog", "", "blog site id (required)")
	cmd.Flags().IntVar(&max, "max", 0, "import at most this many items (0 = all)")
	_ = cmd.MarkFlagRequired("blog")
	return cmd
}
