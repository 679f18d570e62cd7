// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erolledph/new-cms/internal/docstore"
	"github.com/erolledph/new-cms/internal/model"
	"github.com/erolledph/new-cms/internal/service"
)

// postFlags holds the editable post fields.
type postFlags struct {
	title           string
	slug            string
	content         string
	contentFile     string
	image           string
	metaDescription string
	seoTitle        string
	keywords        []string
	author          string
	categories      []string
	tags            []string
	status          string
}

func (pf *postFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&pf.title, "title", "", "post title")
	fl.StringVar(&pf.slug, "slug", "", "URL slug (derived from the title when empty)")
	fl.StringVar(&pf.content, "content", "", "markdown content")
	fl.StringVar(&pf.contentFile, "content-file", "", "read markdown content from a file (- for stdin)")
	fl.StringVar(&pf.image, "image", "", "featured image URL")
	fl.StringVar(&pf.metaDescription, "meta-description", "", "meta description (max 160 characters)")
	fl.StringVar(&pf.seoTitle, "seo-title", "", "SEO title (defaults to the title)")
	fl.StringSliceVar(&pf.keywords, "keywords", nil, "comma-separated keywords")
	fl.StringVar(&pf.author, "author", "", "author name (defaults to the account email name)")
	fl.StringSliceVar(&pf.categories, "categories", nil, "comma-separated categories")
	fl.StringSliceVar(&pf.tags, "tags", nil, "comma-separated tags")
	fl.StringVar(&pf.status, "status", model.StatusDraft, "draft|published")
}

// apply copies the flags that were set on the command into in.
func (pf *postFlags) apply(cmd *cobra.Command, in *service.PostInput) error {
	fl := cmd.Flags()
	if fl.Changed("title") {
		in.Title = pf.title
	}
	if fl.Changed("slug") {
		in.Slug = pf.slug
	}
	if fl.Changed("content") {
		in.Content = pf.content
	}
	if pf.contentFile != "" {
		content, err := readContent(cmd, pf.contentFile)
		if err != nil {
			return err
		}
		in.Content = content
	}
	if fl.Changed("image") {
		in.FeaturedImageURL = pf.image
	}
	if fl.Changed("meta-description") {
		in.MetaDescription = pf.metaDescription
	}
	if fl.Changed("seo-title") {
		in.SEOTitle = pf.seoTitle
	}
	if fl.Changed("keywords") {
		in.Keywords = pf.keywords
	}
	if fl.Changed("author") {
		in.Author = pf.author
	}
	if fl.Changed("categories") {
		in.Categories = pf.categories
	}
	if fl.Changed("tags") {
		in.Tags = pf.tags
	}
	if fl.Changed("status") || in.Status == "" {
		in.Status = pf.status
	}
	return nil
}

func readContent(cmd *cobra.Command, path string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", WrapExitError(ExitCommandError, "reading content", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "reading content", err)
	}
	return string(data), nil
}

// postInputFrom rebuilds the editable fields of a stored post.
func postInputFrom(doc docstore.Document) service.PostInput {
	d := doc.Data
	return service.PostInput{
		Title:            str(d, "title"),
		Slug:             str(d, "slug"),
		Content:          str(d, "content"),
		FeaturedImageURL: str(d, "featuredImageUrl"),
		MetaDescription:  str(d, "metaDescription"),
		SEOTitle:         str(d, "seoTitle"),
		Keywords:         strs(d, "keywords"),
		Author:           str(d, "author"),
		Categories:       strs(d, "categories"),
		Tags:             strs(d, "tags"),
		Status:           str(d, "status"),
	}
}

// postList renders posts as a table.
type postList []docstore.Document

func (l postList) MarshalJSON() ([]byte, error) {
	return json.Marshal(flattenAll(l))
}

func (l postList) RenderText(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, "No posts.")
		return err
	}
	rows := make([][]string, 0, len(l))
	for _, doc := range l {
		rows = append(rows, []string{doc.ID, str(doc.Data, "title"), str(doc.Data, "slug"),
			str(doc.Data, "status"), formatDate(timeOf(doc.Data, docstore.FieldUpdatedAt))})
	}
	return writeTable(w, []string{"ID", "TITLE", "SLUG", "STATUS", "UPDATED"}, rows)
}

// postView renders one post.
type postView docstore.Document

func (v postView) MarshalJSON() ([]byte, error) {
	return json.Marshal(flatten(docstore.Document(v)))
}

func (v postView) RenderText(w io.Writer) error {
	d := v.Data
	return writeFields(w, [][2]string{
		{"ID", v.ID},
		{"Title", str(d, "title")},
		{"Slug", str(d, "slug")},
		{"Status", str(d, "status")},
		{"Author", str(d, "author")},
		{"Tags", strings.Join(strs(d, "tags"), ", ")},
		{"Categories", strings.Join(strs(d, "categories"), ", ")},
		{"URL", str(d, "contentUrl")},
		{"Published", publishedAt(d)},
		{"Updated", formatDate(timeOf(d, docstore.FieldUpdatedAt))},
	})
}

func publishedAt(d map[string]any) string {
	t := timeOf(d, docstore.FieldPublishDate)
	if t.IsZero() {
		return ""
	}
	return formatDate(t)
}

// NewPostCommand creates the post command group.
func NewPostCommand(rootOpts *RootOptions) *cobra.Command {
	var blogID string
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Manage the posts of a blog site",
	}
	cmd.PersistentFlags().StringVar(&blogID, "blog", "", "blog site id (required)")
	_ = cmd.MarkPersistentFlagRequired("blog")

	blog := func() string { return blogID }
	cmd.AddCommand(newPostCreateCommand(rootOpts, blog))
	cmd.AddCommand(newPostUpdateCommand(rootOpts, blog))
	cmd.AddCommand(newPostListCommand(rootOpts, blog))
	cmd.AddCommand(newPostShowCommand(rootOpts, blog))
	cmd.AddCommand(newPostStatusCommand(rootOpts, blog, "publish", "Publish a post"))
	cmd.AddCommand(newPostStatusCommand(rootOpts, blog, "unpublish", "Return a post to draft"))
	cmd.AddCommand(newPostDeleteCommand(rootOpts, blog))
	cmd.AddCommand(newPostPreviewCommand(rootOpts, blog))
	return cmd
}

func newPostCreateCommand(rootOpts *RootOptions, blog func() string) *cobra.Command {
	pf := &postFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		Long: `Create a post in a blog site.

Example:
  cmsctl post create --uid u1 --blog blog_1 --title "Hello" --content-file hello.md --tags go,cms`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, true, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				var in service.PostInput
				if err := pf.apply(cmd, &in); err != nil {
					return f.Fail("create post", err)
				}
				doc, err := env.posts().Create(ctx, rootOpts.UID, blog(), in)
				if err != nil {
					return f.Fail("create post", err)
				}
				return f.Success(postView(doc))
			})
		},
	}
	pf.bind(cmd)
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newPostUpdateCommand(rootOpts *RootOptions, blog func() string) *cobra.Command {
	pf := &postFlags{}
	cmd := &cobra.Command{
		Use:   "update <post-id>",
		Short: "Change a post",
		Long:  "Change a post. Only the given flags are changed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, true, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				svc := env.posts()
				existing, err := svc.Get(ctx, rootOpts.UID, blog(), args[0])
				if err != nil {
					return f.Fail("update post", err)
				}
				in := postInputFrom(existing)
				if err := pf.apply(cmd, &in); err != nil {
					return f.Fail("update post", err)
				}
				doc, err := svc.Update(ctx, rootOpts.UID, blog(), args[0], in)
				if err != nil {
					return f.Fail("update post", err)
				}
				return f.Success(postView(doc))
			})
		},
	}
	pf.bind(cmd)
	return cmd
}

func newPostListCommand(rootOpts *RootOptions, blog func() string) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, true, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				docs, err := env.posts().List(ctx, rootOpts.UID, blog(), status)
				if err != nil {
					return f.Fail("list posts", err)
				}
				return f.Success(postList(docs))
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only list posts with this status")
	return cmd
}

func newPostShowCommand(rootOpts *RootOptions, blog func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <post-id>",
		Short: "Show one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, true, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				doc, err := env.posts().Get(ctx, rootOpts.UID, blog(), args[0])
				if err != nil {
					return f.Fail("show post", err)
				}
				return f.Success(postView(doc))
			})
		},
	}
}

func newPostStatusCommand(rootOpts *RootOptions, blog func() string, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <post-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, true, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				svc := env.posts()
				change := svc.Publish
				if use == "unpublish" {
					change = svc.Unpublish
				}
				doc, err := change(ctx, rootOpts.UID, blog(), args[0])
				if err != nil {
					return f.Fail(use+" post", err)
				}
				return f.Success(postView(doc))
			})
		},
	}
}

func newPostDeleteCommand(rootOpts *RootOptions, blog func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <post-id>",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, true, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				if err := env.posts().Delete(ctx, rootOpts.UID, blog(), args[0]); err != nil {
					return f.Fail("delete post", err)
				}
				return f.Success(notice{
					text: "Deleted post " + args[0] + ".",
					data: map[string]string{"id": args[0]},
				})
			})
		},
	}
}

func newPostPreviewCommand(rootOpts *RootOptions, blog func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <post-id>",
		Short: "Render a post's markdown to sanitized HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, true, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				doc, err := env.posts().Get(ctx, rootOpts.UID, blog(), args[0])
				if err != nil {
					return f.Fail("preview post", err)
				}
				html, err := service.PreviewPost(doc)
				if err != nil {
					return f.Fail("preview post", err)
				}
				return f.Success(notice{
					text: strings.TrimRight(html, "\n"),
					data: map[string]string{"id": doc.ID, "html": html},
				})
			})
		},
	}
}
