// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/erolledph/new-cms/internal/docstore"
	"github.com/erolledph/new-cms/internal/model"
	"github.com/erolledph/new-cms/internal/util"
)

// Post field limits.
const (
	MinPostTitleLength = 3
	MaxPostTitleLength = 200
	MaxMetaDescription = 160
)

// PostInput holds the editable fields of a blog post.
type PostInput struct {
	Title            string
	Slug             string
	Content          string
	FeaturedImageURL string
	MetaDescription  string
	SEOTitle         string
	Keywords         []string
	Author           string
	Categories       []string
	Tags             []string
	Status           string
}

// PostService manages the posts of blog sites.
type PostService struct {
	items itemStore
}

// NewPostService creates a post service.
func NewPostService(store docstore.Store, opts Options) *PostService {
	return &PostService{items: newItemStore(store, opts, model.SiteKindBlog)}
}

// ContentURL returns the public REST address of a post.
func (s *PostService) ContentURL(uid, blogID, slug string) string {
	return s.items.opts.PublicBaseURL + "/" + uid + "/" + blogID + "/api/content/" + slug + ".json"
}

// List returns a blog's posts, newest first. An empty status lists all.
func (s *PostService) List(ctx context.Context, uid, blogID, status string) ([]docstore.Document, error) {
	return s.items.list(ctx, uid, blogID, status)
}

// Get returns one post.
func (s *PostService) Get(ctx context.Context, uid, blogID, postID string) (docstore.Document, error) {
	return s.items.get(ctx, uid, blogID, postID)
}

// Create validates in and stores a new post.
func (s *PostService) Create(ctx context.Context, uid, blogID string, in PostInput) (docstore.Document, error) {
	if _, err := s.items.site(ctx, uid, blogID); err != nil {
		return docstore.Document{}, err
	}
	in = normalizePostInput(in)
	if in.Author == "" {
		in.Author = s.defaultAuthor(ctx, uid)
	}
	if err := validatePostInput(in); err != nil {
		return docstore.Document{}, err
	}
	if err := s.items.checkSlug(ctx, uid, blogID, in.Slug, ""); err != nil {
		return docstore.Document{}, err
	}

	now := s.items.opts.Now().UTC()
	doc := docstore.Document{ID: model.NewID("post", now)}
	doc.Data = s.postData(uid, blogID, in)
	doc.Data[docstore.FieldCreatedAt] = now
	doc.Data[docstore.FieldUpdatedAt] = now
	doc.Data[docstore.FieldPublishDate] = optionalTime(now, in.Status == model.StatusPublished)

	if err := s.items.save(ctx, uid, blogID, doc); err != nil {
		return docstore.Document{}, err
	}
	s.items.opts.Logger.Info("post created", logAttrs(uid, blogID, doc.ID)...)
	return doc, nil
}

// Update replaces the editable fields of a post. The publish date is
// stamped the first time the post is published and kept afterwards.
func (s *PostService) Update(ctx context.Context, uid, blogID, postID string, in PostInput) (docstore.Document, error) {
	existing, err := s.items.get(ctx, uid, blogID, postID)
	if err != nil {
		return docstore.Document{}, err
	}
	in = normalizePostInput(in)
	if in.Author == "" {
		in.Author, _ = existing.Data["author"].(string)
	}
	if err := validatePostInput(in); err != nil {
		return docstore.Document{}, err
	}
	if err := s.items.checkSlug(ctx, uid, blogID, in.Slug, postID); err != nil {
		return docstore.Document{}, err
	}

	doc := docstore.Document{ID: postID, Data: s.postData(uid, blogID, in)}
	s.stamp(doc, existing, in.Status)
	if err := s.items.save(ctx, uid, blogID, doc); err != nil {
		return docstore.Document{}, err
	}
	return doc, nil
}

// Publish marks a post as published.
func (s *PostService) Publish(ctx context.Context, uid, blogID, postID string) (docstore.Document, error) {
	return s.setStatus(ctx, uid, blogID, postID, model.StatusPublished)
}

// Unpublish returns a post to draft. Its publish date is kept.
func (s *PostService) Unpublish(ctx context.Context, uid, blogID, postID string) (docstore.Document, error) {
	return s.setStatus(ctx, uid, blogID, postID, model.StatusDraft)
}

// Delete removes a post.
func (s *PostService) Delete(ctx context.Context, uid, blogID, postID string) error {
	return s.items.delete(ctx, uid, blogID, postID)
}

func (s *PostService) setStatus(ctx context.Context, uid, blogID, postID, status string) (docstore.Document, error) {
	existing, err := s.items.get(ctx, uid, blogID, postID)
	if err != nil {
		return docstore.Document{}, err
	}
	doc := docstore.Document{ID: postID, Data: make(map[string]any, len(existing.Data))}
	for k, v := range existing.Data {
		doc.Data[k] = v
	}
	doc.Data[docstore.FieldStatus] = status
	s.stamp(doc, existing, status)
	if err := s.items.save(ctx, uid, blogID, doc); err != nil {
		return docstore.Document{}, err
	}
	s.items.opts.Logger.Info("post status changed", append(logAttrs(uid, blogID, postID), "status", status)...)
	return doc, nil
}

// stamp carries timestamps over from existing and sets updatedAt.
func (s *PostService) stamp(doc, existing docstore.Document, status string) {
	now := s.items.opts.Now().UTC()
	created, ok := timeField(existing.Data, docstore.FieldCreatedAt)
	doc.Data[docstore.FieldCreatedAt] = optionalTime(created, ok)
	doc.Data[docstore.FieldUpdatedAt] = now

	published, ok := timeField(existing.Data, docstore.FieldPublishDate)
	if !ok && status == model.StatusPublished {
		published, ok = now, true
	}
	doc.Data[docstore.FieldPublishDate] = optionalTime(published, ok)
}

func (s *PostService) postData(uid, blogID string, in PostInput) map[string]any {
	return map[string]any{
		"title":            in.Title,
		"slug":             in.Slug,
		"content":          in.Content,
		"featuredImageUrl": in.FeaturedImageURL,
		"metaDescription":  in.MetaDescription,
		"seoTitle":         in.SEOTitle,
		"keywords":         in.Keywords,
		"author":           in.Author,
		"categories":       in.Categories,
		"tags":             in.Tags,
		"status":           in.Status,
		"contentUrl":       s.ContentURL(uid, blogID, in.Slug),
	}
}

// defaultAuthor is the local part of the account email.
func (s *PostService) defaultAuthor(ctx context.Context, uid string) string {
	account, err := s.items.store.GetAccount(ctx, uid)
	if err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			s.items.opts.Logger.Warn("failed to load account for post author", "uid", uid, "error", err)
		}
		return ""
	}
	name, _, _ := strings.Cut(account.Email, "@")
	return name
}

func normalizePostInput(in PostInput) PostInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Slug == "" {
		in.Slug = util.Slugify(in.Title)
	}
	in.MetaDescription = strings.TrimSpace(in.MetaDescription)
	in.SEOTitle = strings.TrimSpace(in.SEOTitle)
	if in.SEOTitle == "" {
		in.SEOTitle = in.Title
	}
	in.Author = strings.TrimSpace(in.Author)
	in.FeaturedImageURL = strings.TrimSpace(in.FeaturedImageURL)
	in.Keywords = splitList(in.Keywords)
	in.Categories = splitList(in.Categories)
	in.Tags = splitList(in.Tags)
	if in.Status == "" {
		in.Status = model.StatusDraft
	}
	return in
}

func validatePostInput(in PostInput) error {
	switch n := runeLen(in.Title); {
	case n == 0:
		return invalid("title", "is required")
	case n < MinPostTitleLength:
		return invalid("title", "must be at least %d characters", MinPostTitleLength)
	case n > MaxPostTitleLength:
		return invalid("title", "must be at most %d characters", MaxPostTitleLength)
	}
	if runeLen(in.MetaDescription) > MaxMetaDescription {
		return invalid("metaDescription", "must be at most %d characters", MaxMetaDescription)
	}
	return validateStatus(in.Status)
}
