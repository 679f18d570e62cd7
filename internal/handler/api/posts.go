// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/erolledph/new-cms/internal/docstore"
	"github.com/erolledph/new-cms/internal/model"
)

var postMessages = failureMessages{
	method:   "Method not allowed. Use GET to fetch content.",
	denied:   "Access denied to blog content",
	notFound: "Blog site not found",
	internal: "Internal server error while fetching content",
}

var (
	postListParams = []string{ParamUID, ParamBlogID}
	postSlugParams = []string{ParamUID, ParamBlogID, ParamSlug}
)

// PostList is the payload of the post listing endpoint.
type PostList struct {
	Posts  []PublicPost `json:"posts"`
	Total  int          `json:"total"`
	BlogID string       `json:"blogId"`
	UID    string       `json:"uid"`
	Stamp
}

// PostDetail is the payload of the single post endpoint.
type PostDetail struct {
	Post   PublicPost `json:"post"`
	BlogID string     `json:"blogId"`
	UID    string     `json:"uid"`
	Stamp
}

// ListPosts returns every published post of a blog, newest publish date first.
func (h *Handler) ListPosts(ctx context.Context, req Request) Response {
	if resp, ok := h.env.Preflight(req); ok {
		return resp
	}
	if req.Method != http.MethodGet {
		return h.env.Failure(http.StatusMethodNotAllowed, postMessages.method)
	}

	params := Resolve(req, postListParams)
	if err := Validate(params, postListParams); err != nil {
		return h.env.Failure(http.StatusBadRequest, err.Error())
	}
	uid, blogID := params[ParamUID], params[ParamBlogID]

	store, err := h.stores.Store(ctx)
	if err != nil {
		return h.failure(postMessages, "list posts", err)
	}

	q := docstore.Query{UID: uid, SiteID: blogID, OrderBy: docstore.FieldPublishDate, Desc: true}.
		Where(docstore.FieldStatus, model.StatusPublished)
	docs, err := store.QueryItems(ctx, q)
	if err != nil {
		return h.failure(postMessages, "list posts", err)
	}

	posts := make([]PublicPost, 0, len(docs))
	for _, doc := range docs {
		posts = append(posts, NormalizePost(doc))
	}

	return h.env.Success(http.StatusOK, &PostList{
		Posts:  posts,
		Total:  len(posts),
		BlogID: blogID,
		UID:    uid,
	})
}

// GetPost returns one published post by slug.
func (h *Handler) GetPost(ctx context.Context, req Request) Response {
	if resp, ok := h.env.Preflight(req); ok {
		return resp
	}
	if req.Method != http.MethodGet {
		return h.env.Failure(http.StatusMethodNotAllowed, postMessages.method)
	}

	params := Resolve(req, postSlugParams)
	if err := Validate(params, postSlugParams); err != nil {
		return h.env.Failure(http.StatusBadRequest, err.Error())
	}
	uid, blogID, slug := params[ParamUID], params[ParamBlogID], params[ParamSlug]

	store, err := h.stores.Store(ctx)
	if err != nil {
		return h.failure(postMessages, "get post", err)
	}

	q := docstore.Query{UID: uid, SiteID: blogID, Limit: 1}.
		Where(docstore.FieldSlug, slug).
		Where(docstore.FieldStatus, model.StatusPublished)
	docs, err := store.QueryItems(ctx, q)
	if err != nil {
		return h.failure(postMessages, "get post", err)
	}
	if len(docs) == 0 {
		return h.env.Failure(http.StatusNotFound, fmt.Sprintf("Blog post with slug \"%s\" not found or not published", slug))
	}

	return h.env.Success(http.StatusOK, &PostDetail{
		Post:   NormalizePost(docs[0]),
		BlogID: blogID,
		UID:    uid,
	})
}
