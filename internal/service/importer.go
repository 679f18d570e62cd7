// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/erolledph/new-cms/internal/model"
)

// feedTimeout bounds fetching a remote feed.
const feedTimeout = 25 * time.Second

// ImportResult lists what happened to each feed item.
type ImportResult struct {
	Imported []string       `json:"imported"`
	Skipped  []SkippedEntry `json:"skipped"`
}

// SkippedEntry is a feed item that was not imported.
type SkippedEntry struct {
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// Importer turns RSS, Atom and JSON feed items into draft posts.
type Importer struct {
	posts  *PostService
	client *http.Client
}

// NewImporter creates an importer. A nil client uses http.DefaultClient.
func NewImporter(posts *PostService, client *http.Client) *Importer {
	if client == nil {
		client = http.DefaultClient
	}
	return &Importer{posts: posts, client: client}
}

// ImportURL fetches a feed and imports up to max items (0 means all).
func (im *Importer) ImportURL(ctx context.Context, uid, blogID, feedURL string, max int) (*ImportResult, error) {
	reqCtx, cancel := context.WithTimeout(ctx, feedTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid feed url: %w", err)
	}
	resp, err := im.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET feed %s: %w", feedURL, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET feed %s: status %d", feedURL, resp.StatusCode)
	}
	return im.Import(ctx, uid, blogID, resp.Body, max)
}

// Import parses a feed from r and creates a draft post per item. Items
// whose slug already exists or that fail validation are skipped.
func (im *Importer) Import(ctx context.Context, uid, blogID string, r io.Reader, max int) (*ImportResult, error) {
	if _, err := im.posts.items.site(ctx, uid, blogID); err != nil {
		return nil, err
	}
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	result := &ImportResult{Imported: []string{}, Skipped: []SkippedEntry{}}
	for _, it := range feed.Items {
		if max > 0 && len(result.Imported) >= max {
			break
		}
		in := postFromFeedItem(it)
		doc, err := im.posts.Create(ctx, uid, blogID, in)
		switch {
		case err == nil:
			result.Imported = append(result.Imported, doc.ID)
		case IsValidation(err) || errors.Is(err, ErrSlugTaken):
			result.Skipped = append(result.Skipped, SkippedEntry{Title: in.Title, Reason: err.Error()})
		default:
			return result, err
		}
	}
	im.posts.items.opts.Logger.Info("feed imported", "uid", uid, "site", blogID,
		"imported", len(result.Imported), "skipped", len(result.Skipped))
	return result, nil
}

func postFromFeedItem(it *gofeed.Item) PostInput {
	content := strings.TrimSpace(it.Content)
	if content == "" {
		content = strings.TrimSpace(it.Description)
	}
	in := PostInput{
		Title:      strings.TrimSpace(it.Title),
		Content:    content,
		Categories: it.Categories,
		Status:     model.StatusDraft,
	}
	if it.Image != nil {
		in.FeaturedImageURL = it.Image.URL
	}
	if in.FeaturedImageURL == "" {
		in.FeaturedImageURL = firstImage(content)
	}
	if it.Author != nil {
		in.Author = it.Author.Name
		if in.Author == "" {
			in.Author = it.Author.Email
		}
	}
	return in
}

// firstImage returns the src of the first <img> in an HTML fragment.
func firstImage(html string) string {
	if !strings.Contains(html, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return strings.TrimSpace(src)
}
