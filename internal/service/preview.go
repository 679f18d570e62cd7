// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/erolledph/new-cms/internal/docstore"
)

// htmlSanitizer strips scripts, event handlers and other unsafe markup from
// rendered post content.
var htmlSanitizer = bluemonday.UGCPolicy()

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderMarkdown converts post content to sanitized HTML.
func RenderMarkdown(content string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return htmlSanitizer.Sanitize(buf.String()), nil
}

// PreviewPost renders a stored post as a standalone HTML fragment.
func PreviewPost(doc docstore.Document) (string, error) {
	title, _ := doc.Data["title"].(string)
	content, _ := doc.Data["content"].(string)

	body, err := RenderMarkdown(content)
	if err != nil {
		return "", err
	}
	heading, err := RenderMarkdown("# " + title)
	if err != nil {
		return "", err
	}
	return heading + body, nil
}
