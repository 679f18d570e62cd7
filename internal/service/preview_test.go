// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erolledph/new-cms/internal/docstore"
)

func TestRenderMarkdown(t *testing.T) {
	html, err := RenderMarkdown("## Intro\n\nSome **bold** text.\n\n- one\n- two\n")
	require.NoError(t, err)
	assert.Contains(t, html, "<h2>Intro</h2>")
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.Contains(t, html, "<li>one</li>")
}

func TestRenderMarkdownSanitizes(t *testing.T) {
	html, err := RenderMarkdown("Hello <script>alert(1)</script>\n\n[x](javascript:alert(1))\n\n<img src=x onerror=alert(1)>")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script")
	assert.NotContains(t, html, "javascript:")
	assert.NotContains(t, html, "onerror")
}

func TestPreviewPost(t *testing.T) {
	html, err := PreviewPost(docstore.Document{ID: "p1", Data: map[string]any{
		"title":   "Release notes",
		"content": "Version *2* is out.",
	}})
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Release notes</h1>")
	assert.Contains(t, html, "<em>2</em>")
}
