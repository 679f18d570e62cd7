// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erolledph/new-cms/internal/blob"
	"github.com/erolledph/new-cms/internal/config"
	"github.com/erolledph/new-cms/internal/docstore"
	"github.com/erolledph/new-cms/internal/model"
	"github.com/erolledph/new-cms/internal/testutil"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// harness runs commands against one in-memory store.
type harness struct {
	t       *testing.T
	store   *docstore.SQLite
	uploads string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("CMS_UID", "")
	return &harness{t: t, store: testutil.TestStore(t), uploads: t.TempDir()}
}

func (h *harness) open(context.Context, *RootOptions) (*Env, error) {
	blobs, err := blob.NewLocal(h.uploads, "http://cms.test")
	if err != nil {
		return nil, err
	}
	env := NewEnv(&config.Config{PublicBaseURL: "http://cms.test"}, h.store, blobs, testutil.TestLoggerSilent())
	env.Now = func() time.Time { return testNow }
	return env, nil
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	cmd := newRootCommand(h.open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// data runs a command with --format json and returns the decoded payload.
func (h *harness) data(args ...string) any {
	h.t.Helper()
	out, err := h.run(append(args, "--format", "json")...)
	require.NoError(h.t, err, out)

	var resp struct {
		Status string `json:"status"`
		Data   any    `json:"data"`
	}
	require.NoError(h.t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(h.t, "ok", resp.Status)
	return resp.Data
}

func (h *harness) object(args ...string) map[string]any {
	h.t.Helper()
	obj, ok := h.data(args...).(map[string]any)
	require.True(h.t, ok, "expected an object")
	return obj
}

func (h *harness) list(args ...string) []any {
	h.t.Helper()
	if v := h.data(args...); v != nil {
		l, ok := v.([]any)
		require.True(h.t, ok, "expected a list")
		return l
	}
	return nil
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"account", "site", "post", "product", "file", "analytics", "import", "seed", "migrate", "recount", "log"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"verbose", "format", "uid"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("site", "list", "--uid", "u1", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestMissingUID(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("site", "list", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeValidation)
}

func TestSiteCommands(t *testing.T) {
	h := newHarness(t)

	site := h.object("site", "create", "--uid", "u1", "--name", "Engineering Notes")
	id, _ := site["id"].(string)
	assert.True(t, strings.HasPrefix(id, "blog_"), id)
	assert.Equal(t, "engineering-notes", site["slug"])
	assert.Equal(t, "blog", site["type"])

	shop := h.object("site", "create", "--uid", "u1", "--kind", "product", "--name", "Shop", "--currency", "eur", "--tax-rate", "21")
	assert.Equal(t, "EUR", shop["defaultCurrency"])
	assert.Equal(t, float64(21), shop["taxRate"])

	assert.Len(t, h.list("site", "list", "--uid", "u1"), 2)
	assert.Len(t, h.list("site", "list", "--uid", "u1", "--kind", "product"), 1)

	out, err := h.run("site", "list", "--uid", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "Engineering Notes")
	assert.Contains(t, out, "SLUG")

	updated := h.object("site", "update", id, "--uid", "u1", "--description", "Team notes")
	assert.Equal(t, "Team notes", updated["description"])
	assert.Equal(t, "Engineering Notes", updated["name"])

	out, err = h.run("site", "show", id, "--uid", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "Description: Team notes")

	h.object("site", "delete", id, "--uid", "u1")
	out, err = h.run("site", "show", id, "--uid", "u1", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
}

func TestSiteCreate_Limit(t *testing.T) {
	h := newHarness(t)
	for _, name := range []string{"One", "Two", "Three"} {
		h.object("site", "create", "--uid", "u1", "--name", name)
	}
	out, err := h.run("site", "create", "--uid", "u1", "--name", "Four", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeLimit)
}

func TestPostCommands(t *testing.T) {
	h := newHarness(t)
	blog := h.object("site", "create", "--uid", "u1", "--name", "Notes")["id"].(string)

	contentFile := filepath.Join(t.TempDir(), "hello.md")
	require.NoError(t, os.WriteFile(contentFile, []byte("# Hello\n\nSome **bold** text.\n"), 0o600))

	post := h.object("post", "create", "--uid", "u1", "--blog", blog,
		"--title", "Hello World", "--content-file", contentFile, "--tags", "go,cms")
	id := post["id"].(string)
	assert.True(t, strings.HasPrefix(id, "post_"), id)
	assert.Equal(t, "hello-world", post["slug"])
	assert.Equal(t, "draft", post["status"])
	assert.Equal(t, []any{"go", "cms"}, post["tags"])

	out, err := h.run("post", "create", "--uid", "u1", "--blog", blog, "--title", "Hello World", "--format", "json")
	require.Error(t, err)
	assert.Contains(t, out, ErrCodeConflict)

	published := h.object("post", "publish", id, "--uid", "u1", "--blog", blog)
	assert.Equal(t, "published", published["status"])
	assert.NotEmpty(t, published["publishDate"])

	assert.Len(t, h.list("post", "list", "--uid", "u1", "--blog", blog, "--status", "published"), 1)
	assert.Empty(t, h.list("post", "list", "--uid", "u1", "--blog", blog, "--status", "draft"))

	updated := h.object("post", "update", id, "--uid", "u1", "--blog", blog, "--title", "Hello Again")
	assert.Equal(t, "Hello Again", updated["title"])
	assert.Equal(t, "published", updated["status"])

	out, err = h.run("post", "preview", id, "--uid", "u1", "--blog", blog)
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>bold</strong>")

	h.object("post", "delete", id, "--uid", "u1", "--blog", blog)
	assert.Empty(t, h.list("post", "list", "--uid", "u1", "--blog", blog))
}

func TestPostCreate_Validation(t *testing.T) {
	h := newHarness(t)
	blog := h.object("site", "create", "--uid", "u1", "--name", "Notes")["id"].(string)

	out, err := h.run("post", "create", "--uid", "u1", "--blog", blog, "--title", "Hi", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeValidation)
	assert.Contains(t, out, `"field":"title"`)
}

func TestPostCommands_WrongKind(t *testing.T) {
	h := newHarness(t)
	shop := h.object("site", "create", "--uid", "u1", "--kind", "product", "--name", "Shop")["id"].(string)

	out, err := h.run("post", "create", "--uid", "u1", "--blog", shop, "--title", "Hello World", "--format", "json")
	require.Error(t, err)
	assert.Contains(t, out, ErrCodeWrongKind)
}

func TestProductCommands(t *testing.T) {
	h := newHarness(t)
	shop := h.object("site", "create", "--uid", "u1", "--kind", "product", "--name", "Shop", "--currency", "EUR")["id"].(string)

	product := h.object("product", "create", "--uid", "u1", "--site", shop,
		"--name", "Ceramic Mug", "--price", "25", "--percent-off", "20")
	id := product["id"].(string)
	assert.True(t, strings.HasPrefix(id, "item_"), id)
	assert.Equal(t, "EUR", product["currency"])
	assert.InDelta(t, 20.0, product["price"], 0.001)
	assert.InDelta(t, 5.0, product["savings"], 0.001)

	updated := h.object("product", "update", id, "--uid", "u1", "--site", shop, "--percent-off", "0")
	assert.InDelta(t, 25.0, updated["price"], 0.001)
	assert.Equal(t, "Ceramic Mug", updated["name"])

	out, err := h.run("product", "list", "--uid", "u1", "--site", shop)
	require.NoError(t, err)
	assert.Contains(t, out, "Ceramic Mug")

	h.object("product", "delete", id, "--uid", "u1", "--site", shop)
	assert.Empty(t, h.list("product", "list", "--uid", "u1", "--site", shop))
}

func TestFileCommands(t *testing.T) {
	h := newHarness(t)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text notes\n"), 0o600))

	file := h.object("file", "upload", path, "--uid", "u1")
	id := file["id"].(string)
	assert.Equal(t, "notes.txt", file["fileName"])
	assert.True(t, strings.HasPrefix(file["downloadURL"].(string), "http://cms.test/uploads/"), file["downloadURL"])

	listing := h.object("file", "list", "--uid", "u1")
	assert.Len(t, listing["files"], 1)
	assert.Equal(t, float64(len("plain text notes\n")), listing["used"])

	out, err := h.run("file", "list", "--uid", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "Storage: 17 B of 100.0 MB used")

	h.object("file", "delete", id, "--uid", "u1")
	assert.Empty(t, h.object("file", "list", "--uid", "u1")["files"])

	out, err = h.run("file", "upload", filepath.Join(t.TempDir(), "missing.txt"), "--uid", "u1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeIO)
}

func TestAccountCommands(t *testing.T) {
	h := newHarness(t)

	account := h.object("account", "set", "--uid", "u1", "--email", "editor@example.com", "--currency", "eur")
	assert.Equal(t, "editor@example.com", account["email"])
	settings := account["settings"].(map[string]any)
	assert.Equal(t, "EUR", settings["currency"])

	out, err := h.run("account", "show", "--uid", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "editor@example.com")

	out, err = h.run("account", "set", "--uid", "u1", "--email", "not an email", "--format", "json")
	require.Error(t, err)
	assert.Contains(t, out, ErrCodeValidation)
}

func TestSeedCommand(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("seed", "testdata/seed.yaml", "--format", "json")
	require.NoError(t, err, out)
	goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden")).
		Assert(t, "seed_json", []byte(out))

	sites := h.list("site", "list", "--uid", "demo")
	require.Len(t, sites, 2)
	for _, s := range sites {
		assert.Equal(t, float64(2), s.(map[string]any)["contentCount"])
	}

	// A second run reuses the sites and skips existing slugs.
	out, err = h.run("seed", "testdata/seed.yaml")
	require.NoError(t, err)
	assert.Equal(t, "Seeded 1 account(s), 0 site(s), 0 post(s), 0 product(s); skipped 6 existing.\n", out)
}

func TestSeedCommand_UnknownField(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("accounts:\n  - uid: x\n    colour: blue\n"), 0o600))

	_, err := h.run("seed", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding fixtures")
}

func TestMaintenanceCommands(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("migrate")
	require.NoError(t, err)
	assert.Equal(t, "Database schema is at version 1.\n", out)

	h.object("site", "create", "--uid", "u1", "--name", "Notes")
	result := h.object("recount")
	assert.Equal(t, float64(1), result["accounts"])
	assert.Equal(t, float64(1), result["sites"])
	assert.Equal(t, float64(0), result["updated"])

	require.NoError(t, h.store.WriteEventLog(context.Background(), eventFixture()))
	out, err = h.run("log", "-n", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "backend query failed")
}

func eventFixture() model.Event {
	return model.Event{
		Level:     model.EventLevelError,
		Category:  model.EventCategoryStorage,
		Message:   "backend query failed",
		Metadata:  "{}",
		CreatedAt: testNow,
	}
}

func TestAnalyticsSummaryCommand(t *testing.T) {
	h := newHarness(t)

	summary := h.object("analytics", "summary", "--uid", "u1", "--since", "7d")
	assert.Equal(t, float64(0), summary["totalViews"])

	out, err := h.run("analytics", "summary", "--uid", "u1", "--since", "yesterday-ish")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "invalid --since")
}

func TestParseSince(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"", time.Time{}},
		{"2026-02-01", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"2026-02-01T10:30:00+02:00", time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC)},
		{"7d", testNow.AddDate(0, 0, -7)},
		{"36h", testNow.Add(-36 * time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSince(tt.in, testNow)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}

	for _, bad := range []string{"soon", "-3d", "-1h"} {
		_, err := parseSince(bad, testNow)
		assert.Error(t, err, bad)
	}
}
