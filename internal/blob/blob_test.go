// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, Options{Backend: BackendLocal, Dir: t.TempDir(), BaseURL: "http://cms.test/"})
	require.NoError(t, err)

	url, err := store.Put(ctx, "user1/abc.png", strings.NewReader("png-bytes"), 9, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://cms.test/uploads/user1/abc.png", url)

	rc, err := store.Open(ctx, "user1/abc.png")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, store.Delete(ctx, "user1/abc.png"))
	_, err = store.Open(ctx, "user1/abc.png")
	assert.True(t, errors.Is(err, ErrNotFound), "Open after Delete error = %v", err)

	assert.NoError(t, store.Delete(ctx, "user1/abc.png"), "deleting a missing key")
}

func TestLocalRejectsTraversal(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../escape.txt", strings.NewReader("x"), 1, "text/plain")
	assert.Error(t, err)
}

func TestOpenValidation(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, Options{Backend: "ftp"})
	assert.Error(t, err)

	_, err = Open(ctx, Options{Backend: BackendLocal})
	assert.Error(t, err, "local backend without directory")

	_, err = Open(ctx, Options{Backend: BackendS3, S3: S3Config{Endpoint: "localhost:9000"}})
	assert.Error(t, err, "s3 backend without bucket")
}

func TestS3URL(t *testing.T) {
	ctx := context.Background()

	s, err := NewS3(ctx, S3Config{Endpoint: "localhost:9000", Bucket: "media", PathStyle: true}, "")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/media/u1/f.png", s.URL("u1/f.png"))

	s, err = NewS3(ctx, S3Config{Endpoint: "s3.example.com", Bucket: "media", UseSSL: true}, "https://cdn.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/u1/f.png", s.URL("u1/f.png"))
}
