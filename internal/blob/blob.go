// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package blob stores uploaded file bytes on the local filesystem or in an
// S3-compatible bucket.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Backend names accepted by Open.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("blob not found")

// Store persists file contents under slash-separated keys.
type Store interface {
	// Put writes r under key and returns the public URL of the object.
	// size may be -1 when unknown.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Options selects and configures a blob backend.
type Options struct {
	Backend string
	// Dir is the root directory of the local backend.
	Dir string
	// BaseURL prefixes public URLs. For the local backend it is the site's
	// public base; for S3 it overrides the endpoint-derived URL when set.
	BaseURL string
	S3      S3Config
}

// Open creates the configured backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendLocal, "":
		return NewLocal(opts.Dir, opts.BaseURL)
	case BackendS3:
		return NewS3(ctx, opts.S3, opts.BaseURL)
	default:
		return nil, fmt.Errorf("unknown blob backend %q", opts.Backend)
	}
}
