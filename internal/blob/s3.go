// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config configures an S3-compatible bucket.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
}

// S3 stores blobs in an S3-compatible bucket.
type S3 struct {
	cl      *minio.Client
	bucket  string
	baseURL string
}

// NewS3 connects to the bucket. Public URLs use publicBase when set and
// otherwise point at the endpoint in path style.
func NewS3(_ context.Context, cfg S3Config, publicBase string) (*S3, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("s3 endpoint and bucket are required")
	}

	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}
	cl, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("creating s3 client: %w", err)
	}

	base := strings.TrimRight(publicBase, "/")
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = (&url.URL{Scheme: scheme, Host: cfg.Endpoint, Path: "/" + cfg.Bucket}).String()
	}

	return &S3{cl: cl, bucket: cfg.Bucket, baseURL: base}, nil
}

// Put uploads r under key.
func (s *S3) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.cl.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	return s.URL(key), nil
}

// URL returns the public URL of key.
func (s *S3) URL(key string) string {
	return s.baseURL + "/" + key
}

// Open streams the object for key.
func (s *S3) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if _, err := s.cl.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", key, err)
	}
	obj, err := s.cl.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return obj, nil
}

// Delete removes the object for key.
func (s *S3) Delete(ctx context.Context, key string) error {
	if err := s.cl.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}
