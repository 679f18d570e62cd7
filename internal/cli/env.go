// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/erolledph/new-cms/internal/blob"
	"github.com/erolledph/new-cms/internal/config"
	"github.com/erolledph/new-cms/internal/docstore"
	"github.com/erolledph/new-cms/internal/logging"
	"github.com/erolledph/new-cms/internal/service"
)

// Env holds the opened backends a command works with.
type Env struct {
	Config *config.Config
	Store  docstore.Store
	Logger *slog.Logger
	// Now overrides the clock; nil uses time.Now.
	Now func() time.Time

	blobs     blob.Store
	openBlobs func(ctx context.Context) (blob.Store, error)
	closers   []func() error
}

// OpenEnv loads the configuration and opens the document backend. The
// blob store is opened on first use.
func OpenEnv(ctx context.Context, opts *RootOptions) (*Env, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	if opts.Verbose {
		level = slog.LevelDebug
	}
	// Diagnostics go to stderr so JSON output stays parseable.
	logger := logging.NewLogger(os.Stderr, logging.FormatText, level, nil)

	store, err := docstore.Opener(cfg.DocstoreOptions())(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening %s backend: %w", cfg.Backend, err)
	}
	if sink, ok := store.(logging.EventLogSink); ok {
		logger = logging.NewLogger(os.Stderr, logging.FormatText, level, sink)
	}

	return &Env{
		Config: cfg,
		Store:  store,
		Logger: logger,
		openBlobs: func(ctx context.Context) (blob.Store, error) {
			return blob.Open(ctx, cfg.BlobOptions())
		},
		closers: []func() error{store.Close},
	}, nil
}

// NewEnv wraps already opened backends.
func NewEnv(cfg *config.Config, store docstore.Store, blobs blob.Store, logger *slog.Logger) *Env {
	if logger == nil {
		logger = slog.Default()
	}
	return &Env{Config: cfg, Store: store, Logger: logger, blobs: blobs}
}

// Blobs returns the uploaded file storage, opening it if necessary.
func (e *Env) Blobs(ctx context.Context) (blob.Store, error) {
	if e.blobs != nil {
		return e.blobs, nil
	}
	if e.openBlobs == nil {
		return nil, fmt.Errorf("no blob storage configured")
	}
	b, err := e.openBlobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening blob storage: %w", err)
	}
	e.blobs = b
	return b, nil
}

// Close releases everything OpenEnv opened.
func (e *Env) Close() error {
	var first error
	for _, c := range e.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (e *Env) options() service.Options {
	opts := service.Options{Logger: e.Logger, Now: e.Now}
	if e.Config != nil {
		opts.PublicBaseURL = e.Config.PublicBaseURL
	}
	return opts
}

func (e *Env) sites() *service.SiteService       { return service.NewSiteService(e.Store, e.options()) }
func (e *Env) posts() *service.PostService       { return service.NewPostService(e.Store, e.options()) }
func (e *Env) products() *service.ProductService { return service.NewProductService(e.Store, e.options()) }
func (e *Env) accounts() *service.AccountService { return service.NewAccountService(e.Store, e.options()) }
func (e *Env) analytics() *service.AnalyticsService {
	return service.NewAnalyticsService(e.Store, e.options())
}
