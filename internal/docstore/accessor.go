// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package docstore

import (
	"context"
	"fmt"
	"sync"
)

// OpenFunc opens a backend.
type OpenFunc func(ctx context.Context) (Store, error)

// Accessor hands out a single lazily opened backend handle that is shared
// by all handlers. A failed open is not cached; the next call retries.
type Accessor struct {
	open  OpenFunc
	mu    sync.Mutex
	store Store
}

// NewAccessor creates an accessor that opens its backend with open on first use.
func NewAccessor(open OpenFunc) *Accessor {
	return &Accessor{open: open}
}

// NewStaticAccessor wraps an already opened backend.
func NewStaticAccessor(s Store) *Accessor {
	return &Accessor{store: s}
}

// Store returns the shared backend handle, opening it if necessary.
func (a *Accessor) Store(ctx context.Context) (Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store != nil {
		return a.store, nil
	}
	if a.open == nil {
		return nil, fmt.Errorf("docstore: no backend configured")
	}

	s, err := a.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening backend: %w", err)
	}
	a.store = s
	return s, nil
}

// Close releases the backend handle if it was opened.
func (a *Accessor) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}
