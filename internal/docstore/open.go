// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package docstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Backend names accepted by Opener.
const (
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
)

var (
	_ Store = (*SQLite)(nil)
	_ Store = (*Firestore)(nil)
)

// Options selects and configures a backend.
type Options struct {
	Backend     string
	DBPath      string
	Credentials FirebaseCredentials
}

// Opener returns an OpenFunc for the configured backend.
func Opener(opts Options) OpenFunc {
	return func(ctx context.Context) (Store, error) {
		switch opts.Backend {
		case BackendFirestore:
			return OpenFirestore(ctx, opts.Credentials)
		case BackendSQLite, "":
			if dir := filepath.Dir(opts.DBPath); dir != "" {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return nil, fmt.Errorf("creating data directory: %w", err)
				}
			}
			return OpenSQLite(opts.DBPath)
		default:
			return nil, fmt.Errorf("unknown backend %q", opts.Backend)
		}
	}
}
