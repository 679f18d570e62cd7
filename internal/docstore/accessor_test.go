// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package docstore_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/erolledph/new-cms/internal/docstore"
	"github.com/erolledph/new-cms/internal/testutil"
)

func TestAccessorOpensOnce(t *testing.T) {
	backend := testutil.TestStore(t)
	var calls int
	var mu sync.Mutex

	acc := docstore.NewAccessor(func(context.Context) (docstore.Store, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return backend, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := acc.Store(context.Background()); err != nil {
				t.Errorf("Store: %v", err)
			}
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("open called %d times, want 1", calls)
	}
}

func TestAccessorRetriesAfterFailure(t *testing.T) {
	backend := testutil.TestStore(t)
	fail := true

	acc := docstore.NewAccessor(func(context.Context) (docstore.Store, error) {
		if fail {
			return nil, errors.New("credentials unavailable")
		}
		return backend, nil
	})

	if _, err := acc.Store(context.Background()); err == nil {
		t.Fatal("expected error on first open")
	}

	fail = false
	s, err := acc.Store(context.Background())
	if err != nil {
		t.Fatalf("Store after recovery: %v", err)
	}
	if s != docstore.Store(backend) {
		t.Error("Store returned a different backend")
	}
}

func TestAccessorWithoutBackend(t *testing.T) {
	acc := docstore.NewAccessor(nil)
	if _, err := acc.Store(context.Background()); err == nil {
		t.Error("expected error without a configured backend")
	}
}

func TestFirebaseCredentialsJSON(t *testing.T) {
	creds := docstore.FirebaseCredentials{ProjectID: "demo", PrivateKey: `-----BEGIN KEY-----\nabc\n-----END KEY-----`}
	b, err := creds.JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if want := `"private_key":"-----BEGIN KEY-----\nabc\n-----END KEY-----"`; !strings.Contains(string(b), want) {
		t.Errorf("JSON = %s, want escaped newlines in private key", b)
	}
	if !strings.Contains(string(b), `"type":"service_account"`) {
		t.Errorf("JSON = %s, missing account type", b)
	}
}
