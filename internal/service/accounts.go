// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/erolledph/new-cms/internal/docstore"
	"github.com/erolledph/new-cms/internal/model"
)

// AccountInput holds the editable account fields. Empty fields keep their
// current value.
type AccountInput struct {
	Email       string
	DisplayName string
	Currency    string
	Timezone    string
	Locale      string
}

// AccountService manages account profiles and settings.
type AccountService struct {
	store docstore.Store
	opts  Options
}

// NewAccountService creates an account service.
func NewAccountService(store docstore.Store, opts Options) *AccountService {
	return &AccountService{store: store, opts: opts.withDefaults()}
}

// Get returns an account.
func (s *AccountService) Get(ctx context.Context, uid string) (*model.Account, error) {
	return s.store.GetAccount(ctx, uid)
}

// Save creates the account if needed and applies in.
func (s *AccountService) Save(ctx context.Context, uid string, in AccountInput) (*model.Account, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, invalid("uid", "is required")
	}

	account, err := s.store.GetAccount(ctx, uid)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		account = &model.Account{UID: uid, Settings: model.DefaultSettings(), CreatedAt: s.opts.Now().UTC()}
	case err != nil:
		return nil, fmt.Errorf("loading account: %w", err)
	}

	if email := strings.TrimSpace(in.Email); email != "" {
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email {
			return nil, invalid("email", "is not a valid address")
		}
		account.Email = email
	}
	if name := strings.TrimSpace(in.DisplayName); name != "" {
		account.DisplayName = name
	}
	if c := strings.ToUpper(strings.TrimSpace(in.Currency)); c != "" {
		if !isCurrencyCode(c) {
			return nil, invalid("currency", "must be a 3-letter code")
		}
		account.Settings.Currency = c
	}
	if tz := strings.TrimSpace(in.Timezone); tz != "" {
		account.Settings.Timezone = tz
	}
	if l := strings.TrimSpace(in.Locale); l != "" {
		account.Settings.Locale = l
	}

	if err := s.store.SetAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("saving account: %w", err)
	}
	s.opts.Logger.Info("account saved", "uid", uid)
	return account, nil
}
