// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erolledph/new-cms/internal/testutil"
)

func TestAccountSave(t *testing.T) {
	ctx := context.Background()
	svc := NewAccountService(testutil.TestStore(t), testOptions())

	a, err := svc.Save(ctx, testUID, AccountInput{Email: "owner@example.com", Currency: "eur"})
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", a.Email)
	assert.Equal(t, "EUR", a.Settings.Currency)
	assert.Equal(t, "UTC", a.Settings.Timezone)

	a, err = svc.Save(ctx, testUID, AccountInput{DisplayName: "Owner"})
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", a.Email, "empty fields keep values")
	assert.Equal(t, "Owner", a.DisplayName)

	got, err := svc.Get(ctx, testUID)
	require.NoError(t, err)
	assert.Equal(t, "EUR", got.Settings.Currency)
}

func TestAccountSaveValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewAccountService(testutil.TestStore(t), testOptions())

	_, err := svc.Save(ctx, "", AccountInput{})
	assert.True(t, IsValidation(err))

	_, err = svc.Save(ctx, testUID, AccountInput{Email: "Owner <owner@example.com>"})
	assert.True(t, IsValidation(err))

	_, err = svc.Save(ctx, testUID, AccountInput{Currency: "euro"})
	assert.True(t, IsValidation(err))
}
