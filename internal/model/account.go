// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Account is the owner of sites, files and analytics data. The UID is
// issued by the external identity provider.
type Account struct {
	UID         string    `json:"uid" firestore:"-"`
	Email       string    `json:"email" firestore:"email"`
	DisplayName string    `json:"displayName" firestore:"displayName"`
	Settings    Settings  `json:"settings" firestore:"-"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
}

// Settings holds per-account preferences.
type Settings struct {
	Currency string `json:"currency" firestore:"currency"`
	Timezone string `json:"timezone" firestore:"timezone"`
	Locale   string `json:"locale" firestore:"locale"`
}

// DefaultSettings returns the preferences applied to new accounts.
func DefaultSettings() Settings {
	return Settings{
		Currency: "USD",
		Timezone: "UTC",
		Locale:   "en-US",
	}
}
