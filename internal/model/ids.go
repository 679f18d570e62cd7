// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"
)

// ISOLayout renders UTC timestamps with millisecond precision and a Z suffix.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// FormatISO formats t in UTC using ISOLayout.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID returns an identifier of the form prefix_<unix millis>_<9 base36 chars>.
func NewID(prefix string, now time.Time) string {
	return prefix + "_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + randomBase36(9)
}

func randomBase36(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(base36)))
	for i := range b {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		b[i] = base36[v.Int64()]
	}
	return string(b)
}
