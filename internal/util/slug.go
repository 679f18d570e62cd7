// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides slug generation and validation, client address
// helpers and safe path handling.
package util

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slug length limits.
const (
	MinSlugLength     = 2
	MaxSiteSlugLength = 50
	MaxItemSlugLength = 200
)

var (
	// slugRegex matches non-alphanumeric characters (except hyphens)
	slugRegex = regexp.MustCompile(`[^a-z0-9-]+`)

	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Slugify converts a string to a URL-friendly slug. Non-Latin scripts are
// transliterated to ASCII first.
func Slugify(s string) string {
	result := unidecode.Unidecode(s)

	// Strip any remaining combining marks
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ = transform.String(t, result)

	result = strings.ToLower(result)
	result = strings.Join(strings.Fields(result), "-")
	result = slugRegex.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// ErrSlugRequired is returned by ValidateSlug for an empty slug.
var ErrSlugRequired = errors.New("slug is required")

// ValidateSlug checks slug format: MinSlugLength to maxLen characters of
// lowercase letters, digits and hyphens, not starting or ending with a hyphen.
func ValidateSlug(s string, maxLen int) error {
	if s == "" {
		return ErrSlugRequired
	}
	if len(s) < MinSlugLength {
		return fmt.Errorf("slug must be at least %d characters", MinSlugLength)
	}
	if len(s) > maxLen {
		return fmt.Errorf("slug must be at most %d characters", maxLen)
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return errors.New("slug can only contain lowercase letters, numbers and hyphens")
		}
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return errors.New("slug cannot start or end with a hyphen")
	}
	return nil
}
