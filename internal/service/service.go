// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the write side of the CMS: site, post, product
// and file management, feed import, analytics summaries and content count
// reconciliation. The public read API lives in handler/api.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"
)

// Domain errors.
var (
	ErrSiteLimit    = errors.New("site limit reached")
	ErrSlugTaken    = errors.New("slug already in use")
	ErrWrongKind    = errors.New("site type mismatch")
	ErrStorageLimit = errors.New("storage limit reached")
)

// ValidationError reports an invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Options holds dependencies shared by all services.
type Options struct {
	Logger *slog.Logger
	// PublicBaseURL prefixes generated content URLs.
	PublicBaseURL string
	Now           func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	o.PublicBaseURL = strings.TrimRight(o.PublicBaseURL, "/")
	return o
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// splitList trims entries and drops empty ones.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// SplitComma splits a comma separated list, dropping empty entries.
func SplitComma(s string) []string {
	return splitList(strings.Split(s, ","))
}
