// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for the CMS read API.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// SecurityHeadersConfig holds configuration for security headers.
type SecurityHeadersConfig struct {
	// IsDevelopment disables HSTS.
	IsDevelopment bool

	// HSTSMaxAge is the max-age for Strict-Transport-Security in seconds.
	// Set to 0 to disable HSTS.
	HSTSMaxAge int

	HSTSIncludeSubDomains bool

	// ReferrerPolicy controls the Referrer-Policy header.
	ReferrerPolicy string

	// ExcludePaths are path prefixes that skip security headers.
	ExcludePaths []string
}

// DefaultSecurityHeadersConfig returns the defaults for a JSON API.
func DefaultSecurityHeadersConfig(isDev bool) SecurityHeadersConfig {
	return SecurityHeadersConfig{
		IsDevelopment:         isDev,
		HSTSMaxAge:            31536000, // 1 year
		HSTSIncludeSubDomains: !isDev,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}
}

// SecurityHeaders returns a middleware that adds security headers to responses.
func SecurityHeaders(cfg SecurityHeadersConfig) func(http.Handler) http.Handler {
	var hsts string
	if !cfg.IsDevelopment && cfg.HSTSMaxAge > 0 {
		hsts = "max-age=" + strconv.Itoa(cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubDomains {
			hsts += "; includeSubDomains"
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range cfg.ExcludePaths {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			h := w.Header()
			if hsts != "" {
				h.Set("Strict-Transport-Security", hsts)
			}
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			if cfg.ReferrerPolicy != "" {
				h.Set("Referrer-Policy", cfg.ReferrerPolicy)
			}

			next.ServeHTTP(w, r)
		})
	}
}
