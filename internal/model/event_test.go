// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "testing"

func TestEventLevelConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant string
		expected string
	}{
		{"info level", EventLevelInfo, "info"},
		{"warning level", EventLevelWarning, "warning"},
		{"error level", EventLevelError, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.expected {
				t.Errorf("got %q, want %q", tt.constant, tt.expected)
			}
		})
	}
}

func TestIsValidEventType(t *testing.T) {
	for _, typ := range []string{"view", "interaction", "click"} {
		if !IsValidEventType(typ) {
			t.Errorf("IsValidEventType(%q) = false, want true", typ)
		}
	}
	for _, typ := range []string{"", "View", "purchase", "views"} {
		if IsValidEventType(typ) {
			t.Errorf("IsValidEventType(%q) = true, want false", typ)
		}
	}
}
