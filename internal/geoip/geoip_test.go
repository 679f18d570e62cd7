// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package geoip

import (
	"path/filepath"
	"testing"
)

func TestLookupWithoutDatabase(t *testing.T) {
	g := NewLookup()
	if err := g.Init(""); err != nil {
		t.Fatalf("Init(\"\") error = %v", err)
	}
	if g.IsEnabled() {
		t.Error("IsEnabled() = true without a database")
	}

	tests := []struct {
		ip   string
		want string
	}{
		{"10.1.2.3", CountryLocal},
		{"192.168.0.10", CountryLocal},
		{"127.0.0.1", CountryLocal},
		{"::1", CountryLocal},
		{"8.8.8.8", ""},
		{"not-an-ip", ""},
		{"unknown", ""},
	}
	for _, tt := range tests {
		if got := g.LookupCountry(tt.ip); got != tt.want {
			t.Errorf("LookupCountry(%q) = %q, want %q", tt.ip, got, tt.want)
		}
	}
}

func TestInitMissingFile(t *testing.T) {
	g := NewLookup()
	err := g.Init(filepath.Join(t.TempDir(), "missing.mmdb"))
	if err == nil {
		t.Fatal("Init() error = nil, want error for missing file")
	}
	if g.IsEnabled() {
		t.Error("IsEnabled() = true after failed Init")
	}
	if err := g.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestReloadWithoutPath(t *testing.T) {
	g := NewLookup()
	if err := g.Reload(); err != nil {
		t.Errorf("Reload() error = %v, want nil", err)
	}
}

func TestCountryName(t *testing.T) {
	tests := map[string]string{
		"NL":         "Netherlands",
		CountryLocal: "Local Network",
		"ZZ":         "ZZ",
		"":           "Unknown",
	}
	for code, want := range tests {
		if got := CountryName(code); got != want {
			t.Errorf("CountryName(%q) = %q, want %q", code, got, want)
		}
	}
}
