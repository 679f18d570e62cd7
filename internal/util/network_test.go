// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"net"
	"testing"
)

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		name    string
		ip      string
		private bool
	}{
		{"loopback", "127.0.0.1", true},
		{"10.x.x.x", "10.0.0.1", true},
		{"172.16.x.x", "172.16.0.1", true},
		{"172.31.x.x", "172.31.255.255", true},
		{"192.168.x.x", "192.168.1.1", true},
		{"link-local", "169.254.1.1", true},
		{"CGNAT", "100.64.0.1", true},
		{"documentation 203", "203.0.113.1", true},

		{"public cloudflare", "1.1.1.1", false},
		{"public google", "8.8.8.8", false},
		{"172.32.x.x public", "172.32.0.1", false},

		{"ipv6 loopback", "::1", true},
		{"ipv6 link-local", "fe80::1", true},
		{"ipv6 unique-local", "fd00::1", true},
		{"ipv6 public", "2606:4700::1111", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ip := net.ParseIP(tt.ip)
			if ip == nil {
				t.Fatalf("failed to parse IP %q", tt.ip)
			}
			if got := IsPrivateIP(ip); got != tt.private {
				t.Errorf("IsPrivateIP(%s) = %v, want %v", tt.ip, got, tt.private)
			}
		})
	}
}

func TestIsPrivateIP_Nil(t *testing.T) {
	if !IsPrivateIP(nil) {
		t.Error("IsPrivateIP(nil) should return true")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{"forwarded first entry", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1", "X-Real-IP": "10.0.0.9"}, "10.0.0.2:1234", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.2:1234", "198.51.100.4"},
		{"client ip", map[string]string{"Client-IP": "198.51.100.5"}, "", "198.51.100.5"},
		{"remote addr with port", nil, "192.0.2.1:5555", "192.0.2.1"},
		{"remote addr without port", nil, "192.0.2.1", "192.0.2.1"},
		{"ipv6 remote addr", nil, "[2001:db8::1]:443", "2001:db8::1"},
		{"nothing", nil, "", "unknown"},
		{"blank forwarded", map[string]string{"X-Forwarded-For": " , 10.0.0.1"}, "192.0.2.1:1", "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := func(name string) string { return tt.headers[name] }
			if got := ClientIP(header, tt.remoteAddr); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
