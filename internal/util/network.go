// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"net"
	"strings"
)

// UnknownIP is reported when no client address can be determined.
const UnknownIP = "unknown"

// privateIPBlocks contains CIDR ranges for private/reserved IP addresses
// per RFC 1918, RFC 4193, RFC 3927, and RFC 5737.
var privateIPBlocks []*net.IPNet

func init() {
	cidrs := []string{
		"10.0.0.0/8",      // RFC 1918 - private
		"172.16.0.0/12",   // RFC 1918 - private
		"192.168.0.0/16",  // RFC 1918 - private
		"127.0.0.0/8",     // RFC 1122 - loopback
		"169.254.0.0/16",  // RFC 3927 - link-local
		"100.64.0.0/10",   // RFC 6598 - shared address (CGNAT)
		"192.0.2.0/24",    // RFC 5737 - documentation
		"198.51.100.0/24", // RFC 5737 - documentation
		"203.0.113.0/24",  // RFC 5737 - documentation

		"::1/128",   // IPv6 loopback
		"fe80::/10", // IPv6 link-local
		"fc00::/7",  // RFC 4193 - IPv6 unique local
	}

	for _, cidr := range cidrs {
		_, block, err := net.ParseCIDR(cidr)
		if err == nil {
			privateIPBlocks = append(privateIPBlocks, block)
		}
	}
}

// IsPrivateIP checks if an IP address falls within a private or reserved range.
func IsPrivateIP(ip net.IP) bool {
	if ip == nil {
		return true
	}
	for _, block := range privateIPBlocks {
		if block.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP determines the originating client address. The first entry of
// X-Forwarded-For wins, then X-Real-IP, then Client-IP, then the host part
// of the transport remote address. header looks up a request header by name.
func ClientIP(header func(name string) string, remoteAddr string) string {
	if xff := header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(header("X-Real-IP")); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(header("Client-IP")); ip != "" {
		return ip
	}
	if remoteAddr != "" {
		if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
			return host
		}
		return remoteAddr
	}
	return UnknownIP
}
