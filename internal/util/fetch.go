// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// blockedHostnames lists metadata hosts that must never be fetched.
var blockedHostnames = []string{
	"localhost",
	"metadata.google.internal",
	"metadata.goog",
}

// ValidateFetchURL checks that a URL is safe for a server-side GET. Only
// http and https are accepted and the host must not be a loopback or
// metadata name. Address checks happen at dial time, see SafeHTTPClient.
func ValidateFetchURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("only http and https URLs are allowed")
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return fmt.Errorf("URL must have a hostname")
	}
	for _, blocked := range blockedHostnames {
		if host == blocked {
			return fmt.Errorf("host %q is not allowed", host)
		}
	}
	if ip := net.ParseIP(host); ip != nil && IsPrivateIP(ip) {
		return fmt.Errorf("URL points to private address %s", ip)
	}
	return nil
}

// SafeDialContext resolves the host and refuses to connect when any
// resolved address is private. It dials the resolved IP so a second
// lookup cannot return a different answer.
func SafeDialContext(dialer *net.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", addr, err)
		}

		ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %q: %w", host, err)
		}
		for _, ipAddr := range ips {
			if IsPrivateIP(ipAddr.IP) {
				return nil, fmt.Errorf("connection to private IP %s (resolved from %q) is blocked", ipAddr.IP, host)
			}
		}

		for _, ipAddr := range ips {
			conn, dialErr := dialer.DialContext(ctx, network, net.JoinHostPort(ipAddr.IP.String(), port))
			if dialErr == nil {
				return conn, nil
			}
			err = dialErr
		}
		return nil, fmt.Errorf("failed to connect to %q: %w", host, err)
	}
}

// SafeHTTPClient returns a client for fetching user supplied URLs.
// Redirects are re-validated and limited to 10.
func SafeHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: SafeDialContext(&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}),
			MaxIdleConns:    10,
			IdleConnTimeout: 90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if err := ValidateFetchURL(req.URL.String()); err != nil {
				return fmt.Errorf("redirect blocked: %w", err)
			}
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
}
