// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MaxBodyBytes caps the request body read for the analytics collector.
const MaxBodyBytes = 1 << 20

// Request is the transport-independent view of an incoming call that every
// endpoint operates on.
type Request struct {
	Method     string
	Path       string
	Query      map[string]string
	Headers    map[string]string // keys are lower case
	Body       string
	RemoteAddr string
}

// Header returns a header value by case-insensitive name.
func (r Request) Header(name string) string {
	return r.Headers[strings.ToLower(name)]
}

// FromHTTP builds a Request from an *http.Request, keeping the first value
// of repeated query parameters and headers.
func FromHTTP(r *http.Request) (Request, error) {
	req := Request{
		Method:     r.Method,
		Path:       r.URL.Path,
		Query:      make(map[string]string),
		Headers:    make(map[string]string),
		RemoteAddr: r.RemoteAddr,
	}

	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			req.Query[key] = values[0]
		}
	}
	for key, values := range r.Header {
		if len(values) > 0 {
			req.Headers[strings.ToLower(key)] = values[0]
		}
	}

	if r.Body != nil {
		body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
		if err != nil {
			return req, fmt.Errorf("reading request body: %w", err)
		}
		req.Body = string(body)
	}

	return req, nil
}
