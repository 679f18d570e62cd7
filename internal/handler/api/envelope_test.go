// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
}

type testPayload struct {
	Name string `json:"name"`
	Stamp
}

func TestEnvelopeSuccess(t *testing.T) {
	env := NewEnvelope(fixedClock)
	resp := env.Success(http.StatusOK, &testPayload{Name: "<a&b>"})

	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	want := `{"name":"<a&b>","generatedAt":"2025-01-15T10:00:00.000Z"}`
	if resp.Body != want {
		t.Errorf("Body = %s, want %s", resp.Body, want)
	}
	assertCORS(t, resp.Headers)
}

func TestEnvelopeFailure(t *testing.T) {
	env := NewEnvelope(fixedClock)
	resp := env.Failure(http.StatusNotFound, "Endpoint not found")

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	want := `{"error":"Endpoint not found","timestamp":"2025-01-15T10:00:00.000Z"}`
	if resp.Body != want {
		t.Errorf("Body = %s, want %s", resp.Body, want)
	}
	assertCORS(t, resp.Headers)
}

func TestEnvelopePreflight(t *testing.T) {
	env := NewEnvelope(fixedClock)

	resp, ok := env.Preflight(Request{Method: http.MethodOptions})
	if !ok {
		t.Fatal("Preflight(OPTIONS) ok = false, want true")
	}
	if resp.StatusCode != http.StatusOK || resp.Body != "" {
		t.Errorf("Preflight = %d %q, want 200 with empty body", resp.StatusCode, resp.Body)
	}
	assertCORS(t, resp.Headers)

	if _, ok := env.Preflight(Request{Method: http.MethodGet}); ok {
		t.Error("Preflight(GET) ok = true, want false")
	}
}

func TestResponseWrite(t *testing.T) {
	env := NewEnvelope(fixedClock)
	w := httptest.NewRecorder()
	env.Failure(http.StatusBadRequest, "bad").Write(w)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Code = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "*")
	}
	if !strings.Contains(w.Body.String(), `"error":"bad"`) {
		t.Errorf("Body = %s, want error message", w.Body.String())
	}
}

func assertCORS(t *testing.T, headers map[string]string) {
	t.Helper()
	want := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "GET, POST, PUT, DELETE, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type, Authorization",
		"Content-Type":                 "application/json",
	}
	for k, v := range want {
		if headers[k] != v {
			t.Errorf("header %s = %q, want %q", k, headers[k], v)
		}
	}
}
