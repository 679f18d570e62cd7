// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func newTestTimeoutWriter() (*timeoutWriter, *httptest.ResponseRecorder) {
	rr := httptest.NewRecorder()
	return newTimeoutWriter(rr), rr
}

func TestTimeoutMiddlewareNormalRequest(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"posts":[]}`))
	})

	wrapped := Timeout(5*time.Second, nil)(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/content", nil)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusOK)
	}
	if body := rr.Body.String(); body != `{"posts":[]}` {
		t.Errorf("Body = %q, want %q", body, `{"posts":[]}`)
	}
}

func TestTimeoutMiddlewareSlowRequest(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(5 * time.Second):
			w.WriteHeader(http.StatusOK)
		case <-r.Context().Done():
			return
		}
	})

	wrapped := Timeout(50*time.Millisecond, nil)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
	if body := rr.Body.String(); body != "Request timeout" {
		t.Errorf("Body = %q, want %q", body, "Request timeout")
	}
}

func TestTimeoutMiddlewareCustomResponse(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	onTimeout := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusGatewayTimeout)
		_, _ = w.Write([]byte(`{"error":"timeout"}`))
	})

	wrapped := Timeout(20*time.Millisecond, onTimeout)(handler)

	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusGatewayTimeout {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusGatewayTimeout)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}
}

func TestTimeoutMiddlewareWithHeaders(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom-Header", "test-value")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	})

	wrapped := Timeout(5*time.Second, nil)(handler)

	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))

	if rr.Code != http.StatusCreated {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusCreated)
	}
	if h := rr.Header().Get("X-Custom-Header"); h != "test-value" {
		t.Errorf("X-Custom-Header = %q, want %q", h, "test-value")
	}
}

func TestTimeoutWriterWriteHeader(t *testing.T) {
	tw, rr := newTestTimeoutWriter()

	tw.WriteHeader(http.StatusOK)
	if !tw.wroteHeader {
		t.Error("wroteHeader should be true after WriteHeader")
	}

	tw.WriteHeader(http.StatusNotFound)
	if rr.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d (second WriteHeader should be ignored)", rr.Code, http.StatusOK)
	}
}

func TestTimeoutWriterWrite(t *testing.T) {
	tw, rr := newTestTimeoutWriter()

	n, err := tw.Write([]byte("hello"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != 5 {
		t.Errorf("Write() = %d, want 5", n)
	}
	if rr.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestTimeoutWriterAfterDeadline(t *testing.T) {
	tw, rr := newTestTimeoutWriter()
	tw.timedOut = true

	_, err := tw.Write([]byte("late"))
	if !errors.Is(err, http.ErrHandlerTimeout) {
		t.Errorf("Write() error = %v, want %v", err, http.ErrHandlerTimeout)
	}
	if rr.Body.Len() != 0 {
		t.Errorf("Body = %q, want empty", rr.Body.String())
	}
}

func TestTimeoutMiddlewareLateHandlerHeaders(t *testing.T) {
	finished := make(chan error, 1)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		for i := 0; i < 100; i++ {
			w.Header().Set("X-Late-"+strconv.Itoa(i), "1")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, err := w.Write([]byte(`{"error":"late"}`))
		finished <- err
	})
	onTimeout := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 100; i++ {
			w.Header().Set("X-Timeout-"+strconv.Itoa(i), "1")
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Request timeout"}`))
	})

	wrapped := Timeout(10*time.Millisecond, onTimeout)(handler)

	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	select {
	case err := <-finished:
		if !errors.Is(err, http.ErrHandlerTimeout) {
			t.Errorf("late Write() error = %v, want %v", err, http.ErrHandlerTimeout)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("handler did not finish")
	}

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
	if body := rr.Body.String(); body != `{"error":"Request timeout"}` {
		t.Errorf("Body = %q, want timeout body", body)
	}
	if h := rr.Header().Get("X-Late-0"); h != "" {
		t.Errorf("X-Late-0 = %q, want handler headers dropped", h)
	}
	if h := rr.Header().Get("X-Timeout-0"); h != "1" {
		t.Errorf("X-Timeout-0 = %q, want %q", h, "1")
	}
}

func TestTimeoutWriterHeadersCopiedOnWrite(t *testing.T) {
	tw, rr := newTestTimeoutWriter()

	tw.Header().Set("X-Before", "yes")
	if rr.Header().Get("X-Before") != "" {
		t.Error("header reached the response before it started")
	}
	_, _ = tw.Write([]byte("ok"))
	tw.Header().Set("X-After", "yes")

	if got := rr.Header().Get("X-Before"); got != "yes" {
		t.Errorf("X-Before = %q, want %q", got, "yes")
	}
	if got := rr.Header().Get("X-After"); got != "" {
		t.Errorf("X-After = %q, want headers frozen once written", got)
	}
}
