// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func limitedHandler(rl *ClientRateLimiter) http.Handler {
	onLimit := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	return rl.Middleware(onLimit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestClientRateLimiter(t *testing.T) {
	handler := limitedHandler(NewClientRateLimiter(0.001, 2))

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/track-analytics", nil)
		req.Header.Set("X-Forwarded-For", ip)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("203.0.113.1"); code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i, code, http.StatusOK)
		}
	}
	if code := send("203.0.113.1"); code != http.StatusTooManyRequests {
		t.Errorf("over burst: status = %d, want %d", code, http.StatusTooManyRequests)
	}
	if code := send("203.0.113.2"); code != http.StatusOK {
		t.Errorf("other client: status = %d, want %d", code, http.StatusOK)
	}
}

func TestClientRateLimiterSkipsPreflight(t *testing.T) {
	handler := limitedHandler(NewClientRateLimiter(0.001, 1))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/track-analytics", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("OPTIONS %d: status = %d, want %d", i, rec.Code, http.StatusOK)
		}
	}
}

func TestLimiterCacheConcurrentGet(t *testing.T) {
	lc := newLimiterCache[string](1, 1)

	var wg sync.WaitGroup
	results := make(chan any, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- lc.get("same")
		}()
	}
	wg.Wait()
	close(results)

	first := <-results
	for l := range results {
		if l != first {
			t.Fatal("get returned different limiters for the same key")
		}
	}
}

func TestLimiterCacheClearIfExceeds(t *testing.T) {
	lc := newLimiterCache[int](1, 1)
	for i := 0; i < 5; i++ {
		lc.get(i)
	}

	if lc.clearIfExceeds(10) {
		t.Error("clearIfExceeds(10) = true with 5 entries")
	}
	if !lc.clearIfExceeds(3) {
		t.Error("clearIfExceeds(3) = false with 5 entries")
	}
	if n := len(lc.limiters); n != 0 {
		t.Errorf("len after clear = %d, want 0", n)
	}
}
