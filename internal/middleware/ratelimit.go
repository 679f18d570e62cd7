// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/erolledph/new-cms/internal/util"
)

// maxTrackedClients bounds the per-client limiter cache.
const maxTrackedClients = 10000

// limiterCache is a generic rate limiter cache with double-check locking.
type limiterCache[K comparable] struct {
	limiters map[K]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// get returns the rate limiter for a specific key, creating one if needed.
func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()

	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

// clearIfExceeds clears all entries if the cache exceeds maxSize.
// Returns true if the cache was cleared.
func (lc *limiterCache[K]) clearIfExceeds(maxSize int) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if len(lc.limiters) > maxSize {
		lc.limiters = make(map[K]*rate.Limiter)
		return true
	}
	return false
}

// ClientRateLimiter limits requests per client IP.
type ClientRateLimiter struct {
	cache *limiterCache[string]
}

// NewClientRateLimiter creates a limiter allowing rps requests per second
// with the given burst for each client.
func NewClientRateLimiter(rps float64, burst int) *ClientRateLimiter {
	return &ClientRateLimiter{
		cache: newLimiterCache[string](rps, burst),
	}
}

// Middleware returns the rate limiting middleware. Rejected requests are
// answered by onLimit. OPTIONS requests are never limited.
func (rl *ClientRateLimiter) Middleware(onLimit http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			ip := util.ClientIP(r.Header.Get, r.RemoteAddr)
			if rl.cache.clearIfExceeds(maxTrackedClients) {
				slog.Info("rate limiter cache reset", "limit", maxTrackedClients)
			}
			if !rl.cache.get(ip).Allow() {
				slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
				onLimit.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
