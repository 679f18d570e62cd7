// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api implements the public read endpoints for blog posts and
// products and the analytics event collector.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/erolledph/new-cms/internal/docstore"
)

// StoreProvider hands out the shared backend handle.
type StoreProvider interface {
	Store(ctx context.Context) (docstore.Store, error)
}

// CountryLookup resolves an IP address to an ISO country code.
type CountryLookup interface {
	LookupCountry(ip string) string
}

// Endpoint is a single public operation.
type Endpoint func(ctx context.Context, req Request) Response

// Options configures a Handler. Zero values are valid.
type Options struct {
	GeoIP  CountryLookup
	Logger *slog.Logger
	Now    func() time.Time
}

// Handler holds shared dependencies for all public endpoints.
type Handler struct {
	stores StoreProvider
	geo    CountryLookup
	logger *slog.Logger
	now    func() time.Time
	env    Envelope
}

// NewHandler creates a new API handler.
func NewHandler(stores StoreProvider, opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handler{
		stores: stores,
		geo:    opts.GeoIP,
		logger: opts.Logger,
		now:    opts.Now,
		env:    NewEnvelope(opts.Now),
	}
}

// Routes mounts the query-string endpoints and the REST-style path forms.
// Every method is routed so that OPTIONS and wrong methods receive the
// standard envelope. collector wraps the analytics endpoint, typically with
// a rate limiter; it may be nil.
func (h *Handler) Routes(r chi.Router, collector func(http.Handler) http.Handler) {
	track := http.Handler(h.Serve(h.TrackEvent))
	if collector != nil {
		track = collector(track)
	}

	r.HandleFunc("/api/content", h.Serve(h.ListPosts))
	r.HandleFunc("/api/content-slug", h.Serve(h.GetPost))
	r.HandleFunc("/api/products", h.Serve(h.ListProducts))
	r.HandleFunc("/api/products-slug", h.Serve(h.GetProduct))
	r.Handle("/api/track-analytics", track)
	r.HandleFunc("/{uid}/{siteID}/api/*", h.Serve(h.Dispatch))
}

// Serve adapts an Endpoint to net/http.
func (h *Handler) Serve(e Endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := FromHTTP(r)
		if err != nil {
			h.logger.Warn("failed to read request", "path", r.URL.Path, "error", err)
			h.env.Failure(http.StatusBadRequest, "Invalid request body").Write(w)
			return
		}
		e(r.Context(), req).Write(w)
	}
}

// Dispatch routes a REST-style path to the matching read endpoint.
func (h *Handler) Dispatch(ctx context.Context, req Request) Response {
	if resp, ok := h.env.Preflight(req); ok {
		return resp
	}

	name, _, ok := MatchRoute(req.Path)
	if !ok {
		return h.env.Failure(http.StatusNotFound, "Endpoint not found")
	}

	switch name {
	case RouteContentList:
		return h.ListPosts(ctx, req)
	case RouteContentSlug:
		return h.GetPost(ctx, req)
	case RouteProductsList:
		return h.ListProducts(ctx, req)
	case RouteProductsSlug:
		return h.GetProduct(ctx, req)
	default:
		return h.env.Failure(http.StatusNotFound, "Endpoint not found")
	}
}

// failureMessages are the client-facing messages of one endpoint family.
type failureMessages struct {
	method   string
	denied   string
	notFound string
	quota    string
	internal string
}

// failure maps a backend error to a response. Internal details are logged
// and never returned to the client.
func (h *Handler) failure(msgs failureMessages, op string, err error) Response {
	switch {
	case errors.Is(err, docstore.ErrPermissionDenied):
		h.logger.Warn("backend denied access", "op", op, "error", err)
		return h.env.Failure(http.StatusForbidden, msgs.denied)
	case errors.Is(err, docstore.ErrNotFound) && msgs.notFound != "":
		return h.env.Failure(http.StatusNotFound, msgs.notFound)
	case errors.Is(err, docstore.ErrQuotaExceeded) && msgs.quota != "":
		h.logger.Warn("backend quota exceeded", "op", op, "error", err)
		return h.env.Failure(http.StatusTooManyRequests, msgs.quota)
	default:
		h.logger.Error("request failed", "op", op, "error", err)
		return h.env.Failure(http.StatusInternalServerError, msgs.internal)
	}
}
