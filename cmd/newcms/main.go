// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/erolledph/new-cms/internal/blob"
	"github.com/erolledph/new-cms/internal/config"
	"github.com/erolledph/new-cms/internal/docstore"
	"github.com/erolledph/new-cms/internal/geoip"
	"github.com/erolledph/new-cms/internal/handler"
	"github.com/erolledph/new-cms/internal/handler/api"
	"github.com/erolledph/new-cms/internal/logging"
	"github.com/erolledph/new-cms/internal/middleware"
	"github.com/erolledph/new-cms/internal/scheduler"
	"github.com/erolledph/new-cms/internal/service"
	"github.com/erolledph/new-cms/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "newcms - multi-tenant blog and product content API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CMS_BACKEND            Document backend: sqlite|firestore (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CMS_DB_PATH            SQLite database path (default: ./data/cms.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CMS_SERVER_PORT        Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CMS_ENV                Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CMS_GEOIP_DB_PATH      GeoLite2-Country.mmdb for analytics countries (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FIREBASE_PROJECT_ID    Firestore project (firestore backend)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
	if *showVersion {
		_, _ = fmt.Printf("newcms %s\n", info)
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logger := logging.NewLogger(os.Stdout, cfg.LogFormat, level, nil)
	slog.SetDefault(logger)

	accessor := docstore.NewAccessor(docstore.Opener(cfg.DocstoreOptions()))
	defer func() {
		if err := accessor.Close(); err != nil {
			slog.Error("error closing backend", "error", err)
		}
	}()

	ctx := context.Background()

	// The SQLite backend is opened eagerly so the event log can be attached
	// to the logger. Firestore stays lazy.
	if cfg.Backend == docstore.BackendSQLite {
		store, err := accessor.Store(ctx)
		if err != nil {
			return fmt.Errorf("opening backend: %w", err)
		}
		if sink, ok := store.(logging.EventLogSink); ok {
			logger = logging.NewLogger(os.Stdout, cfg.LogFormat, level, sink)
			slog.SetDefault(logger)
			slog.Info("event log integration enabled", "min_level", "warn")
		}
	}
	slog.Info("backend configured", "backend", cfg.Backend)

	geo := geoip.NewLookup()
	if cfg.GeoIPEnabled() {
		if err := geo.Init(cfg.GeoIPDBPath); err != nil {
			slog.Warn("GeoIP database unavailable, countries will be empty", "error", err)
		} else {
			slog.Info("GeoIP database loaded", "path", cfg.GeoIPDBPath)
		}
	}
	defer func() { _ = geo.Close() }()

	sched := scheduler.New(logger)
	if cfg.RecountEnabled() {
		store, err := accessor.Store(ctx)
		if err != nil {
			slog.Warn("recount job not scheduled, backend unavailable", "error", err)
		} else if err := sched.AddRecount(cfg.RecountSchedule, service.NewRecounter(store, service.Options{Logger: logger})); err != nil {
			return fmt.Errorf("scheduling recount: %w", err)
		}
	}
	if cfg.GeoIPEnabled() {
		if err := sched.AddGeoIPReload(scheduler.GeoIPReloadSpec, geo); err != nil {
			return fmt.Errorf("scheduling GeoIP reload: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	env := api.NewEnvelope(nil)
	apiHandler := api.NewHandler(accessor, api.Options{GeoIP: geo, Logger: logger})
	limiter := middleware.NewClientRateLimiter(cfg.AnalyticsRate, cfg.AnalyticsBurst)
	onLimit := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		env.Failure(http.StatusTooManyRequests, api.MsgQuotaExceeded).Write(w)
	})
	onTimeout := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		env.Failure(http.StatusServiceUnavailable, "Request timeout").Write(w)
	})

	healthHandler := handler.NewHealthHandler(accessor, handler.HealthOptions{
		UploadsDir: localUploadsDir(cfg),
		Version:    info.Short(),
		Detailed:   cfg.IsDevelopment(),
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))

	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	if dir := localUploadsDir(cfg); dir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(dir))))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout, onTimeout))
		apiHandler.Routes(r, limiter.Middleware(onLimit))
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("starting server", "addr", srv.Addr, "version", info.Short())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// localUploadsDir returns the uploads directory when files are stored on
// the local filesystem, "" otherwise.
func localUploadsDir(cfg *config.Config) string {
	if cfg.BlobBackend != blob.BackendLocal {
		return ""
	}
	return cfg.UploadsDir
}
