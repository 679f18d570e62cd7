// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the service-level HTTP handlers.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"runtime"
	"syscall"
	"time"

	"github.com/erolledph/new-cms/internal/docstore"
)

// StoreProvider hands out the shared backend handle.
type StoreProvider interface {
	Store(ctx context.Context) (docstore.Store, error)
}

// HealthOptions configures a HealthHandler.
type HealthOptions struct {
	UploadsDir string // local uploads directory; empty skips the disk check
	Version    string
	Detailed   bool // expose checks and system info
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	stores    StoreProvider
	opts      HealthOptions
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(stores StoreProvider, opts HealthOptions) *HealthHandler {
	return &HealthHandler{
		stores:    stores,
		opts:      opts,
		startTime: time.Now(),
	}
}

// HealthStatusPublic is the minimal health response.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// HealthStatus represents the overall health status with check details.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
}

// Health handles GET /health requests.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	backendCheck := h.checkBackend(r.Context())
	diskCheck := h.checkDiskSpace()

	overallStatus := "healthy"
	if backendCheck.Status != "healthy" || diskCheck.Status != "healthy" {
		overallStatus = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	if overallStatus != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if !h.opts.Detailed {
		_ = json.NewEncoder(w).Encode(HealthStatusPublic{Status: overallStatus})
		return
	}

	status := HealthStatus{
		Status:    overallStatus,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.opts.Version,
		Checks: map[string]Check{
			"backend": backendCheck,
			"disk":    diskCheck,
		},
	}
	if r.URL.Query().Get("verbose") == "true" {
		status.System = getSystemInfo()
	}

	_ = json.NewEncoder(w).Encode(status)
}

// Liveness handles GET /health/live - simple liveness check.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "alive",
	})
}

// Readiness handles GET /health/ready - checks if the backend answers.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	backendCheck := h.checkBackend(r.Context())

	w.Header().Set("Content-Type", "application/json")

	if backendCheck.Status == "healthy" {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "ready",
		})
		return
	}

	w.WriteHeader(http.StatusServiceUnavailable)
	resp := map[string]string{"status": "not_ready"}
	if h.opts.Detailed {
		resp["message"] = backendCheck.Message
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// checkBackend opens (or reuses) the backend and pings it.
func (h *HealthHandler) checkBackend(ctx context.Context) Check {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	store, err := h.stores.Store(ctx)
	if err == nil {
		err = store.Ping(ctx)
	}
	latency := time.Since(start)

	if err != nil {
		return Check{
			Status:  "unhealthy",
			Message: err.Error(),
			Latency: latency.String(),
		}
	}

	return Check{
		Status:  "healthy",
		Message: "Connected",
		Latency: latency.String(),
	}
}

// checkDiskSpace checks available disk space in the uploads directory.
func (h *HealthHandler) checkDiskSpace() Check {
	if h.opts.UploadsDir == "" {
		return Check{Status: "healthy", Message: "Remote blob storage"}
	}
	if _, err := os.Stat(h.opts.UploadsDir); errors.Is(err, fs.ErrNotExist) {
		return Check{
			Status:  "healthy",
			Message: "Uploads directory does not exist yet",
		}
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(h.opts.UploadsDir, &stat); err != nil {
		return Check{
			Status:  "unhealthy",
			Message: "Failed to check disk space: " + err.Error(),
		}
	}

	availableBytes := stat.Bavail * uint64(stat.Bsize)
	available := formatBytes(availableBytes)

	const minSpace = 100 * 1024 * 1024 // 100MB
	if availableBytes < minSpace {
		return Check{
			Status:  "degraded",
			Message: "Low disk space: " + available + " available",
		}
	}

	return Check{
		Status:  "healthy",
		Message: available + " available",
	}
}

func getSystemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     formatBytes(m.Alloc),
		MemSys:       formatBytes(m.Sys),
	}
}

// formatBytes converts bytes to a human-readable string.
func formatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
