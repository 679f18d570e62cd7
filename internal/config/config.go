// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the application configuration from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/erolledph/new-cms/internal/blob"
	"github.com/erolledph/new-cms/internal/docstore"
	"github.com/erolledph/new-cms/internal/logging"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env        string `env:"CMS_ENV" envDefault:"development"`
	LogLevel   string `env:"CMS_LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"CMS_LOG_FORMAT" envDefault:"text"`
	ServerHost string `env:"CMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"CMS_SERVER_PORT" envDefault:"8080"`

	// Document backend
	Backend string `env:"CMS_BACKEND" envDefault:"sqlite"`
	DBPath  string `env:"CMS_DB_PATH" envDefault:"./data/cms.db"`

	// Analytics collector
	GeoIPDBPath     string  `env:"CMS_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file
	AnalyticsRate   float64 `env:"CMS_ANALYTICS_RATE" envDefault:"5"`
	AnalyticsBurst  int     `env:"CMS_ANALYTICS_BURST" envDefault:"20"`
	RecountSchedule string  `env:"CMS_RECOUNT_SCHEDULE" envDefault:"@every 1h"` // "off" disables

	// Uploaded files
	UploadsDir    string `env:"CMS_UPLOADS_DIR" envDefault:"./uploads"`
	PublicBaseURL string `env:"CMS_PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	BlobBackend   string `env:"CMS_BLOB_BACKEND" envDefault:"local"`
	S3Endpoint    string `env:"CMS_S3_ENDPOINT"`
	S3Region      string `env:"CMS_S3_REGION"`
	S3Bucket      string `env:"CMS_S3_BUCKET"`
	S3AccessKey   string `env:"CMS_S3_ACCESS_KEY"`
	S3SecretKey   string `env:"CMS_S3_SECRET_KEY"`
	S3UseSSL      bool   `env:"CMS_S3_USE_SSL" envDefault:"true"`
	S3PathStyle   bool   `env:"CMS_S3_PATH_STYLE" envDefault:"false"`

	Firebase Firebase
}

// Firebase holds the service account credentials for the Firestore backend.
type Firebase struct {
	ProjectID         string `env:"FIREBASE_PROJECT_ID"`
	PrivateKeyID      string `env:"FIREBASE_PRIVATE_KEY_ID"`
	PrivateKey        string `env:"FIREBASE_PRIVATE_KEY"`
	ClientEmail       string `env:"FIREBASE_CLIENT_EMAIL"`
	ClientID          string `env:"FIREBASE_CLIENT_ID"`
	ClientX509CertURL string `env:"FIREBASE_CLIENT_X509_CERT_URL"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// RecountEnabled reports whether the content count job should run.
func (c Config) RecountEnabled() bool {
	return c.RecountSchedule != "" && c.RecountSchedule != "off"
}

// Credentials converts the Firebase settings. Escaped newlines in the
// private key are expanded.
func (c Config) Credentials() docstore.FirebaseCredentials {
	return docstore.FirebaseCredentials{
		ProjectID:         c.Firebase.ProjectID,
		PrivateKeyID:      c.Firebase.PrivateKeyID,
		PrivateKey:        strings.ReplaceAll(c.Firebase.PrivateKey, `\n`, "\n"),
		ClientEmail:       c.Firebase.ClientEmail,
		ClientID:          c.Firebase.ClientID,
		ClientX509CertURL: c.Firebase.ClientX509CertURL,
	}
}

// DocstoreOptions returns the backend selection for docstore.Opener.
func (c Config) DocstoreOptions() docstore.Options {
	return docstore.Options{
		Backend:     c.Backend,
		DBPath:      c.DBPath,
		Credentials: c.Credentials(),
	}
}

// BlobOptions returns the upload storage configuration.
func (c Config) BlobOptions() blob.Options {
	return blob.Options{
		Backend: c.BlobBackend,
		Dir:     c.UploadsDir,
		BaseURL: c.PublicBaseURL,
		S3: blob.S3Config{
			Endpoint:  c.S3Endpoint,
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			UseSSL:    c.S3UseSSL,
			PathStyle: c.S3PathStyle,
		},
	}
}

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks option values and cross-field requirements.
func (c *Config) Validate() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("CMS_SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("CMS_LOG_LEVEL: %w", err)
	}
	if c.LogFormat != logging.FormatText && c.LogFormat != logging.FormatJSON {
		return fmt.Errorf("CMS_LOG_FORMAT must be %q or %q, got %q", logging.FormatText, logging.FormatJSON, c.LogFormat)
	}
	if c.AnalyticsRate <= 0 || c.AnalyticsBurst < 1 {
		return fmt.Errorf("CMS_ANALYTICS_RATE must be positive and CMS_ANALYTICS_BURST at least 1")
	}

	switch c.Backend {
	case docstore.BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("CMS_DB_PATH is required for the sqlite backend")
		}
	case docstore.BackendFirestore:
		var missing []string
		if c.Firebase.ProjectID == "" {
			missing = append(missing, "FIREBASE_PROJECT_ID")
		}
		if c.Firebase.PrivateKey == "" {
			missing = append(missing, "FIREBASE_PRIVATE_KEY")
		}
		if c.Firebase.ClientEmail == "" {
			missing = append(missing, "FIREBASE_CLIENT_EMAIL")
		}
		if len(missing) > 0 {
			return fmt.Errorf("firestore backend requires %s", strings.Join(missing, ", "))
		}
	default:
		return fmt.Errorf("CMS_BACKEND must be %q or %q, got %q", docstore.BackendSQLite, docstore.BackendFirestore, c.Backend)
	}

	switch c.BlobBackend {
	case blob.BackendLocal:
	case blob.BackendS3:
		if c.S3Endpoint == "" || c.S3Bucket == "" {
			return fmt.Errorf("s3 blob backend requires CMS_S3_ENDPOINT and CMS_S3_BUCKET")
		}
	default:
		return fmt.Errorf("CMS_BLOB_BACKEND must be %q or %q, got %q", blob.BackendLocal, blob.BackendS3, c.BlobBackend)
	}

	return nil
}
