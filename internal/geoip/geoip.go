// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package geoip resolves visitor IP addresses to countries using a MaxMind
// GeoLite2-Country database.
package geoip

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"sync"
	"time"

	"github.com/oschwald/maxminddb-golang"

	"github.com/erolledph/new-cms/internal/util"
)

// CountryLocal is reported for private, loopback and reserved addresses.
const CountryLocal = "LOCAL"

// Lookup handles IP to country lookup. The zero value answers only
// CountryLocal for private addresses.
type Lookup struct {
	db        *maxminddb.Reader
	dbPath    string
	dbModTime time.Time
	enabled   bool
	mu        sync.RWMutex
}

// geoRecord matches the GeoLite2-Country database structure.
type geoRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// NewLookup creates a new GeoIP lookup instance.
func NewLookup() *Lookup {
	return &Lookup{}
}

// Init loads the database at dbPath. An empty path disables lookups.
func (g *Lookup) Init(dbPath string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.dbPath = dbPath
	if dbPath == "" {
		g.enabled = false
		return nil
	}
	return g.loadDatabase()
}

// loadDatabase loads or reloads the MaxMind database.
// Caller must hold g.mu write lock.
func (g *Lookup) loadDatabase() error {
	info, err := os.Stat(g.dbPath)
	if err != nil {
		g.enabled = false
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("GeoIP database not found: %s", g.dbPath)
		}
		return fmt.Errorf("GeoIP database stat error: %w", err)
	}

	// Skip reload if not modified
	if g.db != nil && info.ModTime().Equal(g.dbModTime) {
		return nil
	}

	db, err := maxminddb.Open(g.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open GeoIP database: %w", err)
	}

	if g.db != nil {
		_ = g.db.Close()
	}
	g.db = db
	g.dbModTime = info.ModTime()
	g.enabled = true
	return nil
}

// Reload reopens the database if the file changed on disk.
func (g *Lookup) Reload() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.dbPath == "" {
		return nil
	}
	return g.loadDatabase()
}

// LookupCountry returns the 2-letter ISO country code for an IP address,
// CountryLocal for private addresses, or "" when unknown.
func (g *Lookup) LookupCountry(ip string) string {
	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return ""
	}
	if util.IsPrivateIP(parsedIP) {
		return CountryLocal
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.enabled || g.db == nil {
		return ""
	}

	var record geoRecord
	if err := g.db.Lookup(parsedIP, &record); err != nil {
		return ""
	}
	return record.Country.ISOCode
}

// IsEnabled returns whether database lookups are available.
func (g *Lookup) IsEnabled() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.enabled
}

// Close closes the GeoIP database.
func (g *Lookup) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.db == nil {
		return nil
	}
	err := g.db.Close()
	g.db = nil
	g.enabled = false
	return err
}

var countryNames = map[string]string{
	CountryLocal: "Local Network",
	"US":         "United States",
	"GB":         "United Kingdom",
	"DE":         "Germany",
	"FR":         "France",
	"ES":         "Spain",
	"IT":         "Italy",
	"NL":         "Netherlands",
	"CA":         "Canada",
	"MX":         "Mexico",
	"BR":         "Brazil",
	"AU":         "Australia",
	"JP":         "Japan",
	"CN":         "China",
	"KR":         "South Korea",
	"IN":         "India",
	"SG":         "Singapore",
	"PH":         "Philippines",
	"ID":         "Indonesia",
	"ZA":         "South Africa",
	"NG":         "Nigeria",
}

// CountryName returns a display name for a country code, the code itself
// when it is not known, or "Unknown" for an empty code.
func CountryName(code string) string {
	if code == "" {
		return "Unknown"
	}
	if name, ok := countryNames[code]; ok {
		return name
	}
	return code
}
