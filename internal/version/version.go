// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

import "fmt"

// Info contains build-time version information injected via ldflags.
type Info struct {
	Version   string // Semantic version from git tags (e.g., "v1.2.3")
	GitCommit string // Short git commit hash (e.g., "abc1234")
	BuildTime string // Build timestamp in RFC3339 format
}

// String renders the info for -version output. Missing fields read "dev"
// or "unknown".
func (i Info) String() string {
	v, commit, built := i.Version, i.GitCommit, i.BuildTime
	if v == "" {
		v = "dev"
	}
	if commit == "" {
		commit = "unknown"
	}
	if built == "" {
		built = "unknown"
	}
	return fmt.Sprintf("%s (commit %s, built %s)", v, commit, built)
}

// Short returns the version alone, "dev" when unset.
func (i Info) Short() string {
	if i.Version == "" {
		return "dev"
	}
	return i.Version
}
