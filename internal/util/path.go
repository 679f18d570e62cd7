// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// SanitizeFilename extracts only the base filename, removing any directory
// components. Returns an error if nothing usable remains.
func SanitizeFilename(filename string) (string, error) {
	safe := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if safe == "." || safe == ".." || safe == "" || safe == string(filepath.Separator) {
		return "", fmt.Errorf("invalid filename: %q", filename)
	}
	return safe, nil
}

// SafeJoinPath joins path components under basePath and rejects results
// that escape it.
func SafeJoinPath(basePath string, components ...string) (string, error) {
	fullPath := filepath.Join(append([]string{basePath}, components...)...)

	absBase, err := filepath.Abs(filepath.Clean(basePath))
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}
	absTarget, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("invalid target path: %w", err)
	}

	// Trailing separator keeps /uploads-other from matching /uploads
	if absTarget != absBase && !strings.HasPrefix(absTarget, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected: path escapes base directory")
	}
	return fullPath, nil
}

// StorageKey builds the object key for an uploaded file: <uid>/<id><ext>,
// where ext is the lower-cased extension of the original name.
func StorageKey(uid, id, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return uid + "/" + id + ext
}
