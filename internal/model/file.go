// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Supported MIME types for uploaded files.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"

	MimeTypePDF  = "application/pdf"
	MimeTypeDOC  = "application/msword"
	MimeTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeTypeText = "text/plain"
)

// Upload limits.
const (
	MaxImageSize   = 5 << 20
	MaxFileSize    = 10 << 20
	MaxStorageUsed = 100 << 20 // per account
)

// File records an uploaded asset. Images carry their pixel dimensions.
type File struct {
	ID               string    `json:"id" firestore:"-"`
	UID              string    `json:"uid" firestore:"-"`
	Name             string    `json:"fileName" firestore:"fileName"`
	StorageKey       string    `json:"storageKey" firestore:"storageKey"`
	URL              string    `json:"downloadURL" firestore:"downloadURL"`
	MimeType         string    `json:"contentType" firestore:"contentType"`
	Size             int64     `json:"size" firestore:"size"`
	Width            int       `json:"width,omitempty" firestore:"width"`
	Height           int       `json:"height,omitempty" firestore:"height"`
	Compressed       bool      `json:"compressed" firestore:"compressed"`
	CompressionRatio float64   `json:"compressionRatio" firestore:"compressionRatio"`
	UploadedAt       time.Time `json:"uploadedAt" firestore:"uploadedAt"`
}

// IsImageMimeType reports whether mimeType is one of the image types
// whose dimensions are probed on upload.
func IsImageMimeType(mimeType string) bool {
	switch mimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	default:
		return false
	}
}

// IsSupportedMimeType reports whether mimeType may be uploaded at all.
func IsSupportedMimeType(mimeType string) bool {
	switch mimeType {
	case MimeTypePDF, MimeTypeDOC, MimeTypeDOCX, MimeTypeText:
		return true
	default:
		return IsImageMimeType(mimeType)
	}
}

// MaxSizeFor returns the upload size limit for mimeType.
func MaxSizeFor(mimeType string) int64 {
	if IsImageMimeType(mimeType) {
		return MaxImageSize
	}
	return MaxFileSize
}
