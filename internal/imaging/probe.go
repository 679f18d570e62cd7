// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging inspects uploaded images. Files are stored as uploaded;
// only their type and display dimensions are recorded.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/erolledph/new-cms/internal/model"
)

// ErrUnsupportedFormat is returned for data that is not a decodable image.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Info describes a probed image.
type Info struct {
	Width       int
	Height      int
	MimeType    string
	Orientation int
}

// DetectMimeType detects the MIME type of file data without parameters.
func DetectMimeType(data []byte) string {
	contentType := http.DetectContentType(data)
	// http.DetectContentType returns types like "text/plain; charset=utf-8"
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return contentType
}

// Probe decodes the image header and returns its dimensions as displayed,
// honouring the EXIF orientation tag.
func Probe(data []byte) (*Info, error) {
	mimeType := formatToMimeType(detectFormat(data))
	if mimeType == "" {
		return nil, ErrUnsupportedFormat
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read image config: %w", err)
	}

	info := &Info{
		Width:       cfg.Width,
		Height:      cfg.Height,
		MimeType:    mimeType,
		Orientation: 1,
	}
	if mimeType == model.MimeTypeJPEG {
		info.Orientation = readExifOrientation(bytes.NewReader(data))
	}
	if swapsAxes(info.Orientation) {
		info.Width, info.Height = info.Height, info.Width
	}
	return info, nil
}

// Decode fully decodes an image and applies its EXIF orientation.
func Decode(data []byte) (image.Image, error) {
	if detectFormat(data) == "" {
		return nil, ErrUnsupportedFormat
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return applyOrientation(img, readExifOrientation(bytes.NewReader(data))), nil
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// swapsAxes reports whether an orientation rotates the image by 90 degrees.
func swapsAxes(orientation int) bool {
	return orientation >= 5 && orientation <= 8
}

// applyOrientation applies EXIF orientation transformation to an image.
// Orientation values:
// 1: Normal
// 2: Flip horizontal
// 3: Rotate 180°
// 4: Flip vertical
// 5: Rotate 90° CW + flip horizontal
// 6: Rotate 90° CW
// 7: Rotate 90° CCW + flip horizontal
// 8: Rotate 90° CCW
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// Explicitly reject TIFF (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

// formatToMimeType converts format string to MIME type.
func formatToMimeType(format string) string {
	switch format {
	case "jpeg":
		return model.MimeTypeJPEG
	case "png":
		return model.MimeTypePNG
	case "gif":
		return model.MimeTypeGIF
	case "webp":
		return model.MimeTypeWebP
	default:
		return ""
	}
}
