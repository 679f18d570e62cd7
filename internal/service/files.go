// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/erolledph/new-cms/internal/blob"
	"github.com/erolledph/new-cms/internal/docstore"
	"github.com/erolledph/new-cms/internal/imaging"
	"github.com/erolledph/new-cms/internal/model"
	"github.com/erolledph/new-cms/internal/util"
)

// documentTypes maps extensions to document MIME types that content
// sniffing cannot tell apart.
var documentTypes = map[string]string{
	".pdf":  model.MimeTypePDF,
	".doc":  model.MimeTypeDOC,
	".docx": model.MimeTypeDOCX,
	".txt":  model.MimeTypeText,
}

// FileService stores uploaded files and their records.
type FileService struct {
	store docstore.Store
	blobs blob.Store
	opts  Options
}

// NewFileService creates a file service.
func NewFileService(store docstore.Store, blobs blob.Store, opts Options) *FileService {
	return &FileService{store: store, blobs: blobs, opts: opts.withDefaults()}
}

// Upload validates and stores a file for an account. Images are stored as
// uploaded with their dimensions recorded.
func (s *FileService) Upload(ctx context.Context, uid, filename string, r io.Reader) (*model.File, error) {
	name, err := util.SanitizeFilename(filename)
	if err != nil {
		return nil, invalid("fileName", "%s", err.Error())
	}

	data, err := io.ReadAll(io.LimitReader(r, model.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, invalid("file", "is empty")
	}

	mimeType := detectUploadType(name, data)
	if !model.IsSupportedMimeType(mimeType) {
		return nil, invalid("file", "unsupported file type %s", mimeType)
	}
	size := int64(len(data))
	if limit := model.MaxSizeFor(mimeType); size > limit {
		return nil, invalid("file", "too large, maximum size is %dMB", limit>>20)
	}

	used, err := s.Usage(ctx, uid)
	if err != nil {
		return nil, err
	}
	if used+size > model.MaxStorageUsed {
		return nil, fmt.Errorf("%w: %d of %d bytes used", ErrStorageLimit, used, model.MaxStorageUsed)
	}

	f := &model.File{
		ID:               uuid.New().String(),
		UID:              uid,
		Name:             name,
		MimeType:         mimeType,
		Size:             size,
		CompressionRatio: 1,
		UploadedAt:       s.opts.Now().UTC(),
	}
	if model.IsImageMimeType(mimeType) {
		info, err := imaging.Probe(data)
		if err != nil {
			return nil, invalid("file", "not a valid image: %s", err.Error())
		}
		f.Width, f.Height = info.Width, info.Height
	}

	f.StorageKey = util.StorageKey(uid, f.ID, name)
	f.URL, err = s.blobs.Put(ctx, f.StorageKey, bytes.NewReader(data), size, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	if err := s.store.SetFile(ctx, f); err != nil {
		if delErr := s.blobs.Delete(ctx, f.StorageKey); delErr != nil {
			s.opts.Logger.Warn("failed to remove orphaned blob", "key", f.StorageKey, "error", delErr)
		}
		return nil, err
	}
	s.opts.Logger.Info("file uploaded", "uid", uid, "id", f.ID, "type", mimeType, "size", size)
	return f, nil
}

// List returns an account's files, newest first.
func (s *FileService) List(ctx context.Context, uid string) ([]model.File, error) {
	return s.store.ListFiles(ctx, uid)
}

// Usage returns the number of bytes an account's files occupy.
func (s *FileService) Usage(ctx context.Context, uid string) (int64, error) {
	files, err := s.store.ListFiles(ctx, uid)
	if err != nil {
		return 0, fmt.Errorf("listing files: %w", err)
	}
	var total int64
	for _, f := range files {
		total += f.Size
	}
	return total, nil
}

// Delete removes a file record and its stored bytes.
func (s *FileService) Delete(ctx context.Context, uid, id string) error {
	f, err := s.store.GetFile(ctx, uid, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteFile(ctx, uid, id); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, f.StorageKey); err != nil && !errors.Is(err, blob.ErrNotFound) {
		// Record is already gone
		s.opts.Logger.Warn("failed to delete blob", "key", f.StorageKey, "error", err)
	}
	return nil
}

// detectUploadType sniffs the content and falls back to the extension for
// document formats.
func detectUploadType(name string, data []byte) string {
	detected := imaging.DetectMimeType(data)
	if model.IsImageMimeType(detected) || detected == model.MimeTypePDF {
		return detected
	}
	if t, ok := documentTypes[strings.ToLower(path.Ext(name))]; ok {
		return t
	}
	return detected
}
