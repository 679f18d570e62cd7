// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/erolledph/new-cms/internal/model"
	"github.com/erolledph/new-cms/internal/service"
)

// fileList renders uploaded files with the account's storage usage.
type fileList struct {
	Files []model.File `json:"files"`
	Used  int64        `json:"used"`
	Limit int64        `json:"limit"`
}

func (l fileList) RenderText(w io.Writer) error {
	if len(l.Files) > 0 {
		rows := make([][]string, 0, len(l.Files))
		for _, f := range l.Files {
			dims := "-"
			if f.Width > 0 {
				dims = fmt.Sprintf("%dx%d", f.Width, f.Height)
			}
			rows = append(rows, []string{f.ID, f.Name, f.MimeType, formatSize(f.Size), dims, formatDate(f.UploadedAt)})
		}
		if err := writeTable(w, []string{"ID", "NAME", "TYPE", "SIZE", "DIMENSIONS", "UPLOADED"}, rows); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintln(w, "No files.")
	}
	_, err := fmt.Fprintf(w, "Storage: %s of %s used\n", formatSize(l.Used), formatSize(l.Limit))
	return err
}

// fileView renders one uploaded file.
type fileView struct {
	*model.File
}

func (v fileView) RenderText(w io.Writer) error {
	dims := ""
	if v.Width > 0 {
		dims = fmt.Sprintf("%dx%d", v.Width, v.Height)
	}
	return writeFields(w, [][2]string{
		{"ID", v.ID},
		{"Name", v.Name},
		{"Type", v.MimeType},
		{"Size", formatSize(v.Size)},
		{"Dimensions", dims},
		{"URL", v.URL},
	})
}

// NewFileCommand creates the file command group.
func NewFileCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file",
		Short: "Manage uploaded images and documents",
	}
	cmd.AddCommand(newFileUploadCommand(rootOpts))
	cmd.AddCommand(newFileListCommand(rootOpts))
	cmd.AddCommand(newFileDeleteCommand(rootOpts))
	return cmd
}

func fileService(ctx context.Context, env *Env) (*service.FileService, error) {
	blobs, err := env.Blobs(ctx)
	if err != nil {
		return nil, err
	}
	return service.NewFileService(env.Store, blobs, env.options()), nil
}

func newFileUploadCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload an image or document",
		Long: `Upload an image (JPEG, PNG, GIF, WebP; max 5 MB) or a document
(PDF, DOC, DOCX, TXT; max 10 MB). Each account may store up to 100 MB.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, true, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				src, err := os.Open(args[0])
				if err != nil {
					_ = f.Error(ErrCodeIO, err.Error(), nil)
					return WrapExitError(ExitCommandError, "opening file", err)
				}
				defer func() { _ = src.Close() }()

				svc, err := fileService(ctx, env)
				if err != nil {
					return f.Fail("upload file", err)
				}
				file, err := svc.Upload(ctx, rootOpts.UID, filepath.Base(args[0]), src)
				if err != nil {
					return f.Fail("upload file", err)
				}
				return f.Success(fileView{file})
			})
		},
	}
}

func newFileListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List uploaded files and storage usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, true, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				svc, err := fileService(ctx, env)
				if err != nil {
					return f.Fail("list files", err)
				}
				files, err := svc.List(ctx, rootOpts.UID)
				if err != nil {
					return f.Fail("list files", err)
				}
				used, err := svc.Usage(ctx, rootOpts.UID)
				if err != nil {
					return f.Fail("list files", err)
				}
				return f.Success(fileList{Files: files, Used: used, Limit: model.MaxStorageUsed})
			})
		},
	}
}

func newFileDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <file-id>",
		Short: "Delete an uploaded file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, true, func(ctx context.Context, env *Env, f *OutputFormatter) error {
				svc, err := fileService(ctx, env)
				if err != nil {
					return f.Fail("delete file", err)
				}
				if err := svc.Delete(ctx, rootOpts.UID, args[0]); err != nil {
					return f.Fail("delete file", err)
				}
				return f.Success(notice{
					text: "Deleted file " + args[0] + ".",
					data: map[string]string{"id": args[0]},
				})
			})
		},
	}
}
