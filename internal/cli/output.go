// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/erolledph/new-cms/internal/docstore"
	"github.com/erolledph/new-cms/internal/service"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected input (validation, limits, conflicts)
	ExitCommandError = 2 // Command error (backend unavailable, bad config, I/O)
)

// Error codes reported in CLI responses.
const (
	ErrCodeGeneric    = "E001" // Generic/unknown error
	ErrCodeConfig     = "E002" // Configuration or backend failure
	ErrCodeNotFound   = "E003" // Account, site, item or file not found
	ErrCodeValidation = "E004" // Input failed validation
	ErrCodeConflict   = "E005" // Slug already in use
	ErrCodeLimit      = "E006" // Site or storage limit reached
	ErrCodeWrongKind  = "E007" // Site is of the other kind
	ErrCodeIO         = "E008" // Local file read/write error
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// TextRenderer is implemented by results with a human-readable form.
type TextRenderer interface {
	RenderText(w io.Writer) error
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == FormatJSON {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	if tr, ok := data.(TextRenderer); ok {
		return tr.RenderText(f.Writer)
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == FormatJSON {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	_, _ = fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		_, _ = fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err in the configured format and returns an ExitError whose
// code matches the kind of failure.
func (f *OutputFormatter) Fail(message string, err error) error {
	code, exit := classify(err)

	var details any
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		details = map[string]string{"field": ve.Field}
	}

	_ = f.Error(code, message+": "+err.Error(), details)
	return WrapExitError(exit, message, err)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	_, _ = fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

func classify(err error) (string, int) {
	var exitErr *ExitError
	switch {
	case service.IsValidation(err):
		return ErrCodeValidation, ExitFailure
	case errors.Is(err, docstore.ErrNotFound):
		return ErrCodeNotFound, ExitFailure
	case errors.Is(err, service.ErrSlugTaken):
		return ErrCodeConflict, ExitFailure
	case errors.Is(err, service.ErrSiteLimit), errors.Is(err, service.ErrStorageLimit):
		return ErrCodeLimit, ExitFailure
	case errors.Is(err, service.ErrWrongKind):
		return ErrCodeWrongKind, ExitFailure
	case errors.As(err, &exitErr):
		return ErrCodeGeneric, exitErr.Code
	default:
		return ErrCodeGeneric, ExitCommandError
	}
}
