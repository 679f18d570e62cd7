// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/erolledph/new-cms/internal/model"
)

// Response is a complete HTTP result: status, headers and a JSON body.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

// corsHeaders returns the header set attached to every response.
func corsHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "GET, POST, PUT, DELETE, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type, Authorization",
		"Content-Type":                 "application/json",
	}
}

// Stamp carries the generation time of a success payload. Payload structs
// embed it as their last field so generatedAt closes the JSON object.
type Stamp struct {
	GeneratedAt string `json:"generatedAt"`
}

func (s *Stamp) setGeneratedAt(ts string) { s.GeneratedAt = ts }

// Stamped is implemented by payloads that embed Stamp.
type Stamped interface {
	setGeneratedAt(ts string)
}

// ErrorBody is the JSON shape of every failure response.
type ErrorBody struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

// Envelope builds responses, stamping them with the current time.
type Envelope struct {
	now func() time.Time
}

// NewEnvelope creates an envelope builder. A nil clock uses time.Now.
func NewEnvelope(now func() time.Time) Envelope {
	if now == nil {
		now = time.Now
	}
	return Envelope{now: now}
}

// Success serializes payload after stamping generatedAt.
func (e Envelope) Success(status int, payload Stamped) Response {
	payload.setGeneratedAt(model.FormatISO(e.now()))
	return e.json(status, payload)
}

// Failure builds an error response with the given message.
func (e Envelope) Failure(status int, message string) Response {
	return e.json(status, ErrorBody{Error: message, Timestamp: model.FormatISO(e.now())})
}

// Preflight answers OPTIONS requests with an empty 200 response. The second
// result is false for any other method.
func (e Envelope) Preflight(req Request) (Response, bool) {
	if !strings.EqualFold(req.Method, http.MethodOptions) {
		return Response{}, false
	}
	return Response{StatusCode: http.StatusOK, Headers: corsHeaders(), Body: ""}, true
}

func (e Envelope) json(status int, v any) Response {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		status = http.StatusInternalServerError
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(ErrorBody{Error: "Internal server error", Timestamp: model.FormatISO(e.now())})
	}
	return Response{
		StatusCode: status,
		Headers:    corsHeaders(),
		Body:       strings.TrimSuffix(buf.String(), "\n"),
	}
}

// Write sends the response through an http.ResponseWriter.
func (r Response) Write(w http.ResponseWriter) {
	for k, v := range r.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(r.StatusCode)
	_, _ = w.Write([]byte(r.Body))
}
