// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/mileusna/useragent"

	"github.com/erolledph/new-cms/internal/model"
	"github.com/erolledph/new-cms/internal/util"
)

// MsgQuotaExceeded is also returned by the collector rate limiter.
const MsgQuotaExceeded = "Analytics quota exceeded. Please try again later."

var analyticsMessages = failureMessages{
	method:   "Method not allowed. Use POST to track analytics.",
	denied:   "Access denied to analytics data",
	quota:    MsgQuotaExceeded,
	internal: "Internal server error while tracking analytics",
}

const (
	msgInvalidJSON = "Invalid JSON in request body"
	msgTracked     = "Analytics event tracked successfully"
	msgInvalidType = "Invalid event type. Must be one of: "
)

// Field length limits applied by sanitize.
const (
	maxLongText  = 500
	maxTitle     = 200
	maxShortText = 100
	maxTags      = 10
)

var trackParams = []string{ParamUID, ParamSiteID, ParamEventType}

// TrackResult is the payload returned after an event is recorded.
type TrackResult struct {
	Success   bool   `json:"success"`
	EventID   string `json:"eventId"`
	SessionID string `json:"sessionId"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
	Stamp
}

// TrackEvent validates, sanitizes and stores one analytics event.
func (h *Handler) TrackEvent(ctx context.Context, req Request) Response {
	if resp, ok := h.env.Preflight(req); ok {
		return resp
	}
	if req.Method != http.MethodPost {
		return h.env.Failure(http.StatusMethodNotAllowed, analyticsMessages.method)
	}

	body, err := decodeBody(req.Body)
	if err != nil {
		return h.env.Failure(http.StatusBadRequest, msgInvalidJSON)
	}

	params := bodyParams(body)
	if err := Validate(params, trackParams); err != nil {
		return h.env.Failure(http.StatusBadRequest, err.Error())
	}
	if !model.IsValidEventType(params[ParamEventType]) {
		return h.env.Failure(http.StatusBadRequest, msgInvalidType+strings.Join(model.EventTypes, ", "))
	}

	store, err := h.stores.Store(ctx)
	if err != nil {
		return h.failure(analyticsMessages, "track event", err)
	}

	event := h.buildEvent(req, body, params)
	if err := store.AddEvent(ctx, &event); err != nil {
		return h.failure(analyticsMessages, "track event", err)
	}

	return h.env.Success(http.StatusOK, &TrackResult{
		Success:   true,
		EventID:   event.ID,
		SessionID: event.SessionID,
		Timestamp: model.FormatISO(event.Timestamp),
		Message:   msgTracked,
	})
}

func (h *Handler) buildEvent(req Request, body fields, params Params) model.AnalyticsEvent {
	now := h.now().UTC()

	sessionID := sanitize(body.str("sessionId"), maxShortText)
	if sessionID == "" {
		sessionID = model.NewID("session", now)
	}

	userAgent := body.str("userAgent")
	if userAgent == "" {
		userAgent = req.Header("User-Agent")
	}
	referrer := body.str("referrer")
	if referrer == "" {
		referrer = req.Header("Referer")
	}

	ip := util.ClientIP(req.Header, req.RemoteAddr)
	var country string
	if h.geo != nil && ip != util.UnknownIP {
		country = h.geo.LookupCountry(ip)
	}

	return model.AnalyticsEvent{
		ID:        model.NewID("event", now),
		UID:       params[ParamUID],
		SiteID:    params[ParamSiteID],
		Type:      params[ParamEventType],
		ContentID: sanitize(body.str("contentId"), maxTitle),
		Timestamp: now,
		UserAgent: sanitize(userAgent, maxLongText),
		Referrer:  sanitize(referrer, maxLongText),
		IPHash:    hashIP(ip),
		SessionID: sessionID,
		Country:   country,
		Device:    parseDevice(userAgent),
		Metadata: model.EventMetadata{
			Path:        sanitize(body.str("path"), maxLongText),
			Title:       sanitize(body.str("title"), maxTitle),
			Category:    sanitize(body.str("category"), maxShortText),
			Tags:        sanitizeTags(body.strs("tags")),
			Duration:    body.optNum("duration"),
			ScrollDepth: body.optNum("scrollDepth"),
			ClickTarget: sanitize(body.str("clickTarget"), maxShortText),
		},
		BrowserInfo: model.BrowserInfo{
			Language:         sanitize(body.str("language"), maxShortText),
			ScreenResolution: sanitize(body.str("screenResolution"), maxShortText),
			Viewport:         sanitize(body.str("viewport"), maxShortText),
			Timezone:         sanitize(body.str("timezone"), maxShortText),
		},
	}
}

// decodeBody parses the request body as a JSON object. An empty body is
// an empty object.
func decodeBody(raw string) (fields, error) {
	if strings.TrimSpace(raw) == "" {
		return fields{}, nil
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, fmt.Errorf("body is not an object")
	}
	return fields(body), nil
}

// bodyParams picks the identifying body values used for validation.
func bodyParams(body fields) Params {
	params := make(Params, len(trackParams))
	for _, name := range trackParams {
		if v, ok := body[name].(string); ok {
			params[name] = v
		}
	}
	return params
}

// optNum returns a numeric value, or nil when it is absent, zero or not a
// number.
func (f fields) optNum(key string) *float64 {
	switch f[key].(type) {
	case float64, float32, int, int32, int64, json.Number:
		n := f.num(key)
		if n == 0 {
			return nil
		}
		return &n
	default:
		return nil
	}
}

// sanitize strips markup-significant characters, trims whitespace and caps
// the result at max runes.
func sanitize(s string, max int) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '"', '\'', '&':
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > max {
		s = string([]rune(s)[:max])
	}
	return s
}

func sanitizeTags(tags []string) []string {
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, sanitize(t, maxShortText))
	}
	return out
}

// hashIP returns the first 16 hex characters of the SHA-256 of ip.
func hashIP(ip string) string {
	if ip == "" || ip == util.UnknownIP {
		return util.UnknownIP
	}
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])[:16]
}

// parseDevice extracts browser, OS, and device type from a user agent string.
func parseDevice(uaString string) model.DeviceInfo {
	ua := useragent.Parse(uaString)

	result := model.DeviceInfo{
		Browser: ua.Name,
		OS:      ua.OS,
	}
	if result.Browser == "" {
		result.Browser = "Unknown"
	}
	if result.OS == "" {
		result.OS = "Unknown"
	}

	switch {
	case ua.Mobile:
		result.DeviceType = "mobile"
	case ua.Tablet:
		result.DeviceType = "tablet"
	case ua.Bot:
		result.DeviceType = "bot"
	default:
		result.DeviceType = "desktop"
	}
	return result
}
