// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Analytics event types accepted by the collector.
const (
	EventTypeView        = "view"
	EventTypeInteraction = "interaction"
	EventTypeClick       = "click"
)

// EventTypes lists the accepted event types in display order.
var EventTypes = []string{EventTypeView, EventTypeInteraction, EventTypeClick}

// IsValidEventType reports whether t is an accepted analytics event type.
func IsValidEventType(t string) bool {
	for _, v := range EventTypes {
		if v == t {
			return true
		}
	}
	return false
}

// AnalyticsEvent is one append-only visitor event. The client address is
// only ever stored as a truncated hash.
type AnalyticsEvent struct {
	ID          string        `json:"id" firestore:"-"`
	UID         string        `json:"uid" firestore:"-"`
	SiteID      string        `json:"siteId" firestore:"-"`
	Type        string        `json:"type" firestore:"type"`
	ContentID   string        `json:"contentId" firestore:"contentId"`
	Timestamp   time.Time     `json:"timestamp" firestore:"timestamp"`
	UserAgent   string        `json:"userAgent" firestore:"userAgent"`
	Referrer    string        `json:"referrer" firestore:"referrer"`
	IPHash      string        `json:"ip" firestore:"ip"`
	SessionID   string        `json:"sessionId" firestore:"sessionId"`
	Country     string        `json:"country,omitempty" firestore:"country"`
	Device      DeviceInfo    `json:"device" firestore:"device"`
	Metadata    EventMetadata `json:"metadata" firestore:"metadata"`
	BrowserInfo BrowserInfo   `json:"browserInfo" firestore:"browserInfo"`
}

// DeviceInfo is derived from the user agent string.
type DeviceInfo struct {
	Browser    string `json:"browser" firestore:"browser"`
	OS         string `json:"os" firestore:"os"`
	DeviceType string `json:"deviceType" firestore:"deviceType"`
}

// EventMetadata carries page context reported by the client.
type EventMetadata struct {
	Path        string   `json:"path" firestore:"path"`
	Title       string   `json:"title" firestore:"title"`
	Category    string   `json:"category" firestore:"category"`
	Tags        []string `json:"tags" firestore:"tags"`
	Duration    *float64 `json:"duration" firestore:"duration"`
	ScrollDepth *float64 `json:"scrollDepth" firestore:"scrollDepth"`
	ClickTarget string   `json:"clickTarget" firestore:"clickTarget"`
}

// BrowserInfo carries client environment details reported by the client.
type BrowserInfo struct {
	Language         string `json:"language" firestore:"language"`
	ScreenResolution string `json:"screenResolution" firestore:"screenResolution"`
	Viewport         string `json:"viewport" firestore:"viewport"`
	Timezone         string `json:"timezone" firestore:"timezone"`
}
