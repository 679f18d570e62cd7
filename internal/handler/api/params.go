// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"strings"
)

// Parameter names used by the public endpoints.
const (
	ParamUID       = "uid"
	ParamBlogID    = "blogId"
	ParamSiteID    = "siteId"
	ParamSlug      = "slug"
	ParamEventType = "type"
)

// Params holds resolved request parameters.
type Params map[string]string

// RouteName identifies a REST-style path template.
type RouteName string

// Path templates, in matching priority order.
const (
	RouteContentList  RouteName = "content-list"
	RouteContentSlug  RouteName = "content-slug"
	RouteProductsList RouteName = "products-list"
	RouteProductsSlug RouteName = "products-slug"
)

// routeTemplate describes one REST-style path form. The guard decides
// whether the template is tried at all; once a guard matches, no later
// template is considered even if the structural checks fail.
type routeTemplate struct {
	name        RouteName
	contains    string
	suffix      string
	minSegments int
	literals    map[int]string
	captures    map[int]string
	slugIndex   int // segment captured as slug with its first ".json" removed; 0 if none
}

var routeTemplates = []routeTemplate{
	{
		name:        RouteContentList,
		contains:    "/api/content.json",
		minSegments: 4,
		literals:    map[int]string{2: "api", 3: "content.json"},
		captures:    map[int]string{0: ParamUID, 1: ParamBlogID},
	},
	{
		name:        RouteContentSlug,
		contains:    "/api/content/",
		suffix:      ".json",
		minSegments: 5,
		literals:    map[int]string{2: "api", 3: "content"},
		captures:    map[int]string{0: ParamUID, 1: ParamBlogID},
		slugIndex:   4,
	},
	{
		name:        RouteProductsList,
		contains:    "/api/products.json",
		minSegments: 4,
		literals:    map[int]string{2: "api", 3: "products.json"},
		captures:    map[int]string{0: ParamUID, 1: ParamSiteID},
	},
	{
		name:        RouteProductsSlug,
		contains:    "/api/products/",
		suffix:      ".json",
		minSegments: 5,
		literals:    map[int]string{2: "api", 3: "products"},
		captures:    map[int]string{0: ParamUID, 1: ParamSiteID},
		slugIndex:   4,
	},
}

func (t routeTemplate) guard(path string) bool {
	if !strings.Contains(path, t.contains) {
		return false
	}
	return t.suffix == "" || strings.HasSuffix(path, t.suffix)
}

func (t routeTemplate) extract(segments []string) (Params, bool) {
	if len(segments) < t.minSegments {
		return nil, false
	}
	for i, lit := range t.literals {
		if segments[i] != lit {
			return nil, false
		}
	}
	out := make(Params, len(t.captures)+1)
	for i, name := range t.captures {
		out[name] = segments[i]
	}
	if t.slugIndex > 0 {
		out[ParamSlug] = strings.Replace(segments[t.slugIndex], ".json", "", 1)
	}
	return out, true
}

// MatchRoute evaluates the path templates in priority order. Only the first
// template whose guard matches is tried; ok reports whether it also matched
// structurally.
func MatchRoute(path string) (name RouteName, captured Params, ok bool) {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for _, t := range routeTemplates {
		if !t.guard(path) {
			continue
		}
		captured, ok = t.extract(segments)
		return t.name, captured, ok
	}
	return "", nil, false
}

// Resolve produces the parameter mapping for an endpoint that needs the
// required names. When the query string already carries all of them it is
// used as is; otherwise values captured from the path are merged over the
// query values.
func Resolve(req Request, required []string) Params {
	out := make(Params, len(req.Query)+3)
	for k, v := range req.Query {
		out[k] = v
	}
	if hasAll(req.Query, required) {
		return out
	}

	if _, captured, ok := MatchRoute(req.Path); ok {
		for k, v := range captured {
			out[k] = v
		}
	}
	return out
}

func hasAll(values map[string]string, names []string) bool {
	for _, name := range names {
		if values[name] == "" {
			return false
		}
	}
	return true
}

// MissingParamsError reports required parameters that were absent or empty.
type MissingParamsError struct {
	Missing   []string
	Available []string
}

func (e *MissingParamsError) Error() string {
	available := "none"
	if len(e.Available) > 0 {
		available = strings.Join(e.Available, ", ")
	}
	return "Missing required parameters: " + strings.Join(e.Missing, ", ") +
		". Available parameters: " + available
}

// Validate checks that every required name has a non-empty value. The
// error lists the required names that were supplied, in required order.
func Validate(values Params, required []string) error {
	var missing, available []string
	for _, name := range required {
		if values[name] == "" {
			missing = append(missing, name)
		} else {
			available = append(available, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &MissingParamsError{Missing: missing, Available: available}
}
