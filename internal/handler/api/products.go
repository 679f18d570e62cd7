// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/erolledph/new-cms/internal/docstore"
	"github.com/erolledph/new-cms/internal/model"
)

var productListMessages = failureMessages{
	method:   "Method not allowed. Use GET to fetch products.",
	denied:   "Access denied to product data",
	notFound: "Product site not found",
	internal: "Internal server error while fetching products",
}

var productMessages = failureMessages{
	method:   "Method not allowed. Use GET to fetch product.",
	denied:   "Access denied to product data",
	notFound: "Product site not found",
	internal: "Internal server error while fetching product",
}

var (
	productListParams = []string{ParamUID, ParamSiteID}
	productSlugParams = []string{ParamUID, ParamSiteID, ParamSlug}
)

// ProductList is the payload of the product listing endpoint.
type ProductList struct {
	Products []PublicProduct `json:"products"`
	Total    int             `json:"total"`
	SiteID   string          `json:"siteId"`
	UID      string          `json:"uid"`
	Stamp
}

// ProductDetail is the payload of the single product endpoint.
type ProductDetail struct {
	Product PublicProduct `json:"product"`
	SiteID  string        `json:"siteId"`
	UID     string        `json:"uid"`
	Stamp
}

// ListProducts returns every published product of a site, newest first.
func (h *Handler) ListProducts(ctx context.Context, req Request) Response {
	if resp, ok := h.env.Preflight(req); ok {
		return resp
	}
	if req.Method != http.MethodGet {
		return h.env.Failure(http.StatusMethodNotAllowed, productListMessages.method)
	}

	params := Resolve(req, productListParams)
	if err := Validate(params, productListParams); err != nil {
		return h.env.Failure(http.StatusBadRequest, err.Error())
	}
	uid, siteID := params[ParamUID], params[ParamSiteID]

	store, err := h.stores.Store(ctx)
	if err != nil {
		return h.failure(productListMessages, "list products", err)
	}

	q := docstore.Query{UID: uid, SiteID: siteID, OrderBy: docstore.FieldCreatedAt, Desc: true}.
		Where(docstore.FieldStatus, model.StatusPublished)
	docs, err := store.QueryItems(ctx, q)
	if err != nil {
		return h.failure(productListMessages, "list products", err)
	}

	products := make([]PublicProduct, 0, len(docs))
	for _, doc := range docs {
		products = append(products, NormalizeProduct(doc))
	}

	return h.env.Success(http.StatusOK, &ProductList{
		Products: products,
		Total:    len(products),
		SiteID:   siteID,
		UID:      uid,
	})
}

// GetProduct returns one published product by slug.
func (h *Handler) GetProduct(ctx context.Context, req Request) Response {
	if resp, ok := h.env.Preflight(req); ok {
		return resp
	}
	if req.Method != http.MethodGet {
		return h.env.Failure(http.StatusMethodNotAllowed, productMessages.method)
	}

	params := Resolve(req, productSlugParams)
	if err := Validate(params, productSlugParams); err != nil {
		return h.env.Failure(http.StatusBadRequest, err.Error())
	}
	uid, siteID, slug := params[ParamUID], params[ParamSiteID], params[ParamSlug]

	store, err := h.stores.Store(ctx)
	if err != nil {
		return h.failure(productMessages, "get product", err)
	}

	q := docstore.Query{UID: uid, SiteID: siteID, Limit: 1}.
		Where(docstore.FieldSlug, slug).
		Where(docstore.FieldStatus, model.StatusPublished)
	docs, err := store.QueryItems(ctx, q)
	if err != nil {
		return h.failure(productMessages, "get product", err)
	}
	if len(docs) == 0 {
		return h.env.Failure(http.StatusNotFound, fmt.Sprintf("Product with slug \"%s\" not found or not published", slug))
	}

	return h.env.Success(http.StatusOK, &ProductDetail{
		Product: NormalizeProduct(docs[0]),
		SiteID:  siteID,
		UID:     uid,
	})
}
