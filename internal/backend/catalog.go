package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// Kind identifies one of the catalogs administered through the dashboard
type Kind string

const (
	KindAllergens Kind = "allergens"
	KindFoods     Kind = "foods"
	KindRecipes   Kind = "recipes"
	KindWorkouts  Kind = "workouts"
)

// Kinds lists every catalog kind
var Kinds = []Kind{KindAllergens, KindFoods, KindRecipes, KindWorkouts}

// ParseKind validates a catalog kind taken from a URL
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Catalog items differ in shape per kind; the dashboard passes them through as raw
// JSON objects.

// ListCatalog returns a page of catalog items
func (c *Client) ListCatalog(ctx context.Context, token string, kind Kind, params ListParams) (*Page[json.RawMessage], error) {
	var page Page[json.RawMessage]
	if err := c.do(ctx, request{
		method: http.MethodGet,
		path:   catalogPath(kind, ""),
		query:  params.values(),
		token:  token,
	}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetCatalogItem returns a single catalog item
func (c *Client) GetCatalogItem(ctx context.Context, token string, kind Kind, id string) (json.RawMessage, error) {
	var item json.RawMessage
	if err := c.do(ctx, request{
		method: http.MethodGet,
		path:   catalogPath(kind, id),
		token:  token,
	}, &item); err != nil {
		return nil, err
	}
	return item, nil
}

// CreateCatalogItem creates a catalog item and returns it as stored by the backend
func (c *Client) CreateCatalogItem(ctx context.Context, token string, kind Kind, item json.RawMessage) (json.RawMessage, error) {
	var created json.RawMessage
	if err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        catalogPath(kind, ""),
		token:       token,
		body:        bytes.NewReader(item),
		contentType: "application/json",
	}, &created); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateCatalogItem replaces a catalog item and returns it as stored by the backend
func (c *Client) UpdateCatalogItem(ctx context.Context, token string, kind Kind, id string, item json.RawMessage) (json.RawMessage, error) {
	var updated json.RawMessage
	if err := c.do(ctx, request{
		method:      http.MethodPut,
		path:        catalogPath(kind, id),
		token:       token,
		body:        bytes.NewReader(item),
		contentType: "application/json",
	}, &updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCatalogItem deletes a catalog item
func (c *Client) DeleteCatalogItem(ctx context.Context, token string, kind Kind, id string) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   catalogPath(kind, id),
		token:  token,
	}, nil)
}

func catalogPath(kind Kind, id string) string {
	path := "/admin/" + string(kind)
	if id != "" {
		path += "/" + url.PathEscape(id)
	}
	return path
}
