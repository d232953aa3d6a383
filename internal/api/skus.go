package api

import (
	"context"
	"net/http"

	"stockdeck/internal/model"
)

// ListSKUs fetches a filtered page of the SKU catalog.
func (c *Client) ListSKUs(ctx context.Context, filters model.SKUFilters) (*model.SKUList, error) {
	query := buildQuery(map[string]string{
		"page":      itoaIfSet(filters.Page),
		"page_size": itoaIfSet(filters.PageSize),
		"search":    filters.Search,
		"category":  filters.Category,
		"sort_by":   filters.SortBy,
		"order":     filters.Order,
	})

	var out model.SKUList
	if err := c.do(ctx, http.MethodGet, "/api/skus"+query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSKUCategories fetches the distinct category names.
func (c *Client) ListSKUCategories(ctx context.Context) (*model.SKUCategories, error) {
	var out model.SKUCategories
	if err := c.do(ctx, http.MethodGet, "/api/skus/categories", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSKU fetches one SKU by id.
func (c *Client) GetSKU(ctx context.Context, id string) (*model.SKU, error) {
	var out model.SKU
	if err := c.do(ctx, http.MethodGet, "/api/skus/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSKU adds a catalog entry. Manager only.
func (c *Client) CreateSKU(ctx context.Context, req model.SKURequest) (*model.SKU, error) {
	var out model.SKU
	if err := c.do(ctx, http.MethodPost, "/api/manager/skus", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSKU replaces a catalog entry. Manager only.
func (c *Client) UpdateSKU(ctx context.Context, id string, req model.SKURequest) (*model.SKU, error) {
	var out model.SKU
	if err := c.do(ctx, http.MethodPut, "/api/manager/skus/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSKU removes a catalog entry. Manager only.
func (c *Client) DeleteSKU(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/manager/skus/"+id, nil, nil)
}
