package api

import (
	"context"
	"net/http"

	"stockdeck/internal/model"
)

// ListInventory fetches a filtered page of inventory records.
func (c *Client) ListInventory(ctx context.Context, filters model.InventoryFilters) (*model.InventoryList, error) {
	query := buildQuery(map[string]string{
		"store_id":  filters.StoreID,
		"sku_id":    filters.SKUID,
		"page":      itoaIfSet(filters.Page),
		"page_size": itoaIfSet(filters.PageSize),
		"sort_by":   filters.SortBy,
		"order":     filters.Order,
	})

	var out model.InventoryList
	if err := c.do(ctx, http.MethodGet, "/api/inventory"+query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetInventory fetches one inventory record by id.
func (c *Client) GetInventory(ctx context.Context, id string) (*model.InventoryRecord, error) {
	var out model.InventoryRecord
	if err := c.do(ctx, http.MethodGet, "/api/inventory/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdjustInventory applies a signed delta to a record's quantity. Staff may
// only touch records in their assigned stores; the backend enforces this.
func (c *Client) AdjustInventory(ctx context.Context, id string, delta int) (*model.InventoryRecord, error) {
	var out model.InventoryRecord
	req := model.AdjustInventoryRequest{DeltaQuantity: delta}
	if err := c.do(ctx, http.MethodPost, "/api/inventory/"+id+"/adjust", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateInventory creates a record for a (sku, store) pair. Manager only.
func (c *Client) CreateInventory(ctx context.Context, req model.CreateInventoryRequest) (*model.InventoryRecord, error) {
	var out model.InventoryRecord
	if err := c.do(ctx, http.MethodPost, "/api/manager/inventory", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateInventory sets an absolute quantity on a record. Manager only.
func (c *Client) UpdateInventory(ctx context.Context, id string, quantity int) (*model.InventoryRecord, error) {
	var out model.InventoryRecord
	req := model.UpdateInventoryRequest{Quantity: quantity}
	if err := c.do(ctx, http.MethodPut, "/api/manager/inventory/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteInventory removes a record. Manager only.
func (c *Client) DeleteInventory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/manager/inventory/"+id, nil, nil)
}
