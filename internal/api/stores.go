package api

import (
	"context"
	"net/http"

	"stockdeck/internal/model"
)

// ListStores fetches all stores. Manager only.
func (c *Client) ListStores(ctx context.Context) (*model.StoreList, error) {
	var out model.StoreList
	if err := c.do(ctx, http.MethodGet, "/api/manager/stores", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateStore registers a new store. Manager only.
func (c *Client) CreateStore(ctx context.Context, req model.CreateStoreRequest) (*model.Store, error) {
	var out model.Store
	if err := c.do(ctx, http.MethodPost, "/api/manager/stores", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteStore removes a store. Manager only.
func (c *Client) DeleteStore(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/manager/stores/"+id, nil, nil)
}

// ListStoreStaff fetches the staff assigned to a store. Manager only.
func (c *Client) ListStoreStaff(ctx context.Context, storeID string) (*model.StoreStaffList, error) {
	query := buildQuery(map[string]string{"store_id": storeID})

	var out model.StoreStaffList
	if err := c.do(ctx, http.MethodGet, "/api/manager/stores/staff"+query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddStaffToStore assigns a staff user to a store. Manager only.
func (c *Client) AddStaffToStore(ctx context.Context, req model.AddStaffRequest) (*model.StoreStaffAssociation, error) {
	var out model.StoreStaffAssociation
	if err := c.do(ctx, http.MethodPost, "/api/manager/stores/staff", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteStaffFromStore removes a staff assignment. Manager only.
func (c *Client) DeleteStaffFromStore(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/manager/stores/staff/"+id, nil, nil)
}
