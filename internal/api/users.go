package api

import (
	"context"
	"net/http"

	"stockdeck/internal/model"
)

// ListUsers fetches a page of accounts. Manager only.
func (c *Client) ListUsers(ctx context.Context, page, limit int) (*model.UserList, error) {
	query := buildQuery(map[string]string{
		"page":  itoaIfSet(page),
		"limit": itoaIfSet(limit),
	})

	var out model.UserList
	if err := c.do(ctx, http.MethodGet, "/api/manager/users"+query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateUser provisions a new account. Manager only.
func (c *Client) CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, http.MethodPost, "/api/manager/users", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser updates an existing account. Manager only.
func (c *Client) UpdateUser(ctx context.Context, req model.UpdateUserRequest) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, http.MethodPut, "/api/manager/users", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes an account. Manager only.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/manager/users/"+id, nil, nil)
}
