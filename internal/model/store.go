package model

import "time"

// Store represents a physical retail location.
type Store struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateStoreRequest is the manager payload for creating a store.
type CreateStoreRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// StoreList is the (unpaginated) envelope for the stores endpoint.
type StoreList struct {
	Items []Store `json:"items"`
}

// StoreStaffAssociation links a staff user to a store.
type StoreStaffAssociation struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"store_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      *User     `json:"user,omitempty"`
	Store     *Store    `json:"store,omitempty"`
}

// AddStaffRequest is the manager payload for assigning staff to a store.
type AddStaffRequest struct {
	StoreID string `json:"store_id"`
	UserID  string `json:"user_id"`
}

// StoreStaffList is the envelope for the store staff endpoint.
type StoreStaffList struct {
	StoreID string `json:"store_id"`
	Staff   []User `json:"staff"`
}
