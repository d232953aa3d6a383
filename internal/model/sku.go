package model

import "time"

// SKU represents a catalog entry.
type SKU struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SKURequest is the payload for creating or replacing a SKU.
type SKURequest struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
}

// SKUList is the paginated envelope for the SKU endpoints.
type SKUList struct {
	Items      []SKU `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// SKUCategories is the envelope for GET /api/skus/categories.
type SKUCategories struct {
	Categories []string `json:"categories"`
}

// SKUFilters are the query parameters accepted by the SKU list endpoint.
type SKUFilters struct {
	Page     int
	PageSize int
	Search   string
	Category string
	SortBy   string // name, category, price, created_at, updated_at
	Order    string // asc or desc
}
