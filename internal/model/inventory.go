package model

import "time"

// MaxQuantity bounds absolute quantities and adjust deltas, enforced on both
// sides of the API.
const MaxQuantity = 1_000_000

// InventoryRecord is one (sku, store) stock row. Rows are replaced wholesale
// on every reload; the client never patches individual fields.
type InventoryRecord struct {
	ID        string    `json:"id"`
	SKUID     string    `json:"sku_id"`
	StoreID   string    `json:"store_id"`
	Quantity  int       `json:"quantity"`
	Version   int       `json:"version"`
	SKU       *SKU      `json:"sku,omitempty"`
	Store     *Store    `json:"store,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SKUName returns the denormalized SKU name when present, else the id.
func (r *InventoryRecord) SKUName() string {
	if r.SKU != nil && r.SKU.Name != "" {
		return r.SKU.Name
	}
	return r.SKUID
}

// StoreName returns the denormalized store name when present, else the id.
func (r *InventoryRecord) StoreName() string {
	if r.Store != nil && r.Store.Name != "" {
		return r.Store.Name
	}
	return r.StoreID
}

// CreateInventoryRequest is the manager payload for creating a record.
type CreateInventoryRequest struct {
	SKUID    string `json:"sku_id"`
	StoreID  string `json:"store_id"`
	Quantity int    `json:"quantity"`
}

// UpdateInventoryRequest sets an absolute quantity.
type UpdateInventoryRequest struct {
	Quantity int `json:"quantity"`
}

// AdjustInventoryRequest applies a signed delta to the current quantity.
type AdjustInventoryRequest struct {
	DeltaQuantity int `json:"delta_quantity"`
}

// InventoryList is the paginated envelope for the inventory endpoints.
type InventoryList struct {
	Items      []InventoryRecord `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// InventoryFilters are the query parameters accepted by the inventory list
// endpoint. Zero values are omitted from the query string.
type InventoryFilters struct {
	StoreID  string
	SKUID    string
	Page     int
	PageSize int
	SortBy   string // quantity, created_at, updated_at
	Order    string // asc or desc
}
