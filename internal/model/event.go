package model

import "time"

// Operation describes the kind of change an inventory event reports.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpAdjust Operation = "adjust"
	OpDelete Operation = "delete"
)

// InventoryUpdateEvent is one committed change to one inventory row,
// delivered as a single JSON text frame over the update channel. The ID field
// is not guaranteed on every variant; consumers match rows by InventoryID.
type InventoryUpdateEvent struct {
	ID               string    `json:"id,omitempty"`
	OperationType    Operation `json:"operation_type"`
	SenderInstanceID string    `json:"sender_instance_id"`
	InventoryID      string    `json:"inventory_id"`
	SKUID            string    `json:"sku_id"`
	SKUName          string    `json:"sku_name"`
	StoreID          string    `json:"store_id"`
	StoreName        string    `json:"store_name"`
	UserID           string    `json:"user_id"`
	UserName         string    `json:"user_name"`
	DeltaQuantity    int       `json:"delta_quantity"`
	NewQuantity      int       `json:"new_quantity"`
	OldQuantity      *int      `json:"old_quantity,omitempty"`
	Version          int       `json:"version"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
