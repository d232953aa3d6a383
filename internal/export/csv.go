// Package export renders loaded records as downloadable CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"stockdeck/internal/model"
)

var skuHeader = []string{"SKU ID", "Name", "Description", "Category", "Price", "Version", "Created At", "Updated At"}

var inventoryHeader = []string{"Record ID", "SKU", "Store", "Quantity", "Version", "Created At", "Updated At"}

// SKUsCSV writes the given SKUs as CSV. Prices are rendered with two decimal
// places and timestamps as RFC 3339.
func SKUsCSV(w io.Writer, skus []model.SKU) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(skuHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, sku := range skus {
		row := []string{
			sku.ID,
			sku.Name,
			sku.Description,
			sku.Category,
			strconv.FormatFloat(sku.Price, 'f', 2, 64),
			strconv.Itoa(sku.Version),
			sku.CreatedAt.Format(time.RFC3339),
			sku.UpdatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// InventoryCSV writes the given inventory records as CSV, preferring the
// denormalized SKU and store names over raw ids.
func InventoryCSV(w io.Writer, records []model.InventoryRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(inventoryHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range records {
		r := &records[i]
		row := []string{
			r.ID,
			r.SKUName(),
			r.StoreName(),
			strconv.Itoa(r.Quantity),
			strconv.Itoa(r.Version),
			r.CreatedAt.Format(time.RFC3339),
			r.UpdatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
