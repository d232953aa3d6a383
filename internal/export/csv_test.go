package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdeck/internal/model"
)

func TestSKUsCSV(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	skus := []model.SKU{
		{
			ID:          "sku-1",
			Name:        "Widget, large",
			Description: "A \"big\" widget",
			Category:    "widgets",
			Price:       19.5,
			Version:     3,
			CreatedAt:   created,
			UpdatedAt:   created.Add(time.Hour),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, SKUsCSV(&buf, skus))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "SKU ID,Name,Description,Category,Price,Version,Created At,Updated At", lines[0])

	// Commas and quotes are escaped per RFC 4180; price keeps two decimals.
	assert.Contains(t, lines[1], `"Widget, large"`)
	assert.Contains(t, lines[1], `"A ""big"" widget"`)
	assert.Contains(t, lines[1], "19.50")
	assert.Contains(t, lines[1], "2025-03-01T10:30:00Z")
}

func TestSKUsCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SKUsCSV(&buf, nil))
	assert.Equal(t, "SKU ID,Name,Description,Category,Price,Version,Created At,Updated At\n", buf.String())
}

func TestInventoryCSVPrefersDenormalizedNames(t *testing.T) {
	records := []model.InventoryRecord{
		{
			ID:       "rec-1",
			SKUID:    "sku-1",
			StoreID:  "store-1",
			Quantity: 7,
			Version:  2,
			SKU:      &model.SKU{ID: "sku-1", Name: "Widget"},
			Store:    &model.Store{ID: "store-1", Name: "Downtown"},
		},
		{
			// No denormalized rows; ids are used instead.
			ID:       "rec-2",
			SKUID:    "sku-2",
			StoreID:  "store-2",
			Quantity: 0,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, InventoryCSV(&buf, records))

	out := buf.String()
	assert.Contains(t, out, "Widget,Downtown,7")
	assert.Contains(t, out, "sku-2,store-2,0")
}
