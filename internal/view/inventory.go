// Package view holds the screen controllers that keep paginated query results,
// the selected record, and user inputs consistent with server state across
// reloads, real-time events, and optimistic mutations.
package view

import (
	"context"
	"fmt"
	"sync"

	"stockdeck/internal/api"
	"stockdeck/internal/model"
	"stockdeck/internal/query"
)

// MaxQuantity mirrors the backend's quantity bound for local validation.
const MaxQuantity = model.MaxQuantity

// LowStockThreshold marks records needing attention on the dashboard.
const LowStockThreshold = 25

// InventoryView drives an inventory screen: a filtered, paginated list plus an
// optional selected record with quantity controls.
//
// Reconciliation contract: every completed reload re-derives the selection by
// record id from the fresh item set. A found record replaces the selection by
// value and resyncs the quantity input; a vanished record leaves the selection
// stale, and later mutations against it surface the backend's error.
type InventoryView struct {
	client *api.Client
	list   *query.Query[*model.InventoryList]

	// mu guards filters, selected, and quantityInput; background reloads
	// reconcile the selection from their own goroutine.
	mu            sync.Mutex
	filters       model.InventoryFilters
	selected      *model.InventoryRecord
	quantityInput int
}

// NewInventoryView creates the controller. Call Activate to load the first
// page.
func NewInventoryView(client *api.Client, filters model.InventoryFilters) *InventoryView {
	if filters.Page == 0 {
		filters.Page = 1
	}
	if filters.PageSize == 0 {
		filters.PageSize = 20
	}
	if filters.SortBy == "" {
		filters.SortBy = "updated_at"
	}
	if filters.Order == "" {
		filters.Order = "desc"
	}

	v := &InventoryView{client: client, filters: filters}
	v.list = query.New(func(ctx context.Context) (*model.InventoryList, error) {
		return client.ListInventory(ctx, v.Filters())
	}, query.Options{})
	v.list.OnChange(v.reconcile)
	return v
}

// Activate performs the initial load.
func (v *InventoryView) Activate(ctx context.Context) {
	v.list.Activate(ctx)
}

// Reload re-runs the inventory query.
func (v *InventoryView) Reload(ctx context.Context) {
	v.list.Reload(ctx)
}

// SetFilters installs new filter state and reloads. The query itself never
// re-runs on filter changes; this is the one place that pairing happens.
func (v *InventoryView) SetFilters(ctx context.Context, filters model.InventoryFilters) {
	if filters.Page == 0 {
		filters.Page = 1
	}
	v.mu.Lock()
	if filters.PageSize == 0 {
		filters.PageSize = v.filters.PageSize
	}
	v.filters = filters
	v.mu.Unlock()
	v.list.Reload(ctx)
}

// Filters returns the active filter state.
func (v *InventoryView) Filters() model.InventoryFilters {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filters
}

// HandleEvent reacts to a real-time inventory event. Any event, whatever row
// it concerns, triggers a full reload: the payload is denormalized and
// possibly partial, so the authoritative row is always re-fetched.
func (v *InventoryView) HandleEvent(ctx context.Context, event *model.InventoryUpdateEvent) {
	if event == nil {
		return
	}
	v.list.Reload(ctx)
}

// List exposes the underlying query for loading/error display.
func (v *InventoryView) List() *query.Query[*model.InventoryList] {
	return v.list
}

// Items returns the current page of records.
func (v *InventoryView) Items() []model.InventoryRecord {
	list, ok := v.list.Data()
	if !ok || list == nil {
		return nil
	}
	return list.Items
}

// Selected returns the selected record, or nil.
func (v *InventoryView) Selected() *model.InventoryRecord {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selected
}

// QuantityInput returns the set-quantity field, kept in sync with the
// selection's refreshed quantity.
func (v *InventoryView) QuantityInput() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.quantityInput
}

// SetQuantityInput overrides the set-quantity field (user typing).
func (v *InventoryView) SetQuantityInput(n int) {
	v.mu.Lock()
	v.quantityInput = n
	v.mu.Unlock()
}

// Select fetches the full record and makes it the selection.
func (v *InventoryView) Select(ctx context.Context, id string) error {
	record, err := v.client.GetInventory(ctx, id)
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.selected = record
	v.quantityInput = record.Quantity
	v.mu.Unlock()
	return nil
}

// reconcile runs after every list-query transition.
func (v *InventoryView) reconcile() {
	list, ok := v.list.Data()
	if !ok || list == nil {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	// Deterministic initial selection: first item of the first non-empty page.
	if v.selected == nil {
		if len(list.Items) > 0 {
			record := list.Items[0]
			v.selected = &record
			v.quantityInput = record.Quantity
		}
		return
	}

	for i := range list.Items {
		if list.Items[i].ID == v.selected.ID {
			record := list.Items[i]
			v.selected = &record
			v.quantityInput = record.Quantity
			return
		}
	}
	// Not in the refreshed set (deleted concurrently, or paged out). The
	// selection stays as-is; mutations against it will surface server errors.
}

// Adjust validates and applies a signed delta to the selected record. The
// mutation response is installed optimistically before the background reload
// reconciles the list.
func (v *InventoryView) Adjust(ctx context.Context, delta int) error {
	selected := v.Selected()
	if selected == nil {
		return fmt.Errorf("no inventory record selected")
	}
	if delta == 0 {
		return fmt.Errorf("adjust delta cannot be zero")
	}
	if delta < -MaxQuantity || delta > MaxQuantity {
		return fmt.Errorf("adjust delta must be within ±%d", MaxQuantity)
	}
	// Checked against the locally held quantity, which may be stale; the
	// server remains authoritative and can still reject.
	if selected.Quantity+delta < 0 {
		return fmt.Errorf("cannot adjust by %d: result would be negative (current: %d)", delta, selected.Quantity)
	}

	updated, err := v.client.AdjustInventory(ctx, selected.ID, delta)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.selected = updated
	v.quantityInput = updated.Quantity
	v.mu.Unlock()
	go v.list.Reload(context.WithoutCancel(ctx))
	return nil
}

// SetQuantity validates and sets an absolute quantity on the selection.
func (v *InventoryView) SetQuantity(ctx context.Context, quantity int) error {
	selected := v.Selected()
	if selected == nil {
		return fmt.Errorf("no inventory record selected")
	}
	if quantity < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}
	if quantity > MaxQuantity {
		return fmt.Errorf("quantity cannot be greater than %d", MaxQuantity)
	}

	updated, err := v.client.UpdateInventory(ctx, selected.ID, quantity)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.selected = updated
	v.quantityInput = updated.Quantity
	v.mu.Unlock()
	go v.list.Reload(context.WithoutCancel(ctx))
	return nil
}

// Delete removes the selected record and clears the selection.
func (v *InventoryView) Delete(ctx context.Context) error {
	selected := v.Selected()
	if selected == nil {
		return fmt.Errorf("no inventory record selected")
	}

	if err := v.client.DeleteInventory(ctx, selected.ID); err != nil {
		return err
	}

	v.mu.Lock()
	v.selected = nil
	v.quantityInput = 0
	v.mu.Unlock()
	go v.list.Reload(context.WithoutCancel(ctx))
	return nil
}

// Create validates and creates a record for a (sku, store) pair. The
// duplicate check runs against the currently loaded page — best effort over
// possibly-stale data, backed by the server's uniqueness constraint.
func (v *InventoryView) Create(ctx context.Context, req model.CreateInventoryRequest) error {
	if req.SKUID == "" {
		return fmt.Errorf("select a SKU before creating inventory")
	}
	if req.StoreID == "" {
		return fmt.Errorf("select a store before creating inventory")
	}

	for _, item := range v.Items() {
		if item.SKUID == req.SKUID && item.StoreID == req.StoreID {
			return fmt.Errorf("inventory record already exists for %s at %s; adjust the quantity instead",
				item.SKUName(), item.StoreName())
		}
	}

	if req.Quantity < 0 {
		return fmt.Errorf("initial quantity cannot be negative")
	}
	if req.Quantity > MaxQuantity {
		return fmt.Errorf("initial quantity cannot be greater than %d", MaxQuantity)
	}

	if _, err := v.client.CreateInventory(ctx, req); err != nil {
		return err
	}

	go v.list.Reload(context.WithoutCancel(ctx))
	return nil
}
