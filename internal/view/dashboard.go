package view

import (
	"context"

	"stockdeck/internal/api"
	"stockdeck/internal/model"
	"stockdeck/internal/query"
)

// DashboardView aggregates the overview metrics: catalog size, inventory
// coverage, store spread, account count, and low-stock records.
type DashboardView struct {
	skus      *query.Query[*model.SKUList]
	inventory *query.Query[*model.InventoryList]
	users     *query.Query[*model.UserList]
}

// Metrics is the derived snapshot rendered on the overview screen.
type Metrics struct {
	TotalSKUs       int64
	TotalInventory  int64
	UniqueStores    int
	TotalUsers      int64 // -1 when the viewer is not a manager
	LowStock        []model.InventoryRecord
	RecentInventory []model.InventoryRecord
	LatestSKUs      []model.SKU
}

// NewDashboardView creates the controller. The users query only runs for
// managers; staff get -1 for the account count.
func NewDashboardView(client *api.Client, manager bool) *DashboardView {
	v := &DashboardView{}
	v.skus = query.New(func(ctx context.Context) (*model.SKUList, error) {
		return client.ListSKUs(ctx, model.SKUFilters{Page: 1, PageSize: 20, SortBy: "created_at", Order: "desc"})
	}, query.Options{})
	v.inventory = query.New(func(ctx context.Context) (*model.InventoryList, error) {
		return client.ListInventory(ctx, model.InventoryFilters{Page: 1, PageSize: 50, SortBy: "updated_at", Order: "desc"})
	}, query.Options{})
	v.users = query.New(func(ctx context.Context) (*model.UserList, error) {
		return client.ListUsers(ctx, 1, 50)
	}, query.Options{Disabled: !manager})
	return v
}

// Activate loads all three snapshot queries.
func (v *DashboardView) Activate(ctx context.Context) {
	v.skus.Activate(ctx)
	v.inventory.Activate(ctx)
	v.users.Activate(ctx)
}

// Reload refreshes all three snapshot queries.
func (v *DashboardView) Reload(ctx context.Context) {
	v.skus.Reload(ctx)
	v.inventory.Reload(ctx)
	v.users.Reload(ctx)
}

// Metrics derives the overview numbers from the loaded snapshots.
func (v *DashboardView) Metrics() Metrics {
	m := Metrics{TotalUsers: -1}

	if skus, ok := v.skus.Data(); ok && skus != nil {
		m.TotalSKUs = skus.Total
		m.LatestSKUs = skus.Items
	}

	if inv, ok := v.inventory.Data(); ok && inv != nil {
		m.TotalInventory = inv.Total
		m.RecentInventory = inv.Items

		stores := map[string]struct{}{}
		for _, item := range inv.Items {
			stores[item.StoreID] = struct{}{}
			if item.Quantity < LowStockThreshold {
				m.LowStock = append(m.LowStock, item)
			}
		}
		m.UniqueStores = len(stores)
	}

	if users, ok := v.users.Data(); ok && users != nil {
		m.TotalUsers = users.Total
	}

	return m
}
