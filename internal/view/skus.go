package view

import (
	"context"
	"io"
	"sync"

	"stockdeck/internal/api"
	"stockdeck/internal/export"
	"stockdeck/internal/model"
	"stockdeck/internal/query"
)

// SKUView drives the catalog screen: a searchable, filterable SKU page plus
// the category list used to populate the filter dropdown.
type SKUView struct {
	client     *api.Client
	list       *query.Query[*model.SKUList]
	categories *query.Query[*model.SKUCategories]

	mu      sync.Mutex
	filters model.SKUFilters
}

// NewSKUView creates the controller. Call Activate to load the first page.
func NewSKUView(client *api.Client, filters model.SKUFilters) *SKUView {
	if filters.Page == 0 {
		filters.Page = 1
	}
	if filters.PageSize == 0 {
		filters.PageSize = 20
	}
	if filters.SortBy == "" {
		filters.SortBy = "created_at"
	}
	if filters.Order == "" {
		filters.Order = "desc"
	}

	v := &SKUView{client: client, filters: filters}
	v.list = query.New(func(ctx context.Context) (*model.SKUList, error) {
		return client.ListSKUs(ctx, v.Filters())
	}, query.Options{})
	v.categories = query.New(func(ctx context.Context) (*model.SKUCategories, error) {
		return client.ListSKUCategories(ctx)
	}, query.Options{})
	return v
}

// Activate loads the catalog page and the category list.
func (v *SKUView) Activate(ctx context.Context) {
	v.list.Activate(ctx)
	v.categories.Activate(ctx)
}

// Reload re-runs the catalog query.
func (v *SKUView) Reload(ctx context.Context) {
	v.list.Reload(ctx)
}

// SetFilters installs new filter state and reloads, resetting to page 1 when
// the search or category changed.
func (v *SKUView) SetFilters(ctx context.Context, filters model.SKUFilters) {
	if filters.Page == 0 {
		filters.Page = 1
	}
	v.mu.Lock()
	if filters.PageSize == 0 {
		filters.PageSize = v.filters.PageSize
	}
	if filters.Search != v.filters.Search || filters.Category != v.filters.Category {
		filters.Page = 1
	}
	v.filters = filters
	v.mu.Unlock()
	v.list.Reload(ctx)
}

// Filters returns the active filter state.
func (v *SKUView) Filters() model.SKUFilters {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filters
}

// List exposes the underlying catalog query.
func (v *SKUView) List() *query.Query[*model.SKUList] {
	return v.list
}

// Items returns the current catalog page.
func (v *SKUView) Items() []model.SKU {
	list, ok := v.list.Data()
	if !ok || list == nil {
		return nil
	}
	return list.Items
}

// Categories returns the known category names.
func (v *SKUView) Categories() []string {
	cats, ok := v.categories.Data()
	if !ok || cats == nil {
		return nil
	}
	return cats.Categories
}

// Delete removes a SKU and reloads the page.
func (v *SKUView) Delete(ctx context.Context, id string) error {
	if err := v.client.DeleteSKU(ctx, id); err != nil {
		return err
	}
	go v.list.Reload(context.WithoutCancel(ctx))
	return nil
}

// ExportCSV writes the currently loaded page as CSV.
func (v *SKUView) ExportCSV(w io.Writer) error {
	return export.SKUsCSV(w, v.Items())
}
