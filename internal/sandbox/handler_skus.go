package sandbox

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"stockdeck/internal/model"
	"stockdeck/pkg/apierror"
	"stockdeck/pkg/response"
)

// SKUHandler serves the catalog endpoints. Reads are open to every
// authenticated user; writes require the manager role (enforced by routing).
type SKUHandler struct {
	store *Store
}

// NewSKUHandler creates a new SKU handler.
func NewSKUHandler(store *Store) *SKUHandler {
	return &SKUHandler{store: store}
}

// List handles GET /api/skus.
func (h *SKUHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	list, err := h.store.ListSKUs(r.Context(), model.SKUFilters{
		Page:     page,
		PageSize: pageSize,
		Search:   q.Get("search"),
		Category: q.Get("category"),
		SortBy:   q.Get("sort_by"),
		Order:    q.Get("order"),
	})
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}
	response.OK(w, list)
}

// Categories handles GET /api/skus/categories.
func (h *SKUHandler) Categories(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.ListSKUCategories(r.Context())
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}
	response.OK(w, out)
}

// Get handles GET /api/skus/{id}.
func (h *SKUHandler) Get(w http.ResponseWriter, r *http.Request) {
	sku, err := h.store.GetSKU(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		response.Error(w, apierror.NotFound("sku not found"))
		return
	}
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}
	response.OK(w, sku)
}

// Create handles POST /api/manager/skus.
func (h *SKUHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, apiErr := decodeSKURequest(r)
	if apiErr != nil {
		response.Error(w, apiErr)
		return
	}

	sku, err := h.store.CreateSKU(r.Context(), *req)
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}
	response.Created(w, sku)
}

// Update handles PUT /api/manager/skus/{id}.
func (h *SKUHandler) Update(w http.ResponseWriter, r *http.Request) {
	req, apiErr := decodeSKURequest(r)
	if apiErr != nil {
		response.Error(w, apiErr)
		return
	}

	sku, err := h.store.UpdateSKU(r.Context(), chi.URLParam(r, "id"), *req)
	if errors.Is(err, ErrNotFound) {
		response.Error(w, apierror.NotFound("sku not found"))
		return
	}
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}
	response.OK(w, sku)
}

// Delete handles DELETE /api/manager/skus/{id}.
func (h *SKUHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteSKU(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		response.Error(w, apierror.NotFound("sku not found"))
		return
	}
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}
	response.Message(w, "sku deleted")
}

func decodeSKURequest(r *http.Request) (*model.SKURequest, *apierror.Error) {
	var req model.SKURequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, apierror.BadRequest("invalid request body")
	}
	if req.Name == "" {
		return nil, apierror.BadRequest("sku name is required")
	}
	if req.Category == "" {
		return nil, apierror.BadRequest("sku category is required")
	}
	if req.Price < 0 {
		return nil, apierror.BadRequest("price cannot be negative")
	}
	return &req, nil
}
