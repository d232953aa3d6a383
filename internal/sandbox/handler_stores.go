package sandbox

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stockdeck/internal/model"
	"stockdeck/pkg/apierror"
	"stockdeck/pkg/response"
)

// StoreHandler serves the manager-only store and staff endpoints.
type StoreHandler struct {
	store *Store
}

// NewStoreHandler creates a new store handler.
func NewStoreHandler(store *Store) *StoreHandler {
	return &StoreHandler{store: store}
}

// List handles GET /api/manager/stores.
func (h *StoreHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListStores(r.Context())
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}
	response.OK(w, list)
}

// Create handles POST /api/manager/stores.
func (h *StoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	if req.Name == "" {
		response.Error(w, apierror.BadRequest("store name is required"))
		return
	}

	store, err := h.store.CreateStore(r.Context(), req)
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}
	response.Created(w, store)
}

// Delete handles DELETE /api/manager/stores/{id}.
func (h *StoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteStore(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		response.Error(w, apierror.NotFound("store not found"))
		return
	}
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}
	response.Message(w, "store deleted")
}

// ListStaff handles GET /api/manager/stores/staff?store_id=.
func (h *StoreHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	storeID := r.URL.Query().Get("store_id")
	if storeID == "" {
		response.Error(w, apierror.BadRequest("store_id is required"))
		return
	}
	if _, err := h.store.GetStore(r.Context(), storeID); errors.Is(err, ErrNotFound) {
		response.Error(w, apierror.NotFound("store not found"))
		return
	}

	list, err := h.store.ListStoreStaff(r.Context(), storeID)
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}
	response.OK(w, list)
}

// AddStaff handles POST /api/manager/stores/staff.
func (h *StoreHandler) AddStaff(w http.ResponseWriter, r *http.Request) {
	var req model.AddStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	if req.StoreID == "" || req.UserID == "" {
		response.Error(w, apierror.BadRequest("store_id and user_id are required"))
		return
	}
	if _, err := h.store.GetStore(r.Context(), req.StoreID); errors.Is(err, ErrNotFound) {
		response.Error(w, apierror.NotFound("store not found"))
		return
	}
	if _, _, err := h.store.GetUserByID(r.Context(), req.UserID); errors.Is(err, ErrNotFound) {
		response.Error(w, apierror.NotFound("user not found"))
		return
	}

	assoc, err := h.store.AddStaff(r.Context(), req)
	if errors.Is(err, ErrDuplicate) {
		response.Error(w, apierror.Conflict("user is already assigned to this store"))
		return
	}
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}
	response.Created(w, assoc)
}

// DeleteStaff handles DELETE /api/manager/stores/staff/{id}.
func (h *StoreHandler) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteStaff(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		response.Error(w, apierror.NotFound("staff assignment not found"))
		return
	}
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}
	response.Message(w, "staff assignment removed")
}
