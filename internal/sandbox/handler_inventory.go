package sandbox

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"stockdeck/internal/model"
	"stockdeck/pkg/apierror"
	"stockdeck/pkg/response"
	"stockdeck/pkg/uid"
)

// InventoryHandler serves the inventory endpoints and broadcasts one update
// event per committed mutation.
type InventoryHandler struct {
	store      *Store
	hub        *Hub
	instanceID string
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(store *Store, hub *Hub) *InventoryHandler {
	return &InventoryHandler{store: store, hub: hub, instanceID: uid.New()}
}

// List handles GET /api/inventory.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	list, err := h.store.ListInventory(r.Context(), model.InventoryFilters{
		StoreID:  q.Get("store_id"),
		SKUID:    q.Get("sku_id"),
		Page:     page,
		PageSize: pageSize,
		SortBy:   q.Get("sort_by"),
		Order:    q.Get("order"),
	})
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}
	response.OK(w, list)
}

// Get handles GET /api/inventory/{id}.
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.store.GetInventory(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		response.Error(w, apierror.NotFound("inventory record not found"))
		return
	}
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}
	response.OK(w, record)
}

// Adjust handles POST /api/inventory/{id}/adjust. Staff may only adjust
// records belonging to their assigned stores.
func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req model.AdjustInventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	if req.DeltaQuantity == 0 {
		response.Error(w, apierror.BadRequest("delta_quantity cannot be zero"))
		return
	}
	if req.DeltaQuantity < -model.MaxQuantity || req.DeltaQuantity > model.MaxQuantity {
		response.Error(w, apierror.BadRequest("delta_quantity out of range"))
		return
	}

	id := chi.URLParam(r, "id")
	record, err := h.store.GetInventory(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		response.Error(w, apierror.NotFound("inventory record not found"))
		return
	}
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}

	user := UserFromContext(r.Context())
	if !user.IsManager() {
		assigned, err := h.store.StaffStoreIDs(r.Context(), user.ID)
		if err != nil {
			response.Error(w, apierror.InternalError(""))
			return
		}
		if !assigned[record.StoreID] {
			response.Error(w, apierror.Forbidden("not assigned to this store"))
			return
		}
	}

	updated, old, err := h.store.AdjustInventoryQuantity(r.Context(), id, req.DeltaQuantity)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(w, apierror.NotFound("inventory record not found"))
		} else {
			response.Error(w, apierror.BadRequest(err.Error()))
		}
		return
	}

	h.publish(model.OpAdjust, updated, user, req.DeltaQuantity, &old)
	response.OK(w, updated)
}

// Create handles POST /api/manager/inventory.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateInventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	if req.SKUID == "" || req.StoreID == "" {
		response.Error(w, apierror.BadRequest("sku_id and store_id are required"))
		return
	}
	if req.Quantity < 0 || req.Quantity > model.MaxQuantity {
		response.Error(w, apierror.BadRequest("quantity out of range"))
		return
	}
	if _, err := h.store.GetSKU(r.Context(), req.SKUID); errors.Is(err, ErrNotFound) {
		response.Error(w, apierror.NotFound("sku not found"))
		return
	}
	if _, err := h.store.GetStore(r.Context(), req.StoreID); errors.Is(err, ErrNotFound) {
		response.Error(w, apierror.NotFound("store not found"))
		return
	}

	record, err := h.store.CreateInventory(r.Context(), req)
	if errors.Is(err, ErrDuplicate) {
		response.Error(w, apierror.Conflict("inventory record already exists for this sku and store"))
		return
	}
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}

	h.publish(model.OpCreate, record, UserFromContext(r.Context()), record.Quantity, nil)
	response.Created(w, record)
}

// Update handles PUT /api/manager/inventory/{id}.
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateInventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	if req.Quantity < 0 || req.Quantity > model.MaxQuantity {
		response.Error(w, apierror.BadRequest("quantity out of range"))
		return
	}

	record, old, err := h.store.SetInventoryQuantity(r.Context(), chi.URLParam(r, "id"), req.Quantity)
	if errors.Is(err, ErrNotFound) {
		response.Error(w, apierror.NotFound("inventory record not found"))
		return
	}
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}

	h.publish(model.OpUpdate, record, UserFromContext(r.Context()), record.Quantity-old, &old)
	response.OK(w, record)
}

// Delete handles DELETE /api/manager/inventory/{id}.
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	record, err := h.store.DeleteInventory(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		response.Error(w, apierror.NotFound("inventory record not found"))
		return
	}
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}

	old := record.Quantity
	deleted := *record
	deleted.Quantity = 0
	h.publish(model.OpDelete, &deleted, UserFromContext(r.Context()), -old, &old)
	response.Message(w, "inventory record deleted")
}

// publish broadcasts one event frame for a committed mutation.
func (h *InventoryHandler) publish(op model.Operation, record *model.InventoryRecord, user *model.User, delta int, old *int) {
	event := model.InventoryUpdateEvent{
		ID:               uid.New(),
		OperationType:    op,
		SenderInstanceID: h.instanceID,
		InventoryID:      record.ID,
		SKUID:            record.SKUID,
		SKUName:          record.SKUName(),
		StoreID:          record.StoreID,
		StoreName:        record.StoreName(),
		DeltaQuantity:    delta,
		NewQuantity:      record.Quantity,
		OldQuantity:      old,
		Version:          record.Version,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}
	if user != nil {
		event.UserID = user.ID
		event.UserName = user.Username
	}

	frame, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).Error("failed to encode inventory event")
		return
	}
	h.hub.Broadcast(frame)
}
