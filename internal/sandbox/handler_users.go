package sandbox

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"stockdeck/internal/model"
	"stockdeck/pkg/apierror"
	"stockdeck/pkg/response"
)

// UserHandler serves the manager-only account endpoints.
type UserHandler struct {
	store *Store
}

// NewUserHandler creates a new user handler.
func NewUserHandler(store *Store) *UserHandler {
	return &UserHandler{store: store}
}

// List handles GET /api/manager/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	list, err := h.store.ListUsers(r.Context(), page, limit)
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}
	response.OK(w, list)
}

// Create handles POST /api/manager/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	if req.Username == "" || req.Password == "" {
		response.Error(w, apierror.BadRequest("username and password are required"))
		return
	}
	if req.Role != model.RoleManager && req.Role != model.RoleStaff {
		response.Error(w, apierror.BadRequest("role must be manager or staff"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}

	user, err := h.store.CreateUser(r.Context(), req.Username, req.Email, string(hash), req.Role)
	if errors.Is(err, ErrDuplicate) {
		response.Error(w, apierror.Conflict("username already taken"))
		return
	}
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}
	response.Created(w, user)
}

// Update handles PUT /api/manager/users. The target account id travels in the
// body, not the path.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	if req.TargetID == "" {
		response.Error(w, apierror.BadRequest("target_id is required"))
		return
	}
	if req.Role != nil && *req.Role != model.RoleManager && *req.Role != model.RoleStaff {
		response.Error(w, apierror.BadRequest("role must be manager or staff"))
		return
	}

	user, err := h.store.UpdateUser(r.Context(), req)
	if errors.Is(err, ErrNotFound) {
		response.Error(w, apierror.NotFound("user not found"))
		return
	}
	if errors.Is(err, ErrDuplicate) {
		response.Error(w, apierror.Conflict("username already taken"))
		return
	}
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}
	response.OK(w, user)
}

// Delete handles DELETE /api/manager/users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == UserFromContext(r.Context()).ID {
		response.Error(w, apierror.BadRequest("cannot delete your own account"))
		return
	}

	err := h.store.DeleteUser(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		response.Error(w, apierror.NotFound("user not found"))
		return
	}
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}
	response.Message(w, "user deleted")
}
