package sandbox

import (
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"stockdeck/internal/model"
	"stockdeck/pkg/apierror"
	"stockdeck/pkg/response"
)

// AuthHandler serves login, profile, and password rotation.
type AuthHandler struct {
	store  *Store
	tokens *TokenService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(store *Store, tokens *TokenService) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	if req.Username == "" || req.Password == "" {
		response.Error(w, apierror.BadRequest("username and password are required"))
		return
	}

	user, hash, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if errors.Is(err, ErrNotFound) {
		response.Error(w, apierror.Unauthorized("invalid username or password"))
		return
	}
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		response.Error(w, apierror.Unauthorized("invalid username or password"))
		return
	}

	token, err := h.tokens.Generate(r.Context(), user.ID)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to create session"))
		return
	}

	response.OK(w, model.LoginResponse{Token: token, User: *user})
}

// GetProfile handles GET /api/profile.
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	response.OK(w, UserFromContext(r.Context()))
}

// ChangePassword handles PUT /api/profile/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req model.PasswordChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	if len(req.NewPassword) < 8 {
		response.Error(w, apierror.BadRequest("new password must be at least 8 characters"))
		return
	}

	user := UserFromContext(r.Context())
	_, hash, err := h.store.GetUserByID(r.Context(), user.ID)
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.OldPassword)) != nil {
		response.Error(w, apierror.BadRequest("old password is incorrect"))
		return
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}
	if err := h.store.UpdatePassword(r.Context(), user.ID, string(newHash)); err != nil {
		response.Error(w, apierror.InternalError(""))
		return
	}

	response.Message(w, "password updated")
}
