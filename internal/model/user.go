package model

import "time"

// Role of an authenticated user.
type Role string

const (
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

// User represents an account on the backend.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsManager reports whether the user holds the manager role.
func (u *User) IsManager() bool {
	return u != nil && u.Role == RoleManager
}

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the successful login result.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// PasswordChangeRequest is the payload for PUT /api/profile/password.
type PasswordChangeRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// CreateUserRequest is the manager payload for creating an account.
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// UpdateUserRequest is the manager payload for updating an account.
// Nil fields are left unchanged.
type UpdateUserRequest struct {
	TargetID string  `json:"target_id"`
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *Role   `json:"role,omitempty"`
}

// UserList is the paginated envelope for the users endpoint. It predates the
// items/page_size envelope used elsewhere and keeps the older field names.
type UserList struct {
	Users      []User `json:"users"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"totalPages"`
}
