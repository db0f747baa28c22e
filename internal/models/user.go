package models

import "time"

// Role represents user access levels
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleUser       Role = "USER"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleSuperAdmin || r == RoleUser
}

// User represents an account that can sign in to the admin area
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicUser is the part of a user returned by the login endpoint
type PublicUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Public strips everything but the fields safe to hand to a client
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Role: u.Role}
}

// Identity is the caller decoded from a valid session token. It lives only
// for the duration of one request.
type Identity struct {
	UserID int64 `json:"id"`
	Role   Role  `json:"role"`
}

// HasRole reports whether the identity carries one of roles
func (i *Identity) HasRole(roles ...Role) bool {
	if i == nil {
		return false
	}
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest represents the request body for a password change
type ChangePasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// CreateUserRequest is the body accepted when an administrator adds an account
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     Role   `json:"role" validate:"omitempty,oneof=SUPER_ADMIN USER"`
}

// SetActiveRequest enables or disables an account
type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// User management audit actions
const (
	ActionUserCreate = "user.create"
	ActionUserUpdate = "user.update"
)
