package model

import (
	"time"

	"github.com/google/uuid"
)

// UserRole is the identity role carried in access tokens.
type UserRole string

const (
	// RoleAuthenticated is a regular signed-in learner.
	RoleAuthenticated UserRole = "authenticated"
	// RoleServiceRole is the privileged admin role.
	RoleServiceRole UserRole = "service_role"
)

// IsAdmin reports whether the role grants back-office access.
func (r UserRole) IsAdmin() bool {
	return r == RoleServiceRole
}

// Profile represents a user account.
type Profile struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	Role         UserRole  `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SignUpRequest is the payload for self-service registration.
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	FullName string `json:"full_name" binding:"required,min=2,max=120"`
	Phone    string `json:"phone" binding:"omitempty,min=6,max=30"`
}

// SignInRequest is the payload for password authentication.
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=128"`
}

// AuthResponse is returned after sign-up or sign-in.
type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Profile     Profile   `json:"profile"`
}

// UpdateProfileRequest is the payload a user sends to edit their own profile.
type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"required,min=2,max=120"`
	Phone    string `json:"phone" binding:"omitempty,min=6,max=30"`
}

// AdminUpdateUserRequest is the payload an admin sends to edit any profile.
type AdminUpdateUserRequest struct {
	FullName string   `json:"full_name" binding:"required,min=2,max=120"`
	Phone    string   `json:"phone" binding:"omitempty,min=6,max=30"`
	Role     UserRole `json:"role" binding:"required,oneof=authenticated service_role"`
}
