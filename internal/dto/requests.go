package dto

import "github.com/dmorandi/auth-backend/internal/domain"

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Username  string  `json:"username" binding:"required,min=3,max=32"`
	Password  string  `json:"password" binding:"required,min=8"`
	FirstName *string `json:"first_name,omitempty" binding:"omitempty,max=64"`
	LastName  *string `json:"last_name,omitempty" binding:"omitempty,max=64"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries the refresh token being exchanged
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// UpdateUserRequest carries a partial user update; absent fields are
// left unchanged.
type UpdateUserRequest struct {
	Email     *string       `json:"email,omitempty" binding:"omitempty,email"`
	Username  *string       `json:"username,omitempty" binding:"omitempty,min=3,max=32"`
	FirstName *string       `json:"first_name,omitempty" binding:"omitempty,max=64"`
	LastName  *string       `json:"last_name,omitempty" binding:"omitempty,max=64"`
	IsActive  *bool         `json:"is_active,omitempty"`
	Roles     []domain.Role `json:"roles,omitempty" binding:"omitempty,min=1,dive,oneof=admin user moderator"`
}

// RoleRequest names a single role to add or remove
type RoleRequest struct {
	Role domain.Role `json:"role" binding:"required,oneof=admin user moderator"`
}

// SendEmailRequest represents a transactional email request
type SendEmailRequest struct {
	To      []string `json:"to" binding:"required,min=1,dive,email"`
	Subject string   `json:"subject" binding:"required"`
	HTML    string   `json:"html" binding:"required"`
	Text    string   `json:"text,omitempty"`
}
