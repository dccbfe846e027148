package service

import (
	"context"

	"github.com/dmorandi/auth-backend/internal/domain"
	"github.com/dmorandi/auth-backend/internal/dto"
)

// AuthService defines the authentication lifecycle operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	Logout(ctx context.Context, userID string) error

	// Validate resolves a token value to its persisted row. A nil token
	// with a nil error means "not authenticated", never a system fault.
	Validate(ctx context.Context, tokenValue string) (*domain.AuthToken, error)
}

// UserService defines user directory operations
type UserService interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	AddRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	RemoveRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
}

// EmailService sends transactional email
type EmailService interface {
	Send(ctx context.Context, req *dto.SendEmailRequest) error
}
