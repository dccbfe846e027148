package repository

import (
	"context"

	"github.com/dmorandi/auth-backend/internal/domain"
)

// UserRepository is the user directory contract. Implementations exist
// for PostgreSQL and MongoDB; the backend is chosen once at startup.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindAll(ctx context.Context) ([]*domain.User, error)
	FindByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
	Update(ctx context.Context, id string, fields *domain.UpdateUser) (*domain.User, error)
	Delete(ctx context.Context, id string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// TokenRepository is the token store contract. Delete operations report
// whether a row was actually removed; consuming a refresh token relies
// on DeleteByValue being atomic per row.
type TokenRepository interface {
	Create(ctx context.Context, token *domain.AuthToken) error
	FindByValue(ctx context.Context, value string) (*domain.AuthToken, error)
	FindAllByUser(ctx context.Context, userID string) ([]*domain.AuthToken, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteByValue(ctx context.Context, value string) (bool, error)
	DeleteAllByUser(ctx context.Context, userID string) (bool, error)
	DeleteExpired(ctx context.Context) (bool, error)
}
