package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/dmorandi/auth-backend/internal/domain"
	"github.com/dmorandi/auth-backend/pkg/database"
)

const tokenColumns = `id, user_id, token, type, expires_at, created_at`

// postgresTokenRepository implements TokenRepository against PostgreSQL
type postgresTokenRepository struct {
	db *database.Postgres
}

// NewPostgresTokenRepository creates a new PostgreSQL token repository
func NewPostgresTokenRepository(db *database.Postgres) TokenRepository {
	return &postgresTokenRepository{db: db}
}

// Create inserts a new auth token row
func (r *postgresTokenRepository) Create(ctx context.Context, token *domain.AuthToken) error {
	query := `
		INSERT INTO auth_tokens (id, user_id, token, type, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.Token,
		string(token.Type),
		token.ExpiresAt,
		token.CreatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("token value taken: %w", ErrDuplicateToken)
		}
		return fmt.Errorf("failed to create token: %w", err)
	}

	return nil
}

// FindByValue retrieves a token by its exact value
func (r *postgresTokenRepository) FindByValue(ctx context.Context, value string) (*domain.AuthToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM auth_tokens WHERE token = $1`

	token := &domain.AuthToken{}
	var tokenType string

	err := r.db.DB.QueryRowContext(ctx, query, value).Scan(
		&token.ID,
		&token.UserID,
		&token.Token,
		&tokenType,
		&token.ExpiresAt,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("token not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get token by value: %w", err)
	}

	token.Type = domain.TokenType(tokenType)
	return token, nil
}

// FindAllByUser retrieves all tokens owned by a user
func (r *postgresTokenRepository) FindAllByUser(ctx context.Context, userID string) ([]*domain.AuthToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM auth_tokens WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tokens by user id: %w", err)
	}
	defer rows.Close()

	var tokens []*domain.AuthToken
	for rows.Next() {
		token := &domain.AuthToken{}
		var tokenType string

		err := rows.Scan(
			&token.ID,
			&token.UserID,
			&token.Token,
			&tokenType,
			&token.ExpiresAt,
			&token.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}

		token.Type = domain.TokenType(tokenType)
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tokens: %w", err)
	}

	return tokens, nil
}

// Delete removes a token by ID. Deleting a missing id is not an error.
func (r *postgresTokenRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.deleteWhere(ctx, `DELETE FROM auth_tokens WHERE id = $1`, id)
}

// DeleteByValue removes a token by its exact value. The row delete is
// atomic, so of two concurrent callers at most one observes true.
func (r *postgresTokenRepository) DeleteByValue(ctx context.Context, value string) (bool, error) {
	return r.deleteWhere(ctx, `DELETE FROM auth_tokens WHERE token = $1`, value)
}

// DeleteAllByUser removes every token owned by a user
func (r *postgresTokenRepository) DeleteAllByUser(ctx context.Context, userID string) (bool, error) {
	return r.deleteWhere(ctx, `DELETE FROM auth_tokens WHERE user_id = $1`, userID)
}

// DeleteExpired sweeps all expired tokens
func (r *postgresTokenRepository) DeleteExpired(ctx context.Context) (bool, error) {
	return r.deleteWhere(ctx, `DELETE FROM auth_tokens WHERE expires_at < $1`, time.Now())
}

func (r *postgresTokenRepository) deleteWhere(ctx context.Context, query string, arg interface{}) (bool, error) {
	result, err := r.db.DB.ExecContext(ctx, query, arg)
	if err != nil {
		return false, fmt.Errorf("failed to delete tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
