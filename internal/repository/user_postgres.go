package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/dmorandi/auth-backend/internal/domain"
	"github.com/dmorandi/auth-backend/pkg/database"
)

const userColumns = `id, email, username, password_hash, first_name, last_name, is_active, roles, created_at, updated_at`

// postgresUserRepository implements UserRepository against PostgreSQL
type postgresUserRepository struct {
	db *database.Postgres
}

// NewPostgresUserRepository creates a new PostgreSQL user repository
func NewPostgresUserRepository(db *database.Postgres) UserRepository {
	return &postgresUserRepository{db: db}
}

// Create inserts a new user. Emails are stored lower-cased.
func (r *postgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, username, password_hash, first_name, last_name, is_active, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Email = strings.ToLower(user.Email)

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	roles := make([]string, len(user.Roles))
	for i, role := range user.Roles {
		roles[i] = string(role)
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.IsActive,
		pq.Array(roles),
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if dup := duplicateUserError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindByID retrieves a user by ID
func (r *postgresUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.DB.QueryRowContext(ctx, query, id))
}

// FindByEmail retrieves a user by email, case-insensitively.
func (r *postgresUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = lower($1)`
	return r.scanOne(r.db.DB.QueryRowContext(ctx, query, email))
}

// FindByUsername retrieves a user by username
func (r *postgresUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanOne(r.db.DB.QueryRowContext(ctx, query, username))
}

// FindAll retrieves all users
func (r *postgresUserRepository) FindAll(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.db.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// FindByRole retrieves all users carrying the given role
func (r *postgresUserRepository) FindByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE $1 = ANY(roles) ORDER BY created_at DESC`

	rows, err := r.db.DB.QueryContext(ctx, query, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// Update applies a partial update; nil fields keep their stored value.
func (r *postgresUserRepository) Update(ctx context.Context, id string, fields *domain.UpdateUser) (*domain.User, error) {
	query := `
		UPDATE users SET
			email = COALESCE($2, email),
			username = COALESCE($3, username),
			first_name = COALESCE($4, first_name),
			last_name = COALESCE($5, last_name),
			is_active = COALESCE($6, is_active),
			roles = COALESCE($7, roles),
			updated_at = $8
		WHERE id = $1
		RETURNING ` + userColumns

	var email *string
	if fields.Email != nil {
		lowered := strings.ToLower(*fields.Email)
		email = &lowered
	}

	var roles interface{}
	if fields.Roles != nil {
		values := make([]string, len(fields.Roles))
		for i, role := range fields.Roles {
			values[i] = string(role)
		}
		roles = pq.Array(values)
	}

	row := r.db.DB.QueryRowContext(ctx, query,
		id,
		email,
		fields.Username,
		fields.FirstName,
		fields.LastName,
		fields.IsActive,
		roles,
		time.Now(),
	)

	user, err := r.scanOne(row)
	if err != nil {
		if dup := duplicateUserError(err); dup != nil {
			return nil, dup
		}
		return nil, err
	}
	return user, nil
}

// Delete removes a user and reports whether a row was removed.
func (r *postgresUserRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// ExistsByEmail reports whether a user with the given email exists
func (r *postgresUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = lower($1))`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *postgresUserRepository) scanOne(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	var firstName, lastName sql.NullString
	var roles pq.StringArray

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&firstName,
		&lastName,
		&user.IsActive,
		&roles,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if firstName.Valid {
		user.FirstName = &firstName.String
	}
	if lastName.Valid {
		user.LastName = &lastName.String
	}
	user.Roles = make([]domain.Role, len(roles))
	for i, role := range roles {
		user.Roles[i] = domain.Role(role)
	}

	return user, nil
}

func (r *postgresUserRepository) scanMany(rows *sql.Rows) ([]*domain.User, error) {
	var users []*domain.User
	for rows.Next() {
		user, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// duplicateUserError maps a unique violation to the matching sentinel,
// keyed on the constraint name from the migration.
func duplicateUserError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "users_username_key":
			return fmt.Errorf("username taken: %w", ErrDuplicateUsername)
		default:
			return fmt.Errorf("email taken: %w", ErrDuplicateEmail)
		}
	}
	return nil
}
