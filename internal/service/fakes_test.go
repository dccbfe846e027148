package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmorandi/auth-backend/internal/domain"
	"github.com/dmorandi/auth-backend/internal/repository"
)

// In-memory repositories used by the service tests. They mirror the
// store semantics: unique email/username, unique token value, boolean
// delete results.

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
		if u.Username == user.Username {
			return repository.ErrDuplicateUsername
		}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) FindAll(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		clone := *u
		users = append(users, &clone)
	}
	return users, nil
}

func (r *memUserRepo) FindByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var users []*domain.User
	for _, u := range r.users {
		if u.HasRole(role) {
			clone := *u
			users = append(users, &clone)
		}
	}
	return users, nil
}

func (r *memUserRepo) Update(_ context.Context, id string, fields *domain.UpdateUser) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	if fields.Email != nil {
		for otherID, other := range r.users {
			if otherID != id && other.Email == *fields.Email {
				return nil, repository.ErrDuplicateEmail
			}
		}
		u.Email = *fields.Email
	}
	if fields.Username != nil {
		for otherID, other := range r.users {
			if otherID != id && other.Username == *fields.Username {
				return nil, repository.ErrDuplicateUsername
			}
		}
		u.Username = *fields.Username
	}
	if fields.FirstName != nil {
		u.FirstName = fields.FirstName
	}
	if fields.LastName != nil {
		u.LastName = fields.LastName
	}
	if fields.IsActive != nil {
		u.IsActive = *fields.IsActive
	}
	if fields.Roles != nil {
		u.Roles = append([]domain.Role{}, fields.Roles...)
	}
	u.UpdatedAt = time.Now()

	clone := *u
	return &clone, nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

func (r *memUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type memTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.AuthToken // keyed by token value
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: make(map[string]*domain.AuthToken)}
}

func (r *memTokenRepo) Create(_ context.Context, token *domain.AuthToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[token.Token]; ok {
		return repository.ErrDuplicateToken
	}
	if token.ID == "" {
		token.ID = uuid.New().String()
	}

	clone := *token
	r.tokens[token.Token] = &clone
	return nil
}

func (r *memTokenRepo) FindByValue(_ context.Context, value string) (*domain.AuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[value]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *memTokenRepo) FindAllByUser(_ context.Context, userID string) ([]*domain.AuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var tokens []*domain.AuthToken
	for _, t := range r.tokens {
		if t.UserID == userID {
			clone := *t
			tokens = append(tokens, &clone)
		}
	}
	return tokens, nil
}

func (r *memTokenRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for value, t := range r.tokens {
		if t.ID == id {
			delete(r.tokens, value)
			return true, nil
		}
	}
	return false, nil
}

func (r *memTokenRepo) DeleteByValue(_ context.Context, value string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[value]; !ok {
		return false, nil
	}
	delete(r.tokens, value)
	return true, nil
}

func (r *memTokenRepo) DeleteAllByUser(_ context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := false
	for value, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, value)
			deleted = true
		}
	}
	return deleted, nil
}

func (r *memTokenRepo) DeleteExpired(_ context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := false
	for value, t := range r.tokens {
		if t.IsExpired() {
			delete(r.tokens, value)
			deleted = true
		}
	}
	return deleted, nil
}

func (r *memTokenRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}
