package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmorandi/auth-backend/internal/apperr"
	"github.com/dmorandi/auth-backend/internal/domain"
	"github.com/dmorandi/auth-backend/internal/dto"
	"github.com/dmorandi/auth-backend/internal/repository"
	"github.com/dmorandi/auth-backend/internal/utils"
)

// userService implements UserService
type userService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository) UserService {
	return &userService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
	}
}

// GetByID retrieves a user by ID
func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// List retrieves all users
func (s *userService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListByRole retrieves all users carrying a role
func (s *userService) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, apperr.Validation(fmt.Sprintf("unknown role %q", role))
	}

	users, err := s.userRepo.FindByRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	return users, nil
}

// Update applies a partial update to a user.
func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*domain.User, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := &domain.UpdateUser{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  req.IsActive,
		Roles:     req.Roles,
	}

	if req.Email != nil {
		email := utils.SanitizeEmail(*req.Email)
		if email != existing.Email {
			taken, err := s.userRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			if taken {
				return nil, apperr.Conflict("email already in use")
			}
		}
		fields.Email = &email
	}

	if req.Roles != nil {
		if len(req.Roles) == 0 {
			return nil, apperr.Validation("a user must keep at least one role")
		}
		keepsAdmin := false
		for _, role := range req.Roles {
			if role == domain.RoleAdmin {
				keepsAdmin = true
			}
		}
		if !keepsAdmin && len(existing.Roles) == 1 && existing.Roles[0] == domain.RoleAdmin {
			return nil, apperr.Conflict("cannot remove the last admin role")
		}
	}

	user, err := s.userRepo.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperr.Conflict("email already in use")
		}
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, apperr.Conflict("username already taken")
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// Delete removes a user. The user's outstanding tokens are deleted
// first so a removed account cannot keep an authenticated session.
func (s *userService) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	if _, err := s.tokenRepo.DeleteAllByUser(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user tokens: %w", err)
	}

	deleted, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if !deleted {
		return apperr.NotFound("user not found")
	}

	return nil
}

// AddRole grants a role to a user
func (s *userService) AddRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.HasRole(role) {
		return nil, apperr.Conflict("user already has this role")
	}

	roles := append(append([]domain.Role{}, user.Roles...), role)
	return s.updateRoles(ctx, id, roles)
}

// RemoveRole revokes a role from a user. The last admin role and the
// user's last remaining role cannot be removed.
func (s *userService) RemoveRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !user.HasRole(role) {
		return nil, apperr.Conflict("user does not have this role")
	}

	if len(user.Roles) == 1 {
		if role == domain.RoleAdmin {
			return nil, apperr.Conflict("cannot remove the last admin role")
		}
		return nil, apperr.Conflict("cannot remove the user's last role")
	}

	roles := make([]domain.Role, 0, len(user.Roles)-1)
	for _, r := range user.Roles {
		if r != role {
			roles = append(roles, r)
		}
	}

	return s.updateRoles(ctx, id, roles)
}

func (s *userService) updateRoles(ctx context.Context, id string, roles []domain.Role) (*domain.User, error) {
	user, err := s.userRepo.Update(ctx, id, &domain.UpdateUser{Roles: roles})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to update roles: %w", err)
	}
	return user, nil
}
