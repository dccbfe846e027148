package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmorandi/auth-backend/internal/apperr"
	"github.com/dmorandi/auth-backend/internal/domain"
	"github.com/dmorandi/auth-backend/internal/dto"
	"github.com/dmorandi/auth-backend/internal/repository"
	"github.com/dmorandi/auth-backend/internal/utils"
)

// Unknown email and wrong password share one message so login failures
// cannot be used to enumerate accounts.
const msgInvalidCredentials = "invalid credentials"

const msgInvalidRefreshToken = "invalid or expired refresh token"

// authService implements AuthService
type authService struct {
	userRepo     repository.UserRepository
	tokenRepo    repository.TokenRepository
	tokenManager *utils.TokenManager
	bcryptCost   int
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	tokenManager *utils.TokenManager,
	bcryptCost int,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		tokenRepo:    tokenRepo,
		tokenManager: tokenManager,
		bcryptCost:   bcryptCost,
	}
}

// Register creates a new user with the default role and issues a token pair.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := utils.SanitizeEmail(req.Email)
	if !utils.ValidateEmail(email) {
		return nil, apperr.Validation("invalid email address")
	}
	if !utils.ValidatePassword(req.Password) {
		return nil, apperr.Validation("password must be at least 8 characters")
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if exists {
		return nil, apperr.Conflict("user with this email already exists")
	}

	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, apperr.Conflict("username already taken")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	passwordHash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		Username:     req.Username,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsActive:     true,
		Roles:        []domain.Role{domain.RoleUser},
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent registration can still win the unique constraint.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperr.Conflict("user with this email already exists")
		}
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, apperr.Conflict("username already taken")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	tokens, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		User:   dto.NewUserResponse(user),
		Tokens: tokens,
	}, nil
}

// Login authenticates a user by email and password.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, utils.SanitizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthorized(msgInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	if !user.IsActive {
		return nil, apperr.Unauthorized("account deactivated")
	}

	tokens, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		User:   dto.NewUserResponse(user),
		Tokens: tokens,
	}, nil
}

// Refresh exchanges a refresh token for a fresh pair. The consumed
// token is deleted before reissue (single-use rotation); a reissue
// failure after the delete forces a re-login rather than reopening the
// replay window.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokenManager.Parse(refreshToken)
	if err != nil || claims.Type != domain.TokenTypeRefresh {
		return nil, apperr.Unauthorized(msgInvalidRefreshToken)
	}

	stored, err := s.tokenRepo.FindByValue(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthorized(msgInvalidRefreshToken)
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	if stored.Type != domain.TokenTypeRefresh || stored.IsExpired() {
		return nil, apperr.Unauthorized(msgInvalidRefreshToken)
	}

	consumed, err := s.tokenRepo.DeleteByValue(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}
	if !consumed {
		// A concurrent refresh already consumed this token.
		return nil, apperr.Unauthorized(msgInvalidRefreshToken)
	}

	return s.issuePair(ctx, stored.UserID)
}

// Logout deletes all of the user's tokens. Logging out a user who has
// none is not an error.
func (s *authService) Logout(ctx context.Context, userID string) error {
	if _, err := s.tokenRepo.DeleteAllByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete tokens: %w", err)
	}
	return nil
}

// Validate resolves a token value to its persisted row. The signature
// is checked first, but the row is the source of truth: a signed token
// without a live row is not authenticated.
func (s *authService) Validate(ctx context.Context, tokenValue string) (*domain.AuthToken, error) {
	if _, err := s.tokenManager.Parse(tokenValue); err != nil {
		return nil, nil
	}

	stored, err := s.tokenRepo.FindByValue(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	if stored.IsExpired() {
		return nil, nil
	}

	return stored, nil
}

// issuePair mints one access and one refresh token and persists both
// rows before returning them.
func (s *authService) issuePair(ctx context.Context, userID string) (*domain.TokenPair, error) {
	accessToken, accessExpiry, err := s.tokenManager.Generate(userID, domain.TokenTypeAccess)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, refreshExpiry, err := s.tokenManager.Generate(userID, domain.TokenTypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := time.Now()

	err = s.tokenRepo.Create(ctx, &domain.AuthToken{
		UserID:    userID,
		Token:     accessToken,
		Type:      domain.TokenTypeAccess,
		ExpiresAt: accessExpiry,
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save access token: %w", err)
	}

	err = s.tokenRepo.Create(ctx, &domain.AuthToken{
		UserID:    userID,
		Token:     refreshToken,
		Type:      domain.TokenTypeRefresh,
		ExpiresAt: refreshExpiry,
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.tokenManager.AccessTokenExpirySeconds(),
	}, nil
}
