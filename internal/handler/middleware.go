package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmorandi/auth-backend/internal/apperr"
	"github.com/dmorandi/auth-backend/internal/domain"
	"github.com/dmorandi/auth-backend/internal/service"
)

// Context keys for the authenticated identity.
const (
	ContextUserID   = "user_id"
	ContextEmail    = "email"
	ContextUsername = "username"
	ContextUser     = "user"
)

// AuthMiddleware is the access guard: it extracts the bearer token,
// validates it against the token store, resolves the owning user and
// attaches the identity to the request context. Any failure aborts the
// request with 401.
func AuthMiddleware(authService service.AuthService, userService service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolveIdentity(c, authService, userService)
		if err != nil {
			abortError(c, err)
			return
		}

		attachIdentity(c, user)
		c.Next()
	}
}

// OptionalAuthMiddleware performs the same resolution but never aborts:
// a request without a valid credential proceeds unauthenticated.
func OptionalAuthMiddleware(authService service.AuthService, userService service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := resolveIdentity(c, authService, userService); err == nil {
			attachIdentity(c, user)
		}
		c.Next()
	}
}

// RequireRole guards a route behind a role. It runs after AuthMiddleware.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextUser)
		if !exists {
			abortError(c, apperr.Unauthorized("authentication required"))
			return
		}

		user, ok := value.(*domain.User)
		if !ok || !user.HasRole(role) {
			abortError(c, apperr.Unauthorized("insufficient permissions"))
			return
		}

		c.Next()
	}
}

func resolveIdentity(c *gin.Context, authService service.AuthService, userService service.UserService) (*domain.User, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, apperr.Unauthorized("authorization header is required")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, apperr.Unauthorized("invalid authorization header format")
	}

	token, err := authService.Validate(c.Request.Context(), parts[1])
	if err != nil {
		return nil, err
	}
	if token == nil || token.Type != domain.TokenTypeAccess {
		return nil, apperr.Unauthorized("invalid or expired token")
	}

	user, err := userService.GetByID(c.Request.Context(), token.UserID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Unauthorized("invalid or expired token")
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, apperr.Unauthorized("account deactivated")
	}

	return user, nil
}

func attachIdentity(c *gin.Context, user *domain.User) {
	c.Set(ContextUserID, user.ID)
	c.Set(ContextEmail, user.Email)
	c.Set(ContextUsername, user.Username)
	c.Set(ContextUser, user)
}
