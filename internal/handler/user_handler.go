package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmorandi/auth-backend/internal/apperr"
	"github.com/dmorandi/auth-backend/internal/domain"
	"github.com/dmorandi/auth-backend/internal/dto"
	"github.com/dmorandi/auth-backend/internal/service"
)

// UserHandler handles user directory requests
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List handles GET /users. An optional ?role= query filters by role.
func (h *UserHandler) List(c *gin.Context) {
	var (
		users []*domain.User
		err   error
	)

	if role := c.Query("role"); role != "" {
		users, err = h.userService.ListByRole(c.Request.Context(), domain.Role(role))
	} else {
		users, err = h.userService.List(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Users retrieved successfully", dto.NewUserResponses(users))
}

// Get handles GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "User retrieved successfully", dto.NewUserResponse(user))
}

// Update handles PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	user, err := h.userService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "User updated successfully", dto.NewUserResponse(user))
}

// Delete handles DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "User deleted successfully", nil)
}

// AddRole handles POST /users/:id/roles
func (h *UserHandler) AddRole(c *gin.Context) {
	var req dto.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	user, err := h.userService.AddRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Role added successfully", dto.NewUserResponse(user))
}

// RemoveRole handles DELETE /users/:id/roles
func (h *UserHandler) RemoveRole(c *gin.Context) {
	var req dto.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	user, err := h.userService.RemoveRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Role removed successfully", dto.NewUserResponse(user))
}
