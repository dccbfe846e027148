package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmorandi/auth-backend/internal/apperr"
	"github.com/dmorandi/auth-backend/internal/dto"
	"github.com/dmorandi/auth-backend/internal/service"
)

// EmailHandler handles transactional email requests
type EmailHandler struct {
	emailService service.EmailService
}

// NewEmailHandler creates a new email handler
func NewEmailHandler(emailService service.EmailService) *EmailHandler {
	return &EmailHandler{emailService: emailService}
}

// Send handles POST /email/send
func (h *EmailHandler) Send(c *gin.Context) {
	var req dto.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	if err := h.emailService.Send(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Email sent successfully", nil)
}
