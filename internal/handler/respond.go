package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmorandi/auth-backend/internal/apperr"
	"github.com/dmorandi/auth-backend/internal/dto"
)

// respondSuccess writes the success envelope.
func respondSuccess(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// respondError maps the error's kind to an HTTP status and writes the
// error envelope. Internal failures get a generic message; the detail
// stays in the logs.
func respondError(c *gin.Context, err error) {
	status, message := statusAndMessage(c, err)
	c.JSON(status, dto.APIResponse{
		Success: false,
		Message: message,
	})
}

// abortError is respondError for middleware: it also stops the chain.
func abortError(c *gin.Context, err error) {
	status, message := statusAndMessage(c, err)
	c.AbortWithStatusJSON(status, dto.APIResponse{
		Success: false,
		Message: message,
	})
}

func statusAndMessage(c *gin.Context, err error) (int, string) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest, err.Error()
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized, err.Error()
	case apperr.KindConflict:
		return http.StatusConflict, err.Error()
	case apperr.KindNotFound:
		return http.StatusNotFound, err.Error()
	default:
		zap.L().Error("internal error",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		return http.StatusInternalServerError, "internal server error"
	}
}
