package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/apply4me/internal/pkg/validation"
	"github.com/polkiloo/apply4me/internal/server/http/dto"
	"github.com/polkiloo/apply4me/internal/server/http/middleware"
)

// CurrentUserID extracts authenticated user identifier from context.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(middleware.UserIDContextKey)
}

func abortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: message})
}

// bindJSON decodes and validates the request body into dst. It writes the
// 400 response itself and reports whether the handler may continue.
func bindJSON(c *gin.Context, v *validation.Validator, dst any, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortError(c, http.StatusBadRequest, message)
		return false
	}
	if err := v.Struct(dst); err != nil {
		var fields validation.FieldErrors
		if errors.As(err, &fields) {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: message, Details: fields})
			return false
		}
		abortError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}
