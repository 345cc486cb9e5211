package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/coursewatch/internal/pkg/apperrors"
	"github.com/yigit/coursewatch/internal/pkg/logger"
)

// ErrorHandler converts errors attached to the gin context into JSON
// responses with a status derived from the error kind.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperrors.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperrors.ErrConflict):
			status = http.StatusConflict
		}

		if status == http.StatusInternalServerError {
			logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		}

		body := gin.H{"error": err.Error()}
		var cErr *apperrors.CustomError
		if errors.As(err, &cErr) && len(cErr.Details) > 0 {
			body["details"] = cErr.Details
		}
		c.JSON(status, body)
	}
}
