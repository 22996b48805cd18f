// Package response maps service errors onto HTTP responses so handlers never
// hand-pick status codes.
package response

import (
	"errors"
	"log/slog"
	"net/http"

	"wconnect-service/internal/models"
	"wconnect-service/internal/services"

	"github.com/gin-gonic/gin"
)

// Error writes the response for a service error. Unclassified errors are
// logged and reported as a generic 500, internal detail never reaches the
// client.
func Error(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		write(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		write(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrForbidden):
		write(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrUnavailable):
		write(c, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		slog.Error("unhandled error", "path", c.Request.URL.Path, "error", err)
		write(c, http.StatusInternalServerError, "internal server error")
	}
}

// BadRequest reports a request binding failure.
func BadRequest(c *gin.Context, message string) {
	write(c, http.StatusBadRequest, message)
}

func write(c *gin.Context, status int, message string) {
	c.JSON(status, models.ErrorResponse{
		Code:    status,
		Message: message,
	})
}
