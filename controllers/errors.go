package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"Gin_postgres_redis_library/app"
	"Gin_postgres_redis_library/lending"

	"github.com/gin-gonic/gin"
)

// statusFor maps lending errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case lending.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, lending.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, lending.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lending.ErrTransient), errors.Is(err, lending.ErrConflict):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err. Validation failures carry {"errors": {field: [msg]}}.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	fe, hasField := lending.AsFieldError(err)

	switch {
	case status == http.StatusBadRequest && hasField:
		c.JSON(status, app.H{
			"errors": app.H{fe.Field: []string{fe.Message}},
			"detail": fe.Message,
		})
	case status == http.StatusServiceUnavailable:
		c.Header("Retry-After", "1")
		c.JSON(status, app.H{"detail": "The library is busy right now, please retry."})
	case status == http.StatusInternalServerError:
		slog.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(status, app.H{"detail": "Internal server error."})
	case hasField:
		c.JSON(status, app.H{"detail": fe.Message})
	default:
		c.JSON(status, app.H{"detail": err.Error()})
	}
}

// writeBindError reports a malformed request body.
func writeBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, app.H{
		"errors": app.H{"non_field_errors": []string{err.Error()}},
		"detail": "Invalid request body.",
	})
}
