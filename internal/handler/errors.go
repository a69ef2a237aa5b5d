package handler

import (
	"GoVault/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// serviceErrorStatus maps each service outcome to a status and a stable code
// string. Codes stay distinct even where statuses overlap, so clients can
// tell an expired link from an exhausted one.
func serviceErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrNotAuthorized):
		return http.StatusForbidden, "not_authorized"
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, service.ErrQuotaExceeded):
		return http.StatusRequestEntityTooLarge, "quota_exceeded"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusNotFound, "invalid_token"
	case errors.Is(err, service.ErrExpired):
		return http.StatusGone, "expired"
	case errors.Is(err, service.ErrInvalidPassword):
		return http.StatusForbidden, "invalid_password"
	case errors.Is(err, service.ErrLimitReached):
		return http.StatusGone, "limit_reached"
	case errors.Is(err, service.ErrFileUnavailable):
		return http.StatusGone, "file_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// failService writes a service error as a JSON response.
func failService(c *gin.Context, err error) {
	status, code := serviceErrorStatus(err)
	c.JSON(status, gin.H{"code": code, "msg": err.Error()})
}

// callerID returns the authenticated account id set by the auth middleware.
func callerID(c *gin.Context) uint64 {
	value, _ := c.Get("user_id")
	id, _ := value.(uint64)
	return id
}
