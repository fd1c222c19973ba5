package errors

import (
	"MenuHub/entity"
	"errors"
	"net/http"
)

// Status maps a core error to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, entity.ErrInvalidPayload),
		errors.Is(err, entity.ErrMissingInstanceKey),
		errors.Is(err, entity.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, entity.ErrTenantNotFound),
		errors.Is(err, entity.ErrChatNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrFiscalNotConfigured):
		return http.StatusUnprocessableEntity
	case errors.Is(err, entity.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, entity.ErrDuplicateCheck),
		errors.Is(err, entity.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
