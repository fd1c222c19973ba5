package entity

import "errors"

var (
	ErrInvalidPayload      = errors.New("invalid payload")
	ErrMissingInstanceKey  = errors.New("missing instance_key")
	ErrTenantNotFound      = errors.New("integration not found")
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrDuplicateCheck      = errors.New("duplicate order check unavailable")
	ErrOrderNotCreated     = errors.New("order not created")
	ErrFiscalNotConfigured = errors.New("fiscal settings not configured")
	ErrUnknownAction       = errors.New("unknown action")
	ErrServiceUnavailable  = errors.New("service unavailable")
	ErrChatNotFound        = errors.New("chat not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrForbidden           = errors.New("forbidden")
)
