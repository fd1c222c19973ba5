package entity

import (
	"MenuHub/internal/lib/validate"
	"net/http"
	"strings"
)

type LinkKind string

const (
	LinkRecovery     LinkKind = "recovery"
	LinkConfirmation LinkKind = "magiclink"

	EmailKindReset        = "password_reset"
	EmailKindConfirmation = "confirmation"
)

type EmailRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

func (e *EmailRequest) Bind(_ *http.Request) error {
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))
	return validate.Struct(e)
}
