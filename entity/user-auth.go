package entity

import (
	"MenuHub/internal/lib/validate"
	"net/http"
)

// UserAuth is an API key holder. A key without CompanyID is an operator key
// and reaches every company; otherwise it is limited to that company.
type UserAuth struct {
	Username  string `json:"username" bson:"username" validate:"required"`
	Token     string `json:"token" bson:"key" validate:"required,min=1"`
	CompanyID string `json:"company_id,omitempty" bson:"company_id,omitempty"`
}

func (u *UserAuth) CanAccess(companyID string) bool {
	return u.CompanyID == "" || u.CompanyID == companyID
}

func (u *UserAuth) Bind(_ *http.Request) error {
	return validate.Struct(u)
}

type KeyRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=64"`
	CompanyID string `json:"company_id,omitempty"`
}

func (k *KeyRequest) Bind(_ *http.Request) error {
	return validate.Struct(k)
}
