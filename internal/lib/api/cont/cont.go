package cont

import (
	"MenuHub/entity"
	"context"
	"fmt"
)

type ctxKey string

const userDataKey ctxKey = "userData"

func PutUser(c context.Context, user *entity.UserAuth) context.Context {
	return context.WithValue(c, userDataKey, user)
}

// CanAccessCompany reports whether the caller's key covers companyID.
// A request without an authenticated user covers nothing.
func CanAccessCompany(c context.Context, companyID string) bool {
	user, err := GetUser(c)
	if err != nil {
		return false
	}
	return user.CanAccess(companyID)
}

func GetUser(c context.Context) (*entity.UserAuth, error) {
	user, ok := c.Value(userDataKey).(*entity.UserAuth)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}
