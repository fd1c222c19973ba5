package core

import (
	"MenuHub/entity"
	"fmt"
)

// AuthenticateByKey returns the user that owns key. The static listen key is
// an operator key.
func (c *Core) AuthenticateByKey(key string) (*entity.UserAuth, error) {
	if key == "" {
		return nil, fmt.Errorf("empty key")
	}
	if c.authKey != "" && key == c.authKey {
		return &entity.UserAuth{Username: "admin", Token: key}, nil
	}
	if c.keys == nil {
		return nil, fmt.Errorf("invalid key")
	}
	user, err := c.keys.CheckApiKey(key)
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	return &entity.UserAuth{Username: user.Username, Token: key, CompanyID: user.CompanyID}, nil
}

// GenerateApiKey issues a key for username limited to companyID, or an
// operator key when companyID is empty.
func (c *Core) GenerateApiKey(username, companyID string) (string, error) {
	if c.keys == nil {
		return "", fmt.Errorf("%w: key store", entity.ErrServiceUnavailable)
	}
	return c.keys.GenerateApiKey(username, companyID)
}

// ValidateToken resolves a live feed token to its holder.
func (c *Core) ValidateToken(token string) (*entity.UserAuth, error) {
	return c.AuthenticateByKey(token)
}
