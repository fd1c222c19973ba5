package cont

import (
	"MenuHub/entity"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAccessCompany(t *testing.T) {
	operator := PutUser(context.Background(), &entity.UserAuth{Username: "admin"})
	scoped := PutUser(context.Background(), &entity.UserAuth{Username: "joao", CompanyID: "c-1"})

	assert.True(t, CanAccessCompany(operator, "c-1"))
	assert.True(t, CanAccessCompany(operator, "c-2"))
	assert.True(t, CanAccessCompany(scoped, "c-1"))
	assert.False(t, CanAccessCompany(scoped, "c-2"))
	assert.False(t, CanAccessCompany(context.Background(), "c-1"))
}
