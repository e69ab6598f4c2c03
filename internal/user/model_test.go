package user

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHasRole(t *testing.T) {
	t.Parallel()

	assert.True(t, HasRole([]string{"reader", "author"}, RoleAuthor))
	assert.False(t, HasRole([]string{"reader"}, RoleAdmin))
	assert.False(t, HasRole(nil, RoleReader))
}

func TestRolesValid(t *testing.T) {
	t.Parallel()

	assert.True(t, RolesValid([]string{"reader"}))
	assert.True(t, RolesValid([]string{"admin", "author", "reader"}))
	assert.False(t, RolesValid(nil))
	assert.False(t, RolesValid([]string{}))
	assert.False(t, RolesValid([]string{"reader", "superuser"}))
}

func TestUserJSON_NeverSerializesPassword(t *testing.T) {
	t.Parallel()

	u := User{
		ID:        "u1",
		Username:  "alice",
		Email:     "a@x.com",
		Password:  "$2a$10$hash",
		Roles:     []string{RoleReader},
		CreatedAt: time.Now(),
	}
	b, err := json.Marshal(u)
	assert.NoError(t, err)
	assert.NotContains(t, string(b), "hash")
	assert.NotContains(t, string(b), "password")
}
