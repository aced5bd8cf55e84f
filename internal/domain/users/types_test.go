package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword(t *testing.T) {
	var u User
	require.NoError(t, u.Password.Set("password123"))

	assert.NoError(t, u.Password.Compare("password123"))
	assert.Error(t, u.Password.Compare("wrong"))
}

func TestLabel(t *testing.T) {
	tests := []struct {
		user *User
		want string
	}{
		{&User{Name: "Super Admin", Email: "admin@example.com"}, "Super Admin"},
		{&User{Email: "admin@example.com"}, "admin@example.com"},
		{&User{}, "Unknown"},
		{nil, "Unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.user.Label())
	}
}
