package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	a := NewJWTAuthenticator("secret", "storefront", "storefront", time.Hour)

	token, err := a.GenerateToken(7, "jti-1")
	require.NoError(t, err)

	claims, err := a.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "jti-1", claims.ID)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

func TestValidateRejects(t *testing.T) {
	a := NewJWTAuthenticator("secret", "storefront", "storefront", time.Hour)
	token, err := a.GenerateToken(7, "jti-1")
	require.NoError(t, err)

	other := NewJWTAuthenticator("other", "storefront", "storefront", time.Hour)
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongAud := NewJWTAuthenticator("secret", "elsewhere", "storefront", time.Hour)
	_, err = wrongAud.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateExpired(t *testing.T) {
	a := NewJWTAuthenticator("secret", "storefront", "storefront", time.Minute)
	issued := time.Now().Add(-time.Hour)
	a.now = func() time.Time { return issued }

	token, err := a.GenerateToken(1, "jti")
	require.NoError(t, err)

	a.now = time.Now
	_, err = a.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenHash(t *testing.T) {
	h := TokenHash("abc")
	assert.Len(t, h, 64)
	assert.Equal(t, h, TokenHash("abc"))
	assert.NotEqual(t, h, TokenHash("abd"))
}
