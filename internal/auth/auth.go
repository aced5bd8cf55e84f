package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var ErrInvalidToken = errors.New("auth: invalid token")

type Authenticator interface {
	// GenerateToken signs a token for userID. jti identifies the issued token
	// so it can be revoked server side.
	GenerateToken(userID int64, jti string) (string, error)
	ValidateToken(token string) (*Claims, error)
}

// TokenHash is the value stored for an issued token. Only the hash of the
// token id is persisted.
func TokenHash(jti string) string {
	sum := sha256.Sum256([]byte(jti))
	return hex.EncodeToString(sum[:])
}
