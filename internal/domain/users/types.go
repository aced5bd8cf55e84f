package users

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"storefront/internal/db"
)

var (
	ErrNotFound       = db.ErrNotFound
	ErrDuplicateEmail = db.ErrDuplicateEmail
)

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  password  `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// password holds the bcrypt hash and, right after Set, the plain text.
type password struct {
	text *string
	hash []byte
}

func (p *password) Set(text string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(text), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	p.text = &text
	p.hash = hash

	return nil
}

func (p *password) Compare(text string) error {
	return bcrypt.CompareHashAndPassword(p.hash, []byte(text))
}

// Label is the author label for content the user writes: the name, else the
// email, else "Unknown".
func (u *User) Label() string {
	switch {
	case u == nil:
		return "Unknown"
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	default:
		return "Unknown"
	}
}

// Token is an issued API token. Only the hash of its id is stored.
type Token struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	Name       string     `json:"name"`
	LastUsedAt *time.Time `json:"last_used_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
}
