package ourteams

import (
	"time"

	"storefront/internal/db"
)

var (
	ErrNotFound       = db.ErrNotFound
	ErrDuplicateEmail = db.ErrDuplicateEmail
)

var constraints = db.ConstraintMap{"_email_key": ErrDuplicateEmail}

type Member struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Position    string    `json:"position"`
	Image       *string   `json:"image"`
	Phone       *string   `json:"phone"`
	Email       *string   `json:"email"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Update holds the fields of a sparse update. Nil fields are left untouched;
// the Clear flags write NULL.
type Update struct {
	Name        *string
	Position    *string
	Image       *string
	Phone       *string
	Email       *string
	Description *string

	ClearPhone       bool
	ClearEmail       bool
	ClearDescription bool
}
