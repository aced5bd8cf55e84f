package distributors

import (
	"time"

	"storefront/internal/db"
)

var (
	ErrNotFound       = db.ErrNotFound
	ErrDuplicateName  = db.ErrDuplicateName
	ErrDuplicateEmail = db.ErrDuplicateEmail
)

var constraints = db.ConstraintMap{
	"_name_key":  ErrDuplicateName,
	"_email_key": ErrDuplicateEmail,
}

type Distributor struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Update struct {
	Name     *string
	Location *string
	Phone    *string
	Email    *string
}
