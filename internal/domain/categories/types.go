package categories

import (
	"time"

	"storefront/internal/db"
	"storefront/internal/slug"
)

var (
	ErrNotFound      = db.ErrNotFound
	ErrDuplicateName = db.ErrDuplicateName
	ErrHasProducts   = db.ErrHasDependents
)

var constraints = db.ConstraintMap{
	"_slug_key": slug.ErrSlugTaken,
	"_name_key": ErrDuplicateName,
}

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Update holds the fields of a sparse update. Nil fields are left untouched.
type Update struct {
	Name        *string
	Slug        *string
	Description *string
}
