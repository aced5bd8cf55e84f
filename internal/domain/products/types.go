package products

import (
	"time"

	"storefront/internal/db"
	"storefront/internal/slug"
)

var (
	ErrNotFound         = db.ErrNotFound
	ErrDuplicateName    = db.ErrDuplicateName
	ErrCategoryNotFound = db.ErrInvalidRef
)

var constraints = db.ConstraintMap{
	"_slug_key": slug.ErrSlugTaken,
	"_name_key": ErrDuplicateName,
}

// Product images hold storage refs, never URLs.
type Product struct {
	ID          int64        `json:"id"`
	CategoryID  int64        `json:"category_id"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	OldPrice    *int64       `json:"old_price"`
	Price       int64        `json:"price"`
	Description *string      `json:"description"`
	Images      []string     `json:"images"`
	Category    *CategoryRef `json:"category,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// CategoryRef is the category summary embedded in product reads.
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Update holds the fields of a sparse update. Nil fields are left untouched.
// A non-nil Images replaces the whole list. ClearOldPrice and
// ClearDescription write NULL and take precedence over the pointers.
type Update struct {
	CategoryID  *int64
	Name        *string
	Slug        *string
	OldPrice    *int64
	Price       *int64
	Description *string
	Images      *[]string

	ClearOldPrice    bool
	ClearDescription bool
}
