package blogs

import (
	"time"

	"storefront/internal/db"
)

var ErrNotFound = db.ErrNotFound

type Blog struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       *string   `json:"image"`
	BlogBy      string    `json:"blog_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Update struct {
	Title       *string
	Description *string
	Image       *string
}
