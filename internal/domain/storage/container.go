package storage

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain/blogs"
	"storefront/internal/domain/categories"
	"storefront/internal/domain/contacts"
	"storefront/internal/domain/distributors"
	"storefront/internal/domain/ourteams"
	"storefront/internal/domain/products"
	"storefront/internal/domain/users"
)

type Container struct {
	Users        users.Store
	Tokens       users.TokenStore
	Categories   categories.Store
	Products     products.Store
	Blogs        blogs.Store
	OurTeams     ourteams.Store
	Distributors distributors.Store
	Contacts     contacts.Store
}

func NewContainer(db *pgxpool.Pool) *Container {
	return &Container{
		Users:        users.NewRepository(db),
		Tokens:       users.NewTokenRepository(db),
		Categories:   categories.NewRepository(db),
		Products:     products.NewRepository(db),
		Blogs:        blogs.NewRepository(db),
		OurTeams:     ourteams.NewRepository(db),
		Distributors: distributors.NewRepository(db),
		Contacts:     contacts.NewRepository(db),
	}
}
