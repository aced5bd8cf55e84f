package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/db"
)

// Store is the data access abstraction for categories.
type Store interface {
	List(ctx context.Context) ([]*Category, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, id int64, u Update) (*Category, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)

	SlugExists(ctx context.Context, slug string, excludeID *int64) (bool, error)
	NameTaken(ctx context.Context, name string, excludeID *int64) (bool, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

const columns = `id, name, slug, description, created_at, updated_at`

func scan(row pgx.Row) (*Category, error) {
	c := &Category{}
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Repository) List(ctx context.Context) ([]*Category, error) {
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM categories ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []*Category
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Category, error) {
	c, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *Repository) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	c, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM categories WHERE slug = $1`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get category by slug: %w", err)
	}
	return c, nil
}

func (r *Repository) Create(ctx context.Context, c *Category) error {
	query := `
		INSERT INTO categories (name, slug, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, c.Name, c.Slug, c.Description).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return constraints.Translate(fmt.Errorf("create category: %w", err))
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, id int64, u Update) (*Category, error) {
	query := `
		UPDATE categories
		SET name        = COALESCE($2, name),
		    slug        = COALESCE($3, slug),
		    description = COALESCE($4, description),
		    updated_at  = NOW()
		WHERE id = $1
		RETURNING ` + columns
	c, err := scan(r.db.QueryRow(ctx, query, id, u.Name, u.Slug, u.Description))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, constraints.Translate(fmt.Errorf("update category: %w", err))
	}
	return c, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		// products.category_id is ON DELETE RESTRICT
		if _, ok := db.IsFKViolation(err); ok {
			return ErrHasProducts
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

func (r *Repository) SlugExists(ctx context.Context, slug string, excludeID *int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE slug = $1 AND ($2::bigint IS NULL OR id <> $2))`,
		slug, excludeID,
	).Scan(&exists)
	return exists, err
}

func (r *Repository) NameTaken(ctx context.Context, name string, excludeID *int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE name = $1 AND ($2::bigint IS NULL OR id <> $2))`,
		name, excludeID,
	).Scan(&exists)
	return exists, err
}
