package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/db"
)

// Store is the data access abstraction for products.
type Store interface {
	List(ctx context.Context) ([]*Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, id int64, u Update) (*Product, error)
	// Delete removes the row and returns it, so callers can purge its images.
	Delete(ctx context.Context, id int64) (*Product, error)
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

const selectProduct = `
	SELECT p.id, p.category_id, p.name, p.slug, p.old_price, p.price, p.description, p.images,
	       p.created_at, p.updated_at, c.id, c.name, c.slug
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

const returning = `id, category_id, name, slug, old_price, price, description, images, created_at, updated_at`

func scanJoined(row pgx.Row) (*Product, error) {
	p := &Product{}
	var (
		catID            *int64
		catName, catSlug *string
	)
	if err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.OldPrice, &p.Price, &p.Description, &p.Images,
		&p.CreatedAt, &p.UpdatedAt, &catID, &catName, &catSlug); err != nil {
		return nil, err
	}
	if catID != nil {
		p.Category = &CategoryRef{ID: *catID, Name: deref(catName), Slug: deref(catSlug)}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return p, nil
}

func scan(row pgx.Row) (*Product, error) {
	p := &Product{}
	if err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.OldPrice, &p.Price, &p.Description, &p.Images,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return p, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *Repository) List(ctx context.Context) ([]*Product, error) {
	rows, err := r.db.Query(ctx, selectProduct+` ORDER BY p.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []*Product
	for rows.Next() {
		p, err := scanJoined(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Product, error) {
	p, err := scanJoined(r.db.QueryRow(ctx, selectProduct+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *Repository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	p, err := scanJoined(r.db.QueryRow(ctx, selectProduct+` WHERE p.slug = $1`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	return p, nil
}

func (r *Repository) Create(ctx context.Context, p *Product) error {
	if p.Images == nil {
		p.Images = []string{}
	}
	query := `
		INSERT INTO products (category_id, name, slug, old_price, price, description, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, p.CategoryID, p.Name, p.Slug, p.OldPrice, p.Price, p.Description, p.Images).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return translate(fmt.Errorf("create product: %w", err))
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, id int64, u Update) (*Product, error) {
	var images []string
	if u.Images != nil {
		images = *u.Images
		if images == nil {
			images = []string{}
		}
	}
	query := `
		UPDATE products
		SET category_id = COALESCE($2, category_id),
		    name        = COALESCE($3, name),
		    slug        = COALESCE($4, slug),
		    old_price   = CASE WHEN $10::boolean THEN NULL ELSE COALESCE($5, old_price) END,
		    price       = COALESCE($6, price),
		    description = CASE WHEN $11::boolean THEN NULL ELSE COALESCE($7, description) END,
		    images      = CASE WHEN $8::boolean THEN $9::text[] ELSE images END,
		    updated_at  = NOW()
		WHERE id = $1
		RETURNING ` + returning
	p, err := scan(r.db.QueryRow(ctx, query, id, u.CategoryID, u.Name, u.Slug, u.OldPrice, u.Price, u.Description,
		u.Images != nil, images, u.ClearOldPrice, u.ClearDescription))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, translate(fmt.Errorf("update product: %w", err))
	}
	return p, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) (*Product, error) {
	p, err := scan(r.db.QueryRow(ctx, `DELETE FROM products WHERE id = $1 RETURNING `+returning, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete product: %w", err)
	}
	return p, nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func (r *Repository) SlugExists(ctx context.Context, slug string, excludeID *int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE slug = $1 AND ($2::bigint IS NULL OR id <> $2))`,
		slug, excludeID,
	).Scan(&exists)
	return exists, err
}

func (r *Repository) NameTaken(ctx context.Context, name string, excludeID *int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE name = $1 AND ($2::bigint IS NULL OR id <> $2))`,
		name, excludeID,
	).Scan(&exists)
	return exists, err
}

func translate(err error) error {
	if _, ok := db.IsFKViolation(err); ok {
		return ErrCategoryNotFound
	}
	return constraints.Translate(err)
}
