package blogs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	List(ctx context.Context) ([]*Blog, error)
	GetByID(ctx context.Context, id int64) (*Blog, error)
	Create(ctx context.Context, b *Blog) error
	Update(ctx context.Context, id int64, u Update) (*Blog, error)
	Delete(ctx context.Context, id int64) (*Blog, error)
	Count(ctx context.Context) (int, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

const columns = `id, title, description, image, blog_by, created_at, updated_at`

func scan(row pgx.Row) (*Blog, error) {
	b := &Blog{}
	if err := row.Scan(&b.ID, &b.Title, &b.Description, &b.Image, &b.BlogBy, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Repository) List(ctx context.Context) ([]*Blog, error) {
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM blogs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	defer rows.Close()

	var out []*Blog
	for rows.Next() {
		b, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan blog: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Blog, error) {
	b, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM blogs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get blog: %w", err)
	}
	return b, nil
}

func (r *Repository) Create(ctx context.Context, b *Blog) error {
	query := `
		INSERT INTO blogs (title, description, image, blog_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRow(ctx, query, b.Title, b.Description, b.Image, b.BlogBy).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return fmt.Errorf("create blog: %w", err)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, id int64, u Update) (*Blog, error) {
	query := `
		UPDATE blogs
		SET title       = COALESCE($2, title),
		    description = COALESCE($3, description),
		    image       = COALESCE($4, image),
		    updated_at  = NOW()
		WHERE id = $1
		RETURNING ` + columns
	b, err := scan(r.db.QueryRow(ctx, query, id, u.Title, u.Description, u.Image))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update blog: %w", err)
	}
	return b, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) (*Blog, error) {
	b, err := scan(r.db.QueryRow(ctx, `DELETE FROM blogs WHERE id = $1 RETURNING `+columns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete blog: %w", err)
	}
	return b, nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM blogs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count blogs: %w", err)
	}
	return n, nil
}
