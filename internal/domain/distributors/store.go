package distributors

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	List(ctx context.Context) ([]*Distributor, error)
	GetByID(ctx context.Context, id int64) (*Distributor, error)
	Create(ctx context.Context, d *Distributor) error
	Update(ctx context.Context, id int64, u Update) (*Distributor, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
	NameTaken(ctx context.Context, name string, excludeID *int64) (bool, error)
	EmailTaken(ctx context.Context, email string, excludeID *int64) (bool, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

const columns = `id, name, location, phone, email, created_at, updated_at`

func scan(row pgx.Row) (*Distributor, error) {
	d := &Distributor{}
	if err := row.Scan(&d.ID, &d.Name, &d.Location, &d.Phone, &d.Email, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *Repository) List(ctx context.Context) ([]*Distributor, error) {
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM distributors ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list distributors: %w", err)
	}
	defer rows.Close()

	var out []*Distributor
	for rows.Next() {
		d, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan distributor: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Distributor, error) {
	d, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM distributors WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get distributor: %w", err)
	}
	return d, nil
}

func (r *Repository) Create(ctx context.Context, d *Distributor) error {
	query := `
		INSERT INTO distributors (name, location, phone, email)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRow(ctx, query, d.Name, d.Location, d.Phone, d.Email).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return constraints.Translate(fmt.Errorf("create distributor: %w", err))
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, id int64, u Update) (*Distributor, error) {
	query := `
		UPDATE distributors
		SET name       = COALESCE($2, name),
		    location   = COALESCE($3, location),
		    phone      = COALESCE($4, phone),
		    email      = COALESCE($5, email),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + columns
	d, err := scan(r.db.QueryRow(ctx, query, id, u.Name, u.Location, u.Phone, u.Email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, constraints.Translate(fmt.Errorf("update distributor: %w", err))
	}
	return d, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM distributors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete distributor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM distributors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count distributors: %w", err)
	}
	return n, nil
}

func (r *Repository) NameTaken(ctx context.Context, name string, excludeID *int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM distributors WHERE name = $1 AND ($2::bigint IS NULL OR id <> $2))`,
		name, excludeID,
	).Scan(&exists)
	return exists, err
}

func (r *Repository) EmailTaken(ctx context.Context, email string, excludeID *int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM distributors WHERE email = $1 AND ($2::bigint IS NULL OR id <> $2))`,
		email, excludeID,
	).Scan(&exists)
	return exists, err
}
