package ourteams

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	List(ctx context.Context) ([]*Member, error)
	GetByID(ctx context.Context, id int64) (*Member, error)
	Create(ctx context.Context, m *Member) error
	Update(ctx context.Context, id int64, u Update) (*Member, error)
	Delete(ctx context.Context, id int64) (*Member, error)
	Count(ctx context.Context) (int, error)
	EmailTaken(ctx context.Context, email string, excludeID *int64) (bool, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

const columns = `id, name, position, image, phone, email, description, created_at, updated_at`

func scan(row pgx.Row) (*Member, error) {
	m := &Member{}
	if err := row.Scan(&m.ID, &m.Name, &m.Position, &m.Image, &m.Phone, &m.Email, &m.Description,
		&m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *Repository) List(ctx context.Context) ([]*Member, error) {
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM ourteams ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list team: %w", err)
	}
	defer rows.Close()

	var out []*Member
	for rows.Next() {
		m, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Member, error) {
	m, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM ourteams WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get team member: %w", err)
	}
	return m, nil
}

func (r *Repository) Create(ctx context.Context, m *Member) error {
	query := `
		INSERT INTO ourteams (name, position, image, phone, email, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRow(ctx, query, m.Name, m.Position, m.Image, m.Phone, m.Email, m.Description).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return constraints.Translate(fmt.Errorf("create team member: %w", err))
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, id int64, u Update) (*Member, error) {
	query := `
		UPDATE ourteams
		SET name        = COALESCE($2, name),
		    position    = COALESCE($3, position),
		    image       = COALESCE($4, image),
		    phone       = CASE WHEN $8::boolean THEN NULL ELSE COALESCE($5, phone) END,
		    email       = CASE WHEN $9::boolean THEN NULL ELSE COALESCE($6, email) END,
		    description = CASE WHEN $10::boolean THEN NULL ELSE COALESCE($7, description) END,
		    updated_at  = NOW()
		WHERE id = $1
		RETURNING ` + columns
	m, err := scan(r.db.QueryRow(ctx, query, id, u.Name, u.Position, u.Image, u.Phone, u.Email, u.Description,
		u.ClearPhone, u.ClearEmail, u.ClearDescription))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, constraints.Translate(fmt.Errorf("update team member: %w", err))
	}
	return m, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) (*Member, error) {
	m, err := scan(r.db.QueryRow(ctx, `DELETE FROM ourteams WHERE id = $1 RETURNING `+columns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete team member: %w", err)
	}
	return m, nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM ourteams`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count team: %w", err)
	}
	return n, nil
}

func (r *Repository) EmailTaken(ctx context.Context, email string, excludeID *int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM ourteams WHERE email = $1 AND ($2::bigint IS NULL OR id <> $2))`,
		email, excludeID,
	).Scan(&exists)
	return exists, err
}
