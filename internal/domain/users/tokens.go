package users

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TokenStore persists issued API tokens. A token is usable only while its row exists.
type TokenStore interface {
	Create(ctx context.Context, t *Token, hash string) error
	// Exists reports whether hash belongs to userID and has not expired.
	Exists(ctx context.Context, userID int64, hash string) (bool, error)
	Touch(ctx context.Context, hash string) error
	Revoke(ctx context.Context, hash string) error
}

type TokenRepository struct {
	db *pgxpool.Pool
}

func NewTokenRepository(db *pgxpool.Pool) TokenStore {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, t *Token, hash string) error {
	query := `
		INSERT INTO user_tokens (user_id, token_hash, name, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	if err := r.db.QueryRow(ctx, query, t.UserID, hash, t.Name, t.ExpiresAt).Scan(&t.ID, &t.CreatedAt); err != nil {
		return fmt.Errorf("create token: %w", err)
	}
	return nil
}

func (r *TokenRepository) Exists(ctx context.Context, userID int64, hash string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM user_tokens WHERE token_hash = $1 AND user_id = $2 AND expires_at > $3)`,
		hash, userID, time.Now(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check token: %w", err)
	}
	return exists, nil
}

func (r *TokenRepository) Touch(ctx context.Context, hash string) error {
	_, err := r.db.Exec(ctx, `UPDATE user_tokens SET last_used_at = NOW() WHERE token_hash = $1`, hash)
	return err
}

func (r *TokenRepository) Revoke(ctx context.Context, hash string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM user_tokens WHERE token_hash = $1`, hash); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
