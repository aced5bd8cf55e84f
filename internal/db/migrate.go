package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type migration struct {
	version string
	sql     string
}

// loadMigrations reads *.up.sql files from fsys, ordered by version prefix.
func loadMigrations(fsys fs.FS) ([]migration, error) {
	entries, err := fs.Glob(fsys, "migrations/*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(entries)

	seen := map[string]bool{}
	out := make([]migration, 0, len(entries))
	for _, name := range entries {
		version := strings.TrimSuffix(path.Base(name), ".up.sql")
		prefix, _, _ := strings.Cut(version, "_")
		if seen[prefix] {
			return nil, fmt.Errorf("migrate: duplicate version %s", prefix)
		}
		seen[prefix] = true

		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		out = append(out, migration{version: version, sql: string(body)})
	}
	return out, nil
}

// Migrate applies embedded migrations that are not yet recorded in
// schema_migrations. Each migration runs in its own transaction.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger *zap.SugaredLogger) error {
	migrations, err := loadMigrations(migrationsFS)
	if err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version     VARCHAR(255) PRIMARY KEY,
			applied_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return fmt.Errorf("migrate: ensure table: %w", err)
	}

	applied := 0
	for _, m := range migrations {
		var exists bool
		if err := pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, m.version,
		).Scan(&exists); err != nil {
			return fmt.Errorf("migrate: check %s: %w", m.version, err)
		}
		if exists {
			continue
		}

		if err := apply(ctx, pool, m); err != nil {
			return err
		}
		applied++
		logger.Infow("migration applied", "version", m.version)
	}

	if applied == 0 {
		logger.Info("migrate: nothing to migrate")
	}
	return nil
}

func apply(ctx context.Context, pool *pgxpool.Pool, m migration) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("migrate: begin %s: %w", m.version, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			zap.S().Warnw("migrate: rollback failed", "version", m.version, "error", err)
		}
	}()

	if _, err := tx.Exec(ctx, m.sql); err != nil {
		return fmt.Errorf("migrate: %s: %w", m.version, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.version); err != nil {
		return fmt.Errorf("migrate: record %s: %w", m.version, err)
	}
	return tx.Commit(ctx)
}
