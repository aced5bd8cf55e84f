package db

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedMigrations(t *testing.T) {
	ms, err := loadMigrations(migrationsFS)
	require.NoError(t, err)
	require.NotEmpty(t, ms)

	for i := 1; i < len(ms); i++ {
		assert.Less(t, ms[i-1].version, ms[i].version)
	}
	assert.Equal(t, "000001_create_users", ms[0].version)
}

func TestLoadMigrationsOrderAndDuplicates(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/000002_b.up.sql": {Data: []byte("SELECT 2;")},
		"migrations/000001_a.up.sql": {Data: []byte("SELECT 1;")},
		"migrations/readme.txt":      {Data: []byte("ignored")},
	}
	ms, err := loadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, "000001_a", ms[0].version)
	assert.Equal(t, "SELECT 2;", ms[1].sql)

	fsys["migrations/000002_c.up.sql"] = &fstest.MapFile{Data: []byte("SELECT 3;")}
	_, err = loadMigrations(fsys)
	assert.Error(t, err)
}

func TestConstraintMapTranslate(t *testing.T) {
	errSlug := errors.New("slug taken")
	m := ConstraintMap{"_slug_key": errSlug, "_name_key": ErrDuplicateName}

	err := m.Translate(&pgconn.PgError{Code: "23505", ConstraintName: "products_slug_key"})
	assert.ErrorIs(t, err, errSlug)

	err = m.Translate(&pgconn.PgError{Code: "23505", ConstraintName: "products_name_key"})
	assert.ErrorIs(t, err, ErrDuplicateName)

	fk := &pgconn.PgError{Code: "23503", ConstraintName: "products_category_id_fkey"}
	assert.Same(t, fk, m.Translate(fk))

	_, ok := IsFKViolation(fk)
	assert.True(t, ok)
}
