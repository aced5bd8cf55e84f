package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound       = errors.New("resource not found")
	ErrDuplicateName  = errors.New("name already exists")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrHasDependents  = errors.New("resource is still referenced")
	ErrInvalidRef     = errors.New("referenced resource does not exist")
)

func IsUniqueViolation(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr, true
	}
	return nil, false
}

func IsFKViolation(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return pgErr, true
	}
	return nil, false
}

// ConstraintMap translates unique violations by constraint name suffix, e.g.
// "_slug_key" to slug.ErrSlugTaken. Errors that do not match are returned as is.
type ConstraintMap map[string]error

func (m ConstraintMap) Translate(err error) error {
	pgErr, ok := IsUniqueViolation(err)
	if !ok {
		return err
	}
	for suffix, mapped := range m {
		if strings.HasSuffix(pgErr.ConstraintName, suffix) {
			return mapped
		}
	}
	return err
}
