// Package slug derives unique, URL-safe identifiers from display names.
package slug

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	gosimple "github.com/gosimple/slug"
)

const (
	// DefaultStart is the first numeric suffix tried after the bare base collides.
	DefaultStart = 2
	// MaxAttempts bounds how often Assign re-checks after a unique violation.
	MaxAttempts = 5

	fallbackBase = "item"
)

// ErrSlugTaken is returned by writers when the slug column rejects the candidate.
// Repositories map the storage unique violation on the slug constraint to it.
var ErrSlugTaken = errors.New("slug already taken")

// Checker reports whether a slug is already used in a table, ignoring the row
// identified by excludeID when it is non-nil.
type Checker interface {
	SlugExists(ctx context.Context, slug string, excludeID *int64) (bool, error)
}

// Generator produces unique slugs. The zero value starts suffixing at DefaultStart.
type Generator struct {
	Start int
}

// Base returns the normalized slug for name without any uniqueness suffix.
func Base(name string) string {
	s := gosimple.Make(name)
	if s == "" {
		return fallbackBase
	}
	return s
}

func (g Generator) start() int {
	if g.Start <= 0 {
		return DefaultStart
	}
	return g.Start
}

// Unique returns the first candidate derived from name that the checker does not
// report as taken: base, then base-N for N = Start, Start+1, ...
func (g Generator) Unique(ctx context.Context, name string, p Checker, excludeID *int64) (string, error) {
	base := Base(name)
	candidate := base

	for n := g.start(); ; n++ {
		taken, err := p.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}

// Assign generates a slug for name and hands it to write. When write reports
// ErrSlugTaken (a concurrent insert won the race between check and write) the
// slug is checked again, up to MaxAttempts times.
func Assign(ctx context.Context, g Generator, p Checker, name string, excludeID *int64, write func(slug string) error) error {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		s, err := g.Unique(ctx, name, p, excludeID)
		if err != nil {
			return err
		}

		err = write(s)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrSlugTaken) {
			return err
		}
	}
	return ErrSlugTaken
}
