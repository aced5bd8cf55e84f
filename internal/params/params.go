package params

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// URL: /users?page=2&per_page=30
// → ParsePagination() → Pagination{PerPage:30, Page:2, Offset:30}
// → SQL: SELECT ... LIMIT 30 OFFSET 30
// → ComputeMeta(total) fills LastPage, HasNext, etc.
type Pagination struct {
	PerPage  int  `json:"per_page"`
	Offset   int  `json:"-"`
	Page     int  `json:"current_page"`
	Total    int  `json:"total"`
	LastPage int  `json:"last_page"`
	HasNext  bool `json:"has_next"`
	HasPrev  bool `json:"has_prev"`
}

// ParsePagination parses ?per_page=...&page=... safely. Keys are case sensitive.
func ParsePagination(q url.Values) Pagination {
	p := Pagination{
		PerPage: DefaultPerPage,
		Page:    1,
	}

	if s := strings.TrimSpace(q.Get("per_page")); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			switch {
			case n <= 0:
				p.PerPage = DefaultPerPage
			case n > MaxPerPage:
				p.PerPage = MaxPerPage
			default:
				p.PerPage = n
			}
		}
	}

	if s := strings.TrimSpace(q.Get("page")); s != "" {
		if page, err := strconv.Atoi(s); err == nil && page > 0 {
			p.Page = page
		}
	}

	p.Offset = (p.Page - 1) * p.PerPage
	return p
}

// ComputeMeta updates pagination after fetching total count.
func (p *Pagination) ComputeMeta(total int) {
	p.Total = total
	if p.PerPage > 0 {
		p.LastPage = int(math.Ceil(float64(total) / float64(p.PerPage)))
	}
	if p.LastPage == 0 {
		p.LastPage = 1
	}
	p.HasPrev = p.Page > 1
	p.HasNext = (p.Page * p.PerPage) < total
}

// Key is a route lookup key: either a numeric id or a slug.
type Key struct {
	ID   int64
	Slug string
}

func (k Key) IsID() bool { return k.Slug == "" }

func (k Key) String() string {
	if k.IsID() {
		return strconv.FormatInt(k.ID, 10)
	}
	return k.Slug
}

// ParseKey treats a key made only of decimal digits as an id and anything else
// as a slug. A slug that is itself all digits, like "2024", can therefore only
// be reached by its id. ok is false for an empty key or a digit string that
// overflows int64.
func ParseKey(s string) (k Key, ok bool) {
	if s == "" {
		return Key{}, false
	}
	if !allDigits(s) {
		return Key{Slug: s}, true
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return Key{}, false
	}
	return Key{ID: id}, true
}

// ParseID parses a positive int64 route id.
func ParseID(s string) (int64, bool) {
	if !allDigits(s) {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
