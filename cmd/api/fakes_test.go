package main

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront/internal/db"
	"storefront/internal/domain/blogs"
	"storefront/internal/domain/categories"
	"storefront/internal/domain/contacts"
	"storefront/internal/domain/distributors"
	"storefront/internal/domain/ourteams"
	"storefront/internal/domain/products"
	"storefront/internal/domain/storage"
	"storefront/internal/domain/users"
	"storefront/internal/slug"
)

// In-memory stores that mirror the unique and foreign key constraints of the
// SQL schema.

type memStores struct {
	users        *memUsers
	tokens       *memTokens
	categories   *memCategories
	products     *memProducts
	blogs        *memBlogs
	ourteams     *memOurTeams
	distributors *memDistributors
	contacts     *memContacts
}

func newMemStores() *memStores {
	s := &memStores{
		users:        &memUsers{rows: map[int64]*users.User{}},
		tokens:       &memTokens{rows: map[string]users.Token{}},
		categories:   &memCategories{rows: map[int64]*categories.Category{}},
		blogs:        &memBlogs{rows: map[int64]*blogs.Blog{}},
		ourteams:     &memOurTeams{rows: map[int64]*ourteams.Member{}},
		distributors: &memDistributors{rows: map[int64]*distributors.Distributor{}},
		contacts:     &memContacts{rows: map[int64]*contacts.Contact{}},
	}
	s.products = &memProducts{rows: map[int64]*products.Product{}, categories: s.categories}
	s.categories.inUse = s.products.usesCategory
	return s
}

func (s *memStores) container() *storage.Container {
	return &storage.Container{
		Users:        s.users,
		Tokens:       s.tokens,
		Categories:   s.categories,
		Products:     s.products,
		Blogs:        s.blogs,
		OurTeams:     s.ourteams,
		Distributors: s.distributors,
		Contacts:     s.contacts,
	}
}

func excluded(id int64, excludeID *int64) bool {
	return excludeID != nil && *excludeID == id
}

func sortedIDs[T any](rows map[int64]T) []int64 {
	ids := make([]int64, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// users

type memUsers struct {
	mu   sync.Mutex
	next int64
	rows map[int64]*users.User
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, users.ErrNotFound
}

func (m *memUsers) List(_ context.Context, limit, offset int) ([]*users.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := sortedIDs(m.rows)
	out := []*users.User{}
	for i := offset; i < len(ids) && i < offset+limit; i++ {
		out = append(out, m.rows[ids[i]])
	}
	return out, len(ids), nil
}

func (m *memUsers) Upsert(_ context.Context, u *users.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rows {
		if existing.Email == u.Email {
			u.ID = existing.ID
			m.rows[u.ID] = u
			return nil
		}
	}
	m.next++
	u.ID = m.next
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	m.rows[u.ID] = u
	return nil
}

type memTokens struct {
	mu   sync.Mutex
	rows map[string]users.Token
}

func (m *memTokens) Create(_ context.Context, t *users.Token, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = int64(len(m.rows) + 1)
	t.CreatedAt = time.Now()
	m.rows[hash] = *t
	return nil
}

func (m *memTokens) Exists(_ context.Context, userID int64, hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[hash]
	return ok && t.UserID == userID && t.ExpiresAt.After(time.Now()), nil
}

func (m *memTokens) Touch(_ context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.rows[hash]; ok {
		now := time.Now()
		t.LastUsedAt = &now
		m.rows[hash] = t
	}
	return nil
}

func (m *memTokens) Revoke(_ context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, hash)
	return nil
}

func (m *memTokens) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// categories

type memCategories struct {
	mu    sync.Mutex
	next  int64
	rows  map[int64]*categories.Category
	inUse func(id int64) bool
}

func (m *memCategories) List(_ context.Context) ([]*categories.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*categories.Category
	for _, id := range sortedIDs(m.rows) {
		c := *m.rows[id]
		out = append(out, &c)
	}
	return out, nil
}

func (m *memCategories) GetByID(_ context.Context, id int64) (*categories.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, categories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCategories) GetBySlug(_ context.Context, s string) (*categories.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.rows {
		if c.Slug == s {
			cp := *c
			return &cp, nil
		}
	}
	return nil, categories.ErrNotFound
}

func (m *memCategories) conflict(id int64, name, s string) error {
	for _, c := range m.rows {
		if c.ID == id {
			continue
		}
		if c.Slug == s {
			return slug.ErrSlugTaken
		}
		if c.Name == name {
			return categories.ErrDuplicateName
		}
	}
	return nil
}

func (m *memCategories) Create(_ context.Context, c *categories.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.conflict(0, c.Name, c.Slug); err != nil {
		return err
	}
	m.next++
	c.ID = m.next
	c.CreatedAt, c.UpdatedAt = time.Now(), time.Now()
	cp := *c
	m.rows[c.ID] = &cp
	return nil
}

func (m *memCategories) Update(_ context.Context, id int64, u categories.Update) (*categories.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, categories.ErrNotFound
	}
	next := *c
	if u.Name != nil {
		next.Name = *u.Name
	}
	if u.Slug != nil {
		next.Slug = *u.Slug
	}
	if u.Description != nil {
		next.Description = u.Description
	}
	if err := m.conflict(id, next.Name, next.Slug); err != nil {
		return nil, err
	}
	next.UpdatedAt = time.Now()
	m.rows[id] = &next
	out := next
	return &out, nil
}

func (m *memCategories) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return categories.ErrNotFound
	}
	if m.inUse != nil && m.inUse(id) {
		return categories.ErrHasProducts
	}
	delete(m.rows, id)
	return nil
}

func (m *memCategories) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows), nil
}

func (m *memCategories) SlugExists(_ context.Context, s string, excludeID *int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.rows {
		if c.Slug == s && !excluded(c.ID, excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memCategories) NameTaken(_ context.Context, name string, excludeID *int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.rows {
		if c.Name == name && !excluded(c.ID, excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memCategories) ref(id int64) (*products.CategoryRef, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, false
	}
	return &products.CategoryRef{ID: c.ID, Name: c.Name, Slug: c.Slug}, true
}

// products

type memProducts struct {
	mu         sync.Mutex
	next       int64
	rows       map[int64]*products.Product
	categories *memCategories
}

func (m *memProducts) usesCategory(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if p.CategoryID == id {
			return true
		}
	}
	return false
}

func (m *memProducts) view(p *products.Product) *products.Product {
	cp := *p
	cp.Images = append([]string{}, p.Images...)
	cp.Category, _ = m.categories.ref(p.CategoryID)
	return &cp
}

func (m *memProducts) List(_ context.Context) ([]*products.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*products.Product
	for _, id := range sortedIDs(m.rows) {
		out = append(out, m.view(m.rows[id]))
	}
	return out, nil
}

func (m *memProducts) GetByID(_ context.Context, id int64) (*products.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, products.ErrNotFound
	}
	return m.view(p), nil
}

func (m *memProducts) GetBySlug(_ context.Context, s string) (*products.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if p.Slug == s {
			return m.view(p), nil
		}
	}
	return nil, products.ErrNotFound
}

func (m *memProducts) conflict(p *products.Product) error {
	if _, ok := m.categories.ref(p.CategoryID); !ok {
		return products.ErrCategoryNotFound
	}
	for _, other := range m.rows {
		if other.ID == p.ID {
			continue
		}
		if other.Slug == p.Slug {
			return slug.ErrSlugTaken
		}
		if other.Name == p.Name {
			return products.ErrDuplicateName
		}
	}
	return nil
}

func (m *memProducts) Create(_ context.Context, p *products.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.conflict(p); err != nil {
		return err
	}
	m.next++
	p.ID = m.next
	p.CreatedAt, p.UpdatedAt = time.Now(), time.Now()
	cp := *p
	cp.Images = append([]string{}, p.Images...)
	m.rows[p.ID] = &cp
	return nil
}

func (m *memProducts) Update(_ context.Context, id int64, u products.Update) (*products.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, products.ErrNotFound
	}
	next := *p
	if u.CategoryID != nil {
		next.CategoryID = *u.CategoryID
	}
	if u.Name != nil {
		next.Name = *u.Name
	}
	if u.Slug != nil {
		next.Slug = *u.Slug
	}
	if u.OldPrice != nil {
		next.OldPrice = u.OldPrice
	}
	if u.Price != nil {
		next.Price = *u.Price
	}
	if u.Description != nil {
		next.Description = u.Description
	}
	if u.ClearOldPrice {
		next.OldPrice = nil
	}
	if u.ClearDescription {
		next.Description = nil
	}
	if u.Images != nil {
		next.Images = append([]string{}, (*u.Images)...)
	}
	if err := m.conflict(&next); err != nil {
		return nil, err
	}
	next.UpdatedAt = time.Now()
	m.rows[id] = &next
	return m.view(&next), nil
}

func (m *memProducts) Delete(_ context.Context, id int64) (*products.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, products.ErrNotFound
	}
	delete(m.rows, id)
	return p, nil
}

func (m *memProducts) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows), nil
}

func (m *memProducts) SlugExists(_ context.Context, s string, excludeID *int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if p.Slug == s && !excluded(p.ID, excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memProducts) NameTaken(_ context.Context, name string, excludeID *int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if p.Name == name && !excluded(p.ID, excludeID) {
			return true, nil
		}
	}
	return false, nil
}

// blogs

type memBlogs struct {
	mu   sync.Mutex
	next int64
	rows map[int64]*blogs.Blog
}

func (m *memBlogs) List(_ context.Context) ([]*blogs.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*blogs.Blog
	for _, id := range sortedIDs(m.rows) {
		b := *m.rows[id]
		out = append(out, &b)
	}
	return out, nil
}

func (m *memBlogs) GetByID(_ context.Context, id int64) (*blogs.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return nil, blogs.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBlogs) Create(_ context.Context, b *blogs.Blog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	b.ID = m.next
	b.CreatedAt, b.UpdatedAt = time.Now(), time.Now()
	cp := *b
	m.rows[b.ID] = &cp
	return nil
}

func (m *memBlogs) Update(_ context.Context, id int64, u blogs.Update) (*blogs.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return nil, blogs.ErrNotFound
	}
	if u.Title != nil {
		b.Title = *u.Title
	}
	if u.Description != nil {
		b.Description = *u.Description
	}
	if u.Image != nil {
		b.Image = u.Image
	}
	b.UpdatedAt = time.Now()
	cp := *b
	return &cp, nil
}

func (m *memBlogs) Delete(_ context.Context, id int64) (*blogs.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return nil, blogs.ErrNotFound
	}
	delete(m.rows, id)
	return b, nil
}

func (m *memBlogs) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows), nil
}

// team

type memOurTeams struct {
	mu   sync.Mutex
	next int64
	rows map[int64]*ourteams.Member
}

func (m *memOurTeams) List(_ context.Context) ([]*ourteams.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*ourteams.Member
	for _, id := range sortedIDs(m.rows) {
		cp := *m.rows[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memOurTeams) GetByID(_ context.Context, id int64) (*ourteams.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok {
		return nil, ourteams.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memOurTeams) emailConflict(id int64, email *string) bool {
	if email == nil {
		return false
	}
	for _, t := range m.rows {
		if t.ID != id && t.Email != nil && *t.Email == *email {
			return true
		}
	}
	return false
}

func (m *memOurTeams) Create(_ context.Context, t *ourteams.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emailConflict(0, t.Email) {
		return ourteams.ErrDuplicateEmail
	}
	m.next++
	t.ID = m.next
	t.CreatedAt, t.UpdatedAt = time.Now(), time.Now()
	cp := *t
	m.rows[t.ID] = &cp
	return nil
}

func (m *memOurTeams) Update(_ context.Context, id int64, u ourteams.Update) (*ourteams.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok {
		return nil, ourteams.ErrNotFound
	}
	if m.emailConflict(id, u.Email) {
		return nil, ourteams.ErrDuplicateEmail
	}
	next := *t
	if u.Name != nil {
		next.Name = *u.Name
	}
	if u.Position != nil {
		next.Position = *u.Position
	}
	if u.Image != nil {
		next.Image = u.Image
	}
	if u.Phone != nil {
		next.Phone = u.Phone
	}
	if u.Email != nil {
		next.Email = u.Email
	}
	if u.Description != nil {
		next.Description = u.Description
	}
	if u.ClearPhone {
		next.Phone = nil
	}
	if u.ClearEmail {
		next.Email = nil
	}
	if u.ClearDescription {
		next.Description = nil
	}
	next.UpdatedAt = time.Now()
	m.rows[id] = &next
	out := next
	return &out, nil
}

func (m *memOurTeams) Delete(_ context.Context, id int64) (*ourteams.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok {
		return nil, ourteams.ErrNotFound
	}
	delete(m.rows, id)
	return t, nil
}

func (m *memOurTeams) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows), nil
}

func (m *memOurTeams) EmailTaken(_ context.Context, email string, excludeID *int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.rows {
		if t.Email != nil && *t.Email == email && !excluded(t.ID, excludeID) {
			return true, nil
		}
	}
	return false, nil
}

// distributors

type memDistributors struct {
	mu   sync.Mutex
	next int64
	rows map[int64]*distributors.Distributor
}

func (m *memDistributors) List(_ context.Context) ([]*distributors.Distributor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*distributors.Distributor
	for _, id := range sortedIDs(m.rows) {
		cp := *m.rows[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memDistributors) GetByID(_ context.Context, id int64) (*distributors.Distributor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.rows[id]
	if !ok {
		return nil, distributors.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memDistributors) conflict(d *distributors.Distributor) error {
	for _, other := range m.rows {
		if other.ID == d.ID {
			continue
		}
		if other.Name == d.Name {
			return distributors.ErrDuplicateName
		}
		if other.Email == d.Email {
			return distributors.ErrDuplicateEmail
		}
	}
	return nil
}

func (m *memDistributors) Create(_ context.Context, d *distributors.Distributor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.conflict(d); err != nil {
		return err
	}
	m.next++
	d.ID = m.next
	d.CreatedAt, d.UpdatedAt = time.Now(), time.Now()
	cp := *d
	m.rows[d.ID] = &cp
	return nil
}

func (m *memDistributors) Update(_ context.Context, id int64, u distributors.Update) (*distributors.Distributor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.rows[id]
	if !ok {
		return nil, distributors.ErrNotFound
	}
	next := *d
	if u.Name != nil {
		next.Name = *u.Name
	}
	if u.Location != nil {
		next.Location = *u.Location
	}
	if u.Phone != nil {
		next.Phone = *u.Phone
	}
	if u.Email != nil {
		next.Email = *u.Email
	}
	if err := m.conflict(&next); err != nil {
		return nil, err
	}
	next.UpdatedAt = time.Now()
	m.rows[id] = &next
	out := next
	return &out, nil
}

func (m *memDistributors) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return distributors.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memDistributors) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows), nil
}

func (m *memDistributors) NameTaken(_ context.Context, name string, excludeID *int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.rows {
		if d.Name == name && !excluded(d.ID, excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memDistributors) EmailTaken(_ context.Context, email string, excludeID *int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.rows {
		if d.Email == email && !excluded(d.ID, excludeID) {
			return true, nil
		}
	}
	return false, nil
}

// contacts

type memContacts struct {
	mu   sync.Mutex
	next int64
	rows map[int64]*contacts.Contact
}

func (m *memContacts) List(_ context.Context) ([]*contacts.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*contacts.Contact
	// newest first
	ids := sortedIDs(m.rows)
	for i := len(ids) - 1; i >= 0; i-- {
		cp := *m.rows[ids[i]]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memContacts) Create(_ context.Context, c *contacts.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	c.ID = m.next
	c.CreatedAt, c.UpdatedAt = time.Now(), time.Now()
	cp := *c
	m.rows[c.ID] = &cp
	return nil
}

func (m *memContacts) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}
