// Package cache stores rendered public responses. Values are JSON encoded.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

const DefaultTTL = 5 * time.Minute

type Cache interface {
	// Get decodes the value under key into dest and reports a hit.
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// ListKey and TotalKey name the cached list and count of a resource.
func ListKey(resource string) string  { return resource + ":list" }
func TotalKey(resource string) string { return resource + ":total" }

// Forget removes every cached response for the given resources.
func Forget(ctx context.Context, c Cache, resources ...string) error {
	keys := make([]string, 0, 2*len(resources))
	for _, r := range resources {
		keys = append(keys, ListKey(r), TotalKey(r))
	}
	return c.Del(ctx, keys...)
}

// Noop never stores anything. It is used when no redis address is configured.
type Noop struct{}

func (Noop) Get(context.Context, string, any) bool                 { return false }
func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Noop) Del(context.Context, ...string) error                  { return nil }

// Memory is an in-process cache for tests.
type Memory struct {
	mu    sync.Mutex
	items map[string]memoryItem
}

type memoryItem struct {
	data    []byte
	expires time.Time
}

func NewMemory() *Memory {
	return &Memory{items: map[string]memoryItem{}}
}

func (m *Memory) Get(_ context.Context, key string, dest any) bool {
	m.mu.Lock()
	it, ok := m.items[key]
	m.mu.Unlock()
	if !ok || (!it.expires.IsZero() && time.Now().After(it.expires)) {
		return false
	}
	return json.Unmarshal(it.data, dest) == nil
}

func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	it := memoryItem{data: data}
	if ttl > 0 {
		it.expires = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.items[key] = it
	m.mu.Unlock()
	return nil
}

func (m *Memory) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.items, k)
	}
	m.mu.Unlock()
	return nil
}

// Has reports whether key is currently stored.
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok
}
