package filestore

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// Memory keeps objects in process memory. PutErr and DeleteErr, when set,
// make the matching operation fail; tests use them to simulate outages.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
	deletes map[string]int
	baseURL string

	PutErr    error
	DeleteErr error
}

func NewMemory(baseURL string) *Memory {
	if baseURL == "" {
		baseURL = "http://localhost:8080/storage"
	}
	return &Memory{
		objects: map[string][]byte{},
		deletes: map[string]int{},
		baseURL: baseURL,
	}
}

func (m *Memory) Put(_ context.Context, path string, r io.Reader) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("filestore/memory: read %s: %w", path, err)
	}
	m.mu.Lock()
	m.objects[path] = data
	m.mu.Unlock()
	return nil
}

func (m *Memory) Exists(_ context.Context, path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[path]
	return ok, nil
}

func (m *Memory) Delete(_ context.Context, path string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	delete(m.objects, path)
	m.deletes[path]++
	m.mu.Unlock()
	return nil
}

func (m *Memory) URL(path string) string { return joinURL(m.baseURL, path) }

// Paths lists stored refs in lexical order.
func (m *Memory) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.objects))
	for p := range m.objects {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// DeleteCount reports how many times path was deleted.
func (m *Memory) DeleteCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deletes[path]
}
