package remote

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// Memory is a DocumentStore held in memory. It is safe for concurrent use.
type Memory struct {
	mu   sync.Mutex
	docs map[string][]byte
}

// NewMemory returns an empty Memory.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[path]
	if !ok {
		return nil, ErrNoDocument
	}
	return slices.Clone(doc), nil
}

func (m *Memory) Set(ctx context.Context, path string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[path] = slices.Clone(doc)
	return nil
}

// Paths lists the stored paths starting with prefix, sorted.
func (m *Memory) Paths(prefix string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var paths []string
	for p := range m.docs {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	slices.Sort(paths)
	return paths
}
