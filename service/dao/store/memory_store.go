package store

import (
	"context"
	"sync"

	"github.com/CodeGandee/invokeai-go-client/service/dao"
)

// MemoryStore keeps entities of type *T mapped by a comparable key derived
// through keyOf.  Concrete DAOs embed it and layer their own validation and
// filtering on top; the store itself never filters.
type MemoryStore[K comparable, T any] struct {
	mu      sync.RWMutex
	records map[K]*T
	keyOf   func(*T) K
}

// NewMemoryStore creates an empty store keyed by keyOf, usually the entity's
// ID field.
func NewMemoryStore[K comparable, T any](keyOf func(*T) K) *MemoryStore[K, T] {
	return &MemoryStore[K, T]{
		records: make(map[K]*T),
		keyOf:   keyOf,
	}
}

// Save stores or overwrites a record.  Nil records are ignored; embedding
// DAOs reject them before reaching the store.
func (s *MemoryStore[K, T]) Save(_ context.Context, v *T) error {
	if v == nil {
		return nil
	}
	key := s.keyOf(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = v
	return nil
}

// Load returns the record under key, or nil when absent.
func (s *MemoryStore[K, T]) Load(_ context.Context, key K) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	return v, nil
}

// Delete removes the record under key.
func (s *MemoryStore[K, T]) Delete(_ context.Context, key K) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// List returns every stored record in map order.
func (s *MemoryStore[K, T]) List(_ context.Context, _ ...*dao.Parameter) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*T, 0, len(s.records))
	for _, v := range s.records {
		out = append(out, v)
	}
	return out, nil
}
