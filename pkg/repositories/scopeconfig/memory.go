package scopeconfig

import (
	"context"
	"sync"
)

// MemoryStore implements Store using in-memory storage
type MemoryStore struct {
	overrides map[string]*ScopeOverride
	mu        sync.RWMutex
}

// NewMemoryStore creates a new in-memory scope-config store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		overrides: make(map[string]*ScopeOverride),
	}
}

// Get retrieves the override for a scope
func (s *MemoryStore) Get(ctx context.Context, scopeID string) (*ScopeOverride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	override, exists := s.overrides[scopeID]
	if !exists {
		return nil, ErrOverrideNotFound
	}
	return override.Clone(), nil
}

// Save replaces the override for a scope
func (s *MemoryStore) Save(ctx context.Context, scopeID string, override *ScopeOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overrides[scopeID] = override.Clone()
	return nil
}

// Close implements Store; a memory store holds no resources
func (s *MemoryStore) Close() error {
	return nil
}
