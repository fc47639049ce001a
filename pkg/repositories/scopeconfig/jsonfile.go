package scopeconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONStore implements Store on a single JSON file keyed by scope ID,
// matching the original deployment's guild-configs file.
type JSONStore struct {
	path string
	mu   sync.Mutex
}

// NewJSONStore creates a store backed by the given file path
func NewJSONStore(path string) (*JSONStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("error creating config directory: %w", err)
	}
	return &JSONStore{path: path}, nil
}

func (s *JSONStore) load() (map[string]*ScopeOverride, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]*ScopeOverride), nil
		}
		return nil, fmt.Errorf("error reading scope config file: %w", err)
	}

	overrides := make(map[string]*ScopeOverride)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &overrides); err != nil {
			return nil, fmt.Errorf("error decoding scope config file: %w", err)
		}
	}
	return overrides, nil
}

// Get retrieves the override for a scope
func (s *JSONStore) Get(ctx context.Context, scopeID string) (*ScopeOverride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	overrides, err := s.load()
	if err != nil {
		return nil, err
	}

	override, exists := overrides[scopeID]
	if !exists {
		return nil, ErrOverrideNotFound
	}
	return override, nil
}

// Save replaces the override for a scope
func (s *JSONStore) Save(ctx context.Context, scopeID string, override *ScopeOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	overrides, err := s.load()
	if err != nil {
		return err
	}
	overrides[scopeID] = override

	data, err := json.MarshalIndent(overrides, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding scope config: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("error writing temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("error replacing file: %w", err)
	}
	return nil
}

// Close implements Store; the file is opened per call
func (s *JSONStore) Close() error {
	return nil
}
