package scopeconfig

import (
	"context"
	"errors"
)

var (
	ErrOverrideNotFound = errors.New("scope override not found")
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_scopeconfig
// Store defines the interface for per-scope configuration overrides
type Store interface {
	// Get retrieves the override for a scope
	Get(ctx context.Context, scopeID string) (*ScopeOverride, error)

	// Save replaces the override for a scope
	Save(ctx context.Context, scopeID string, override *ScopeOverride) error

	// Close releases any underlying resources
	Close() error
}
