package account

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/atkhates/BANK-LOMITA/pkg/entities"
	"github.com/google/uuid"
)

var (
	ErrAccountNotFound = errors.New("account not found")
)

func key(scopeID, holderID string) string {
	return scopeID + "|" + holderID
}

// MemoryRepository implements Repository using in-memory storage
type MemoryRepository struct {
	accounts     map[string]*entities.Account
	transactions map[string][]*entities.TransactionRecord // keyed by scope
	mu           sync.RWMutex
}

// NewMemoryRepository creates a new in-memory account repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		accounts:     make(map[string]*entities.Account),
		transactions: make(map[string][]*entities.TransactionRecord),
	}
}

// GetAccount retrieves an account by scope and holder ID
func (r *MemoryRepository) GetAccount(ctx context.Context, scopeID, holderID string) (*entities.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acct, exists := r.accounts[key(scopeID, holderID)]
	if !exists {
		return nil, ErrAccountNotFound
	}

	// Return a copy to prevent concurrent modification
	return acct.Clone(), nil
}

// SaveAccount creates or updates an account
func (r *MemoryRepository) SaveAccount(ctx context.Context, account *entities.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Update the last updated timestamp
	account.UpdatedAt = time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = account.UpdatedAt
	}

	r.accounts[key(account.ScopeID, account.HolderID)] = account.Clone()
	return nil
}

// ListAccounts retrieves all accounts in a scope
func (r *MemoryRepository) ListAccounts(ctx context.Context, scopeID string) ([]*entities.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*entities.Account, 0)
	for _, acct := range r.accounts {
		if acct.ScopeID == scopeID {
			result = append(result, acct.Clone())
		}
	}
	return result, nil
}

// AddTransaction appends a transaction record
func (r *MemoryRepository) AddTransaction(ctx context.Context, record *entities.TransactionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Generate a UUID if not provided
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	// Set timestamp if not provided
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	// Make a copy to prevent concurrent modification
	recCopy := *record
	r.transactions[record.ScopeID] = append(r.transactions[record.ScopeID], &recCopy)
	return nil
}

// GetTransactions retrieves recent transaction records touching a holder
func (r *MemoryRepository) GetTransactions(ctx context.Context, scopeID, holderID string, limit int) ([]*entities.TransactionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := r.transactions[scopeID]
	result := make([]*entities.TransactionRecord, 0, limit)

	// Walk backwards so the most recent records come first
	for i := len(records) - 1; i >= 0 && len(result) < limit; i-- {
		if records[i].From == holderID || records[i].To == holderID {
			recCopy := *records[i]
			result = append(result, &recCopy)
		}
	}
	return result, nil
}

// Close implements Repository; a memory repository holds no resources
func (r *MemoryRepository) Close() error {
	return nil
}
