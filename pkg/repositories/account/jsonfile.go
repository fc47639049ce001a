package account

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/atkhates/BANK-LOMITA/pkg/entities"
	"github.com/google/uuid"
)

// JSONRepository implements Repository on top of per-scope JSON files,
// reproducing the on-disk layout of the original deployment: one JSON object
// per scope keyed by holder ID, with ISO-8601 created_at/updated_at fields.
// A single mutex serializes every read-modify-write cycle against the files.
type JSONRepository struct {
	dir string
	mu  sync.Mutex
}

// NewJSONRepository creates a repository rooted at the given directory
func NewJSONRepository(dir string) (*JSONRepository, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating database directory: %w", err)
	}
	return &JSONRepository{dir: dir}, nil
}

func (r *JSONRepository) accountsPath(scopeID string) string {
	if scopeID == "" {
		scopeID = "global"
	}
	return filepath.Join(r.dir, scopeID+"-users.json")
}

func (r *JSONRepository) transactionsPath(scopeID string) string {
	if scopeID == "" {
		scopeID = "global"
	}
	return filepath.Join(r.dir, scopeID+"-transactions.json")
}

func (r *JSONRepository) loadAccounts(scopeID string) (map[string]*entities.Account, error) {
	data, err := os.ReadFile(r.accountsPath(scopeID))
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]*entities.Account), nil
		}
		return nil, fmt.Errorf("error reading accounts file: %w", err)
	}

	accounts := make(map[string]*entities.Account)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &accounts); err != nil {
			return nil, fmt.Errorf("error decoding accounts file: %w", err)
		}
	}
	return accounts, nil
}

// writeFileAtomic writes via a temp file and rename so a crash mid-write
// never leaves a corrupt file behind.
func writeFileAtomic(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding json: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("error writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("error replacing file: %w", err)
	}
	return nil
}

// GetAccount retrieves an account by scope and holder ID
func (r *JSONRepository) GetAccount(ctx context.Context, scopeID, holderID string) (*entities.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.loadAccounts(scopeID)
	if err != nil {
		return nil, err
	}

	acct, exists := accounts[holderID]
	if !exists {
		return nil, ErrAccountNotFound
	}

	// The file does not carry these keys per record
	acct.HolderID = holderID
	acct.ScopeID = scopeID
	return acct, nil
}

// SaveAccount creates or updates an account
func (r *JSONRepository) SaveAccount(ctx context.Context, account *entities.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account.UpdatedAt = time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = account.UpdatedAt
	}

	accounts, err := r.loadAccounts(account.ScopeID)
	if err != nil {
		return err
	}

	accounts[account.HolderID] = account.Clone()
	return writeFileAtomic(r.accountsPath(account.ScopeID), accounts)
}

// ListAccounts retrieves all accounts in a scope
func (r *JSONRepository) ListAccounts(ctx context.Context, scopeID string) ([]*entities.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.loadAccounts(scopeID)
	if err != nil {
		return nil, err
	}

	result := make([]*entities.Account, 0, len(accounts))
	for holderID, acct := range accounts {
		acct.HolderID = holderID
		acct.ScopeID = scopeID
		result = append(result, acct)
	}
	return result, nil
}

// AddTransaction appends a transaction record
func (r *JSONRepository) AddTransaction(ctx context.Context, record *entities.TransactionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	path := r.transactionsPath(record.ScopeID)

	var records []*entities.TransactionRecord
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error reading transactions file: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("error decoding transactions file: %w", err)
		}
	}

	recCopy := *record
	records = append(records, &recCopy)
	return writeFileAtomic(path, records)
}

// GetTransactions retrieves recent transaction records touching a holder
func (r *JSONRepository) GetTransactions(ctx context.Context, scopeID, holderID string, limit int) ([]*entities.TransactionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var records []*entities.TransactionRecord
	data, err := os.ReadFile(r.transactionsPath(scopeID))
	if err != nil {
		if os.IsNotExist(err) {
			return []*entities.TransactionRecord{}, nil
		}
		return nil, fmt.Errorf("error reading transactions file: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("error decoding transactions file: %w", err)
		}
	}

	result := make([]*entities.TransactionRecord, 0, limit)
	for i := len(records) - 1; i >= 0 && len(result) < limit; i-- {
		if records[i].From == holderID || records[i].To == holderID {
			result = append(result, records[i])
		}
	}
	return result, nil
}

// Close implements Repository; files are opened per call
func (r *JSONRepository) Close() error {
	return nil
}
