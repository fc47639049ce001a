package account

import (
	"context"

	"github.com/atkhates/BANK-LOMITA/pkg/entities"
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_account
// Repository defines the interface for account data operations
type Repository interface {
	// GetAccount retrieves an account by scope and holder ID
	GetAccount(ctx context.Context, scopeID, holderID string) (*entities.Account, error)

	// SaveAccount creates or updates an account
	SaveAccount(ctx context.Context, account *entities.Account) error

	// ListAccounts retrieves all accounts in a scope
	ListAccounts(ctx context.Context, scopeID string) ([]*entities.Account, error)

	// AddTransaction appends a transaction record
	AddTransaction(ctx context.Context, record *entities.TransactionRecord) error

	// GetTransactions retrieves recent transaction records touching a holder
	GetTransactions(ctx context.Context, scopeID, holderID string, limit int) ([]*entities.TransactionRecord, error)

	// Close releases any underlying resources
	Close() error
}
