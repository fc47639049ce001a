package entities

import "time"

// TransactionType represents the type of ledger transaction
type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "DEPOSIT"
	TransactionTypeWithdraw    TransactionType = "WITHDRAW"
	TransactionTypeTransfer    TransactionType = "TRANSFER"
	TransactionTypeAdminAdjust TransactionType = "ADMIN_ADJUST"
)

// TransactionRecord is an append-only record of a single balance mutation.
// Records are never mutated after creation.
type TransactionRecord struct {
	ID        string          `json:"id"`
	ScopeID   string          `json:"scope_id"`
	Type      TransactionType `json:"type"`
	From      string          `json:"from,omitempty"` // debited holder, empty for deposits
	To        string          `json:"to,omitempty"`   // credited holder, empty for withdrawals
	Amount    int64           `json:"amount"`
	Fee       int64           `json:"fee"`
	Timestamp time.Time       `json:"timestamp"`
}
