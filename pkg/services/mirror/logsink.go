package mirror

import (
	"github.com/atkhates/BANK-LOMITA/internal/logging"
	"github.com/atkhates/BANK-LOMITA/pkg/entities"
)

// LogSink writes mirror events to the process log. Useful in development and
// as a visible stand-in when no external mirror is configured.
type LogSink struct {
	logger *logging.Logger
}

// NewLogSink creates a new log sink
func NewLogSink() *LogSink {
	return &LogSink{logger: logging.Default}
}

// OnAccountChanged logs the account snapshot
func (s *LogSink) OnAccountChanged(account *entities.Account) {
	s.logger.Debug("Mirror: account %s/%s status=%s balance=%d frozen=%t",
		account.ScopeID, account.HolderID, account.Status, account.Balance, account.Frozen)
}

// OnTransaction logs the transaction record
func (s *LogSink) OnTransaction(record *entities.TransactionRecord) {
	s.logger.Debug("Mirror: tx %s type=%s from=%s to=%s amount=%d fee=%d",
		record.ID, record.Type, record.From, record.To, record.Amount, record.Fee)
}
