package mirror

import (
	"github.com/atkhates/BANK-LOMITA/pkg/entities"
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_mirror
// Sink receives best-effort replication events after a durable write commits.
// Implementations must never propagate failures back to the caller.
type Sink interface {
	// OnAccountChanged replicates the latest account snapshot
	OnAccountChanged(account *entities.Account)

	// OnTransaction replicates an appended transaction record
	OnTransaction(record *entities.TransactionRecord)
}

// NopSink discards all events
type NopSink struct{}

func (NopSink) OnAccountChanged(*entities.Account)        {}
func (NopSink) OnTransaction(*entities.TransactionRecord) {}
