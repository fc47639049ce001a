package mirror

import (
	"sync"

	"github.com/atkhates/BANK-LOMITA/internal/logging"
	"github.com/atkhates/BANK-LOMITA/pkg/entities"
)

// event is one queued replication hand-off
type event struct {
	account *entities.Account
	record  *entities.TransactionRecord
}

// Dispatcher decouples the core from the mirror transport: events are
// enqueued after the durable write commits and delivered by a background
// worker. A full queue drops the event rather than block the caller; delivery
// failures stay inside the delegate sinks.
type Dispatcher struct {
	sinks  []Sink
	events chan event
	done   chan struct{}
	wg     sync.WaitGroup
	logger *logging.Logger
}

// NewDispatcher creates a dispatcher fanning out to the given sinks and
// starts its delivery worker.
func NewDispatcher(bufferSize int, sinks ...Sink) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 256
	}

	d := &Dispatcher{
		sinks:  sinks,
		events: make(chan event, bufferSize),
		done:   make(chan struct{}),
		logger: logging.Default,
	}

	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case ev := <-d.events:
			d.deliver(ev)
		case <-d.done:
			// Drain what is already queued before exiting
			for {
				select {
				case ev := <-d.events:
					d.deliver(ev)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(ev event) {
	for _, sink := range d.sinks {
		if ev.account != nil {
			sink.OnAccountChanged(ev.account)
		}
		if ev.record != nil {
			sink.OnTransaction(ev.record)
		}
	}
}

// OnAccountChanged implements Sink by enqueueing the snapshot
func (d *Dispatcher) OnAccountChanged(account *entities.Account) {
	select {
	case d.events <- event{account: account.Clone()}:
	default:
		d.logger.Warn("Mirror queue full, dropping account snapshot for %s", account.HolderID)
	}
}

// OnTransaction implements Sink by enqueueing the record
func (d *Dispatcher) OnTransaction(record *entities.TransactionRecord) {
	recCopy := *record
	select {
	case d.events <- event{record: &recCopy}:
	default:
		d.logger.Warn("Mirror queue full, dropping transaction record %s", record.ID)
	}
}

// Close stops the worker after draining queued events
func (d *Dispatcher) Close() {
	close(d.done)
	d.wg.Wait()
}
