package account

import (
	"sort"
	"sync"
)

// LockKey builds the lock key for a holder within a scope
func LockKey(scopeID, holderID string) string {
	return key(scopeID, holderID)
}

// LockTable provides per-holder mutual exclusion for account writes. The
// repositories are last-write-wins, so every service that runs a get-then-save
// cycle on an account must hold that holder's lock for the whole cycle, and
// all services writing to the same store must share the same table. Locks are
// acquired in sorted key order, so two opposite-direction transfers can never
// deadlock on each other.
type LockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLockTable creates an empty lock table
func NewLockTable() *LockTable {
	return &LockTable{
		locks: make(map[string]*sync.Mutex),
	}
}

func (t *LockTable) get(key string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, exists := t.locks[key]
	if !exists {
		l = &sync.Mutex{}
		t.locks[key] = l
	}
	return l
}

// Acquire locks every key in a fixed global order and returns the matching
// release function.
func (t *LockTable) Acquire(keys ...string) func() {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	// Drop duplicates so a repeated key is locked once
	unique := sorted[:0]
	for i, k := range sorted {
		if i == 0 || k != sorted[i-1] {
			unique = append(unique, k)
		}
	}

	held := make([]*sync.Mutex, 0, len(unique))
	for _, k := range unique {
		l := t.get(k)
		l.Lock()
		held = append(held, l)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
