// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"cmp"
	"slices"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/google/uuid"
)

// Entry represents a transaction waiting in the mempool. The sequence number
// is assigned on insert and tells apart the same transaction added twice.
type Entry struct {
	Seq uint64
	Tx  database.Tx
}

// Mempool represents a cache of transactions kept in the order they were
// submitted.
type Mempool struct {
	pool    []Entry
	nextSeq uint64
	mu      sync.RWMutex
}

// New constructs a new empty mempool.
func New() *Mempool {
	return &Mempool{
		nextSeq: 1,
	}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Add appends a transaction to the end of the mempool and returns the entry
// that was created for it.
func (mp *Mempool) Add(tx database.Tx) Entry {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	entry := Entry{
		Seq: mp.nextSeq,
		Tx:  tx,
	}
	mp.nextSeq++

	mp.pool = append(mp.pool, entry)

	return entry
}

// Copy returns the entries in submission order.
func (mp *Mempool) Copy() []Entry {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	cpy := make([]Entry, len(mp.pool))
	copy(cpy, mp.pool)
	return cpy
}

// Lookup returns the first transaction in the pool with the specified id.
func (mp *Mempool) Lookup(id uuid.UUID) (database.Tx, bool) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	for _, entry := range mp.pool {
		if entry.Tx.ID == id {
			return entry.Tx, true
		}
	}
	return database.Tx{}, false
}

// Contains reports whether the entry with the specified sequence number is
// still in the pool.
func (mp *Mempool) Contains(seq uint64) bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return mp.index(seq) != -1
}

// Delete removes the entry with the specified sequence number. It reports
// whether the entry was found.
func (mp *Mempool) Delete(seq uint64) bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	i := mp.index(seq)
	if i == -1 {
		return false
	}

	mp.pool = append(mp.pool[:i], mp.pool[i+1:]...)
	return true
}

// index finds the position of a sequence number. Entries are appended with
// increasing sequence numbers so the pool is always sorted.
func (mp *Mempool) index(seq uint64) int {
	i, found := slices.BinarySearchFunc(mp.pool, seq, func(e Entry, seq uint64) int {
		return cmp.Compare(e.Seq, seq)
	})
	if !found {
		return -1
	}
	return i
}
