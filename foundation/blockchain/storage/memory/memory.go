// Package memory implements the ability to read and write blocks and
// transactions to memory using slices.
package memory

import (
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Memory represents the serialization implementation for reading and storing
// the ledger in memory using slices. This implements the database.Storage
// interface.
type Memory struct {
	mu     sync.RWMutex
	txs    []database.TxData
	blocks []database.BlockData
}

// New constructs an Memory value for use.
func New() (*Memory, error) {
	return &Memory{}, nil
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// WriteTx records a submitted transaction.
func (m *Memory) WriteTx(tx database.TxData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.txs = append(m.txs, tx)
	return nil
}

// WriteBlock takes the specified block and stores it in memory.
func (m *Memory) WriteBlock(blockData database.BlockData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = append(m.blocks, blockData)
	return nil
}

// ReadBlocks returns the committed blocks in the order they were written.
func (m *Memory) ReadBlocks() ([]database.BlockData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blocks := make([]database.BlockData, len(m.blocks))
	copy(blocks, m.blocks)
	return blocks, nil
}

// ReadPendingTxs returns the transactions that are not yet in a block.
func (m *Memory) ReadPendingTxs() ([]database.TxData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return database.PendingTxs(m.txs, m.blocks), nil
}
