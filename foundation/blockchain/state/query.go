package state

import (
	"errors"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a transaction or block is unknown.
var ErrNotFound = errors.New("not found")

// TxRecord describes where a transaction was found.
type TxRecord struct {
	Tx      database.Tx
	Pending bool      // Still waiting in the mempool.
	BlockID uuid.UUID // Block holding the transaction when not pending.
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryTransaction looks for the transaction in the mempool first and then
// in the committed blocks.
func (s *State) QueryTransaction(id uuid.UUID) (TxRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx, exists := s.mempool.Lookup(id); exists {
		return TxRecord{Tx: tx, Pending: true}, nil
	}

	for _, block := range s.chain {
		for _, tx := range block.Trans {
			if tx.ID == id {
				return TxRecord{Tx: tx, BlockID: block.ID}, nil
			}
		}
	}

	return TxRecord{}, ErrNotFound
}

// QueryBlock returns the committed block with the specified id.
func (s *State) QueryBlock(id uuid.UUID) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, block := range s.chain {
		if block.ID == id {
			return block, nil
		}
	}

	return database.Block{}, ErrNotFound
}
