package state

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// AddTransaction accepts a signed transaction for inclusion in a future
// block. The transaction is not checked for duplicates, callers that care
// use QueryTransaction first.
func (s *State) AddTransaction(tx database.Tx) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	{
		if err := s.storage.WriteTx(tx.TextView()); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("writing tx[%s]: %w", tx.ID, err)
		}

		entry := s.mempool.Add(tx)
		s.evHandler("state: AddTransaction: tx[%s]: seq[%d]: mempool[%d]", tx, entry.Seq, s.mempool.Count())
	}
	s.mu.Unlock()

	s.signalWorker()

	return nil
}
