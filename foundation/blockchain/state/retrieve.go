package state

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
)

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain[len(s.chain)-1]
}

// RetrieveChain returns a copy of the chain, genesis first.
func (s *State) RetrieveChain() []database.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	chain := make([]database.Block, len(s.chain))
	copy(chain, s.chain)
	return chain
}

// RetrieveMempool returns a copy of the mempool in submission order.
func (s *State) RetrieveMempool() []database.Tx {
	entries := s.mempool.Copy()

	trans := make([]database.Tx, len(entries))
	for i, entry := range entries {
		trans[i] = entry.Tx
	}
	return trans
}

// RetrieveCandidates returns a copy of the open candidates in the order they
// were created.
func (s *State) RetrieveCandidates() []database.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	blocks := make([]database.Block, len(s.open))
	for i, cand := range s.open {
		blocks[i] = cand.block
	}
	return blocks
}

// RetrieveRewards returns a copy of the rewards credited to each miner.
func (s *State) RetrieveRewards() map[wallet.Address]uint64 {
	return s.accounts.Copy()
}
