package state

import (
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
	"github.com/google/uuid"
)

// Set of errors produced by the candidate lifecycle.
var (
	ErrNotEnoughTransactions = errors.New("not enough transactions to build a candidate")
	ErrCandidateNotFound     = errors.New("candidate does not exist")
	ErrCandidateRetired      = errors.New("candidate is no longer valid")
	ErrCommitInconsistency   = errors.New("candidate transactions missing from the mempool")
)

// IsFatal reports whether an error returned by FindCandidate or AcceptProof
// means the request can't succeed by retrying with a fresh candidate.
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, ErrCandidateRetired)
}

// =============================================================================

// CreateCandidates partitions the mempool transactions that no open candidate
// reserves into new candidates built on the chain tip. It returns the
// candidates it created, none when every transaction is already reserved.
func (s *State) CreateCandidates() ([]database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reserved := make(map[uint64]struct{})
	for _, cand := range s.open {
		for _, seq := range cand.reserved {
			reserved[seq] = struct{}{}
		}
	}

	var free []mempool.Entry
	for _, entry := range s.mempool.Copy() {
		if _, exists := reserved[entry.Seq]; !exists {
			free = append(free, entry)
		}
	}

	if len(free) == 0 {
		s.evHandler("state: CreateCandidates: %s: mempool[%d]: open[%d]", ErrNotEnoughTransactions, s.mempool.Count(), len(s.open))
		return nil, nil
	}

	tipHash, err := s.chain[len(s.chain)-1].LinkHash()
	if err != nil {
		return nil, fmt.Errorf("hashing tip: %w", err)
	}

	size := int(s.genesis.TransPerBlock)

	var created []database.Block
	for start := 0; start < len(free); start += size {
		group := free[start:min(start+size, len(free))]

		trans := make([]database.Tx, len(group))
		seqs := make([]uint64, len(group))
		for i, entry := range group {
			trans[i] = entry.Tx
			seqs[i] = entry.Seq
		}

		block, err := database.NewBlock(trans, tipHash)
		if err != nil {
			return created, err
		}

		s.open = append(s.open, candidate{block: block, reserved: seqs})
		s.retired[block.ID] = struct{}{}
		created = append(created, block)

		s.evHandler("state: CreateCandidates: blk[%s]: txs[%d]: prev[%s]", block.ID, len(trans), tipHash)
	}

	return created, nil
}

// FindCandidate returns the open candidate with the specified id. A candidate
// that existed but was superseded gives ErrCandidateRetired, an id that was
// never issued gives ErrCandidateNotFound.
func (s *State) FindCandidate(id uuid.UUID) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.findCandidate(id)
	if err != nil {
		return database.Block{}, err
	}

	return s.open[i].block, nil
}

// AcceptProof validates the counter and miner against the open candidate
// with the specified id. On success the candidate is committed to the chain,
// its transactions leave the mempool, every other candidate is retired and
// the miner is credited the mining reward.
func (s *State) AcceptProof(id uuid.UUID, counter uint64, miner *rsa.PublicKey) (database.Block, error) {
	block, err := s.acceptProof(id, counter, miner)
	if err != nil {
		return database.Block{}, err
	}

	// Fresh candidates are needed for whatever is left in the mempool.
	s.signalWorker()

	return block, nil
}

func (s *State) acceptProof(id uuid.UUID, counter uint64, miner *rsa.PublicKey) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.findCandidate(id)
	if err != nil {
		return database.Block{}, err
	}
	cand := s.open[i]

	for _, seq := range cand.reserved {
		if !s.mempool.Contains(seq) {
			return database.Block{}, fmt.Errorf("%w: blk[%s]: seq[%d]", ErrCommitInconsistency, id, seq)
		}
	}

	// Work on a copy so the open candidate stays untouched until the block
	// is persisted.
	block := cand.block
	if err := block.CheckProofOfWork(counter, miner, s.genesis.Difficulty); err != nil {
		s.evHandler("state: AcceptProof: blk[%s]: %s", id, err)
		return database.Block{}, err
	}

	blockData, err := database.NewBlockData(block)
	if err != nil {
		return database.Block{}, err
	}

	if err := s.storage.WriteBlock(blockData); err != nil {
		return database.Block{}, fmt.Errorf("writing blk[%s]: %w", id, err)
	}

	s.chain = append(s.chain, block)

	for _, seq := range cand.reserved {
		s.mempool.Delete(seq)
	}

	for _, other := range s.open {
		if other.block.ID != id {
			s.evHandler("state: AcceptProof: blk[%s]: retired", other.block.ID)
		}
	}
	s.open = nil

	minerAddr := block.MinerAddress()
	s.accounts.Credit(minerAddr, s.genesis.MiningReward)
	balance := s.accounts.Balance(minerAddr)

	s.evHandler("state: AcceptProof: blk[%s]: committed: hash[%s]: miner[%s]: balance[%d]: mempool[%d]",
		id, blockData.Hash, minerAddr.Short(), balance, s.mempool.Count())

	return block, nil
}

// findCandidate locates an open candidate. It must be called with the lock
// held.
func (s *State) findCandidate(id uuid.UUID) (int, error) {
	for i, cand := range s.open {
		if cand.block.ID == id {
			return i, nil
		}
	}

	if _, exists := s.retired[id]; exists {
		return 0, fmt.Errorf("%w: blk[%s]", ErrCandidateRetired, id)
	}

	return 0, fmt.Errorf("%w: blk[%s]", ErrCandidateNotFound, id)
}
