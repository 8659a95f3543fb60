// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"errors"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/accounts"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
	"github.com/google/uuid"
)

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for building candidates in the background.
type Worker interface {
	Shutdown()
	SignalBuildCandidates()
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Genesis   genesis.Genesis
	Storage   database.Storage
	EvHandler EventHandler
}

// candidate is an open block along with the mempool entries it reserves.
type candidate struct {
	block    database.Block
	reserved []uint64
}

// State manages the blockchain database.
type State struct {
	evHandler EventHandler
	mu        sync.Mutex

	genesis  genesis.Genesis
	storage  database.Storage
	mempool  *mempool.Mempool
	accounts *accounts.Accounts

	chain   []database.Block
	open    []candidate
	retired map[uuid.UUID]struct{}

	Worker Worker
}

// New constructs a new blockchain for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.Storage == nil {
		return nil, errors.New("storage is required")
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, err
	}

	// Load all existing blocks from storage into memory for processing.
	chain, err := database.LoadChain(cfg.Storage, cfg.Genesis.Difficulty, ev)
	if err != nil {
		return nil, err
	}

	// Transactions submitted before the last shutdown go back in the mempool.
	pending, err := database.LoadPending(cfg.Storage, ev)
	if err != nil {
		return nil, err
	}

	mp := mempool.New()
	for _, tx := range pending {
		mp.Add(tx)
	}

	// Replay the rewards and remember every block id already used.
	accts := accounts.New()
	retired := make(map[uuid.UUID]struct{})
	for _, block := range chain[1:] {
		accts.Credit(block.MinerAddress(), cfg.Genesis.MiningReward)
		retired[block.ID] = struct{}{}
	}

	ev("state: New: blocks[%d]: pending[%d]", len(chain)-1, len(pending))

	// Create the State to provide support for managing the blockchain.
	state := State{
		evHandler: ev,

		genesis:  cfg.Genesis,
		storage:  cfg.Storage,
		mempool:  mp,
		accounts: accts,

		chain:   chain,
		retired: retired,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all background activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	// Make sure the database file is properly closed.
	return s.storage.Close()
}

// signalWorker asks the worker, when one is registered, to build candidates.
func (s *State) signalWorker() {
	if s.Worker != nil {
		s.Worker.SignalBuildCandidates()
	}
}
