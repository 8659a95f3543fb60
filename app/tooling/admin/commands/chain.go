// Package commands contains the functionality for the admin tool.
package commands

import (
	"fmt"
	"io"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
)

// Verify loads and validates every committed block, printing one line per
// block from genesis to the tip.
func Verify(w io.Writer, gen genesis.Genesis, strg database.Storage, ev func(v string, args ...any)) error {
	chain, err := database.LoadChain(strg, gen.Difficulty, ev)
	if err != nil {
		return err
	}

	for i, block := range chain {
		hash, err := block.LinkHash()
		if err != nil {
			return err
		}

		miner := "-"
		if !block.IsGenesis() {
			miner = block.MinerAddress().Short()
		}

		fmt.Fprintf(w, "%d  ID: %s  Hash: %s  Txs: %d  Miner: %s\n", i, block.ID, hash, len(block.Trans), miner)
	}

	fmt.Fprintf(w, "\nchain valid: %d blocks\n", len(chain))
	return nil
}

// Pending prints the transactions submitted but not yet committed.
func Pending(w io.Writer, strg database.Storage, ev func(v string, args ...any)) error {
	trans, err := database.LoadPending(strg, ev)
	if err != nil {
		return err
	}

	for _, tx := range trans {
		fmt.Fprintf(w, "%s\n", tx)
	}

	fmt.Fprintf(w, "\npending: %d txs\n", len(trans))
	return nil
}
