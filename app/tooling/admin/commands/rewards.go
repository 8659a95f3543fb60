package commands

import (
	"fmt"
	"io"

	"github.com/ardanlabs/powledger/foundation/blockchain/accounts"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
)

// Rewards replays the committed chain and prints the reward earned by
// each miner.
func Rewards(w io.Writer, gen genesis.Genesis, strg database.Storage, ev func(v string, args ...any)) error {
	chain, err := database.LoadChain(strg, gen.Difficulty, ev)
	if err != nil {
		return err
	}

	acts := accounts.New()
	for _, block := range chain[1:] {
		acts.Credit(block.MinerAddress(), gen.MiningReward)
	}

	for addr, balance := range acts.Copy() {
		fmt.Fprintf(w, "Account: %s  Reward: %d\n", addr.Short(), balance)
	}

	return nil
}
