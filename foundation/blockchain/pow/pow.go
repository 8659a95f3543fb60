// Package pow performs the proof of work search a miner runs against a
// candidate block. The ledger never calls it, it only validates results.
package pow

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
)

// reportInterval is the number of attempts between progress events.
const reportInterval = 1_000_000

// Result represents a counter that solved the difficulty.
type Result struct {
	Counter  uint64
	Hash     string
	Attempts uint64
	Duration time.Duration
}

// Search increments the counter from start until the hash of the mining
// input, miner address and counter meets the difficulty or the context is
// done.
func Search(ctx context.Context, miningInput string, miner wallet.Address, difficulty uint, start uint64, ev func(v string, args ...any)) (Result, error) {
	ev("pow: Search: started: start[%d]: difficulty[%d]", start, difficulty)
	defer ev("pow: Search: completed")

	data, err := base64.StdEncoding.DecodeString(miningInput)
	if err != nil {
		return Result{}, fmt.Errorf("decoding mining input: %w", err)
	}

	t := time.Now()

	counter := start
	var attempts uint64
	for {
		attempts++
		if attempts%reportInterval == 0 {
			ev("pow: Search: attempts[%d]", attempts)

			// Did we timeout trying to solve the problem.
			if err := ctx.Err(); err != nil {
				ev("pow: Search: CANCELLED")
				return Result{}, err
			}
		}

		hash := database.MinerHash(data, miner, counter)
		if !database.SolvesDifficulty(hash, difficulty) {
			counter++
			continue
		}

		ev("pow: Search: SOLVED: counter[%d]: hash[%s]: attempts[%d]", counter, hash, attempts)

		res := Result{
			Counter:  counter,
			Hash:     hash,
			Attempts: attempts,
			Duration: time.Since(t),
		}
		return res, nil
	}
}
