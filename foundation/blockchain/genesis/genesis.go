// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Genesis represents the genesis file. These settings are fixed for the life
// of a chain.
type Genesis struct {
	Date          time.Time `json:"date"`
	Difficulty    uint      `json:"difficulty"`      // How many leading hex 0's a block hash needs.
	TransPerBlock uint      `json:"trans_per_block"` // The maximum number of transactions that can be in a block.
	MiningReward  uint64    `json:"mining_reward"`   // Reward for mining a block.
}

// Default returns the settings used when no genesis file is provided.
func Default() Genesis {
	return Genesis{
		Date:          time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC),
		Difficulty:    4,
		TransPerBlock: 3,
		MiningReward:  20,
	}
}

// Validate checks the settings can drive a chain.
func (g Genesis) Validate() error {
	if g.Difficulty == 0 || g.Difficulty > 64 {
		return fmt.Errorf("difficulty %d out of range 1-64", g.Difficulty)
	}
	if g.TransPerBlock == 0 {
		return errors.New("trans_per_block must be at least 1")
	}
	return nil
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis %q: %w", path, err)
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, fmt.Errorf("genesis %q: %w", path, err)
	}

	return genesis, nil
}
