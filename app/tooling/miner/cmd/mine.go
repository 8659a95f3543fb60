package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/ardanlabs/powledger/foundation/logger"
	"github.com/ardanlabs/powledger/foundation/node"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	once bool
	idle time.Duration
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine open candidates until interrupted",
	RunE:  mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().BoolVar(&once, "once", false, "Stop after the first committed block.")
	mineCmd.Flags().DurationVar(&idle, "idle", 2*time.Second, "Time to wait when the node has nothing to mine.")
}

func mineRun(cmd *cobra.Command, args []string) error {
	log, err := logger.New("MINER")
	if err != nil {
		return err
	}
	defer log.Sync()

	kp, err := wallet.Load(keyPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := miner{
		log:    log,
		client: node.New(url),
		addr:   kp.Address(),
	}

	log.Infow("startup", "status", "mining", "node", url, "miner", m.addr.Short())

	for {
		committed, err := m.mineOne(ctx)
		switch {
		case errors.Is(err, context.Canceled):
			log.Infow("shutdown", "status", "mining stopped")
			return nil
		case err != nil:
			return err
		}

		if committed && once {
			return nil
		}

		if !committed {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(idle):
			}
		}
	}
}

// =============================================================================

type miner struct {
	log    *zap.SugaredLogger
	client *node.Client
	addr   wallet.Address
}

// mineOne works the first open candidate. It reports false when there was
// nothing to mine or the candidate was retired before the proof landed.
func (m miner) mineOne(ctx context.Context) (bool, error) {
	cands, err := m.client.Candidates(ctx)
	if err != nil {
		return false, err
	}

	if len(cands) == 0 {
		if cands, err = m.client.CreateCandidates(ctx); err != nil {
			return false, err
		}
		if len(cands) == 0 {
			return false, nil
		}
	}

	cand := cands[0]
	ev := func(v string, args ...any) {
		m.log.Infow(fmt.Sprintf(v, args...), "blk", cand.ID)
	}

	res, err := pow.Search(ctx, cand.MiningInput, m.addr, cand.Difficulty, 0, ev)
	if err != nil {
		return false, err
	}

	if err := m.client.SubmitProof(ctx, cand.ID, res.Counter, m.addr); err != nil {
		if node.IsRetry(err) {
			m.log.Infow("mining", "status", "candidate retired", "blk", cand.ID)
			return false, nil
		}
		return false, err
	}

	m.log.Infow("mining", "status", "block committed", "blk", cand.ID, "hash", res.Hash, "attempts", res.Attempts, "duration", res.Duration)
	return true, nil
}
