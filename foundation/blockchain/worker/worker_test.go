package worker_test

import (
	"testing"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/ardanlabs/powledger/foundation/blockchain/worker"
	"github.com/ardanlabs/powledger/foundation/logger"
	"github.com/google/uuid"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_BuildCandidates(t *testing.T) {
	log, err := logger.New("TEST")
	if err != nil {
		t.Fatalf("Should be able to construct a logger: %s", err)
	}
	defer log.Sync()

	strg, err := memory.New()
	if err != nil {
		t.Fatalf("Should be able to construct storage: %s", err)
	}

	ev := func(v string, args ...any) {
		log.Infof(v, args...)
	}

	st, err := state.New(state.Config{
		Genesis:   genesis.Default(),
		Storage:   strg,
		EvHandler: ev,
	})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %s", err)
	}

	worker.Run(st, ev)
	defer st.Shutdown()

	kp, err := wallet.Generate()
	if err != nil {
		t.Fatalf("Should be able to generate a key pair: %s", err)
	}

	t.Log("Given the need to keep candidates available to miners.")
	{
		t.Logf("\tTest 0:\tWhen a transaction is submitted.")
		{
			tx, err := database.NewTx(uuid.New(), kp.PublicKey, kp.PublicKey, 10)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct a transaction: %v", failed, err)
			}
			if err := tx.Sign(kp.PrivateKey); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to sign a transaction: %v", failed, err)
			}
			if err := st.AddTransaction(tx); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to add a transaction: %v", failed, err)
			}

			deadline := time.Now().Add(5 * time.Second)
			for len(st.RetrieveCandidates()) == 0 {
				if time.Now().After(deadline) {
					t.Fatalf("\t%s\tTest 0:\tShould build a candidate in the background.", failed)
				}
				time.Sleep(10 * time.Millisecond)
			}
			t.Logf("\t%s\tTest 0:\tShould build a candidate in the background.", success)

			cands := st.RetrieveCandidates()
			if len(cands) != 1 || cands[0].Trans[0].ID != tx.ID {
				t.Fatalf("\t%s\tTest 0:\tShould hold the submitted transaction.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould hold the submitted transaction.", success)
		}
	}
}
