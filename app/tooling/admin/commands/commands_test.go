package commands_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ardanlabs/powledger/app/tooling/admin/commands"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/google/uuid"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestCommands(t *testing.T) {
	t.Log("Given the need to inspect ledger storage offline.")
	{
		gen := genesis.Default()
		ev := func(v string, args ...any) {}

		strg, err := memory.New()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to open storage : %v", failed, err)
		}

		kp, err := wallet.Generate()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a key pair : %v", failed, err)
		}

		var trans []database.Tx
		for i := range 2 {
			tx, err := database.NewTx(uuid.New(), kp.PublicKey, kp.PublicKey, uint64(i+1))
			if err != nil {
				t.Fatalf("\t%s\tShould be able to construct a tx : %v", failed, err)
			}
			if err := tx.Sign(kp.PrivateKey); err != nil {
				t.Fatalf("\t%s\tShould be able to sign a tx : %v", failed, err)
			}
			if err := strg.WriteTx(tx.TextView()); err != nil {
				t.Fatalf("\t%s\tShould be able to write a tx : %v", failed, err)
			}
			trans = append(trans, tx)
		}

		prev, err := database.GenesisBlock().LinkHash()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to hash genesis : %v", failed, err)
		}

		block, err := database.NewBlock(trans[:1], prev)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to build a block : %v", failed, err)
		}

		input, err := block.MiningInput()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to get the mining input : %v", failed, err)
		}

		res, err := pow.Search(context.Background(), input, kp.Address(), gen.Difficulty, 0, ev)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to find a proof : %v", failed, err)
		}

		if err := block.CheckProofOfWork(res.Counter, kp.PublicKey, gen.Difficulty); err != nil {
			t.Fatalf("\t%s\tShould be able to accept the proof : %v", failed, err)
		}

		blockData, err := database.NewBlockData(block)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to encode the block : %v", failed, err)
		}
		if err := strg.WriteBlock(blockData); err != nil {
			t.Fatalf("\t%s\tShould be able to write the block : %v", failed, err)
		}

		t.Logf("\tTest 0:\tWhen verifying the chain.")
		{
			var buf bytes.Buffer
			if err := commands.Verify(&buf, gen, strg, ev); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould verify the chain : %v", failed, err)
			}
			if !strings.Contains(buf.String(), "chain valid: 2 blocks") {
				t.Fatalf("\t%s\tTest 0:\tShould report 2 blocks : %s", failed, buf.String())
			}
			t.Logf("\t%s\tTest 0:\tShould report 2 valid blocks.", success)
		}

		t.Logf("\tTest 1:\tWhen listing pending transactions.")
		{
			var buf bytes.Buffer
			if err := commands.Pending(&buf, strg, ev); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould list pending txs : %v", failed, err)
			}
			if !strings.Contains(buf.String(), "pending: 1 txs") || !strings.Contains(buf.String(), trans[1].ID.String()) {
				t.Fatalf("\t%s\tTest 1:\tShould list only the uncommitted tx : %s", failed, buf.String())
			}
			t.Logf("\t%s\tTest 1:\tShould list only the uncommitted tx.", success)
		}

		t.Logf("\tTest 2:\tWhen tallying rewards.")
		{
			var buf bytes.Buffer
			if err := commands.Rewards(&buf, gen, strg, ev); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould tally rewards : %v", failed, err)
			}
			if !strings.Contains(buf.String(), "Reward: 20") {
				t.Fatalf("\t%s\tTest 2:\tShould credit the miner 20 : %s", failed, buf.String())
			}
			t.Logf("\t%s\tTest 2:\tShould credit the miner 20.", success)
		}
	}
}
