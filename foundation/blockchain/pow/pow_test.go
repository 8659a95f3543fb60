package pow_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/google/uuid"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func noop(v string, args ...any) {}

func TestSearch(t *testing.T) {
	from, err := wallet.Generate()
	if err != nil {
		t.Fatalf("Should be able to generate a key pair: %s", err)
	}
	miner, err := wallet.Generate()
	if err != nil {
		t.Fatalf("Should be able to generate a key pair: %s", err)
	}

	tx, err := database.NewTx(uuid.New(), from.PublicKey, miner.PublicKey, 5)
	if err != nil {
		t.Fatalf("Should be able to construct a transaction: %s", err)
	}
	if err := tx.Sign(from.PrivateKey); err != nil {
		t.Fatalf("Should be able to sign a transaction: %s", err)
	}

	block, err := database.NewBlock([]database.Tx{tx}, database.GenesisPrevHash)
	if err != nil {
		t.Fatalf("Should be able to construct a block: %s", err)
	}

	input, err := block.MiningInput()
	if err != nil {
		t.Fatalf("Should be able to get the mining input: %s", err)
	}

	t.Log("Given the need to search for a proof of work.")
	{
		t.Logf("\tTest 0:\tWhen searching at difficulty 4.")
		{
			res, err := pow.Search(context.Background(), input, miner.Address(), 4, 0, noop)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould find a counter: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould find a counter.", success)

			if !strings.HasPrefix(res.Hash, "0000") {
				t.Fatalf("\t%s\tTest 0:\tShould find a hash starting with 0000: %s", failed, res.Hash)
			}
			t.Logf("\t%s\tTest 0:\tShould find a hash starting with 0000.", success)

			if err := block.CheckProofOfWork(res.Counter, miner.PublicKey, 4); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be accepted by the block: %v", failed, err)
			}
			if got, _ := block.Hash(database.IncludeAll); got != res.Hash {
				t.Fatalf("\t%s\tTest 0:\tShould match the block hash.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould be accepted by the block.", success)
		}

		t.Logf("\tTest 1:\tWhen the context is cancelled.")
		{
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := pow.Search(ctx, input, miner.Address(), 64, 0, noop)
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("\t%s\tTest 1:\tShould stop searching: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould stop searching.", success)
		}

		t.Logf("\tTest 2:\tWhen the mining input is not base64.")
		{
			if _, err := pow.Search(context.Background(), "!!", miner.Address(), 1, 0, noop); err == nil {
				t.Fatalf("\t%s\tTest 2:\tShould reject the input.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould reject the input.", success)
		}
	}
}
