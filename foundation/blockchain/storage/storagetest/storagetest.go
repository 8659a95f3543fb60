// Package storagetest provides a common set of checks every implementation
// of database.Storage must pass.
package storagetest

import (
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// Opener constructs the storage under test. Calling it again with the same
// test must return a storage over the same data when the implementation
// persists.
type Opener func() (database.Storage, error)

// Run writes a set of transactions and blocks and checks they are read back
// in order, with pending transactions computed correctly. When persistent is
// true the storage is closed and reopened before reading again.
func Run(t *testing.T, open Opener, persistent bool) {
	t.Helper()

	txA := database.TxData{ID: "8a3e4c9b-2f6d-4f0e-9b1a-6c2d8e7f5a01", From: "aa", To: "bb", Amount: 10, Signature: "01"}
	txB := database.TxData{ID: "1f2e3d4c-5b6a-4978-8695-a4b3c2d1e0f9", From: "aa", To: "cc", Amount: 20, Signature: "02"}
	txC := database.TxData{ID: "0c9d8e7f-6a5b-4c3d-9e2f-1a0b9c8d7e6f", From: "bb", To: "cc", Amount: 30, Signature: "03"}

	block := database.BlockData{
		Hash:        "00001111",
		ID:          "5b0c4e2a-9d7f-4a31-8e6b-2c1d0f9e8a7b",
		PrevHash:    database.GenesisPrevHash,
		ProofOfWork: 42,
		Miner:       "dd",
		Trans:       []database.TxData{txA, txC},
	}

	t.Log("Given the need to persist the ledger.")
	{
		t.Logf("\tTest 0:\tWhen writing transactions and a block.")
		{
			strg, err := open()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to open the storage: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to open the storage.", success)

			for _, tx := range []database.TxData{txA, txB, txA, txC} {
				if err := strg.WriteTx(tx); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to write a transaction: %v", failed, err)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould be able to write transactions.", success)

			pending, err := strg.ReadPendingTxs()
			if err != nil || len(pending) != 4 {
				t.Fatalf("\t%s\tTest 0:\tShould have 4 pending transactions: %d %v", failed, len(pending), err)
			}
			t.Logf("\t%s\tTest 0:\tShould have 4 pending transactions.", success)

			if err := strg.WriteBlock(block); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to write a block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to write a block.", success)

			check(t, strg, block, []database.TxData{txB, txA})

			if persistent {
				if err := strg.Close(); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to close the storage: %v", failed, err)
				}

				strg, err = open()
				if err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to reopen the storage: %v", failed, err)
				}
				t.Logf("\t%s\tTest 0:\tShould be able to reopen the storage.", success)

				check(t, strg, block, []database.TxData{txB, txA})
			}

			if err := strg.Close(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to close the storage: %v", failed, err)
			}
		}
	}
}

func check(t *testing.T, strg database.Storage, block database.BlockData, pending []database.TxData) {
	t.Helper()

	blocks, err := strg.ReadBlocks()
	if err != nil {
		t.Fatalf("\t%s\tTest 0:\tShould be able to read the blocks: %v", failed, err)
	}
	if len(blocks) != 1 || blocks[0].ID != block.ID || blocks[0].Hash != block.Hash || len(blocks[0].Trans) != len(block.Trans) {
		t.Fatalf("\t%s\tTest 0:\tShould get back the block: %+v", failed, blocks)
	}
	t.Logf("\t%s\tTest 0:\tShould get back the block.", success)

	got, err := strg.ReadPendingTxs()
	if err != nil {
		t.Fatalf("\t%s\tTest 0:\tShould be able to read the pending transactions: %v", failed, err)
	}
	if len(got) != len(pending) {
		t.Fatalf("\t%s\tTest 0:\tShould have %d pending transactions, got %d.", failed, len(pending), len(got))
	}
	for i := range pending {
		if got[i] != pending[i] {
			t.Logf("\t%s\tTest 0:\tgot: %+v", failed, got[i])
			t.Logf("\t%s\tTest 0:\texp: %+v", failed, pending[i])
			t.Fatalf("\t%s\tTest 0:\tShould get back the pending transactions in order.", failed)
		}
	}
	t.Logf("\t%s\tTest 0:\tShould get back the pending transactions in order.", success)
}
