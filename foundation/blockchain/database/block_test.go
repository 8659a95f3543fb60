package database_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/google/uuid"
)

const difficulty = 4

// findCounter searches for the first counter that does or does not solve
// the difficulty for the block and miner.
func findCounter(t *testing.T, b database.Block, miner wallet.Address, solved bool) uint64 {
	t.Helper()

	input, err := b.Bytes(database.IncludeNone)
	if err != nil {
		t.Fatalf("Should be able to get the block bytes: %s", err)
	}

	for counter := uint64(0); counter < 50_000_000; counter++ {
		hash := database.MinerHash(input, miner, counter)
		if database.SolvesDifficulty(hash, difficulty) == solved {
			return counter
		}
	}

	t.Fatalf("Should be able to find a counter.")
	return 0
}

func newBlock(t *testing.T, kps []wallet.KeyPair, n int) database.Block {
	t.Helper()

	trans := make([]database.Tx, n)
	for i := range trans {
		trans[i] = signedTx(t, kps[0], kps[1], uint64(i+1))
	}

	b, err := database.NewBlock(trans, database.GenesisPrevHash)
	if err != nil {
		t.Fatalf("Should be able to construct a block: %s", err)
	}

	return b
}

// =============================================================================

func Test_Genesis(t *testing.T) {
	t.Log("Given the need for a well known genesis block.")
	{
		t.Logf("\tTest 0:\tWhen constructing the genesis block.")
		{
			sum := sha256.Sum256([]byte{0})
			if hex.EncodeToString(sum[:]) != database.GenesisPrevHash {
				t.Fatalf("\t%s\tTest 0:\tShould have the hash of a zero byte as previous hash.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould have the hash of a zero byte as previous hash.", success)

			g := database.GenesisBlock()
			if len(g.Trans) != 0 || g.PrevBlockHash != database.GenesisPrevHash || !g.IsGenesis() {
				t.Fatalf("\t%s\tTest 0:\tShould have no transactions.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould have no transactions.", success)

			h1, err := g.LinkHash()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to hash the genesis block: %v", failed, err)
			}
			h2, _ := database.GenesisBlock().LinkHash()
			if h1 != h2 {
				t.Fatalf("\t%s\tTest 0:\tShould always produce the same genesis hash.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould always produce the same genesis hash.", success)
		}
	}
}

func Test_BlockBytes(t *testing.T) {
	kps := newKeys(t, 3)
	b := newBlock(t, kps, 2)
	b.ProofOfWork = 1234
	b.Miner = kps[2].PublicKey

	prev, _ := hex.DecodeString(database.GenesisPrevHash)

	var base bytes.Buffer
	for _, tx := range b.Trans {
		base.WriteString(tx.Canonical())
	}
	base.Write(prev)
	base.WriteString(b.ID.String())

	miner := []byte(kps[2].Address())
	pow := []byte(strconv.FormatUint(1234, 10))

	tt := []struct {
		inc database.Include
		exp []byte
	}{
		{database.IncludeNone, base.Bytes()},
		{database.IncludePOW, append(append([]byte{}, base.Bytes()...), pow...)},
		{database.IncludeMiner, append(append([]byte{}, miner...), base.Bytes()...)},
		{database.IncludeAll, append(append(append([]byte{}, miner...), base.Bytes()...), pow...)},
	}

	t.Log("Given the need for a fixed byte form of a block.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen including %s.", testID, tst.inc)
			{
				f := func(t *testing.T) {
					got, err := b.Bytes(tst.inc)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to get the bytes: %v", failed, testID, err)
					}

					if !bytes.Equal(got, tst.exp) {
						t.Fatalf("\t%s\tTest %d:\tShould get back the expected bytes.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get back the expected bytes.", success, testID)

					h1, _ := b.Hash(tst.inc)
					h2, _ := b.Hash(tst.inc)
					sum := sha256.Sum256(tst.exp)
					if h1 != h2 || h1 != hex.EncodeToString(sum[:]) {
						t.Fatalf("\t%s\tTest %d:\tShould get back a deterministic hash.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get back a deterministic hash.", success, testID)
				}

				t.Run(tst.inc.String(), f)
			}
		}

		t.Logf("\tTest %d:\tWhen getting the mining input.", len(tt))
		{
			input, err := b.MiningInput()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to get the mining input: %v", failed, len(tt), err)
			}

			data, err := base64.StdEncoding.DecodeString(input)
			if err != nil || !bytes.Equal(data, base.Bytes()) {
				t.Fatalf("\t%s\tTest %d:\tShould encode the bytes without pow and miner.", failed, len(tt))
			}
			t.Logf("\t%s\tTest %d:\tShould encode the bytes without pow and miner.", success, len(tt))

			full, _ := b.Hash(database.IncludeAll)
			if got := database.MinerHash(data, kps[2].Address(), 1234); got != full {
				t.Fatalf("\t%s\tTest %d:\tShould let a miner reproduce the full hash.", failed, len(tt))
			}
			t.Logf("\t%s\tTest %d:\tShould let a miner reproduce the full hash.", success, len(tt))
		}

		t.Logf("\tTest %d:\tWhen rebuilding a block from identical fields.", len(tt)+1)
		{
			cpy := database.Block{
				ID:            uuid.MustParse(b.ID.String()),
				Trans:         append([]database.Tx{}, b.Trans...),
				PrevBlockHash: b.PrevBlockHash,
				ProofOfWork:   b.ProofOfWork,
				Miner:         kps[2].PublicKey,
			}
			h1, _ := b.Hash(database.IncludeAll)
			h2, _ := cpy.Hash(database.IncludeAll)
			if h1 != h2 {
				t.Fatalf("\t%s\tTest %d:\tShould get back the same hash.", failed, len(tt)+1)
			}
			t.Logf("\t%s\tTest %d:\tShould get back the same hash.", success, len(tt)+1)
		}
	}
}

func Test_ProofOfWork(t *testing.T) {
	kps := newKeys(t, 3)
	miner := kps[2]

	t.Log("Given the need to validate a proof of work.")
	{
		t.Logf("\tTest 0:\tWhen handling a counter that solves the difficulty.")
		{
			b := newBlock(t, kps, 3)
			counter := findCounter(t, b, miner.Address(), true)

			if err := b.CheckProofOfWork(counter, miner.PublicKey, difficulty); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept the proof of work: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould accept the proof of work.", success)

			hash, _ := b.Hash(database.IncludeAll)
			if !strings.HasPrefix(hash, "0000") {
				t.Fatalf("\t%s\tTest 0:\tShould have a hash starting with 0000: %s", failed, hash)
			}
			if b.ProofOfWork != counter || !b.Miner.Equal(miner.PublicKey) {
				t.Fatalf("\t%s\tTest 0:\tShould keep the winning counter and miner.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould keep the winning counter and miner.", success)
		}

		t.Logf("\tTest 1:\tWhen handling a counter that does not solve the difficulty.")
		{
			b := newBlock(t, kps, 1)
			counter := findCounter(t, b, miner.Address(), false)

			err := b.CheckProofOfWork(counter, miner.PublicKey, difficulty)
			if !errors.Is(err, database.ErrProofOfWorkRejected) {
				t.Fatalf("\t%s\tTest 1:\tShould reject the proof of work: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould reject the proof of work.", success)

			var pe *database.POWError
			if !errors.As(err, &pe) || pe.Counter != counter || pe.Prefix != "0000" || strings.HasPrefix(pe.Hash, "0000") {
				t.Fatalf("\t%s\tTest 1:\tShould describe the attempt: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould describe the attempt.", success)

			if b.ProofOfWork != 0 || b.Miner != nil {
				t.Fatalf("\t%s\tTest 1:\tShould roll back the counter and miner.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould roll back the counter and miner.", success)
		}

		t.Logf("\tTest 2:\tWhen comparing acceptance with the hash prefix.")
		{
			b := newBlock(t, kps, 1)
			input, _ := b.Bytes(database.IncludeNone)
			for counter := uint64(0); counter < 200; counter++ {
				exp := strings.HasPrefix(database.MinerHash(input, miner.Address(), counter), "0000")
				err := b.CheckProofOfWork(counter, miner.PublicKey, difficulty)
				if exp != (err == nil) {
					t.Fatalf("\t%s\tTest 2:\tShould accept only hashes with the prefix, counter %d.", failed, counter)
				}
				b.ProofOfWork, b.Miner = 0, nil
			}
			t.Logf("\t%s\tTest 2:\tShould accept only hashes with the prefix.", success)
		}

		t.Logf("\tTest 3:\tWhen the block holds an invalid transaction.")
		{
			b := newBlock(t, kps, 2)
			counter := findCounter(t, b, miner.Address(), true)
			b.Trans[1].Amount++

			err := b.CheckProofOfWork(counter, miner.PublicKey, difficulty)
			if !errors.Is(err, database.ErrInvalidBlock) {
				t.Fatalf("\t%s\tTest 3:\tShould refuse the check: %v", failed, err)
			}
			if b.ProofOfWork != 0 || b.Miner != nil {
				t.Fatalf("\t%s\tTest 3:\tShould not touch the counter and miner.", failed)
			}
			t.Logf("\t%s\tTest 3:\tShould refuse the check without touching the block.", success)
		}
	}
}

func Test_BlockData(t *testing.T) {
	kps := newKeys(t, 3)
	b := newBlock(t, kps, 2)

	counter := findCounter(t, b, kps[2].Address(), true)
	if err := b.CheckProofOfWork(counter, kps[2].PublicKey, difficulty); err != nil {
		t.Fatalf("Should accept the proof of work: %s", err)
	}

	t.Log("Given the need to serialize blocks.")
	{
		t.Logf("\tTest 0:\tWhen converting a mined block.")
		{
			bd, err := database.NewBlockData(b)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to serialize: %v", failed, err)
			}

			got, err := database.ToBlock(bd)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to deserialize: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to round trip the block.", success)

			h1, _ := b.Hash(database.IncludeAll)
			h2, _ := got.Hash(database.IncludeAll)
			if h1 != h2 || !got.IsValid() {
				t.Fatalf("\t%s\tTest 0:\tShould get back an identical valid block.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould get back an identical valid block.", success)

			if err := got.ValidateMined(database.GenesisBlock(), difficulty); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject a parent it was not built on.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a parent it was not built on.", success)
		}

		t.Logf("\tTest 1:\tWhen the recorded hash was tampered with.")
		{
			bd, _ := database.NewBlockData(b)
			bd.ProofOfWork++

			if _, err := database.ToBlock(bd); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould detect the mismatch.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould detect the mismatch.", success)
		}
	}
}
