package accounts_test

import (
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/accounts"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestRewards(t *testing.T) {
	type table struct {
		name    string
		credits []wallet.Address
		reward  uint64
		final   map[wallet.Address]uint64
	}

	tt := []table{
		{
			name:    "single",
			credits: []wallet.Address{"aa"},
			reward:  20,
			final:   map[wallet.Address]uint64{"aa": 20},
		},
		{
			name:    "many",
			credits: []wallet.Address{"aa", "bb", "aa", "cc", "aa"},
			reward:  20,
			final:   map[wallet.Address]uint64{"aa": 60, "bb": 20, "cc": 20},
		},
	}

	t.Log("Given the need to credit mining rewards.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of rewards.", testID)
			{
				f := func(t *testing.T) {
					act := accounts.New()

					for _, addr := range tst.credits {
						act.Credit(addr, tst.reward)
					}

					sheet := act.Copy()
					if len(sheet) != len(tst.final) {
						t.Fatalf("\t%s\tTest %d:\tShould have %d accounts, got %d.", failed, testID, len(tst.final), len(sheet))
					}

					for addr, exp := range tst.final {
						if got := act.Balance(addr); got != exp {
							t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, got)
							t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, exp)
							t.Fatalf("\t%s\tTest %d:\tShould get back the right balance for %s.", failed, testID, addr)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould get back the right balances.", success, testID)

					sheet["zz"] = 1000
					if act.Balance("zz") != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould not share the copy.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould not share the copy.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}
