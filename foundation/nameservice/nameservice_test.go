package nameservice_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/ardanlabs/powledger/foundation/nameservice"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestLookup(t *testing.T) {
	t.Log("Given the need to name addresses from a folder of key files.")
	{
		root := t.TempDir()

		kp, err := wallet.Generate()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a key pair : %v", failed, err)
		}
		if err := kp.Save(filepath.Join(root, "kennedy.rsa")); err != nil {
			t.Fatalf("\t%s\tShould be able to save the key pair : %v", failed, err)
		}
		if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("ignored"), 0600); err != nil {
			t.Fatalf("\t%s\tShould be able to write a stray file : %v", failed, err)
		}

		ns, err := nameservice.New(root)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the name service : %v", failed, err)
		}

		t.Logf("\tTest 0:\tWhen looking up addresses.")
		{
			if name := ns.Lookup(kp.Address()); name != "kennedy" {
				t.Fatalf("\t%s\tTest 0:\tShould name the known address : got %q", failed, name)
			}
			t.Logf("\t%s\tTest 0:\tShould name the known address.", success)

			addr, exists := ns.Address("kennedy")
			if !exists || addr != kp.Address() {
				t.Fatalf("\t%s\tTest 0:\tShould resolve the name back to the address.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould resolve the name back to the address.", success)

			other, err := wallet.Generate()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to generate a key pair : %v", failed, err)
			}
			if name := ns.Lookup(other.Address()); name != other.Address().Short() {
				t.Fatalf("\t%s\tTest 0:\tShould fall back to the short address : got %q", failed, name)
			}
			t.Logf("\t%s\tTest 0:\tShould fall back to the short address.", success)

			if len(ns.Copy()) != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould only hold key files.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould only hold key files.", success)
		}
	}
}
