package events_test

import (
	"testing"

	"github.com/ardanlabs/powledger/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestEvents(t *testing.T) {
	t.Log("Given the need to fan ledger events out to subscribers.")
	{
		evts := events.New()

		a := evts.Acquire("a")
		b := evts.Acquire("b")

		t.Logf("\tTest 0:\tWhen sending an event.")
		{
			evts.Send("state: AcceptProof: committed")

			for id, ch := range map[string]chan string{"a": a, "b": b} {
				if msg := <-ch; msg != "state: AcceptProof: committed" {
					t.Fatalf("\t%s\tTest 0:\tShould receive the event on %s : got %q", failed, id, msg)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould receive the event on every channel.", success)

			if again := evts.Acquire("a"); again != a {
				t.Fatalf("\t%s\tTest 0:\tShould get the same channel for the same id.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould get the same channel for the same id.", success)
		}

		t.Logf("\tTest 1:\tWhen a subscriber falls behind.")
		{
			for range 150 {
				evts.Send("event")
			}

			if n := len(a); n != 100 {
				t.Fatalf("\t%s\tTest 1:\tShould drop events past the buffer : got %d", failed, n)
			}
			t.Logf("\t%s\tTest 1:\tShould drop events past the buffer.", success)
		}

		t.Logf("\tTest 2:\tWhen releasing channels.")
		{
			if err := evts.Release("a"); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to release a channel : %v", failed, err)
			}
			if err := evts.Release("a"); err == nil {
				t.Fatalf("\t%s\tTest 2:\tShould not be able to release a channel twice.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould release a channel once.", success)

			evts.Shutdown()
			for range b {
			}
			t.Logf("\t%s\tTest 2:\tShould close the remaining channels on shutdown.", success)
		}
	}
}
