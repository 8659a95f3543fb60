package node_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/ardanlabs/powledger/foundation/node"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestClient(t *testing.T) {
	t.Log("Given the need to talk to a node over its API.")
	{
		kp, err := wallet.Generate()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a key pair : %v", failed, err)
		}

		tx, err := database.NewTx(uuid.New(), kp.PublicKey, kp.PublicKey, 5)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct a tx : %v", failed, err)
		}
		if err := tx.Sign(kp.PrivateKey); err != nil {
			t.Fatalf("\t%s\tShould be able to sign a tx : %v", failed, err)
		}

		var got map[string]any
		mux := http.NewServeMux()
		mux.HandleFunc("POST /v1/tx/submit", func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"status":"transaction added to mempool"}`))
		})
		mux.HandleFunc("GET /v1/mining/candidates", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"uuid":"c1","mining_input":"AA==","difficulty":4}]`))
		})
		mux.HandleFunc("POST /v1/mining/submit", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error":"candidate is no longer valid","retry":true}`))
		})

		srv := httptest.NewServer(mux)
		defer srv.Close()

		client := node.New(srv.URL + "/")
		ctx := context.Background()

		t.Logf("\tTest 0:\tWhen submitting a transaction.")
		{
			if err := client.SubmitTx(ctx, tx); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to submit : %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to submit.", success)

			if got["sender_public_key"] != string(kp.Address()) || got["signature"] != hexutil.Encode(tx.Signature) {
				t.Fatalf("\t%s\tTest 0:\tShould send the wire form of the tx : %v", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould send the wire form of the tx.", success)
		}

		t.Logf("\tTest 1:\tWhen mining against the node.")
		{
			cands, err := client.Candidates(ctx)
			if err != nil || len(cands) != 1 || cands[0].Difficulty != 4 {
				t.Fatalf("\t%s\tTest 1:\tShould decode the candidates : %v %v", failed, cands, err)
			}
			t.Logf("\t%s\tTest 1:\tShould decode the candidates.", success)

			err = client.SubmitProof(ctx, cands[0].ID, 1, kp.Address())
			if !node.IsRetry(err) {
				t.Fatalf("\t%s\tTest 1:\tShould report a retryable failure : %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould report a retryable failure.", success)

			_, err = client.Rewards(ctx)
			if err == nil || node.IsRetry(err) {
				t.Fatalf("\t%s\tTest 1:\tShould fail without retry for an unknown route : %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould fail without retry for an unknown route.", success)
		}
	}
}
