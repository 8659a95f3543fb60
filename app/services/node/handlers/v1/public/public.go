// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/ardanlabs/powledger/business/sys/validate"
	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// NewWallet generates a key pair for a client that has no local tooling.
func (h Handlers) NewWallet(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	kp, err := wallet.Generate()
	if err != nil {
		return err
	}

	private, public, err := kp.Hex()
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, keyPair{PrivateKey: private, PublicKey: public}, http.StatusOK)
}

// SubmitTransaction adds a new signed transaction to the mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var st submitTx
	if err := decode(r, &st); err != nil {
		return err
	}

	dbTx, err := st.toDBTx()
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if _, err := h.State.QueryTransaction(dbTx.ID); err == nil {
		return errs.NewTrusted(fmt.Errorf("transaction %s already submitted", dbTx.ID), http.StatusConflict)
	}

	h.Log.Infow("add tran", "traceid", v.TraceID, "tx", dbTx)
	if err := h.State.AddTransaction(dbTx); err != nil {
		if errors.Is(err, database.ErrInvalidTx) {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return err
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transaction added to mempool",
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, toTxs(h.State.RetrieveMempool()), http.StatusOK)
}

// QueryTransaction returns a transaction from the mempool or the chain.
func (h Handlers) QueryTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := paramID(r)
	if err != nil {
		return err
	}

	rec, err := h.State.QueryTransaction(id)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return errs.NewTrusted(fmt.Errorf("transaction %s: %w", id, err), http.StatusNotFound)
		}
		return err
	}

	return web.Respond(ctx, w, toTxRecord(rec), http.StatusOK)
}

// CreateCandidates builds candidates for the transactions no candidate holds.
func (h Handlers) CreateCandidates(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	dbBlocks, err := h.State.CreateCandidates()
	if err != nil {
		return err
	}

	return h.respondCandidates(ctx, w, dbBlocks, http.StatusCreated)
}

// Candidates returns the open candidates along with their mining input.
func (h Handlers) Candidates(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return h.respondCandidates(ctx, w, h.State.RetrieveCandidates(), http.StatusOK)
}

// FindCandidate returns the open candidate with the specified id.
func (h Handlers) FindCandidate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := paramID(r)
	if err != nil {
		return err
	}

	dbBlock, err := h.State.FindCandidate(id)
	if err != nil {
		return candidateError(err)
	}

	cand, err := toCandidate(dbBlock, h.State.RetrieveGenesis().Difficulty)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, cand, http.StatusOK)
}

// SubmitProof accepts a proof of work for an open candidate.
func (h Handlers) SubmitProof(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var sp submitProof
	if err := decode(r, &sp); err != nil {
		return err
	}

	id, err := uuid.Parse(sp.ID)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	miner, err := wallet.HexToPublicKey(sp.Miner)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("submit proof", "traceid", v.TraceID, "blk", id, "pow", sp.ProofOfWork, "miner", wallet.PublicKeyToAddress(miner).Short())

	dbBlock, err := h.State.AcceptProof(id, sp.ProofOfWork, miner)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrProofOfWorkRejected), errors.Is(err, database.ErrInvalidBlock):
			return errs.NewTrusted(err, http.StatusBadRequest)
		default:
			return candidateError(err)
		}
	}

	blk, err := toBlock(dbBlock)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, blk, http.StatusOK)
}

// Blocks returns the committed chain, genesis first.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	chain := h.State.RetrieveChain()

	blocks := make([]block, len(chain))
	for i, dbBlock := range chain {
		blk, err := toBlock(dbBlock)
		if err != nil {
			return err
		}
		blocks[i] = blk
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// QueryBlock returns the committed block with the specified id.
func (h Handlers) QueryBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := paramID(r)
	if err != nil {
		return err
	}

	dbBlock, err := h.State.QueryBlock(id)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return errs.NewTrusted(fmt.Errorf("block %s: %w", id, err), http.StatusNotFound)
		}
		return err
	}

	blk, err := toBlock(dbBlock)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, blk, http.StatusOK)
}

// Rewards returns the mining rewards credited to each account.
func (h Handlers) Rewards(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	sheet := h.State.RetrieveRewards()

	rewards := make([]reward, 0, len(sheet))
	for addr, balance := range sheet {
		rewards = append(rewards, reward{Address: string(addr), Balance: balance})
	}

	sort.Slice(rewards, func(i, j int) bool {
		if rewards[i].Balance != rewards[j].Balance {
			return rewards[i].Balance > rewards[j].Balance
		}
		return rewards[i].Address < rewards[j].Address
	})

	return web.Respond(ctx, w, rewards, http.StatusOK)
}

// =============================================================================

func (h Handlers) respondCandidates(ctx context.Context, w http.ResponseWriter, dbBlocks []database.Block, statusCode int) error {
	difficulty := h.State.RetrieveGenesis().Difficulty

	cands := make([]candidate, len(dbBlocks))
	for i, dbBlock := range dbBlocks {
		cand, err := toCandidate(dbBlock, difficulty)
		if err != nil {
			return err
		}
		cands[i] = cand
	}

	return web.Respond(ctx, w, cands, statusCode)
}

// candidateError maps the candidate lifecycle errors to a status. A retired
// candidate can be retried against a fresh one.
func candidateError(err error) error {
	switch {
	case errors.Is(err, state.ErrCandidateRetired):
		return errs.NewRetry(err, http.StatusConflict)
	case errors.Is(err, state.ErrCandidateNotFound):
		return errs.NewTrusted(err, http.StatusNotFound)
	}
	return err
}

func decode(r *http.Request, val any) error {
	if err := web.Decode(r, val); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}
	return nil
}

func paramID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(web.Param(r, "id"))
	if err != nil {
		return uuid.UUID{}, errs.NewTrusted(fmt.Errorf("invalid id: %w", err), http.StatusBadRequest)
	}
	return id, nil
}
