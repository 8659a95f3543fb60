// Package node provides a client for the v1 API of a ledger node.
package node

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
)

// Error is returned when the node answers with a failure status.
type Error struct {
	Status int
	Msg    string
	Retry  bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("node: status %d: %s", e.Status, e.Msg)
}

// IsRetry reports whether the node marked the failure as one that can be
// retried against fresh state.
func IsRetry(err error) bool {
	var ne *Error
	return errors.As(err, &ne) && ne.Retry
}

// =============================================================================

// Candidate is an open block a miner can work on.
type Candidate struct {
	ID          string `json:"uuid"`
	PrevHash    string `json:"previous_block_hash"`
	MiningInput string `json:"mining_input"`
	Difficulty  uint   `json:"difficulty"`
}

// Reward is the amount credited to a miner.
type Reward struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

// TxStatus reports where a transaction is.
type TxStatus struct {
	Status  string `json:"status"`
	BlockID string `json:"block_uuid,omitempty"`
}

type submitTx struct {
	ID        string        `json:"uuid"`
	From      string        `json:"sender_public_key"`
	To        string        `json:"recipient_public_key"`
	Amount    uint64        `json:"amount"`
	Signature hexutil.Bytes `json:"signature"`
}

type submitProof struct {
	ID          string `json:"uuid"`
	ProofOfWork uint64 `json:"proof_of_work"`
	Miner       string `json:"miner_key"`
}

type errorResponse struct {
	Error string `json:"error"`
	Retry bool   `json:"retry"`
}

// =============================================================================

// Client talks to a single node.
type Client struct {
	url  string
	http http.Client
}

// New constructs a client for the node at the specified base url.
func New(url string) *Client {
	return &Client{
		url: strings.TrimSuffix(url, "/"),
	}
}

// SubmitTx sends a signed transaction to the node's mempool.
func (c *Client) SubmitTx(ctx context.Context, tx database.Tx) error {
	st := submitTx{
		ID:        tx.ID.String(),
		From:      string(tx.FromAddress()),
		To:        string(tx.ToAddress()),
		Amount:    tx.Amount,
		Signature: tx.Signature,
	}

	return c.send(ctx, http.MethodPost, "/v1/tx/submit", st, nil)
}

// QueryTx reports whether the transaction is pending or committed.
func (c *Client) QueryTx(ctx context.Context, id uuid.UUID) (TxStatus, error) {
	var status TxStatus
	if err := c.send(ctx, http.MethodGet, "/v1/tx/"+id.String(), nil, &status); err != nil {
		return TxStatus{}, err
	}
	return status, nil
}

// Candidates returns the open candidates.
func (c *Client) Candidates(ctx context.Context) ([]Candidate, error) {
	var cands []Candidate
	if err := c.send(ctx, http.MethodGet, "/v1/mining/candidates", nil, &cands); err != nil {
		return nil, err
	}
	return cands, nil
}

// CreateCandidates asks the node to build candidates for the transactions
// not yet held by one.
func (c *Client) CreateCandidates(ctx context.Context) ([]Candidate, error) {
	var cands []Candidate
	if err := c.send(ctx, http.MethodPost, "/v1/mining/candidates", nil, &cands); err != nil {
		return nil, err
	}
	return cands, nil
}

// SubmitProof sends the counter found for a candidate.
func (c *Client) SubmitProof(ctx context.Context, id string, counter uint64, miner wallet.Address) error {
	sp := submitProof{
		ID:          id,
		ProofOfWork: counter,
		Miner:       string(miner),
	}

	return c.send(ctx, http.MethodPost, "/v1/mining/submit", sp, nil)
}

// Rewards returns the rewards credited to every miner.
func (c *Client) Rewards(ctx context.Context) ([]Reward, error) {
	var rewards []Reward
	if err := c.send(ctx, http.MethodGet, "/v1/rewards/list", nil, &rewards); err != nil {
		return nil, err
	}
	return rewards, nil
}

// send is a helper function to send an HTTP request to the node.
func (c *Client) send(ctx context.Context, method string, path string, dataSend any, dataRecv any) error {
	var body io.Reader
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var er errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
			er.Error = http.StatusText(resp.StatusCode)
		}
		return &Error{Status: resp.StatusCode, Msg: er.Error, Retry: er.Retry}
	}

	if dataRecv != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
