package public

import (
	"fmt"

	"github.com/ardanlabs/powledger/business/sys/validate"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
)

type tx struct {
	ID        string        `json:"uuid"`
	From      string        `json:"sender_public_key"`
	To        string        `json:"recipient_public_key"`
	Amount    uint64        `json:"amount"`
	Signature hexutil.Bytes `json:"signature"`
}

func toTx(dbTx database.Tx) tx {
	return tx{
		ID:        dbTx.ID.String(),
		From:      string(dbTx.FromAddress()),
		To:        string(dbTx.ToAddress()),
		Amount:    dbTx.Amount,
		Signature: dbTx.Signature,
	}
}

func toTxs(dbTxs []database.Tx) []tx {
	trans := make([]tx, len(dbTxs))
	for i, dbTx := range dbTxs {
		trans[i] = toTx(dbTx)
	}
	return trans
}

type txRecord struct {
	Status  string `json:"status"`
	BlockID string `json:"block_uuid,omitempty"`
	Tx      tx     `json:"transaction"`
}

func toTxRecord(rec state.TxRecord) txRecord {
	if rec.Pending {
		return txRecord{Status: "pending", Tx: toTx(rec.Tx)}
	}

	return txRecord{Status: "committed", BlockID: rec.BlockID.String(), Tx: toTx(rec.Tx)}
}

// =============================================================================

type submitTx struct {
	ID        string        `json:"uuid" validate:"required,uuid4"`
	From      string        `json:"sender_public_key" validate:"required,hexadecimal"`
	To        string        `json:"recipient_public_key" validate:"required,hexadecimal"`
	Amount    uint64        `json:"amount" validate:"required,gt=0"`
	Signature hexutil.Bytes `json:"signature" validate:"required"`
}

// Validate checks the data in the model is considered clean.
func (st submitTx) Validate() error {
	return validate.Check(st)
}

func (st submitTx) toDBTx() (database.Tx, error) {
	id, err := uuid.Parse(st.ID)
	if err != nil {
		return database.Tx{}, fmt.Errorf("uuid: %w", err)
	}

	from, err := wallet.HexToPublicKey(st.From)
	if err != nil {
		return database.Tx{}, fmt.Errorf("sender_public_key: %w", err)
	}

	to, err := wallet.HexToPublicKey(st.To)
	if err != nil {
		return database.Tx{}, fmt.Errorf("recipient_public_key: %w", err)
	}

	dbTx, err := database.NewTx(id, from, to, st.Amount)
	if err != nil {
		return database.Tx{}, err
	}
	dbTx.Signature = st.Signature

	return dbTx, nil
}

// =============================================================================

type block struct {
	Hash        string `json:"hash"`
	ID          string `json:"uuid"`
	PrevHash    string `json:"previous_block_hash"`
	ProofOfWork uint64 `json:"proof_of_work"`
	Miner       string `json:"miner_key,omitempty"`
	Trans       []tx   `json:"transactions"`
}

func toBlock(dbBlock database.Block) (block, error) {
	hash, err := dbBlock.LinkHash()
	if err != nil {
		return block{}, err
	}

	b := block{
		Hash:        hash,
		ID:          dbBlock.ID.String(),
		PrevHash:    dbBlock.PrevBlockHash,
		ProofOfWork: dbBlock.ProofOfWork,
		Miner:       string(dbBlock.MinerAddress()),
		Trans:       toTxs(dbBlock.Trans),
	}

	return b, nil
}

type candidate struct {
	ID          string `json:"uuid"`
	PrevHash    string `json:"previous_block_hash"`
	MiningInput string `json:"mining_input"`
	Difficulty  uint   `json:"difficulty"`
	Trans       []tx   `json:"transactions"`
}

func toCandidate(dbBlock database.Block, difficulty uint) (candidate, error) {
	input, err := dbBlock.MiningInput()
	if err != nil {
		return candidate{}, err
	}

	c := candidate{
		ID:          dbBlock.ID.String(),
		PrevHash:    dbBlock.PrevBlockHash,
		MiningInput: input,
		Difficulty:  difficulty,
		Trans:       toTxs(dbBlock.Trans),
	}

	return c, nil
}

type submitProof struct {
	ID          string `json:"uuid" validate:"required,uuid4"`
	ProofOfWork uint64 `json:"proof_of_work"`
	Miner       string `json:"miner_key" validate:"required,hexadecimal"`
}

// Validate checks the data in the model is considered clean.
func (sp submitProof) Validate() error {
	return validate.Check(sp)
}

// =============================================================================

type reward struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

type keyPair struct {
	PrivateKey string `json:"private_key"`
	PublicKey  string `json:"public_key"`
}
