package database

import (
	"bytes"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/google/uuid"
)

// GenesisPrevHash is the previous block hash of the genesis block. It is the
// SHA-256 of a single zero byte.
const GenesisPrevHash = "6e340b9cffb37a989ca544e6bb780a2c78901d3fb33738768511a30617afa01d"

// Set of errors produced when validating a proof of work.
var (
	ErrInvalidBlock        = errors.New("block contains an invalid transaction")
	ErrProofOfWorkRejected = errors.New("proof of work rejected")
)

// =============================================================================

// Include selects the optional fields that take part in the byte form of a
// block. All four combinations are meaningful.
type Include uint8

// Set of fields that can be included in the byte form of a block.
const (
	IncludeNone  Include = 0
	IncludePOW   Include = 1 << 0
	IncludeMiner Include = 1 << 1
	IncludeAll           = IncludePOW | IncludeMiner
)

// String implements the fmt.Stringer interface for logging.
func (inc Include) String() string {
	switch inc {
	case IncludeNone:
		return "none"
	case IncludePOW:
		return "pow"
	case IncludeMiner:
		return "miner"
	case IncludeAll:
		return "pow+miner"
	}
	return fmt.Sprintf("include(%d)", uint8(inc))
}

// =============================================================================

// POWError is returned when a proof of work does not produce a hash that
// meets the difficulty. It wraps ErrProofOfWorkRejected.
type POWError struct {
	Counter uint64
	Hash    string
	Prefix  string
}

// Error implements the error interface.
func (pe *POWError) Error() string {
	return fmt.Sprintf("proof of work %d gave SHA256 %s which does not start with %s", pe.Counter, pe.Hash, pe.Prefix)
}

// Unwrap allows errors.Is to match ErrProofOfWorkRejected.
func (pe *POWError) Unwrap() error {
	return ErrProofOfWorkRejected
}

// =============================================================================

// Block represents a group of transactions batched together.
type Block struct {
	ID            uuid.UUID      // Random id assigned when the block is created.
	Trans         []Tx           // Order is significant, it is hashed.
	PrevBlockHash string         // Hex SHA-256 of the previous block.
	ProofOfWork   uint64         // Counter found by a miner, 0 until mined.
	Miner         *rsa.PublicKey // Account of the miner, nil until mined.
}

// NewBlock constructs a block ready to be offered to miners.
func NewBlock(trans []Tx, prevBlockHash string) (Block, error) {
	if _, err := decodeHash(prevBlockHash); err != nil {
		return Block{}, err
	}

	b := Block{
		ID:            uuid.New(),
		Trans:         trans,
		PrevBlockHash: prevBlockHash,
	}

	return b, nil
}

// GenesisBlock returns the first block of every chain. It uses the nil uuid so
// all parties compute the same genesis hash.
func GenesisBlock() Block {
	return Block{
		ID:            uuid.Nil,
		Trans:         []Tx{},
		PrevBlockHash: GenesisPrevHash,
	}
}

// IsGenesis reports whether the block is the genesis block.
func (b Block) IsGenesis() bool {
	return b.ID == uuid.Nil && b.PrevBlockHash == GenesisPrevHash && len(b.Trans) == 0
}

// Bytes returns the byte form of the block that is hashed. The order of the
// fields is fixed: miner address, transactions, previous hash, id and proof
// of work.
func (b Block) Bytes(inc Include) ([]byte, error) {
	prevHash, err := decodeHash(b.PrevBlockHash)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	if inc&IncludeMiner != 0 {
		buf.WriteString(wallet.PublicKeyToHex(b.Miner))
	}

	for _, tx := range b.Trans {
		buf.WriteString(tx.Canonical())
	}

	buf.Write(prevHash)
	buf.WriteString(b.ID.String())

	if inc&IncludePOW != 0 {
		buf.WriteString(strconv.FormatUint(b.ProofOfWork, 10))
	}

	return buf.Bytes(), nil
}

// Hash returns the lowercase hex SHA-256 of the byte form of the block.
func (b Block) Hash(inc Include) (string, error) {
	data, err := b.Bytes(inc)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

// LinkHash returns the hash the next block records as its previous block
// hash. It includes the proof of work but not the miner, so anyone can
// compute it.
func (b Block) LinkHash() (string, error) {
	return b.Hash(IncludePOW)
}

// MiningInput returns the base64 encoding of the bytes a miner extends with
// a miner address and counter.
func (b Block) MiningInput() (string, error) {
	data, err := b.Bytes(IncludeNone)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(data), nil
}

// IsValid reports whether every transaction in the block is valid.
func (b Block) IsValid() bool {
	for _, tx := range b.Trans {
		if !tx.IsValid() {
			return false
		}
	}
	return true
}

// CheckProofOfWork sets the counter and miner on the block and accepts them
// if the resulting hash meets the difficulty. A rejected attempt leaves the
// block with no proof of work and no miner.
func (b *Block) CheckProofOfWork(counter uint64, miner *rsa.PublicKey, difficulty uint) error {
	if !b.IsValid() {
		return ErrInvalidBlock
	}

	if miner == nil {
		return errors.New("miner key is missing")
	}

	b.ProofOfWork = counter
	b.Miner = miner

	hash, err := b.Hash(IncludeAll)
	if err != nil {
		b.ProofOfWork = 0
		b.Miner = nil
		return err
	}

	if !SolvesDifficulty(hash, difficulty) {
		b.ProofOfWork = 0
		b.Miner = nil
		return &POWError{
			Counter: counter,
			Hash:    hash,
			Prefix:  strings.Repeat("0", int(difficulty)),
		}
	}

	return nil
}

// ValidateMined checks a block read back from storage is correctly linked to
// its parent and carries a proof of work that meets the difficulty.
func (b Block) ValidateMined(parent Block, difficulty uint) error {
	parentHash, err := parent.LinkHash()
	if err != nil {
		return err
	}

	if b.PrevBlockHash != parentHash {
		return fmt.Errorf("parent block hash doesn't match our known parent, got %s, exp %s", b.PrevBlockHash, parentHash)
	}

	if !b.IsValid() {
		return ErrInvalidBlock
	}

	if b.Miner == nil {
		return fmt.Errorf("block %s has no miner", b.ID)
	}

	hash, err := b.Hash(IncludeAll)
	if err != nil {
		return err
	}

	if !SolvesDifficulty(hash, difficulty) {
		return fmt.Errorf("%w: block %s hash %s", ErrProofOfWorkRejected, b.ID, hash)
	}

	return nil
}

// MinerAddress returns the address of the miner or an empty address when the
// block has not been mined.
func (b Block) MinerAddress() wallet.Address {
	return wallet.PublicKeyToAddress(b.Miner)
}

// =============================================================================

// SolvesDifficulty checks the hash starts with a difficulty number of 0's.
func SolvesDifficulty(hash string, difficulty uint) bool {
	if len(hash) != sha256.Size*2 || int(difficulty) > len(hash) {
		return false
	}

	for i := range int(difficulty) {
		if hash[i] != '0' {
			return false
		}
	}

	return true
}

// MinerHash reproduces the fully included block hash from a miner's point of
// view: the miner address, the decoded mining input and the counter.
func MinerHash(miningInput []byte, miner wallet.Address, counter uint64) string {
	h := sha256.New()
	h.Write([]byte(miner))
	h.Write(miningInput)
	h.Write([]byte(strconv.FormatUint(counter, 10)))
	return hex.EncodeToString(h.Sum(nil))
}

// decodeHash converts a hex block hash into its raw bytes.
func decodeHash(hash string) ([]byte, error) {
	data, err := hex.DecodeString(hash)
	if err != nil {
		return nil, fmt.Errorf("previous block hash: %w", err)
	}

	if len(data) != sha256.Size {
		return nil, fmt.Errorf("previous block hash: got %d bytes, exp %d", len(data), sha256.Size)
	}

	return data, nil
}

// =============================================================================

// BlockData represents what is written to storage and sent over the network.
type BlockData struct {
	Hash        string   `json:"hash"`
	ID          string   `json:"uuid"`
	PrevHash    string   `json:"previous_block_hash"`
	ProofOfWork uint64   `json:"proof_of_work"`
	Miner       string   `json:"miner_key,omitempty"`
	Trans       []TxData `json:"transactions"`
}

// NewBlockData constructs the value to serialize.
func NewBlockData(b Block) (BlockData, error) {
	hash, err := b.LinkHash()
	if err != nil {
		return BlockData{}, err
	}

	trans := make([]TxData, len(b.Trans))
	for i, tx := range b.Trans {
		trans[i] = tx.TextView()
	}

	bd := BlockData{
		Hash:        hash,
		ID:          b.ID.String(),
		PrevHash:    b.PrevBlockHash,
		ProofOfWork: b.ProofOfWork,
		Miner:       wallet.PublicKeyToHex(b.Miner),
		Trans:       trans,
	}

	return bd, nil
}

// ToBlock converts the serialized value back into a block and checks the
// recorded hash matches the contents.
func ToBlock(bd BlockData) (Block, error) {
	id, err := uuid.Parse(bd.ID)
	if err != nil {
		return Block{}, fmt.Errorf("block id: %w", err)
	}

	trans := make([]Tx, len(bd.Trans))
	for i, txData := range bd.Trans {
		tx, err := ToTx(txData)
		if err != nil {
			return Block{}, fmt.Errorf("block %s: tx %d: %w", bd.ID, i, err)
		}
		trans[i] = tx
	}

	b := Block{
		ID:            id,
		Trans:         trans,
		PrevBlockHash: bd.PrevHash,
		ProofOfWork:   bd.ProofOfWork,
	}

	if bd.Miner != "" {
		miner, err := wallet.HexToPublicKey(bd.Miner)
		if err != nil {
			return Block{}, fmt.Errorf("block %s: miner: %w", bd.ID, err)
		}
		b.Miner = miner
	}

	hash, err := b.LinkHash()
	if err != nil {
		return Block{}, err
	}

	if bd.Hash != "" && bd.Hash != hash {
		return Block{}, fmt.Errorf("block %s: recorded hash %s doesn't match contents %s", bd.ID, bd.Hash, hash)
	}

	return b, nil
}
