package database

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/google/uuid"
)

// ErrInvalidTx is returned when a transaction can't be constructed or
// accepted because of the values it holds.
var ErrInvalidTx = errors.New("invalid transaction")

// signOptions is the padding scheme used for signatures: MGF1 with SHA-256
// and the largest salt the key allows.
var signOptions = rsa.PSSOptions{
	SaltLength: rsa.PSSSaltLengthAuto,
	Hash:       crypto.SHA256,
}

// verifyOptions requires the salt length signOptions produces for the key.
func verifyOptions(publicKey *rsa.PublicKey) *rsa.PSSOptions {
	emLen := (publicKey.N.BitLen() - 1 + 7) / 8
	return &rsa.PSSOptions{
		SaltLength: emLen - 2 - sha256.Size,
		Hash:       crypto.SHA256,
	}
}

// =============================================================================

// Tx is the transactional information between two parties.
type Tx struct {
	ID        uuid.UUID      // Identifier chosen by the submitter, must be a version 4 uuid.
	From      *rsa.PublicKey // Account sending the value.
	To        *rsa.PublicKey // Account receiving the value.
	Amount    uint64         // Value transferred, always greater than zero.
	Signature []byte         // RSA-PSS signature over the canonical encoding.
}

// NewTx constructs a new unsigned transaction.
func NewTx(id uuid.UUID, from *rsa.PublicKey, to *rsa.PublicKey, amount uint64) (Tx, error) {
	tx := Tx{
		ID:     id,
		From:   from,
		To:     to,
		Amount: amount,
	}

	if err := tx.validateFields(); err != nil {
		return Tx{}, err
	}

	return tx, nil
}

// ValidateTxID checks the id is an RFC 4122 version 4 uuid.
func ValidateTxID(id uuid.UUID) error {
	if id.Variant() != uuid.RFC4122 || id.Version() != 4 {
		return fmt.Errorf("%w: id %s is not a version 4 uuid", ErrInvalidTx, id)
	}
	return nil
}

// validateFields checks the values every transaction must hold.
func (tx Tx) validateFields() error {
	if err := ValidateTxID(tx.ID); err != nil {
		return err
	}

	if tx.From == nil || tx.To == nil {
		return fmt.Errorf("%w: sender and recipient keys are required", ErrInvalidTx)
	}

	if tx.Amount == 0 {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidTx)
	}

	return nil
}

// Canonical returns the exact text that is signed, verified, and hashed for
// this transaction. Any change to the layout of this text changes every
// signature and block hash.
func (tx Tx) Canonical() string {
	return fmt.Sprintf("{'sender_public_key': '%s', 'recipient_public_key': '%s', 'amount': %d, 'uuid': '%s'}",
		wallet.PublicKeyToHex(tx.From),
		wallet.PublicKeyToHex(tx.To),
		tx.Amount,
		tx.ID.String(),
	)
}

// Sign uses the specified private key to sign the transaction. The signature
// is stored on the transaction.
func (tx *Tx) Sign(privateKey *rsa.PrivateKey) error {
	if privateKey == nil {
		return errors.New("private key is missing")
	}

	digest := sha256.Sum256([]byte(tx.Canonical()))

	sig, err := rsa.SignPSS(rand.Reader, privateKey, crypto.SHA256, digest[:], &signOptions)
	if err != nil {
		return fmt.Errorf("signing transaction: %w", err)
	}

	tx.Signature = sig

	return nil
}

// Validate checks the transaction holds acceptable values and carries a
// signature produced by the sender over the canonical encoding. Every
// failure is reported as ErrInvalidTx.
func (tx Tx) Validate() error {
	if err := tx.validateFields(); err != nil {
		return err
	}

	if len(tx.Signature) == 0 {
		return fmt.Errorf("%w: tx[%s]: missing signature", ErrInvalidTx, tx.ID)
	}

	digest := sha256.Sum256([]byte(tx.Canonical()))

	if err := rsa.VerifyPSS(tx.From, crypto.SHA256, digest[:], tx.Signature, verifyOptions(tx.From)); err != nil {
		return fmt.Errorf("%w: tx[%s]: signature does not verify", ErrInvalidTx, tx.ID)
	}

	return nil
}

// IsValid reports whether Validate accepts the transaction.
func (tx Tx) IsValid() bool {
	return tx.Validate() == nil
}

// FromAddress returns the sender account address.
func (tx Tx) FromAddress() wallet.Address {
	return wallet.PublicKeyToAddress(tx.From)
}

// ToAddress returns the recipient account address.
func (tx Tx) ToAddress() wallet.Address {
	return wallet.PublicKeyToAddress(tx.To)
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:%s->%s:%d", tx.ID, tx.FromAddress().Short(), tx.ToAddress().Short(), tx.Amount)
}

// =============================================================================

// TxBinary is the transport view of a transaction with keys in their DER
// form. It never holds private key material.
type TxBinary struct {
	ID        uuid.UUID
	From      []byte
	To        []byte
	Amount    uint64
	Signature []byte
}

// BinaryView returns the transaction with its keys in binary form.
func (tx Tx) BinaryView() (TxBinary, error) {
	from, err := wallet.EncodePublicKey(tx.From)
	if err != nil {
		return TxBinary{}, err
	}

	to, err := wallet.EncodePublicKey(tx.To)
	if err != nil {
		return TxBinary{}, err
	}

	view := TxBinary{
		ID:        tx.ID,
		From:      from,
		To:        to,
		Amount:    tx.Amount,
		Signature: tx.Signature,
	}

	return view, nil
}

// TxData is the text view of a transaction. This is what is written to
// storage and sent over the network.
type TxData struct {
	ID        string `json:"uuid"`
	From      string `json:"sender_public_key"`
	To        string `json:"recipient_public_key"`
	Amount    uint64 `json:"amount"`
	Signature string `json:"signature"`
}

// TextView returns the transaction with its keys, id and signature in
// text form.
func (tx Tx) TextView() TxData {
	return TxData{
		ID:        tx.ID.String(),
		From:      wallet.PublicKeyToHex(tx.From),
		To:        wallet.PublicKeyToHex(tx.To),
		Amount:    tx.Amount,
		Signature: hex.EncodeToString(tx.Signature),
	}
}

// ToTx converts the text view back into a transaction. The signature is
// carried over but not verified; call IsValid for that.
func ToTx(data TxData) (Tx, error) {
	id, err := uuid.Parse(data.ID)
	if err != nil {
		return Tx{}, fmt.Errorf("%w: id: %s", ErrInvalidTx, err)
	}

	from, err := wallet.HexToPublicKey(data.From)
	if err != nil {
		return Tx{}, fmt.Errorf("sender: %w", err)
	}

	to, err := wallet.HexToPublicKey(data.To)
	if err != nil {
		return Tx{}, fmt.Errorf("recipient: %w", err)
	}

	tx, err := NewTx(id, from, to, data.Amount)
	if err != nil {
		return Tx{}, err
	}

	if data.Signature != "" {
		sig, err := hex.DecodeString(data.Signature)
		if err != nil {
			return Tx{}, fmt.Errorf("%w: signature: %s", ErrInvalidTx, err)
		}
		tx.Signature = sig
	}

	return tx, nil
}
