// Package wallet provides support for generating and encoding the RSA key
// pairs used to sign transactions. A public key doubles as the account
// address for the ledger.
package wallet

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
)

// KeySize is the number of bits for every generated key.
const KeySize = 2048

// publicExponent matches the exponent used by every mainstream RSA toolkit.
const publicExponent = 65537

// ErrDecode is returned when bytes or text can't be decoded into a key.
var ErrDecode = errors.New("key decode")

// =============================================================================

// Address represents an account on the ledger. It is the hex encoding of
// the DER SubjectPublicKeyInfo form of the account's public key.
type Address string

// Short returns an abbreviated form of the address for logging.
func (a Address) Short() string {
	if len(a) <= 16 {
		return string(a)
	}
	return string(a[:8]) + ".." + string(a[len(a)-8:])
}

// PublicKey converts the address back into the public key it encodes.
func (a Address) PublicKey() (*rsa.PublicKey, error) {
	return HexToPublicKey(string(a))
}

// =============================================================================

// KeyPair represents a public key and its optional private key. Keys received
// from another party have no private key.
type KeyPair struct {
	PrivateKey *rsa.PrivateKey
	PublicKey  *rsa.PublicKey
}

// Generate constructs a new key pair using the system source of randomness.
func Generate() (KeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, KeySize)
	if err != nil {
		return KeyPair{}, fmt.Errorf("generating key: %w", err)
	}

	if privateKey.PublicKey.E != publicExponent {
		return KeyPair{}, fmt.Errorf("unexpected public exponent %d", privateKey.PublicKey.E)
	}

	kp := KeyPair{
		PrivateKey: privateKey,
		PublicKey:  &privateKey.PublicKey,
	}

	return kp, nil
}

// FromEncoded reconstructs a key pair from its DER encodings. The private key
// is PKCS #8 and may be nil. The public key is SubjectPublicKeyInfo and is
// required.
func FromEncoded(private []byte, public []byte) (KeyPair, error) {
	publicKey, err := DecodePublicKey(public)
	if err != nil {
		return KeyPair{}, err
	}

	kp := KeyPair{
		PublicKey: publicKey,
	}

	if private == nil {
		return kp, nil
	}

	key, err := x509.ParsePKCS8PrivateKey(private)
	if err != nil {
		return KeyPair{}, fmt.Errorf("%w: private key: %s", ErrDecode, err)
	}

	privateKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return KeyPair{}, fmt.Errorf("%w: private key is %T, not RSA", ErrDecode, key)
	}

	if !privateKey.PublicKey.Equal(publicKey) {
		return KeyPair{}, fmt.Errorf("%w: private key does not match public key", ErrDecode)
	}

	kp.PrivateKey = privateKey

	return kp, nil
}

// FromHex reconstructs a key pair from the hex text form of its encodings.
// An empty private string means there is no private key.
func FromHex(private string, public string) (KeyPair, error) {
	pub, err := hex.DecodeString(public)
	if err != nil {
		return KeyPair{}, fmt.Errorf("%w: public key hex: %s", ErrDecode, err)
	}

	var priv []byte
	if private != "" {
		priv, err = hex.DecodeString(private)
		if err != nil {
			return KeyPair{}, fmt.Errorf("%w: private key hex: %s", ErrDecode, err)
		}
	}

	return FromEncoded(priv, pub)
}

// Encoded returns the DER encodings of the key pair. The private encoding
// is nil when the pair holds no private key.
func (kp KeyPair) Encoded() (private []byte, public []byte, err error) {
	public, err = EncodePublicKey(kp.PublicKey)
	if err != nil {
		return nil, nil, err
	}

	if kp.PrivateKey == nil {
		return nil, public, nil
	}

	private, err = x509.MarshalPKCS8PrivateKey(kp.PrivateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding private key: %w", err)
	}

	return private, public, nil
}

// Hex returns the hex text form of the key pair encodings. The private string
// is empty when the pair holds no private key.
func (kp KeyPair) Hex() (private string, public string, err error) {
	priv, pub, err := kp.Encoded()
	if err != nil {
		return "", "", err
	}

	return hex.EncodeToString(priv), hex.EncodeToString(pub), nil
}

// Address returns the account address for the key pair.
func (kp KeyPair) Address() Address {
	return PublicKeyToAddress(kp.PublicKey)
}

// Equal reports whether both key pairs hold the same keys.
func (kp KeyPair) Equal(other KeyPair) bool {
	if kp.PublicKey == nil || other.PublicKey == nil {
		return kp.PublicKey == other.PublicKey
	}
	if !kp.PublicKey.Equal(other.PublicKey) {
		return false
	}

	switch {
	case kp.PrivateKey == nil && other.PrivateKey == nil:
		return true
	case kp.PrivateKey == nil || other.PrivateKey == nil:
		return false
	}

	return kp.PrivateKey.Equal(other.PrivateKey)
}

// =============================================================================

// Save writes the key pair to the specified file as two lines of hex text,
// the private key first.
func (kp KeyPair) Save(path string) error {
	private, public, err := kp.Hex()
	if err != nil {
		return err
	}

	data := private + "\n" + public + "\n"
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		return fmt.Errorf("writing key file: %w", err)
	}

	return nil
}

// Load reads a key pair written by Save.
func Load(path string) (KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return KeyPair{}, fmt.Errorf("reading key file: %w", err)
	}

	lines := strings.Fields(string(data))
	switch len(lines) {
	case 1:
		return FromHex("", lines[0])
	case 2:
		return FromHex(lines[0], lines[1])
	}

	return KeyPair{}, fmt.Errorf("%w: key file %q holds %d lines", ErrDecode, path, len(lines))
}

// =============================================================================

// EncodePublicKey returns the DER SubjectPublicKeyInfo encoding of the key.
func EncodePublicKey(publicKey *rsa.PublicKey) ([]byte, error) {
	if publicKey == nil {
		return nil, errors.New("public key is missing")
	}

	data, err := x509.MarshalPKIXPublicKey(publicKey)
	if err != nil {
		return nil, fmt.Errorf("encoding public key: %w", err)
	}

	return data, nil
}

// DecodePublicKey parses a DER SubjectPublicKeyInfo encoded RSA public key.
func DecodePublicKey(data []byte) (*rsa.PublicKey, error) {
	key, err := x509.ParsePKIXPublicKey(data)
	if err != nil {
		return nil, fmt.Errorf("%w: public key: %s", ErrDecode, err)
	}

	publicKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: public key is %T, not RSA", ErrDecode, key)
	}

	return publicKey, nil
}

// PublicKeyToHex returns the hex text of the DER encoding of the key. A nil
// key produces an empty string.
func PublicKeyToHex(publicKey *rsa.PublicKey) string {
	data, err := EncodePublicKey(publicKey)
	if err != nil {
		return ""
	}
	return hex.EncodeToString(data)
}

// HexToPublicKey parses the hex text of a DER encoded public key.
func HexToPublicKey(s string) (*rsa.PublicKey, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: public key hex: %s", ErrDecode, err)
	}
	return DecodePublicKey(data)
}

// PublicKeyToAddress converts the public key into an account address.
func PublicKeyToAddress(publicKey *rsa.PublicKey) Address {
	return Address(PublicKeyToHex(publicKey))
}

// ToAddress validates the text is a well formed address.
func ToAddress(s string) (Address, error) {
	publicKey, err := HexToPublicKey(strings.ToLower(s))
	if err != nil {
		return "", err
	}
	return PublicKeyToAddress(publicKey), nil
}
