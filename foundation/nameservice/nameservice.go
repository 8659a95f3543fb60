// Package nameservice reads a folder of key files and creates a name
// service lookup for the ledger addresses they hold.
package nameservice

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
)

// KeyExtension is the file extension of key files written by the wallet.
const KeyExtension = ".rsa"

// NameService maintains a map of addresses for name lookup.
type NameService struct {
	names map[wallet.Address]string
}

// New constructs a name service with the key files found under root. The
// name of an address is its key file name without the extension.
func New(root string) (*NameService, error) {
	ns := NameService{
		names: make(map[wallet.Address]string),
	}

	fn := func(fileName string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if d.IsDir() || filepath.Ext(fileName) != KeyExtension {
			return nil
		}

		kp, err := wallet.Load(fileName)
		if err != nil {
			return err
		}

		ns.names[kp.Address()] = strings.TrimSuffix(filepath.Base(fileName), KeyExtension)

		return nil
	}

	if err := filepath.WalkDir(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified address, or its short form
// when the address is unknown.
func (ns *NameService) Lookup(addr wallet.Address) string {
	name, exists := ns.names[addr]
	if !exists {
		return addr.Short()
	}
	return name
}

// Address returns the address registered under the specified name.
func (ns *NameService) Address(name string) (wallet.Address, bool) {
	for addr, n := range ns.names {
		if n == name {
			return addr, true
		}
	}
	return "", false
}

// Copy returns a copy of the map of names and addresses.
func (ns *NameService) Copy() map[wallet.Address]string {
	cpy := make(map[wallet.Address]string, len(ns.names))
	for addr, name := range ns.names {
		cpy[addr] = name
	}
	return cpy
}
