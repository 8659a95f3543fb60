// Package storage selects one of the ledger storage implementations by name.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/bolt"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/sqlite"
)

// Set of storage kinds that can be opened.
const (
	Memory = "memory"
	Disk   = "disk"
	Bolt   = "bolt"
	SQLite = "sqlite"
)

// Open constructs the storage of the specified kind rooted at dbPath. The
// memory kind ignores dbPath.
func Open(kind string, dbPath string) (database.Storage, error) {
	switch kind {
	case Memory:
		return memory.New()
	case Disk:
		return disk.New(dbPath)
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	switch kind {
	case Bolt:
		return bolt.New(filepath.Join(dbPath, "ledger.db"))
	case SQLite:
		return sqlite.New(filepath.Join(dbPath, "ledger.sqlite"))
	}

	return nil, fmt.Errorf("unknown storage kind %q", kind)
}
