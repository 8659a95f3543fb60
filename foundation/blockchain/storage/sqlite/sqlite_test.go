package sqlite_test

import (
	"path/filepath"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/sqlite"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/storagetest"
)

func TestStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.sqlite")

	storagetest.Run(t, func() (database.Storage, error) {
		return sqlite.New(path)
	}, true)
}
