package disk_test

import (
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/storagetest"
)

func TestStorage(t *testing.T) {
	dir := t.TempDir()

	storagetest.Run(t, func() (database.Storage, error) {
		return disk.New(dir)
	}, true)
}
