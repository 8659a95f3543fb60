// Package bolt implements the ability to read and write the ledger to an
// embedded bbolt database file.
package bolt

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	bolt "go.etcd.io/bbolt"
)

// Set of buckets used by the database. Keys are big endian sequence numbers
// so a cursor walks them in write order.
var (
	bucketTxs    = []byte("txs")
	bucketBlocks = []byte("blocks")
)

// Bolt represents the serialization implementation for reading and storing
// the ledger in a bbolt file. This implements the database.Storage interface.
type Bolt struct {
	db *bolt.DB
}

// New opens or creates the database file at the specified path.
func New(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketTxs, bucketBlocks} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Close releases the database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// WriteTx records a submitted transaction.
func (b *Bolt) WriteTx(txData database.TxData) error {
	return b.put(bucketTxs, txData)
}

// WriteBlock records a committed block.
func (b *Bolt) WriteBlock(blockData database.BlockData) error {
	return b.put(bucketBlocks, blockData)
}

// ReadBlocks returns the committed blocks in the order they were written.
func (b *Bolt) ReadBlocks() ([]database.BlockData, error) {
	var blocks []database.BlockData
	err := b.db.View(func(tx *bolt.Tx) error {
		var err error
		blocks, err = readAll[database.BlockData](tx, bucketBlocks)
		return err
	})
	if err != nil {
		return nil, err
	}

	return blocks, nil
}

// ReadPendingTxs returns the transactions that are not yet in a block.
func (b *Bolt) ReadPendingTxs() ([]database.TxData, error) {
	var pending []database.TxData
	err := b.db.View(func(tx *bolt.Tx) error {
		blocks, err := readAll[database.BlockData](tx, bucketBlocks)
		if err != nil {
			return err
		}

		txs, err := readAll[database.TxData](tx, bucketTxs)
		if err != nil {
			return err
		}

		pending = database.PendingTxs(txs, blocks)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return pending, nil
}

// =============================================================================

// put stores the value as JSON under the next sequence of the bucket.
func (b *Bolt) put(bucket []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucket)

		seq, err := bkt.NextSequence()
		if err != nil {
			return err
		}

		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)

		return bkt.Put(key, data)
	})
}

// readAll decodes every value of the bucket in key order.
func readAll[T any](tx *bolt.Tx, bucket []byte) ([]T, error) {
	var values []T
	err := tx.Bucket(bucket).ForEach(func(k, v []byte) error {
		var value T
		if err := json.Unmarshal(v, &value); err != nil {
			return fmt.Errorf("%s[%d]: %w", bucket, binary.BigEndian.Uint64(k), err)
		}
		values = append(values, value)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return values, nil
}
