// Package disk implements the ability to read and write blocks to disk
// with each block in its own file. Submitted transactions are appended to a
// single JSON lines file.
package disk

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// txsFile is the name of the file holding every submitted transaction.
const txsFile = "txs.jsonl"

// Disk represents the serialization implementation for reading and storing
// blocks in their own separate files on disk. This implements the
// database.Storage interface.
type Disk struct {
	dbPath string
	mu     sync.Mutex
	next   uint64
}

// New constructs a Disk value for use.
func New(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	d := Disk{
		dbPath: dbPath,
		next:   1,
	}

	// Find the number for the next block file.
	for {
		_, err := os.Stat(d.getPath(d.next))
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			return nil, err
		}
		d.next++
	}

	return &d, nil
}

// Close in this implementation has nothing to do since a new file is
// written to disk for each new block and then immediately closed.
func (d *Disk) Close() error {
	return nil
}

// WriteTx appends the transaction as a line to the transactions file.
func (d *Disk) WriteTx(tx database.TxData) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := json.Marshal(tx)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(d.dbPath, txsFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return err
	}

	return nil
}

// WriteBlock takes the specified block and stores it on disk in a file
// labeled with its position in the chain.
func (d *Disk) WriteBlock(blockData database.BlockData) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Marshal the block for writing to disk in a more human readable format.
	data, err := json.MarshalIndent(blockData, "", "  ")
	if err != nil {
		return err
	}

	// Create a new file for this block, refusing to replace an existing one.
	f, err := os.OpenFile(d.getPath(d.next), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return err
	}

	d.next++

	return nil
}

// ReadBlocks reads the block files in chain order.
func (d *Disk) ReadBlocks() ([]database.BlockData, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.readBlocks()
}

// ReadPendingTxs returns the transactions that are not yet in a block.
func (d *Disk) ReadPendingTxs() ([]database.TxData, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	blocks, err := d.readBlocks()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(d.dbPath, txsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var txs []database.TxData
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for line := 1; scanner.Scan(); line++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}

		var tx database.TxData
		if err := json.Unmarshal(scanner.Bytes(), &tx); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", txsFile, line, err)
		}
		txs = append(txs, tx)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return database.PendingTxs(txs, blocks), nil
}

// readBlocks decodes every block file, stopping at the first missing number.
func (d *Disk) readBlocks() ([]database.BlockData, error) {
	var blocks []database.BlockData
	for num := uint64(1); num < d.next; num++ {
		blockData, err := d.getBlock(num)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, blockData)
	}
	return blocks, nil
}

// getBlock reads the block stored under the specified number.
func (d *Disk) getBlock(num uint64) (database.BlockData, error) {
	f, err := os.Open(d.getPath(num))
	if err != nil {
		return database.BlockData{}, err
	}
	defer f.Close()

	var blockData database.BlockData
	if err := json.NewDecoder(f).Decode(&blockData); err != nil {
		return database.BlockData{}, fmt.Errorf("block file %d: %w", num, err)
	}

	return blockData, nil
}

// getPath forms the path to the specified block.
func (d *Disk) getPath(blockNum uint64) string {
	name := strconv.FormatUint(blockNum, 10)
	return filepath.Join(d.dbPath, fmt.Sprintf("%s.json", name))
}
