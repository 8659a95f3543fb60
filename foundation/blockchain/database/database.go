// Package database handles the core data types of the ledger: signed
// transactions, blocks and their canonical byte forms, plus the contract
// for persisting them.
package database

import (
	"fmt"
)

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the ledger. Pending
// transactions are the ones written with WriteTx that are not yet part of a
// block written with WriteBlock.
type Storage interface {
	WriteTx(tx TxData) error
	WriteBlock(block BlockData) error
	ReadBlocks() ([]BlockData, error)
	ReadPendingTxs() ([]TxData, error)
	Close() error
}

// LoadChain reads all the committed blocks from storage and validates each one
// against its parent. The returned chain always starts with the genesis block.
func LoadChain(strg Storage, difficulty uint, evHandler func(v string, args ...any)) ([]Block, error) {
	blocks, err := strg.ReadBlocks()
	if err != nil {
		return nil, fmt.Errorf("reading blocks: %w", err)
	}

	chain := make([]Block, 1, len(blocks)+1)
	chain[0] = GenesisBlock()

	for i, blockData := range blocks {
		block, err := ToBlock(blockData)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i+1, err)
		}

		evHandler("database: LoadChain: validate: blk[%d]: %s", i+1, block.ID)

		if err := block.ValidateMined(chain[len(chain)-1], difficulty); err != nil {
			return nil, fmt.Errorf("block %d: %w", i+1, err)
		}

		chain = append(chain, block)
	}

	return chain, nil
}

// LoadPending reads the pending transactions from storage. Transactions that
// no longer verify are skipped and reported through the event handler.
func LoadPending(strg Storage, evHandler func(v string, args ...any)) ([]Tx, error) {
	txsData, err := strg.ReadPendingTxs()
	if err != nil {
		return nil, fmt.Errorf("reading pending transactions: %w", err)
	}

	trans := make([]Tx, 0, len(txsData))
	for _, txData := range txsData {
		tx, err := ToTx(txData)
		if err != nil {
			evHandler("database: LoadPending: WARNING: tx[%s]: %s", txData.ID, err)
			continue
		}

		if err := tx.Validate(); err != nil {
			evHandler("database: LoadPending: WARNING: %s", err)
			continue
		}

		trans = append(trans, tx)
	}

	return trans, nil
}

// PendingTxs returns the written transactions that are not part of any of
// the blocks, in the order they were written. A transaction written twice
// and committed once is still pending once.
func PendingTxs(written []TxData, blocks []BlockData) []TxData {
	committed := make(map[string]int)
	for _, block := range blocks {
		for _, tx := range block.Trans {
			committed[tx.ID]++
		}
	}

	pending := make([]TxData, 0, len(written))
	for _, tx := range written {
		if committed[tx.ID] > 0 {
			committed[tx.ID]--
			continue
		}
		pending = append(pending, tx)
	}

	return pending
}
