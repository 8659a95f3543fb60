// Package sqlite implements the ability to read and write the ledger to a
// SQLite database file using the pure Go modernc driver.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"

	_ "modernc.org/sqlite"
)

const maxBusyTimeoutMs = 5000

// schema holds one row per submitted transaction and one per committed
// block. A transaction row is linked to the block that committed it.
const schema = `
CREATE TABLE IF NOT EXISTS blocks (
	seq      INTEGER PRIMARY KEY AUTOINCREMENT,
	uuid     TEXT NOT NULL UNIQUE,
	hash     TEXT NOT NULL,
	document TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS txs (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	uuid       TEXT NOT NULL,
	block_uuid TEXT REFERENCES blocks(uuid),
	document   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS txs_pending ON txs (uuid, block_uuid);
`

// SQLite represents the serialization implementation for reading and storing
// the ledger in a SQLite file. This implements the database.Storage interface.
type SQLite struct {
	db *sql.DB
}

// New opens or creates the database file at the specified path.
func New(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s", filepath.Clean(path)))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Writes are serialized by the ledger so one connection is enough.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d", maxBusyTimeoutMs)); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close releases the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// WriteTx records a submitted transaction.
func (s *SQLite) WriteTx(tx database.TxData) error {
	doc, err := json.Marshal(tx)
	if err != nil {
		return err
	}

	if _, err := s.db.Exec(`INSERT INTO txs (uuid, document) VALUES (?, ?)`, tx.ID, string(doc)); err != nil {
		return fmt.Errorf("insert tx: %w", err)
	}

	return nil
}

// WriteBlock records a committed block and links the earliest pending row of
// each of its transactions to it.
func (s *SQLite) WriteBlock(blockData database.BlockData) error {
	doc, err := json.Marshal(blockData)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO blocks (uuid, hash, document) VALUES (?, ?, ?)`, blockData.ID, blockData.Hash, string(doc)); err != nil {
		return fmt.Errorf("insert block: %w", err)
	}

	const link = `
	UPDATE txs SET block_uuid = ?
	WHERE seq = (SELECT seq FROM txs WHERE uuid = ? AND block_uuid IS NULL ORDER BY seq LIMIT 1)`

	for _, txData := range blockData.Trans {
		if _, err := tx.Exec(link, blockData.ID, txData.ID); err != nil {
			return fmt.Errorf("link tx %s: %w", txData.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// ReadBlocks returns the committed blocks in the order they were written.
func (s *SQLite) ReadBlocks() ([]database.BlockData, error) {
	return query[database.BlockData](s.db, `SELECT document FROM blocks ORDER BY seq`)
}

// ReadPendingTxs returns the transactions that are not yet in a block.
func (s *SQLite) ReadPendingTxs() ([]database.TxData, error) {
	return query[database.TxData](s.db, `SELECT document FROM txs WHERE block_uuid IS NULL ORDER BY seq`)
}

// query decodes the JSON document column of every row.
func query[T any](db *sql.DB, q string) ([]T, error) {
	rows, err := db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var values []T
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		var value T
		if err := json.Unmarshal([]byte(doc), &value); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		values = append(values, value)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return values, nil
}
