// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package cache keeps fetched transaction documents in a local SQLite file so
// repeat analyses of the same hash skip the network.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dotandev/xdrtrace/internal/logger"
	"github.com/dotandev/xdrtrace/internal/txdata"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	network     TEXT NOT NULL,
	hash        TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT '',
	ledger      INTEGER NOT NULL DEFAULT 0,
	result_meta TEXT NOT NULL,
	diagnostics TEXT NOT NULL DEFAULT '[]',
	fetched_at  INTEGER NOT NULL,
	PRIMARY KEY (network, hash)
)`

// TxCache stores transaction documents keyed by network and hash.
type TxCache struct {
	db *sql.DB
}

// Open creates dir if needed and opens (or creates) dir/transactions.db.
func Open(dir string) (*TxCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "transactions.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate cache: %w", err)
	}
	return &TxCache{db: db}, nil
}

// Get returns the cached transaction, or nil on a miss.
func (c *TxCache) Get(network, hash string) *txdata.Transaction {
	row := c.db.QueryRow(
		`SELECT status, ledger, result_meta, diagnostics FROM transactions WHERE network = ? AND hash = ?`,
		network, hash,
	)

	tx := &txdata.Transaction{Hash: hash}
	var diagnostics string
	if err := row.Scan(&tx.Status, &tx.Ledger, &tx.ResultMetaXdr, &diagnostics); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Logger.Warn("Failed to read cached transaction", "hash", hash, "error", err)
		}
		return nil
	}
	if err := json.Unmarshal([]byte(diagnostics), &tx.DiagnosticEventsXdr); err != nil {
		logger.Logger.Warn("Discarding corrupt cache entry", "hash", hash, "error", err)
		return nil
	}
	return tx
}

// Put inserts or replaces the transaction.
func (c *TxCache) Put(network string, tx *txdata.Transaction) error {
	diagnostics, err := json.Marshal(tx.DiagnosticEventsXdr)
	if err != nil {
		return fmt.Errorf("failed to encode diagnostic events: %w", err)
	}
	if tx.DiagnosticEventsXdr == nil {
		diagnostics = []byte("[]")
	}

	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO transactions (network, hash, status, ledger, result_meta, diagnostics, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		network, tx.Hash, tx.Status, tx.Ledger, tx.ResultMetaXdr, string(diagnostics), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to cache transaction %s: %w", tx.Hash, err)
	}
	return nil
}

// Invalidate removes one transaction.
func (c *TxCache) Invalidate(network, hash string) error {
	if _, err := c.db.Exec(`DELETE FROM transactions WHERE network = ? AND hash = ?`, network, hash); err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", hash, err)
	}
	return nil
}

// Clear removes every cached transaction.
func (c *TxCache) Clear() error {
	if _, err := c.db.Exec(`DELETE FROM transactions`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

func (c *TxCache) Close() error {
	return c.db.Close()
}
