// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package txdata reads the transaction documents the decoders consume.
package txdata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNoResultMeta indicates a transaction document without result meta XDR.
var ErrNoResultMeta = errors.New("transaction has no result meta XDR")

// Transaction is the subset of a Soroban RPC getTransaction result the
// decoders need.
type Transaction struct {
	Hash                string   `json:"txHash,omitempty"`
	Status              string   `json:"status,omitempty"`
	Ledger              uint32   `json:"ledger,omitempty"`
	EnvelopeXdr         string   `json:"envelopeXdr,omitempty"`
	ResultMetaXdr       string   `json:"resultMetaXdr"`
	DiagnosticEventsXdr []string `json:"diagnosticEventsXdr,omitempty"`
}

// rpcResponse is a JSON-RPC response wrapping a Transaction.
type rpcResponse struct {
	Result *Transaction    `json:"result"`
	Error  json.RawMessage `json:"error,omitempty"`
}

// Read decodes a transaction document. Both the bare result object and a
// full JSON-RPC response are accepted.
func Read(r io.Reader) (*Transaction, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction: %w", err)
	}

	var resp rpcResponse
	if err := json.Unmarshal(raw, &resp); err == nil && (resp.Result != nil || len(resp.Error) > 0) {
		if len(resp.Error) > 0 && string(resp.Error) != "null" {
			return nil, fmt.Errorf("rpc error: %s", resp.Error)
		}
		if resp.Result != nil {
			return resp.Result, resp.Result.validate()
		}
	}

	var tx Transaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, fmt.Errorf("failed to parse transaction: %w", err)
	}
	return &tx, tx.validate()
}

// ReadFile reads a transaction document from path. The file name stands in
// for the hash when the document does not carry one.
func ReadFile(path string) (*Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	tx, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if tx.Hash == "" {
		tx.Hash = path
	}
	return tx, nil
}

func (t *Transaction) validate() error {
	if t.ResultMetaXdr == "" && len(t.DiagnosticEventsXdr) == 0 {
		return ErrNoResultMeta
	}
	return nil
}
