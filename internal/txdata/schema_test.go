// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package txdata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBareResult(t *testing.T) {
	tx, err := Read(strings.NewReader(`{
		"txHash": "ae72",
		"status": "SUCCESS",
		"ledger": 61340384,
		"resultMetaXdr": "AAAA",
		"diagnosticEventsXdr": ["AQ==", "Ag=="]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "ae72", tx.Hash)
	assert.Equal(t, uint32(61340384), tx.Ledger)
	assert.Equal(t, []string{"AQ==", "Ag=="}, tx.DiagnosticEventsXdr)
}

func TestReadRPCEnvelope(t *testing.T) {
	tx, err := Read(strings.NewReader(`{"jsonrpc":"2.0","id":1,"result":{"status":"SUCCESS","resultMetaXdr":"AAAA"}}`))
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", tx.Status)
	assert.Equal(t, "AAAA", tx.ResultMetaXdr)

	_, err = Read(strings.NewReader(`{"jsonrpc":"2.0","id":1,"error":{"code":-32600,"message":"bad"}}`))
	assert.ErrorContains(t, err, "rpc error")
}

func TestReadRequiresPayload(t *testing.T) {
	_, err := Read(strings.NewReader(`{"status":"NOT_FOUND"}`))
	assert.ErrorIs(t, err, ErrNoResultMeta)

	_, err = Read(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestReadFileDefaultsHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tx1.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"resultMetaXdr":"AAAA"}`), 0o600))

	tx, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, tx.Hash)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
