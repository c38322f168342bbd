package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jsonrpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
}

// sorobanServer answers every JSON-RPC request, single or batched, with result.
func sorobanServer(t *testing.T, result map[string]any) *httptest.Server {
	t.Helper()
	reply := func(req jsonrpcRequest) map[string]any {
		assert.Equal(t, "getTransaction", req.Method)
		return map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")

		if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
			var batch []jsonrpcRequest
			if !assert.NoError(t, json.Unmarshal(trimmed, &batch)) {
				http.Error(w, "bad batch", http.StatusBadRequest)
				return
			}
			out := make([]map[string]any, len(batch))
			for i, req := range batch {
				out[i] = reply(req)
			}
			_ = json.NewEncoder(w).Encode(out)
			return
		}

		var req jsonrpcRequest
		if !assert.NoError(t, json.Unmarshal(body, &req)) {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(reply(req))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func horizonServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/hal+json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hash":            "h2",
			"successful":      true,
			"ledger":          77,
			"envelope_xdr":    "ENV",
			"result_meta_xdr": "META",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchTransactionFromSorobanRPC(t *testing.T) {
	srv := sorobanServer(t, map[string]any{
		"status":              "SUCCESS",
		"txHash":              "h1",
		"ledger":              61340384,
		"envelopeXdr":         "ENV",
		"resultMetaXdr":       "META",
		"diagnosticEventsXdr": []string{"EV1", "EV2"},
		"latestLedger":        61340400,
	})

	c, err := NewClient("mainnet", WithSorobanRPC(srv.URL))
	require.NoError(t, err)

	tx, err := c.FetchTransaction(context.Background(), "h1")
	require.NoError(t, err)
	assert.Equal(t, "h1", tx.Hash)
	assert.Equal(t, "SUCCESS", tx.Status)
	assert.Equal(t, uint32(61340384), tx.Ledger)
	assert.Equal(t, "META", tx.ResultMetaXdr)
	assert.Equal(t, []string{"EV1", "EV2"}, tx.DiagnosticEventsXdr)
}

func TestFetchTransactionFallsBackToHorizon(t *testing.T) {
	rpcSrv := sorobanServer(t, map[string]any{"status": "NOT_FOUND", "latestLedger": 10})
	hz := horizonServer(t)

	c, err := NewClient("testnet",
		WithSorobanRPC(rpcSrv.URL),
		WithHorizon(&horizonclient.Client{HorizonURL: hz.URL + "/", HTTP: hz.Client()}),
	)
	require.NoError(t, err)

	tx, err := c.FetchTransaction(context.Background(), "h2")
	require.NoError(t, err)
	assert.Equal(t, "h2", tx.Hash)
	assert.Equal(t, "SUCCESS", tx.Status)
	assert.Equal(t, uint32(77), tx.Ledger)
	assert.Equal(t, "META", tx.ResultMetaXdr)
	assert.Empty(t, tx.DiagnosticEventsXdr)
}

func TestFetchTransactionHonoursContext(t *testing.T) {
	c, err := NewClient("testnet")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.FetchTransaction(ctx, "h3")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClientNetworks(t *testing.T) {
	c, err := NewClient("testnet")
	require.NoError(t, err)
	assert.NotNil(t, c.Soroban)

	c, err = NewClient("mainnet")
	require.NoError(t, err)
	assert.Nil(t, c.Soroban)

	c, err = NewClient("testnet", WithSorobanRPC(""))
	require.NoError(t, err)
	assert.Nil(t, c.Soroban)

	_, err = NewClient("futurenet")
	assert.ErrorContains(t, err, "unsupported network")
}
