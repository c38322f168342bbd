// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotandev/xdrtrace/internal/analyzer"
	"github.com/dotandev/xdrtrace/internal/scval/scvaltest"
	"github.com/dotandev/xdrtrace/internal/txdata"
)

type rpcReply struct {
	Result json.RawMessage `json:"result"`
	Error  any             `json:"error"`
}

func post(t *testing.T, h http.Handler, method string, params any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"method": method,
		"params": []any{params},
		"id":     1,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func call(t *testing.T, h http.Handler, method string, params any) rpcReply {
	t.Helper()
	rec := post(t, h, method, params)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var reply rpcReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	return reply
}

type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, hash string) (*txdata.Transaction, error) {
	ev := xdr.DiagnosticEvent{Event: xdr.ContractEvent{
		Type: xdr.ContractEventTypeDiagnostic,
		Body: xdr.ContractEventBody{V0: &xdr.ContractEventV0{
			Topics: []xdr.ScVal{scvaltest.Sym("fn_return"), scvaltest.Sym("lastprice")},
			Data:   scvaltest.I128(0, 1_067_372_830),
		}},
	}}
	b64, err := xdr.MarshalBase64(ev)
	if err != nil {
		return nil, err
	}
	return &txdata.Transaction{Hash: hash, DiagnosticEventsXdr: []string{b64}}, nil
}

func TestScValMethod(t *testing.T) {
	h, err := NewServer(analyzer.New(1), nil)
	require.NoError(t, err)

	b64, err := xdr.MarshalBase64(scvaltest.I128(-1, ^uint64(0)))
	require.NoError(t, err)

	reply := call(t, h, "Analysis.ScVal", ScValArgs{Xdr: b64})
	require.Nil(t, reply.Error)

	var got ScValReply
	require.NoError(t, json.Unmarshal(reply.Result, &got))
	assert.Equal(t, "i128", got.Kind)
	assert.Equal(t, "-1", got.Text)
}

func TestDecodeMethod(t *testing.T) {
	h, err := NewServer(analyzer.New(2), nil)
	require.NoError(t, err)

	tx, err := stubResolver{}.Resolve(context.Background(), "h1")
	require.NoError(t, err)

	reply := call(t, h, "Analysis.Decode", DecodeArgs{Transactions: []txdata.Transaction{*tx, *tx}})
	require.Nil(t, reply.Error)

	var got DecodeReply
	require.NoError(t, json.Unmarshal(reply.Result, &got))
	require.Len(t, got.Reports, 2)
	require.Len(t, got.Reports[0].Trace, 1)
	assert.Equal(t, "return", got.Reports[0].Trace[0].Kind)
	assert.Equal(t, "lastprice", got.Reports[0].Trace[0].Function)
}

func TestResolveMethod(t *testing.T) {
	h, err := NewServer(analyzer.New(1), stubResolver{})
	require.NoError(t, err)

	reply := call(t, h, "Analysis.Resolve", ResolveArgs{Hash: "abc"})
	require.Nil(t, reply.Error)

	var got analyzer.ReportView
	require.NoError(t, json.Unmarshal(reply.Result, &got))
	assert.Equal(t, "abc", got.Hash)

	h, err = NewServer(analyzer.New(1), nil)
	require.NoError(t, err)
	rec := post(t, h, "Analysis.Resolve", ResolveArgs{Hash: "abc"})
	assert.Contains(t, rec.Body.String(), ErrNoResolver.Error())
}
