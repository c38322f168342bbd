// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gorillarpc "github.com/gorilla/rpc"
	gorillajson "github.com/gorilla/rpc/json"

	"github.com/dotandev/xdrtrace/internal/analyzer"
	"github.com/dotandev/xdrtrace/internal/logger"
	"github.com/dotandev/xdrtrace/internal/scval"
	"github.com/dotandev/xdrtrace/internal/txdata"
)

// ErrNoResolver is returned by Analysis.Resolve when the service was started
// without network access.
var ErrNoResolver = errors.New("transaction lookup by hash is not enabled")

// TxResolver looks up a transaction by hash.
type TxResolver interface {
	Resolve(ctx context.Context, hash string) (*txdata.Transaction, error)
}

// Analysis is the JSON-RPC service exposing the decoders.
type Analysis struct {
	analyzer *analyzer.Analyzer
	resolver TxResolver
}

type DecodeArgs struct {
	Transactions []txdata.Transaction `json:"transactions"`
}

type DecodeReply struct {
	Reports []analyzer.ReportView `json:"reports"`
}

type ResolveArgs struct {
	Hash string `json:"hash"`
}

type ScValArgs struct {
	Xdr string `json:"xdr"`
}

type ScValReply struct {
	Kind  string `json:"kind"`
	Text  string `json:"text"`
	Value any    `json:"value"`
}

// NewServer returns an http.Handler serving the Analysis service over
// JSON-RPC. resolver may be nil.
func NewServer(a *analyzer.Analyzer, resolver TxResolver) (http.Handler, error) {
	s := gorillarpc.NewServer()
	s.RegisterCodec(gorillajson.NewCodec(), "application/json")
	if err := s.RegisterService(&Analysis{analyzer: a, resolver: resolver}, ""); err != nil {
		return nil, fmt.Errorf("failed to register analysis service: %w", err)
	}
	return s, nil
}

// Decode analyzes the given transaction documents.
func (s *Analysis) Decode(r *http.Request, args *DecodeArgs, reply *DecodeReply) error {
	txs := make([]*txdata.Transaction, len(args.Transactions))
	for i := range args.Transactions {
		txs[i] = &args.Transactions[i]
	}

	reports, err := s.analyzer.AnalyzeAll(r.Context(), txs)
	if err != nil {
		return err
	}

	reply.Reports = make([]analyzer.ReportView, len(reports))
	for i, rep := range reports {
		reply.Reports[i] = rep.View()
	}
	logger.Logger.Info("Decoded transactions", "count", len(reports), "remote", r.RemoteAddr)
	return nil
}

// Resolve fetches a transaction by hash and analyzes it.
func (s *Analysis) Resolve(r *http.Request, args *ResolveArgs, reply *analyzer.ReportView) error {
	if s.resolver == nil {
		return ErrNoResolver
	}
	tx, err := s.resolver.Resolve(r.Context(), args.Hash)
	if err != nil {
		return err
	}
	*reply = s.analyzer.Analyze(r.Context(), tx).View()
	return nil
}

// ScVal decodes a single base64 ScVal.
func (s *Analysis) ScVal(r *http.Request, args *ScValArgs, reply *ScValReply) error {
	v, err := scval.DecodeBase64(args.Xdr)
	if err != nil {
		return err
	}
	reply.Kind = v.Kind().String()
	reply.Text = v.String()
	reply.Value = scval.Native(v)
	return nil
}
