// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package analyzer runs the state extractor and trace reconstructor over
// batches of independent transactions.
package analyzer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/dotandev/xdrtrace/internal/ledgerstate"
	"github.com/dotandev/xdrtrace/internal/logger"
	"github.com/dotandev/xdrtrace/internal/telemetry"
	"github.com/dotandev/xdrtrace/internal/trace"
	"github.com/dotandev/xdrtrace/internal/txdata"
)

var tracer = telemetry.Tracer("github.com/dotandev/xdrtrace/internal/analyzer")

// Report is the decoded view of one transaction. Err is set when the result
// meta itself could not be parsed; the trace may still be present.
type Report struct {
	Hash      string
	Status    string
	Ledger    uint32
	PreState  []ledgerstate.Change
	PostState []ledgerstate.Change
	Trace     []trace.Record
	Err       error
}

// Analyzer decodes transactions on a bounded pool of workers.
type Analyzer struct {
	workers int
}

// New returns an Analyzer running at most workers transactions at once.
func New(workers int) *Analyzer {
	if workers <= 0 {
		workers = 1
	}
	return &Analyzer{workers: workers}
}

// Analyze decodes a single transaction.
func (a *Analyzer) Analyze(ctx context.Context, tx *txdata.Transaction) *Report {
	_, span := tracer.Start(ctx, "analyzer.Analyze")
	defer span.End()
	span.SetAttributes(attribute.String("tx.hash", tx.Hash))

	rep := &Report{Hash: tx.Hash, Status: tx.Status, Ledger: tx.Ledger}

	if tx.ResultMetaXdr != "" {
		meta, err := ledgerstate.ParseMeta(tx.ResultMetaXdr)
		if err != nil {
			rep.Err = err
		} else {
			if rep.PreState, err = ledgerstate.ExtractPreState(meta); err == nil {
				rep.PostState, err = ledgerstate.ExtractPostState(meta)
			}
			if err != nil {
				rep.Err = err
			}
			if len(tx.DiagnosticEventsXdr) == 0 {
				rep.Trace = trace.Reconstruct(trace.EventsFromMeta(meta))
			}
		}
	}
	if len(tx.DiagnosticEventsXdr) > 0 {
		rep.Trace = trace.ReconstructXDR(tx.DiagnosticEventsXdr)
	}

	span.SetAttributes(
		attribute.Int("state.pre", len(rep.PreState)),
		attribute.Int("state.post", len(rep.PostState)),
		attribute.Int("trace.records", len(rep.Trace)),
	)
	if rep.Err != nil {
		span.RecordError(rep.Err)
		span.SetStatus(codes.Error, rep.Err.Error())
		logger.Logger.Warn("Transaction meta could not be decoded", "hash", tx.Hash, "error", rep.Err)
	}

	logger.Logger.Debug("Transaction analyzed",
		"hash", tx.Hash,
		"pre_state", len(rep.PreState),
		"post_state", len(rep.PostState),
		"trace_records", len(rep.Trace),
	)
	return rep
}

// AnalyzeAll decodes txs concurrently and returns reports in input order.
// Per-transaction decode failures are carried in Report.Err; the error
// return is only set when ctx is cancelled.
func (a *Analyzer) AnalyzeAll(ctx context.Context, txs []*txdata.Transaction) ([]*Report, error) {
	ctx, span := tracer.Start(ctx, "analyzer.AnalyzeAll")
	defer span.End()
	span.SetAttributes(attribute.Int("tx.count", len(txs)), attribute.Int("workers", a.workers))

	reports := make([]*Report, len(txs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for i, tx := range txs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = a.Analyze(gctx, tx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("analysis interrupted: %w", err)
	}
	return reports, nil
}
