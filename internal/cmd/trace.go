// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/dotandev/xdrtrace/internal/analyzer"
	"github.com/dotandev/xdrtrace/internal/ledgerstate"
	"github.com/dotandev/xdrtrace/internal/trace"
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Rebuild the nested call trace of a transaction",
	Long: `Rebuild the call trace from a transaction's diagnostic events. When the
document carries no diagnosticEventsXdr, the events embedded in the result
meta are used.

Example:
  xdrtrace trace --file ./tx.json
  xdrtrace trace --tx abc123def456... --json`,
	Args: cobra.NoArgs,
	RunE: runTrace,
}

func init() {
	traceCmd.Flags().StringVarP(&txFile, "file", "f", "", "Path to a getTransaction JSON document")
	traceCmd.Flags().StringVar(&txHash, "tx", "", "Transaction hash to fetch from the network")
	traceCmd.MarkFlagsMutuallyExclusive("file", "tx")
}

func runTrace(cmd *cobra.Command, _ []string) error {
	tx, err := loadTransaction(cmd.Context(), txFile, txHash)
	if err != nil {
		return err
	}

	var records []trace.Record
	if len(tx.DiagnosticEventsXdr) > 0 {
		records = trace.ReconstructXDR(tx.DiagnosticEventsXdr)
	} else {
		meta, err := ledgerstate.ParseMeta(tx.ResultMetaXdr)
		if err != nil {
			return err
		}
		records = trace.Reconstruct(trace.EventsFromMeta(meta))
	}

	out := cmd.OutOrStdout()
	if !jsonOutput {
		renderTrace(out, records)
		return nil
	}

	views := make([]analyzer.RecordView, 0, len(records))
	for _, r := range records {
		views = append(views, analyzer.RecordViewOf(r))
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(views)
}
