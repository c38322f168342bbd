// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dotandev/xdrtrace/internal/analyzer"
	"github.com/dotandev/xdrtrace/internal/txdata"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>...",
	Short: "Decode many getTransaction JSON documents concurrently",
	Long: `Decode several transactions at once. Each file is decoded independently
on a pool of --workers goroutines; reports are printed in argument order.

Example:
  xdrtrace analyze tx1.json tx2.json --workers 4 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, files []string) error {
	txs := make([]*txdata.Transaction, 0, len(files))
	for _, f := range files {
		tx, err := txdata.ReadFile(f)
		if err != nil {
			return err
		}
		txs = append(txs, tx)
	}

	reports, err := analyzer.New(cfg.Workers).AnalyzeAll(cmd.Context(), txs)
	if err != nil {
		return err
	}
	return writeReports(cmd.OutOrStdout(), reports)
}
