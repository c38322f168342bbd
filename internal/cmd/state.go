// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dotandev/xdrtrace/internal/analyzer"
	"github.com/dotandev/xdrtrace/internal/ledgerstate"
	"github.com/dotandev/xdrtrace/internal/txdata"
)

var (
	txHash   string
	showDiff bool
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the contract storage a transaction read and wrote",
	Long: `Decode the first operation's ledger changes into the contract storage
entries as they were before the transaction and as it left them.

Example:
  xdrtrace state --file ./tx.json
  xdrtrace state --tx abc123def456... --network testnet --diff`,
	Args: cobra.NoArgs,
	RunE: runState,
}

func init() {
	stateCmd.Flags().StringVarP(&txFile, "file", "f", "", "Path to a getTransaction JSON document")
	stateCmd.Flags().StringVar(&txHash, "tx", "", "Transaction hash to fetch from the network")
	stateCmd.Flags().BoolVar(&showDiff, "diff", false, "Pair each written entry with its previous value")
	stateCmd.MarkFlagsMutuallyExclusive("file", "tx")
}

type pairView struct {
	Before *analyzer.ChangeView `json:"before"`
	After  analyzer.ChangeView  `json:"after"`
}

type stateView struct {
	PreState  []analyzer.ChangeView `json:"pre_state"`
	PostState []analyzer.ChangeView `json:"post_state"`
	Diff      []pairView            `json:"diff,omitempty"`
}

func runState(cmd *cobra.Command, _ []string) error {
	tx, err := loadTransaction(cmd.Context(), txFile, txHash)
	if err != nil {
		return err
	}
	if tx.ResultMetaXdr == "" {
		return txdata.ErrNoResultMeta
	}

	pre, err := ledgerstate.ExtractPreStateXDR(tx.ResultMetaXdr)
	if err != nil {
		return err
	}
	post, err := ledgerstate.ExtractPostStateXDR(tx.ResultMetaXdr)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		view := stateView{
			PreState:  analyzer.ChangeViews(pre),
			PostState: analyzer.ChangeViews(post),
		}
		if showDiff {
			for _, p := range ledgerstate.Diff(pre, post) {
				pv := pairView{After: analyzer.ChangeViews([]ledgerstate.Change{p.After})[0]}
				if p.Before != nil {
					before := analyzer.ChangeViews([]ledgerstate.Change{*p.Before})[0]
					pv.Before = &before
				}
				view.Diff = append(view.Diff, pv)
			}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	headerColor.Fprintf(out, "Transaction %s\n\n", tx.Hash)
	if showDiff {
		renderDiff(out, ledgerstate.Diff(pre, post))
		return nil
	}
	renderState(out, "Pre-state", pre)
	renderState(out, "Post-state", post)
	return nil
}

// loadTransaction reads the document at file, or fetches hash when no file
// is given.
func loadTransaction(ctx context.Context, file, hash string) (*txdata.Transaction, error) {
	switch {
	case file != "":
		return txdata.ReadFile(file)
	case hash != "":
		return fetchTransaction(ctx, hash)
	}
	return nil, fmt.Errorf("either --file or --tx is required")
}

func renderDiff(w io.Writer, pairs []ledgerstate.Pair) {
	headerColor.Fprintf(w, "Changes (%d entries)\n", len(pairs))
	for _, p := range pairs {
		label := "created"
		if p.Before != nil {
			label = "updated"
		}
		fmt.Fprintf(w, "  %s [%s] %s\n", shortID(p.After.Contract.String()), ledgerstate.KeyName(p.After.Key), dimColor.Sprint(label))
		if p.Before != nil {
			errorColor.Fprintf(w, "    - %s\n", truncate(p.Before.Value.String(), maxResultWidth))
		}
		callColor.Fprintf(w, "    + %s\n", truncate(p.After.Value.String(), maxResultWidth))
	}
	fmt.Fprintln(w)
}
