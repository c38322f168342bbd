package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dotandev/xdrtrace/internal/analyzer"
	"github.com/dotandev/xdrtrace/internal/rpc"
	"github.com/dotandev/xdrtrace/internal/txdata"
	"github.com/dotandev/xdrtrace/internal/txsource"
)

var (
	txFile  string
	verbose bool
	noCache bool
)

var debugCmd = &cobra.Command{
	Use:   "debug [transaction-hash]",
	Short: "Decode the storage changes and call trace of a Soroban transaction",
	Long: `Decode a Soroban smart contract transaction.

The transaction is read from a getTransaction JSON document (--file) or
fetched from the Stellar network by hash. Its result meta is decoded into the
contract storage it read and wrote, and its diagnostic events into a nested
call trace.

Example:
  xdrtrace debug abc123def456... --network testnet
  xdrtrace debug abc123def456... --network mainnet --verbose
  xdrtrace debug --file ./tx.json --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDebug,
}

func init() {
	debugCmd.Flags().StringVarP(&txFile, "file", "f", "", "Path to a getTransaction JSON document (no network required)")
	debugCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	debugCmd.Flags().BoolVar(&noCache, "no-cache", false, "Always fetch from the network")
}

func runDebug(cmd *cobra.Command, cmdArgs []string) error {
	var (
		tx  *txdata.Transaction
		err error
	)

	switch {
	case txFile != "":
		tx, err = txdata.ReadFile(txFile)
	case len(cmdArgs) == 1:
		tx, err = fetchTransaction(cmd.Context(), cmdArgs[0])
	default:
		return fmt.Errorf("transaction hash is required when not using --file flag")
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if verbose && !jsonOutput {
		fmt.Fprintf(out, "Result meta XDR length: %d bytes\n", len(tx.ResultMetaXdr))
		fmt.Fprintf(out, "Diagnostic events: %d\n\n", len(tx.DiagnosticEventsXdr))
	}

	rep := analyzer.New(cfg.Workers).Analyze(cmd.Context(), tx)
	return writeReports(out, []*analyzer.Report{rep})
}

func fetchTransaction(ctx context.Context, hash string) (*txdata.Transaction, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}

	var opts []txsource.ResolverOption
	if !noCache {
		opts = append(opts, txsource.WithCache(cfg.CacheDir))
	}
	resolver := txsource.NewResolver(cfg.Network, client, opts...)
	defer resolver.Close()

	if !jsonOutput {
		color.Green("▶ Fetching transaction %s from %s...", hash, cfg.Network)
	}
	return resolver.Resolve(ctx, hash)
}

func newClient() (*rpc.Client, error) {
	var opts []rpc.ClientOption
	if cfg.SorobanRPCURL != "" {
		opts = append(opts, rpc.WithSorobanRPC(cfg.SorobanRPCURL))
	}
	client, err := rpc.NewClient(cfg.Network, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize RPC client: %w", err)
	}
	return client, nil
}

func writeReports(w io.Writer, reports []*analyzer.Report) error {
	if !jsonOutput {
		for _, rep := range reports {
			renderReport(w, rep)
		}
		return nil
	}

	views := make([]analyzer.ReportView, len(reports))
	for i, rep := range reports {
		views[i] = rep.View()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(views) == 1 {
		return enc.Encode(views[0])
	}
	return enc.Encode(views)
}
