package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dotandev/xdrtrace/internal/config"
	"github.com/dotandev/xdrtrace/internal/logger"
	"github.com/dotandev/xdrtrace/internal/telemetry"
)

// InterruptExitCode is the exit status after SIGINT/SIGTERM.
const InterruptExitCode = 130

var (
	cfg              *config.Config
	telemetryCleanup func(context.Context) error

	networkFlag  string
	cacheDirFlag string
	logLevelFlag string
	workersFlag  int
	otlpFlag     string
	rpcURLFlag   string
	jsonOutput   bool
)

var rootCmd = &cobra.Command{
	Use:   "xdrtrace",
	Short: "xdrtrace decodes Soroban execution records",
	Long: `xdrtrace turns the raw XDR a Soroban transaction leaves behind into
inspectable data:
  - Decoding ScVal values into typed values
  - Extracting the contract storage a transaction read and wrote
  - Rebuilding the nested call trace from diagnostic events`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute runs the root command. SIGINT and SIGTERM cancel its context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// IsInterrupted reports whether err stems from a cancelled command context.
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&networkFlag, "network", "n", "", "Stellar network to use (testnet, mainnet)")
	pf.StringVar(&cacheDirFlag, "cache-dir", "", "Directory for the transaction cache")
	pf.StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	pf.IntVar(&workersFlag, "workers", 0, "Number of transactions decoded concurrently")
	pf.StringVar(&otlpFlag, "otlp-endpoint", "", "OTLP/HTTP endpoint (host:port) for traces")
	pf.StringVar(&rpcURLFlag, "rpc-url", "", "Soroban RPC endpoint used to fetch transactions by hash")
	pf.BoolVar(&jsonOutput, "json", false, "Print JSON instead of formatted text")

	// Register commands
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(scvalCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("network") {
		loaded.Network = networkFlag
	}
	if flags.Changed("cache-dir") {
		loaded.CacheDir = cacheDirFlag
	}
	if flags.Changed("log-level") {
		loaded.LogLevel = logLevelFlag
	}
	if flags.Changed("workers") {
		loaded.Workers = workersFlag
	}
	if flags.Changed("otlp-endpoint") {
		loaded.OTLPEndpoint = otlpFlag
	}
	if flags.Changed("rpc-url") {
		loaded.SorobanRPCURL = rpcURLFlag
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	logger.SetLevel(cfg.LogLevel)

	telemetryCleanup, err = telemetry.Init(cmd.Context(), cfg.OTLPEndpoint)
	return err
}

func teardown(cmd *cobra.Command, _ []string) error {
	if telemetryCleanup == nil {
		return nil
	}
	// The command context may already be cancelled; flush regardless.
	return telemetryCleanup(context.WithoutCancel(cmd.Context()))
}
