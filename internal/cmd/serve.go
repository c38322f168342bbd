// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dotandev/xdrtrace/internal/analyzer"
	"github.com/dotandev/xdrtrace/internal/logger"
	"github.com/dotandev/xdrtrace/internal/rpc"
	"github.com/dotandev/xdrtrace/internal/txsource"
)

const shutdownTimeout = 5 * time.Second

var (
	serveAddr    string
	serveOffline bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the decoders over JSON-RPC",
	Long: `Expose the decoders as a JSON-RPC service at /rpc.

Methods:
  Analysis.Decode   decode getTransaction documents
  Analysis.Resolve  fetch a transaction by hash and decode it
  Analysis.ScVal    decode one base64 ScVal`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from ERST_RPC_ADDR)")
	serveCmd.Flags().BoolVar(&serveOffline, "offline", false, "Disable lookups by transaction hash")
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr := cfg.RPCAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	var resolver rpc.TxResolver
	if !serveOffline {
		client, err := newClient()
		if err != nil {
			return err
		}
		r := txsource.NewResolver(cfg.Network, client, txsource.WithCache(cfg.CacheDir))
		defer r.Close()
		resolver = r
	}

	handler, err := rpc.NewServer(analyzer.New(cfg.Workers), resolver)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/rpc", handler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Logger.Info("JSON-RPC service listening", "addr", addr, "network", cfg.Network, "offline", serveOffline)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-cmd.Context().Done():
		logger.Logger.Info("Shutting down JSON-RPC service")
		ctx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return cmd.Context().Err()
	}
}
