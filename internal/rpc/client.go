package rpc

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stellar/go/clients/horizonclient"
	rpcclient "github.com/stellar/go/clients/rpcclient"
	protocol "github.com/stellar/go/protocols/rpc"

	"github.com/dotandev/xdrtrace/internal/logger"
	"github.com/dotandev/xdrtrace/internal/txdata"
)

// DefaultTestnetRPC is the public Soroban RPC endpoint for testnet.
const DefaultTestnetRPC = "https://soroban-testnet.stellar.org"

// Client handles interactions with the Stellar Network
type Client struct {
	Horizon *horizonclient.Client
	Soroban *rpcclient.Client
	Network string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithSorobanRPC points the client at a Soroban RPC endpoint. An empty url
// disables Soroban RPC and leaves Horizon as the only source.
func WithSorobanRPC(url string) ClientOption {
	return func(c *Client) {
		if url == "" {
			c.Soroban = nil
			return
		}
		c.Soroban = rpcclient.NewClient(url, http.DefaultClient)
	}
}

// WithHorizon replaces the network's default Horizon client.
func WithHorizon(h *horizonclient.Client) ClientOption {
	return func(c *Client) {
		c.Horizon = h
	}
}

// NewClient creates a new RPC client for the specified network
func NewClient(network string, opts ...ClientOption) (*Client, error) {
	c := &Client{Network: network}

	switch network {
	case "testnet":
		c.Horizon = horizonclient.DefaultTestNetClient
		c.Soroban = rpcclient.NewClient(DefaultTestnetRPC, http.DefaultClient)
	case "mainnet", "public":
		c.Horizon = horizonclient.DefaultPublicNetClient
	default:
		return nil, fmt.Errorf("unsupported network: %s (use 'testnet' or 'mainnet')", network)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchTransaction fetches the transaction through Soroban RPC getTransaction,
// which carries the diagnostic events. Transactions outside the RPC retention
// window, or a network without an RPC endpoint, fall back to Horizon; the
// trace is then read from the events embedded in the result meta.
func (c *Client) FetchTransaction(ctx context.Context, hash string) (*txdata.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if c.Soroban != nil {
		tx, err := c.fetchSoroban(ctx, hash)
		if err == nil && tx != nil {
			return tx, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err != nil {
			logger.Logger.Warn("Soroban RPC fetch failed, falling back to Horizon", "hash", hash, "error", err)
		} else {
			logger.Logger.Info("Transaction not found on Soroban RPC, falling back to Horizon", "hash", hash)
		}
	}

	if c.Horizon == nil {
		return nil, fmt.Errorf("failed to fetch transaction: no Horizon client for %s", c.Network)
	}
	return c.fetchHorizon(ctx, hash)
}

// fetchSoroban returns nil, nil when the RPC node does not know the hash.
func (c *Client) fetchSoroban(ctx context.Context, hash string) (*txdata.Transaction, error) {
	resp, err := c.Soroban.GetTransaction(ctx, protocol.GetTransactionRequest{Hash: hash})
	if err != nil {
		return nil, fmt.Errorf("getTransaction: %w", err)
	}
	if resp.Status == protocol.TransactionStatusNotFound {
		return nil, nil
	}

	txHash := resp.TransactionHash
	if txHash == "" {
		txHash = hash
	}
	return &txdata.Transaction{
		Hash:                txHash,
		Status:              resp.Status,
		Ledger:              resp.Ledger,
		EnvelopeXdr:         resp.EnvelopeXDR,
		ResultMetaXdr:       resp.ResultMetaXDR,
		DiagnosticEventsXdr: resp.DiagnosticEventsXDR,
	}, nil
}

// fetchHorizon waits for the Horizon request or ctx, whichever ends first.
// horizonclient takes no context, so a cancelled request is abandoned rather
// than aborted.
func (c *Client) fetchHorizon(ctx context.Context, hash string) (*txdata.Transaction, error) {
	type result struct {
		tx  *txdata.Transaction
		err error
	}
	done := make(chan result, 1)

	go func() {
		tx, err := c.Horizon.TransactionDetail(hash)
		if err != nil {
			done <- result{err: fmt.Errorf("failed to fetch transaction: %w", err)}
			return
		}

		status := protocol.TransactionStatusFailed
		if tx.Successful {
			status = protocol.TransactionStatusSuccess
		}
		done <- result{tx: &txdata.Transaction{
			Hash:          tx.Hash,
			Status:        status,
			Ledger:        uint32(tx.Ledger),
			EnvelopeXdr:   tx.EnvelopeXdr,
			ResultMetaXdr: tx.ResultMetaXdr,
		}}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.tx, r.err
	}
}
