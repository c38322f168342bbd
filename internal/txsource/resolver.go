// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package txsource resolves transaction documents by hash, from the local
// cache when possible and from the network otherwise.
package txsource

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dotandev/xdrtrace/internal/cache"
	"github.com/dotandev/xdrtrace/internal/logger"
	"github.com/dotandev/xdrtrace/internal/txdata"
)

// ErrInvalidHash indicates a transaction hash that is not 32 hex-encoded bytes.
var ErrInvalidHash = errors.New("transaction hash must be 64 hex characters")

// Fetcher retrieves a transaction from the network.
type Fetcher interface {
	FetchTransaction(ctx context.Context, hash string) (*txdata.Transaction, error)
}

// Resolver coordinates fetching transactions from the network with an
// optional local cache.
type Resolver struct {
	network string
	fetcher Fetcher
	cache   *cache.TxCache
}

// ResolverOption is a functional option for configuring the Resolver.
type ResolverOption func(*Resolver)

// WithCache enables caching in the specified directory.
func WithCache(cacheDir string) ResolverOption {
	return func(r *Resolver) {
		c, err := cache.Open(cacheDir)
		if err != nil {
			logger.Logger.Warn("Failed to open transaction cache, caching disabled", "error", err)
			return
		}
		r.cache = c
	}
}

// NewResolver creates a Resolver for network that fetches through f.
func NewResolver(network string, f Fetcher, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		network: network,
		fetcher: f,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the transaction with the given hash.
func (r *Resolver) Resolve(ctx context.Context, hash string) (*txdata.Transaction, error) {
	if err := validateHash(hash); err != nil {
		return nil, fmt.Errorf("invalid transaction hash: %w", err)
	}

	if r.cache != nil {
		if cached := r.cache.Get(r.network, hash); cached != nil {
			logger.Logger.Info("Transaction resolved from cache", "hash", hash)
			return cached, nil
		}
	}

	tx, err := r.fetcher.FetchTransaction(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve transaction %s: %w", hash, err)
	}

	if r.cache != nil {
		if err := r.cache.Put(r.network, tx); err != nil {
			logger.Logger.Warn("Failed to cache transaction", "hash", hash, "error", err)
		}
	}

	logger.Logger.Info("Transaction resolved from network",
		"hash", hash,
		"network", r.network,
		"ledger", tx.Ledger,
	)

	return tx, nil
}

// InvalidateCache removes a specific transaction from the cache.
func (r *Resolver) InvalidateCache(hash string) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Invalidate(r.network, hash)
}

// ClearCache removes all cached transactions.
func (r *Resolver) ClearCache() error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Clear()
}

// Close releases the cache, if any.
func (r *Resolver) Close() error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Close()
}

func validateHash(hash string) error {
	if len(hash) != 64 {
		return ErrInvalidHash
	}
	if _, err := hex.DecodeString(hash); err != nil {
		return ErrInvalidHash
	}
	return nil
}
