// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package config resolves settings from a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	"github.com/dotandev/xdrtrace/internal/logger"
)

const envPrefix = "ERST_"

var envOnce sync.Once

// Config is the resolved configuration. Command-line flags override it.
type Config struct {
	Network      string
	CacheDir     string
	LogLevel     string
	Workers      int
	OTLPEndpoint string
	RPCAddr      string

	// SorobanRPCURL overrides the network's default Soroban RPC endpoint.
	SorobanRPCURL string
}

// Load reads .env (if present) and then the ERST_* environment variables.
func Load() (*Config, error) {
	ensureEnvLoaded()

	cfg := &Config{
		Network:      getenv("NETWORK", "testnet"),
		CacheDir:     getenv("CACHE_DIR", defaultCacheDir()),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		Workers:      runtime.NumCPU(),
		OTLPEndpoint: getenv("OTLP_ENDPOINT", ""),
		RPCAddr:      getenv("RPC_ADDR", "127.0.0.1:8545"),

		SorobanRPCURL: getenv("SOROBAN_RPC_URL", ""),
	}

	if v := getenv("WORKERS", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid %sWORKERS %q: must be a positive integer", envPrefix, v)
		}
		cfg.Workers = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that flags may also have set.
func (c *Config) Validate() error {
	switch c.Network {
	case "testnet", "mainnet", "public":
	default:
		return fmt.Errorf("unsupported network: %s (use 'testnet' or 'mainnet')", c.Network)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	return nil
}

func ensureEnvLoaded() {
	envOnce.Do(func() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Logger.Warn("Failed to load .env file", "error", err)
		}
	})
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(envPrefix + k))
	if v == "" {
		return def
	}
	return v
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "erst")
	}
	return filepath.Join(dir, "erst")
}
