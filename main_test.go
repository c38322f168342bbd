// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dotandev/xdrtrace/internal/cmd"
)

func TestRunExitCodes(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"success", nil, 0, ""},
		{"failure", errors.New("boom"), 1, "Error: boom\n"},
		{"interrupted", fmt.Errorf("analysis interrupted: %w", context.Canceled), cmd.InterruptExitCode, "Interrupted. Shutting down...\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			code := run(func() error { return tt.err }, &stderr)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.message, stderr.String())
		})
	}
}
