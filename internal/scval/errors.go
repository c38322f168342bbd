// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package scval

import "errors"

var (
	// ErrMalformedBinary indicates input that does not parse as the expected XDR
	// structure, or nests deeper than MaxDepth
	ErrMalformedBinary = errors.New("malformed XDR")
	// ErrUnsupportedAddressKind indicates an ScAddress discriminant other than
	// account or contract
	ErrUnsupportedAddressKind = errors.New("unsupported address kind")
)
