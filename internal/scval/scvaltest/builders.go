// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package scvaltest builds XDR fixtures for tests.
package scvaltest

import (
	"testing"

	"github.com/stellar/go/xdr"

	"github.com/dotandev/xdrtrace/internal/scval"
)

func Void() xdr.ScVal {
	return xdr.ScVal{Type: xdr.ScValTypeScvVoid}
}

func Bool(b bool) xdr.ScVal {
	return xdr.ScVal{Type: xdr.ScValTypeScvBool, B: &b}
}

func U32(n uint32) xdr.ScVal {
	v := xdr.Uint32(n)
	return xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &v}
}

func I32(n int32) xdr.ScVal {
	v := xdr.Int32(n)
	return xdr.ScVal{Type: xdr.ScValTypeScvI32, I32: &v}
}

func U64(n uint64) xdr.ScVal {
	v := xdr.Uint64(n)
	return xdr.ScVal{Type: xdr.ScValTypeScvU64, U64: &v}
}

func I64(n int64) xdr.ScVal {
	v := xdr.Int64(n)
	return xdr.ScVal{Type: xdr.ScValTypeScvI64, I64: &v}
}

func U128(hi, lo uint64) xdr.ScVal {
	p := xdr.UInt128Parts{Hi: xdr.Uint64(hi), Lo: xdr.Uint64(lo)}
	return xdr.ScVal{Type: xdr.ScValTypeScvU128, U128: &p}
}

func I128(hi int64, lo uint64) xdr.ScVal {
	p := xdr.Int128Parts{Hi: xdr.Int64(hi), Lo: xdr.Uint64(lo)}
	return xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &p}
}

func Sym(s string) xdr.ScVal {
	v := xdr.ScSymbol(s)
	return xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &v}
}

func Str(s string) xdr.ScVal {
	v := xdr.ScString(s)
	return xdr.ScVal{Type: xdr.ScValTypeScvString, Str: &v}
}

func Bytes(b []byte) xdr.ScVal {
	v := xdr.ScBytes(b)
	return xdr.ScVal{Type: xdr.ScValTypeScvBytes, Bytes: &v}
}

func Vec(elems ...xdr.ScVal) xdr.ScVal {
	v := xdr.ScVec(elems)
	pv := &v
	return xdr.ScVal{Type: xdr.ScValTypeScvVec, Vec: &pv}
}

// Map builds a map from alternating key, value arguments.
func Map(kv ...xdr.ScVal) xdr.ScVal {
	m := make(xdr.ScMap, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m = append(m, xdr.ScMapEntry{Key: kv[i], Val: kv[i+1]})
	}
	pm := &m
	return xdr.ScVal{Type: xdr.ScValTypeScvMap, Map: &pm}
}

// ScAddress converts a decoded address back to XDR, failing the test on error.
func ScAddress(t testing.TB, a scval.Address) xdr.ScAddress {
	t.Helper()
	sa, err := a.ScAddress()
	if err != nil {
		t.Fatalf("address to xdr: %v", err)
	}
	return sa
}

func Addr(t testing.TB, a scval.Address) xdr.ScVal {
	t.Helper()
	sa := ScAddress(t, a)
	return xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &sa}
}

// Contract returns a deterministic contract address derived from seed.
func Contract(seed byte) scval.Address {
	var h [32]byte
	for i := range h {
		h[i] = seed + byte(i)
	}
	return scval.NewContractAddress(h)
}

// Account returns a deterministic account address derived from seed.
func Account(seed byte) scval.Address {
	var k [32]byte
	for i := range k {
		k[i] = seed ^ byte(i*7)
	}
	return scval.NewAccountAddress(k)
}
