// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package scval decodes Soroban ScVal values and ScAddress identities into
// native Go values.
package scval

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindVoid Kind = iota
	KindBool
	KindU32
	KindI32
	KindU64
	KindI64
	KindU128
	KindI128
	KindSymbol
	KindString
	KindBytes
	KindAddress
	KindVec
	KindMap
	KindUnknown
)

var kindNames = [...]string{
	KindVoid:    "void",
	KindBool:    "bool",
	KindU32:     "u32",
	KindI32:     "i32",
	KindU64:     "u64",
	KindI64:     "i64",
	KindU128:    "u128",
	KindI128:    "i128",
	KindSymbol:  "symbol",
	KindString:  "string",
	KindBytes:   "bytes",
	KindAddress: "address",
	KindVec:     "vec",
	KindMap:     "map",
	KindUnknown: "unknown",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a decoded ScVal. The set of implementations is closed; anything the
// decoder does not recognise is reported as Unknown.
type Value interface {
	Kind() Kind
	String() string
	isValue()
}

type (
	Void   struct{}
	Bool   bool
	U32    uint32
	I32    int32
	U64    uint64
	I64    int64
	Symbol string
	String string
)

// U128 holds an unsigned 128-bit integer as its wire halves.
type U128 struct {
	Hi uint64
	Lo uint64
}

// I128 holds a signed 128-bit integer as its wire halves. Hi carries the sign.
type I128 struct {
	Hi int64
	Lo uint64
}

// Bytes keeps the raw byte sequence; String renders it as 0x-prefixed hex.
type Bytes struct {
	Raw []byte
}

// Vec is an ordered sequence. A decoded Vec is never nil.
type Vec []Value

// Map is keyed by the String rendering of each decoded key. A decoded Map is
// never nil.
//
// Distinct keys with the same rendering collapse into one entry and the later
// entry in the XDR map wins: Symbol("5") and U32(5) both map to "5".
type Map map[string]Value

// Unknown stands in for a tag the decoder has no variant for.
type Unknown struct {
	Tag string
}

var two128 = new(big.Int).Lsh(big.NewInt(1), 128)

// Big composes (hi << 64) | lo.
func (v U128) Big() *big.Int {
	n := new(big.Int).SetUint64(v.Hi)
	n.Lsh(n, 64)
	return n.Or(n, new(big.Int).SetUint64(v.Lo))
}

// Big composes the two halves as unsigned and subtracts 2^128 when the high
// half is negative.
func (v I128) Big() *big.Int {
	n := new(big.Int).SetUint64(uint64(v.Hi))
	n.Lsh(n, 64)
	n.Or(n, new(big.Int).SetUint64(v.Lo))
	if v.Hi < 0 {
		n.Sub(n, two128)
	}
	return n
}

func (Void) Kind() Kind    { return KindVoid }
func (Bool) Kind() Kind    { return KindBool }
func (U32) Kind() Kind     { return KindU32 }
func (I32) Kind() Kind     { return KindI32 }
func (U64) Kind() Kind     { return KindU64 }
func (I64) Kind() Kind     { return KindI64 }
func (U128) Kind() Kind    { return KindU128 }
func (I128) Kind() Kind    { return KindI128 }
func (Symbol) Kind() Kind  { return KindSymbol }
func (String) Kind() Kind  { return KindString }
func (Bytes) Kind() Kind   { return KindBytes }
func (Address) Kind() Kind { return KindAddress }
func (Vec) Kind() Kind     { return KindVec }
func (Map) Kind() Kind     { return KindMap }
func (Unknown) Kind() Kind { return KindUnknown }

func (Void) isValue()    {}
func (Bool) isValue()    {}
func (U32) isValue()     {}
func (I32) isValue()     {}
func (U64) isValue()     {}
func (I64) isValue()     {}
func (U128) isValue()    {}
func (I128) isValue()    {}
func (Symbol) isValue()  {}
func (String) isValue()  {}
func (Bytes) isValue()   {}
func (Address) isValue() {}
func (Vec) isValue()     {}
func (Map) isValue()     {}
func (Unknown) isValue() {}

func (Void) String() string     { return "void" }
func (v Bool) String() string   { return strconv.FormatBool(bool(v)) }
func (v U32) String() string    { return strconv.FormatUint(uint64(v), 10) }
func (v I32) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v U64) String() string    { return strconv.FormatUint(uint64(v), 10) }
func (v I64) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v U128) String() string   { return v.Big().String() }
func (v I128) String() string   { return v.Big().String() }
func (v Symbol) String() string { return string(v) }
func (v String) String() string { return string(v) }
func (v Bytes) String() string  { return "0x" + hex.EncodeToString(v.Raw) }
func (v Unknown) String() string {
	return "<" + v.Tag + ">"
}

func (v Vec) String() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// String renders entries sorted by key so output is stable.
func (v Map) String() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, v[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Text returns the text of a Symbol or String value.
func Text(v Value) (string, bool) {
	switch t := v.(type) {
	case Symbol:
		return string(t), true
	case String:
		return string(t), true
	}
	return "", false
}
