// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package scval

import (
	"fmt"

	"github.com/stellar/go/xdr"
)

// MaxDepth bounds vec/map nesting accepted by Decode.
const MaxDepth = 64

// DecodeBase64 unmarshals a base64 XDR ScVal and decodes it.
func DecodeBase64(b64 string) (Value, error) {
	var v xdr.ScVal
	if err := xdr.SafeUnmarshalBase64(b64, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBinary, err)
	}
	return Decode(v)
}

// Decode converts an ScVal into a Value. Tags without a Value variant decode
// to Unknown; the only failures are malformed unions, nesting beyond MaxDepth
// and address kinds DecodeAddress rejects.
func Decode(v xdr.ScVal) (Value, error) {
	return decode(v, 0)
}

// DecodeAll decodes each value in order.
func DecodeAll(vals []xdr.ScVal) ([]Value, error) {
	out := make([]Value, 0, len(vals))
	for i, v := range vals {
		dv, err := Decode(v)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out = append(out, dv)
	}
	return out, nil
}

func decode(v xdr.ScVal, depth int) (Value, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("%w: value nested deeper than %d", ErrMalformedBinary, MaxDepth)
	}

	switch v.Type {
	case xdr.ScValTypeScvVoid:
		return Void{}, nil
	case xdr.ScValTypeScvBool:
		if v.B == nil {
			return nil, missingArm(v.Type)
		}
		return Bool(*v.B), nil
	case xdr.ScValTypeScvU32:
		if v.U32 == nil {
			return nil, missingArm(v.Type)
		}
		return U32(*v.U32), nil
	case xdr.ScValTypeScvI32:
		if v.I32 == nil {
			return nil, missingArm(v.Type)
		}
		return I32(*v.I32), nil
	case xdr.ScValTypeScvU64:
		if v.U64 == nil {
			return nil, missingArm(v.Type)
		}
		return U64(*v.U64), nil
	case xdr.ScValTypeScvI64:
		if v.I64 == nil {
			return nil, missingArm(v.Type)
		}
		return I64(*v.I64), nil
	case xdr.ScValTypeScvU128:
		if v.U128 == nil {
			return nil, missingArm(v.Type)
		}
		return U128{Hi: uint64(v.U128.Hi), Lo: uint64(v.U128.Lo)}, nil
	case xdr.ScValTypeScvI128:
		if v.I128 == nil {
			return nil, missingArm(v.Type)
		}
		return I128{Hi: int64(v.I128.Hi), Lo: uint64(v.I128.Lo)}, nil
	case xdr.ScValTypeScvSymbol:
		if v.Sym == nil {
			return nil, missingArm(v.Type)
		}
		return Symbol(*v.Sym), nil
	case xdr.ScValTypeScvString:
		if v.Str == nil {
			return nil, missingArm(v.Type)
		}
		return String(*v.Str), nil
	case xdr.ScValTypeScvBytes:
		if v.Bytes == nil {
			return Bytes{Raw: []byte{}}, nil
		}
		raw := make([]byte, len(*v.Bytes))
		copy(raw, *v.Bytes)
		return Bytes{Raw: raw}, nil
	case xdr.ScValTypeScvAddress:
		if v.Address == nil {
			return nil, missingArm(v.Type)
		}
		addr, err := DecodeAddress(*v.Address)
		if err != nil {
			return nil, err
		}
		return addr, nil
	case xdr.ScValTypeScvVec:
		var elems xdr.ScVec
		if v.Vec != nil && *v.Vec != nil {
			elems = **v.Vec
		}
		out := make(Vec, 0, len(elems))
		for _, e := range elems {
			dv, err := decode(e, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, dv)
		}
		return out, nil
	case xdr.ScValTypeScvMap:
		var entries xdr.ScMap
		if v.Map != nil && *v.Map != nil {
			entries = **v.Map
		}
		out := make(Map, len(entries))
		for _, e := range entries {
			k, err := decode(e.Key, depth+1)
			if err != nil {
				return nil, err
			}
			val, err := decode(e.Val, depth+1)
			if err != nil {
				return nil, err
			}
			out[k.String()] = val
		}
		return out, nil
	}
	return Unknown{Tag: tagName(v.Type)}, nil
}

func tagName(t xdr.ScValType) string {
	if name := t.String(); name != "" {
		return name
	}
	return fmt.Sprintf("ScValType(%d)", int32(t))
}

func missingArm(t xdr.ScValType) error {
	return fmt.Errorf("%w: %s without a value", ErrMalformedBinary, tagName(t))
}
