// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package scval

// Native converts v into plain Go values suitable for encoding/json: nil,
// bool, fixed-width integers, *big.Int for 128-bit values, strings for
// symbols, bytes, addresses and unknown tags, []any and map[string]any.
func Native(v Value) any {
	switch t := v.(type) {
	case nil, Void:
		return nil
	case Bool:
		return bool(t)
	case U32:
		return uint32(t)
	case I32:
		return int32(t)
	case U64:
		return uint64(t)
	case I64:
		return int64(t)
	case U128:
		return t.Big()
	case I128:
		return t.Big()
	case Vec:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Native(e)
		}
		return out
	case Map:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Native(e)
		}
		return out
	}
	return v.String()
}
