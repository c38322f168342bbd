// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package ledgerstate

import "github.com/dotandev/xdrtrace/internal/scval"

// KeyName summarises a storage key: the first element of a vector key (the
// enum variant name in Soroban storage layouts), otherwise the whole key.
func KeyName(key scval.Value) string {
	if key == nil {
		return ""
	}
	if v, ok := key.(scval.Vec); ok && len(v) > 0 {
		return v[0].String()
	}
	return key.String()
}

// Pair joins a post-state entry with the pre-state entry for the same
// contract and key. Before is nil for entries the transaction created.
type Pair struct {
	Before *Change
	After  Change
}

// Diff pairs each post-state entry with its pre-state counterpart. Entries
// carrying an Err are skipped.
func Diff(pre, post []Change) []Pair {
	index := make(map[string]int, len(pre))
	for i, c := range pre {
		if c.Err != nil {
			continue
		}
		index[identity(c)] = i
	}

	pairs := make([]Pair, 0, len(post))
	for _, c := range post {
		if c.Err != nil {
			continue
		}
		p := Pair{After: c}
		if i, ok := index[identity(c)]; ok {
			before := pre[i]
			p.Before = &before
		}
		pairs = append(pairs, p)
	}
	return pairs
}

func identity(c Change) string {
	return c.Contract.String() + "/" + c.Durability + "/" + c.Key.String()
}
