// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package trace

import "github.com/stellar/go/xdr"

// EventsFromMeta returns the diagnostic events embedded in a TransactionMeta.
// Sources that only carry result meta (Horizon) have no separate event list.
func EventsFromMeta(meta xdr.TransactionMeta) []xdr.DiagnosticEvent {
	switch meta.V {
	case 3:
		if meta.V3 != nil && meta.V3.SorobanMeta != nil {
			return meta.V3.SorobanMeta.DiagnosticEvents
		}
	case 4:
		if meta.V4 != nil {
			return meta.V4.DiagnosticEvents
		}
	}
	return nil
}
