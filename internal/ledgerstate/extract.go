// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package ledgerstate extracts the contract storage a transaction read and
// wrote from its TransactionMeta.
package ledgerstate

import (
	"fmt"

	"github.com/stellar/go/xdr"

	"github.com/dotandev/xdrtrace/internal/scval"
)

// ChangeKind says which side of the transaction an entry was observed on.
type ChangeKind uint8

const (
	State ChangeKind = iota
	Created
	Updated
)

func (k ChangeKind) String() string {
	switch k {
	case State:
		return "state"
	case Created:
		return "created"
	case Updated:
		return "updated"
	}
	return fmt.Sprintf("change_kind(%d)", k)
}

// Change is one contract-data entry. Err is set, and the decoded fields may be
// partial, when the entry could not be decoded.
type Change struct {
	Contract           scval.Address
	Key                scval.Value
	Value              scval.Value
	Kind               ChangeKind
	Durability         string
	LastModifiedLedger uint32
	Err                error
}

// ParseMeta unmarshals a base64 TransactionMeta.
func ParseMeta(resultMetaXDR string) (xdr.TransactionMeta, error) {
	var meta xdr.TransactionMeta
	if err := xdr.SafeUnmarshalBase64(resultMetaXDR, &meta); err != nil {
		return meta, fmt.Errorf("%w: transaction meta: %v", scval.ErrMalformedBinary, err)
	}
	return meta, nil
}

// ExtractPreStateXDR parses a base64 TransactionMeta and calls ExtractPreState.
func ExtractPreStateXDR(resultMetaXDR string) ([]Change, error) {
	meta, err := ParseMeta(resultMetaXDR)
	if err != nil {
		return nil, err
	}
	return ExtractPreState(meta)
}

// ExtractPostStateXDR parses a base64 TransactionMeta and calls ExtractPostState.
func ExtractPostStateXDR(resultMetaXDR string) ([]Change, error) {
	meta, err := ParseMeta(resultMetaXDR)
	if err != nil {
		return nil, err
	}
	return ExtractPostState(meta)
}

// ExtractPreState returns the contract-data entries the first operation
// observed before executing, in meta order.
func ExtractPreState(meta xdr.TransactionMeta) ([]Change, error) {
	return extract(meta, func(c xdr.LedgerEntryChange) (*xdr.LedgerEntry, ChangeKind, bool) {
		if c.Type == xdr.LedgerEntryChangeTypeLedgerEntryState {
			return c.State, State, true
		}
		return nil, 0, false
	})
}

// ExtractPostState returns the contract-data entries the first operation
// created or updated, in meta order. Removed and restored entries are not
// reported.
func ExtractPostState(meta xdr.TransactionMeta) ([]Change, error) {
	return extract(meta, func(c xdr.LedgerEntryChange) (*xdr.LedgerEntry, ChangeKind, bool) {
		switch c.Type {
		case xdr.LedgerEntryChangeTypeLedgerEntryCreated:
			return c.Created, Created, true
		case xdr.LedgerEntryChangeTypeLedgerEntryUpdated:
			return c.Updated, Updated, true
		}
		return nil, 0, false
	})
}

type selectFunc func(xdr.LedgerEntryChange) (*xdr.LedgerEntry, ChangeKind, bool)

func extract(meta xdr.TransactionMeta, sel selectFunc) ([]Change, error) {
	changes, err := firstOperationChanges(meta)
	if err != nil {
		return nil, err
	}

	out := make([]Change, 0, len(changes))
	for _, c := range changes {
		entry, kind, ok := sel(c)
		if !ok {
			continue
		}
		if entry == nil {
			out = append(out, Change{Kind: kind, Err: fmt.Errorf("%w: %s change without entry", scval.ErrMalformedBinary, c.Type)})
			continue
		}
		if entry.Data.Type != xdr.LedgerEntryTypeContractData {
			continue
		}
		out = append(out, decodeEntry(*entry, kind))
	}
	return out, nil
}

func decodeEntry(entry xdr.LedgerEntry, kind ChangeKind) Change {
	ch := Change{Kind: kind, LastModifiedLedger: uint32(entry.LastModifiedLedgerSeq)}

	cd := entry.Data.ContractData
	if cd == nil {
		ch.Err = fmt.Errorf("%w: contract data entry without body", scval.ErrMalformedBinary)
		return ch
	}
	ch.Durability = durability(cd.Durability)

	contract, err := scval.DecodeAddress(cd.Contract)
	if err != nil {
		ch.Err = fmt.Errorf("failed to decode contract: %w", err)
		return ch
	}
	ch.Contract = contract

	if ch.Key, err = scval.Decode(cd.Key); err != nil {
		ch.Err = fmt.Errorf("failed to decode key: %w", err)
		return ch
	}
	if ch.Value, err = scval.Decode(cd.Val); err != nil {
		ch.Err = fmt.Errorf("failed to decode value: %w", err)
	}
	return ch
}

func durability(d xdr.ContractDataDurability) string {
	switch d {
	case xdr.ContractDataDurabilityPersistent:
		return "persistent"
	case xdr.ContractDataDurabilityTemporary:
		return "temporary"
	}
	return d.String()
}

// firstOperationChanges returns the ledger entry changes of the first
// operation for every TransactionMeta version this package knows.
func firstOperationChanges(meta xdr.TransactionMeta) (xdr.LedgerEntryChanges, error) {
	switch meta.V {
	case 0:
		if meta.Operations == nil || len(*meta.Operations) == 0 {
			return nil, nil
		}
		return (*meta.Operations)[0].Changes, nil
	case 1:
		if meta.V1 == nil {
			return nil, missingVersion(meta.V)
		}
		return firstOf(meta.V1.Operations), nil
	case 2:
		if meta.V2 == nil {
			return nil, missingVersion(meta.V)
		}
		return firstOf(meta.V2.Operations), nil
	case 3:
		if meta.V3 == nil {
			return nil, missingVersion(meta.V)
		}
		return firstOf(meta.V3.Operations), nil
	case 4:
		if meta.V4 == nil {
			return nil, missingVersion(meta.V)
		}
		if len(meta.V4.Operations) == 0 {
			return nil, nil
		}
		return meta.V4.Operations[0].Changes, nil
	}
	return nil, fmt.Errorf("%w: unsupported transaction meta version %d", scval.ErrMalformedBinary, meta.V)
}

func firstOf(ops []xdr.OperationMeta) xdr.LedgerEntryChanges {
	if len(ops) == 0 {
		return nil
	}
	return ops[0].Changes
}

func missingVersion(v int32) error {
	return fmt.Errorf("%w: transaction meta v%d without body", scval.ErrMalformedBinary, v)
}
