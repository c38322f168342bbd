// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package ledgerstate

import (
	"testing"

	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotandev/xdrtrace/internal/scval"
	"github.com/dotandev/xdrtrace/internal/scval/scvaltest"
)

func contractEntry(t *testing.T, contract scval.Address, key, val xdr.ScVal) *xdr.LedgerEntry {
	t.Helper()
	return &xdr.LedgerEntry{
		LastModifiedLedgerSeq: 61340384,
		Data: xdr.LedgerEntryData{
			Type: xdr.LedgerEntryTypeContractData,
			ContractData: &xdr.ContractDataEntry{
				Contract:   scvaltest.ScAddress(t, contract),
				Key:        key,
				Durability: xdr.ContractDataDurabilityPersistent,
				Val:        val,
			},
		},
	}
}

func metaV3(ops ...xdr.LedgerEntryChanges) xdr.TransactionMeta {
	v3 := &xdr.TransactionMetaV3{}
	for _, changes := range ops {
		v3.Operations = append(v3.Operations, xdr.OperationMeta{Changes: changes})
	}
	return xdr.TransactionMeta{V: 3, V3: v3}
}

func metaV4(ops ...xdr.LedgerEntryChanges) xdr.TransactionMeta {
	v4 := &xdr.TransactionMetaV4{}
	for _, changes := range ops {
		v4.Operations = append(v4.Operations, xdr.OperationMetaV2{Changes: changes})
	}
	return xdr.TransactionMeta{V: 4, V4: v4}
}

func TestExtractSplitsStateAndUpdated(t *testing.T) {
	pool := scvaltest.Contract(1)
	user := scvaltest.Account(2)
	key := scvaltest.Vec(scvaltest.Sym("Positions"), scvaltest.Addr(t, user))

	changes := xdr.LedgerEntryChanges{
		{Type: xdr.LedgerEntryChangeTypeLedgerEntryState, State: contractEntry(t, pool, key, scvaltest.I128(0, 119_028_268_790))},
		{Type: xdr.LedgerEntryChangeTypeLedgerEntryUpdated, Updated: contractEntry(t, pool, key, scvaltest.I128(0, 8_622_715_615_541))},
	}

	for name, meta := range map[string]xdr.TransactionMeta{"v3": metaV3(changes), "v4": metaV4(changes)} {
		t.Run(name, func(t *testing.T) {
			pre, err := ExtractPreState(meta)
			require.NoError(t, err)
			post, err := ExtractPostState(meta)
			require.NoError(t, err)

			require.Len(t, pre, 1)
			require.Len(t, post, 1)

			assert.Equal(t, State, pre[0].Kind)
			assert.Equal(t, Updated, post[0].Kind)
			assert.Equal(t, pool, pre[0].Contract)
			assert.Equal(t, pre[0].Key, post[0].Key)
			assert.Equal(t, scval.Vec{scval.Symbol("Positions"), user}, pre[0].Key)
			assert.Equal(t, scval.I128{Lo: 119_028_268_790}, pre[0].Value)
			assert.Equal(t, scval.I128{Lo: 8_622_715_615_541}, post[0].Value)
			assert.Equal(t, "persistent", post[0].Durability)
			assert.Equal(t, uint32(61340384), post[0].LastModifiedLedger)
			assert.NoError(t, pre[0].Err)
		})
	}
}

func TestExtractPostStateIncludesCreatedInOrder(t *testing.T) {
	pool := scvaltest.Contract(1)
	changes := xdr.LedgerEntryChanges{
		{Type: xdr.LedgerEntryChangeTypeLedgerEntryCreated, Created: contractEntry(t, pool, scvaltest.Sym("A"), scvaltest.U32(1))},
		{Type: xdr.LedgerEntryChangeTypeLedgerEntryState, State: contractEntry(t, pool, scvaltest.Sym("B"), scvaltest.U32(2))},
		{Type: xdr.LedgerEntryChangeTypeLedgerEntryUpdated, Updated: contractEntry(t, pool, scvaltest.Sym("B"), scvaltest.U32(3))},
	}

	post, err := ExtractPostState(metaV3(changes))
	require.NoError(t, err)
	require.Len(t, post, 2)
	assert.Equal(t, Created, post[0].Kind)
	assert.Equal(t, scval.Symbol("A"), post[0].Key)
	assert.Equal(t, Updated, post[1].Kind)
	assert.Equal(t, scval.U32(3), post[1].Value)
}

func TestExtractDropsOtherEntryKinds(t *testing.T) {
	pool := scvaltest.Contract(1)
	ttl := &xdr.LedgerEntry{Data: xdr.LedgerEntryData{Type: xdr.LedgerEntryTypeTtl, Ttl: &xdr.TtlEntry{}}}
	removedKey := xdr.LedgerKey{Type: xdr.LedgerEntryTypeTtl, Ttl: &xdr.LedgerKeyTtl{}}

	changes := xdr.LedgerEntryChanges{
		{Type: xdr.LedgerEntryChangeTypeLedgerEntryState, State: ttl},
		{Type: xdr.LedgerEntryChangeTypeLedgerEntryUpdated, Updated: ttl},
		{Type: xdr.LedgerEntryChangeTypeLedgerEntryRemoved, Removed: &removedKey},
		{Type: xdr.LedgerEntryChangeTypeLedgerEntryState, State: contractEntry(t, pool, scvaltest.Sym("K"), scvaltest.Void())},
	}

	pre, err := ExtractPreState(metaV3(changes))
	require.NoError(t, err)
	require.Len(t, pre, 1)
	assert.Equal(t, scval.Void{}, pre[0].Value)

	post, err := ExtractPostState(metaV3(changes))
	require.NoError(t, err)
	assert.Empty(t, post)
}

func TestExtractReadsFirstOperationOnly(t *testing.T) {
	pool := scvaltest.Contract(1)
	first := xdr.LedgerEntryChanges{
		{Type: xdr.LedgerEntryChangeTypeLedgerEntryState, State: contractEntry(t, pool, scvaltest.Sym("first"), scvaltest.U32(1))},
	}
	second := xdr.LedgerEntryChanges{
		{Type: xdr.LedgerEntryChangeTypeLedgerEntryState, State: contractEntry(t, pool, scvaltest.Sym("second"), scvaltest.U32(2))},
	}

	pre, err := ExtractPreState(metaV3(first, second))
	require.NoError(t, err)
	require.Len(t, pre, 1)
	assert.Equal(t, scval.Symbol("first"), pre[0].Key)
}

func TestExtractKeepsSiblingsWhenOneEntryFails(t *testing.T) {
	pool := scvaltest.Contract(1)
	bad := contractEntry(t, pool, scvaltest.Sym("bad"), scvaltest.U32(1))
	bad.Data.ContractData.Contract = xdr.ScAddress{Type: xdr.ScAddressType(3)}

	changes := xdr.LedgerEntryChanges{
		{Type: xdr.LedgerEntryChangeTypeLedgerEntryState, State: bad},
		{Type: xdr.LedgerEntryChangeTypeLedgerEntryState, State: contractEntry(t, pool, scvaltest.Sym("good"), scvaltest.U32(2))},
	}

	pre, err := ExtractPreState(metaV3(changes))
	require.NoError(t, err)
	require.Len(t, pre, 2)
	assert.ErrorIs(t, pre[0].Err, scval.ErrUnsupportedAddressKind)
	assert.NoError(t, pre[1].Err)
	assert.Equal(t, scval.Symbol("good"), pre[1].Key)
}

func TestExtractNoOperations(t *testing.T) {
	pre, err := ExtractPreState(metaV3())
	require.NoError(t, err)
	assert.Empty(t, pre)
	assert.NotNil(t, pre)
}

func TestExtractUnsupportedMetaVersion(t *testing.T) {
	_, err := ExtractPreState(xdr.TransactionMeta{V: 9})
	assert.ErrorIs(t, err, scval.ErrMalformedBinary)

	_, err = ExtractPostState(xdr.TransactionMeta{V: 3})
	assert.ErrorIs(t, err, scval.ErrMalformedBinary)
}

func TestExtractXDR(t *testing.T) {
	pool := scvaltest.Contract(5)
	changes := xdr.LedgerEntryChanges{
		{Type: xdr.LedgerEntryChangeTypeLedgerEntryState, State: contractEntry(t, pool, scvaltest.Sym("Config"), scvaltest.U64(7))},
		{Type: xdr.LedgerEntryChangeTypeLedgerEntryCreated, Created: contractEntry(t, pool, scvaltest.Sym("Config"), scvaltest.U64(8))},
	}
	b64, err := xdr.MarshalBase64(metaV3(changes))
	require.NoError(t, err)

	pre, err := ExtractPreStateXDR(b64)
	require.NoError(t, err)
	require.Len(t, pre, 1)
	assert.Equal(t, scval.U64(7), pre[0].Value)

	post, err := ExtractPostStateXDR(b64)
	require.NoError(t, err)
	require.Len(t, post, 1)
	assert.Equal(t, Created, post[0].Kind)

	_, err = ExtractPreStateXDR("AAAA!!")
	assert.ErrorIs(t, err, scval.ErrMalformedBinary)
}
