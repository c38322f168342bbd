// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package scval

import (
	"encoding/binary"
	"fmt"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// maxContractUnwrap bounds how many wrapper layers are peeled off a contract
// id before giving up.
const maxContractUnwrap = 4

// AddressKind discriminates the two address kinds a Soroban value can carry.
type AddressKind uint8

const (
	AccountAddress AddressKind = iota
	ContractAddress
)

func (k AddressKind) String() string {
	switch k {
	case AccountAddress:
		return "account"
	case ContractAddress:
		return "contract"
	}
	return fmt.Sprintf("address_kind(%d)", k)
}

// Address is an account (ed25519 public key) or contract (hash) identity.
type Address struct {
	AddrKind AddressKind
	Raw      [32]byte
}

// NewContractAddress wraps a raw contract hash.
func NewContractAddress(hash [32]byte) Address {
	return Address{AddrKind: ContractAddress, Raw: hash}
}

// NewAccountAddress wraps a raw ed25519 public key.
func NewAccountAddress(key [32]byte) Address {
	return Address{AddrKind: AccountAddress, Raw: key}
}

func (a Address) versionByte() strkey.VersionByte {
	if a.AddrKind == ContractAddress {
		return strkey.VersionByteContract
	}
	return strkey.VersionByteAccountID
}

// String renders the strkey form: G... for accounts, C... for contracts.
func (a Address) String() string {
	return strkey.MustEncode(a.versionByte(), a.Raw[:])
}

// ParseAddress is the inverse of Address.String.
func ParseAddress(s string) (Address, error) {
	vb, err := strkey.Version(s)
	if err != nil {
		return Address{}, fmt.Errorf("failed to parse address %q: %w", s, err)
	}

	var kind AddressKind
	switch vb {
	case strkey.VersionByteAccountID:
		kind = AccountAddress
	case strkey.VersionByteContract:
		kind = ContractAddress
	default:
		return Address{}, fmt.Errorf("%w: strkey version %d", ErrUnsupportedAddressKind, vb)
	}

	raw, err := strkey.Decode(vb, s)
	if err != nil {
		return Address{}, fmt.Errorf("failed to parse address %q: %w", s, err)
	}
	if len(raw) != 32 {
		return Address{}, fmt.Errorf("%w: address payload is %d bytes", ErrMalformedBinary, len(raw))
	}
	return Address{AddrKind: kind, Raw: [32]byte(raw)}, nil
}

// MarshalBinary encodes the address as an XDR ScAddress.
func (a Address) MarshalBinary() ([]byte, error) {
	switch a.AddrKind {
	case AccountAddress:
		buf := make([]byte, 8, 40)
		binary.BigEndian.PutUint32(buf[0:4], uint32(xdr.ScAddressTypeScAddressTypeAccount))
		binary.BigEndian.PutUint32(buf[4:8], uint32(xdr.PublicKeyTypePublicKeyTypeEd25519))
		return append(buf, a.Raw[:]...), nil
	case ContractAddress:
		buf := make([]byte, 4, 36)
		binary.BigEndian.PutUint32(buf, uint32(xdr.ScAddressTypeScAddressTypeContract))
		return append(buf, a.Raw[:]...), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedAddressKind, a.AddrKind)
}

// ScAddress converts the address back into its XDR union.
func (a Address) ScAddress() (xdr.ScAddress, error) {
	var out xdr.ScAddress
	raw, err := a.MarshalBinary()
	if err != nil {
		return out, err
	}
	if err := xdr.SafeUnmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformedBinary, err)
	}
	return out, nil
}

// DecodeAddressBinary decodes XDR ScAddress bytes.
func DecodeAddressBinary(raw []byte) (Address, error) {
	var addr xdr.ScAddress
	if err := xdr.SafeUnmarshal(raw, &addr); err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrMalformedBinary, err)
	}
	return DecodeAddress(addr)
}

// DecodeAddress converts an XDR ScAddress into an Address. Kinds other than
// account and contract fail with ErrUnsupportedAddressKind.
func DecodeAddress(addr xdr.ScAddress) (Address, error) {
	switch addr.Type {
	case xdr.ScAddressTypeScAddressTypeAccount:
		if addr.AccountId == nil || addr.AccountId.Ed25519 == nil {
			return Address{}, fmt.Errorf("%w: account address without ed25519 key", ErrMalformedBinary)
		}
		return NewAccountAddress([32]byte(*addr.AccountId.Ed25519)), nil
	case xdr.ScAddressTypeScAddressTypeContract:
		hash, err := unwrapContractHash(addr)
		if err != nil {
			return Address{}, err
		}
		return NewContractAddress(hash), nil
	}
	return Address{}, fmt.Errorf("%w: %s", ErrUnsupportedAddressKind, addr.Type)
}

// unwrapContractHash peels known wrapper shapes off a contract id until the
// raw 32-byte hash is reached. Older and newer XDR revisions nest the hash
// at different depths.
func unwrapContractHash(v any) ([32]byte, error) {
	for i := 0; i < maxContractUnwrap; i++ {
		switch w := v.(type) {
		case [32]byte:
			return w, nil
		case xdr.Hash:
			return w, nil
		case []byte:
			if len(w) != 32 {
				return [32]byte{}, fmt.Errorf("%w: contract id is %d bytes", ErrMalformedBinary, len(w))
			}
			return [32]byte(w), nil
		case *xdr.Hash:
			if w == nil {
				return [32]byte{}, fmt.Errorf("%w: nil contract id", ErrMalformedBinary)
			}
			v = *w
		case xdr.ScVal:
			if w.Type != xdr.ScValTypeScvAddress || w.Address == nil {
				return [32]byte{}, fmt.Errorf("%w: %s does not carry a contract id", ErrMalformedBinary, w.Type)
			}
			v = *w.Address
		case *xdr.ScAddress:
			if w == nil {
				return [32]byte{}, fmt.Errorf("%w: nil contract address", ErrMalformedBinary)
			}
			v = *w
		case xdr.ScAddress:
			if w.ContractId == nil {
				return [32]byte{}, fmt.Errorf("%w: contract address without id", ErrMalformedBinary)
			}
			v = [32]byte(*w.ContractId)
		default:
			return [32]byte{}, fmt.Errorf("%w: unexpected contract id shape %T", ErrMalformedBinary, v)
		}
	}
	return [32]byte{}, fmt.Errorf("%w: contract id nested deeper than %d layers", ErrMalformedBinary, maxContractUnwrap)
}
