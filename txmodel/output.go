// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txmodel

import (
	"io"

	"github.com/nchashch/sdk/chainutil"
	"github.com/nchashch/sdk/sidewire"
)

// RegularOutput is spendable by the holder of the key hashing to Address
// (spec.md §3).
type RegularOutput struct {
	Address chainutil.Address
	Value   uint64
}

// Encode implements sidewire.Encodable.
func (o RegularOutput) Encode(w io.Writer) error {
	if err := o.Address.Encode(w); err != nil {
		return err
	}
	return sidewire.WriteUint64(w, o.Value)
}

// Decode implements sidewire.Decodable.
func (o *RegularOutput) Decode(r io.Reader) error {
	if err := o.Address.Decode(r); err != nil {
		return err
	}
	v, err := sidewire.ReadUint64(r)
	if err != nil {
		return err
	}
	o.Value = v
	return nil
}

// DepositOutput is structurally identical to RegularOutput but is indexed
// separately in chain state because its provenance lives on the parent
// chain (spec.md §3).
type DepositOutput struct {
	Address chainutil.Address
	Value   uint64
}

// Encode implements sidewire.Encodable.
func (o DepositOutput) Encode(w io.Writer) error {
	if err := o.Address.Encode(w); err != nil {
		return err
	}
	return sidewire.WriteUint64(w, o.Value)
}

// Decode implements sidewire.Decodable.
func (o *DepositOutput) Decode(r io.Reader) error {
	if err := o.Address.Decode(r); err != nil {
		return err
	}
	v, err := sidewire.ReadUint64(r)
	if err != nil {
		return err
	}
	o.Value = v
	return nil
}

// MainChainAddress is an opaque destination string on the parent chain.
// The sidechain core never parses or validates it; only the withdrawal
// settlement process (out of scope, spec.md §1) interprets it.
type MainChainAddress string

// WithdrawalOutput encodes a peg-out request (spec.md §3). SideAddress is
// the refund target if the withdrawal is never settled on the parent
// chain; MainAddress is the parent-chain destination.
type WithdrawalOutput struct {
	Value       uint64
	Fee         uint64
	SideAddress chainutil.Address
	MainAddress MainChainAddress
}

// Encode implements sidewire.Encodable.
func (o WithdrawalOutput) Encode(w io.Writer) error {
	if err := sidewire.WriteUint64(w, o.Value); err != nil {
		return err
	}
	if err := sidewire.WriteUint64(w, o.Fee); err != nil {
		return err
	}
	if err := o.SideAddress.Encode(w); err != nil {
		return err
	}
	return sidewire.WriteVarBytes(w, []byte(o.MainAddress))
}

// maxMainAddressLen bounds the parent-chain address string length when
// decoding, guarding against a corrupt length prefix.
const maxMainAddressLen = 4096

// Decode implements sidewire.Decodable.
func (o *WithdrawalOutput) Decode(r io.Reader) error {
	v, err := sidewire.ReadUint64(r)
	if err != nil {
		return err
	}
	fee, err := sidewire.ReadUint64(r)
	if err != nil {
		return err
	}
	if err := o.SideAddress.Decode(r); err != nil {
		return err
	}
	mainAddr, err := sidewire.ReadVarBytes(r, maxMainAddressLen)
	if err != nil {
		return err
	}
	o.Value = v
	o.Fee = fee
	o.MainAddress = MainChainAddress(mainAddr)
	return nil
}
