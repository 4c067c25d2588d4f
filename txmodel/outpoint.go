// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txmodel implements the sidechain's core data model: outpoints,
// the three output kinds, transactions, headers, and bodies, per spec.md
// §3. Every type here is canonically encoded via sidewire and hashed via
// chainhash, matching original_source/src/types.rs's OutPoint/Out/Sig/
// Transaction/Header/Body shapes.
package txmodel

import (
	"fmt"
	"io"

	"github.com/nchashch/sdk/chainhash"
	"github.com/nchashch/sdk/sidewire"
)

// OutpointKind discriminates the four outpoint variants named in
// spec.md §3.
type OutpointKind byte

const (
	// OutpointRegular references a regular output of a sidechain
	// transaction, keyed by (txid, vout).
	OutpointRegular OutpointKind = iota
	// OutpointCoinbase references a block's coinbase output, keyed by
	// (block hash, vout).
	OutpointCoinbase
	// OutpointWithdrawal references a peg-out output, keyed by
	// (txid, vout), later refundable.
	OutpointWithdrawal
	// OutpointDeposit references a parent-chain burn output, keyed by
	// the parent chain's own (txid, vout).
	OutpointDeposit
)

// String renders the kind for diagnostics.
func (k OutpointKind) String() string {
	switch k {
	case OutpointRegular:
		return "Regular"
	case OutpointCoinbase:
		return "Coinbase"
	case OutpointWithdrawal:
		return "Withdrawal"
	case OutpointDeposit:
		return "Deposit"
	default:
		return fmt.Sprintf("OutpointKind(%d)", k)
	}
}

// Outpoint is a tagged, value-typed, hashable reference to exactly one
// output. It is comparable and usable directly as a map key because every
// field is itself comparable.
type Outpoint struct {
	Kind OutpointKind
	// Hash is the producing transaction's txid for Regular and
	// Withdrawal outpoints, the producing block's hash for Coinbase
	// outpoints, and the parent chain's transaction id for Deposit
	// outpoints.
	Hash chainhash.Hash
	Vout uint32
}

// RegularOutpoint builds an Outpoint referencing a regular output.
func RegularOutpoint(txid chainhash.Hash, vout uint32) Outpoint {
	return Outpoint{Kind: OutpointRegular, Hash: txid, Vout: vout}
}

// CoinbaseOutpoint builds an Outpoint referencing a block's coinbase
// output.
func CoinbaseOutpoint(blockHash chainhash.Hash, vout uint32) Outpoint {
	return Outpoint{Kind: OutpointCoinbase, Hash: blockHash, Vout: vout}
}

// WithdrawalOutpoint builds an Outpoint referencing a withdrawal output.
func WithdrawalOutpoint(txid chainhash.Hash, vout uint32) Outpoint {
	return Outpoint{Kind: OutpointWithdrawal, Hash: txid, Vout: vout}
}

// DepositOutpoint builds an Outpoint referencing a parent-chain burn
// output, identified by the parent chain's own txid/vout.
func DepositOutpoint(parentTxid chainhash.Hash, vout uint32) Outpoint {
	return Outpoint{Kind: OutpointDeposit, Hash: parentTxid, Vout: vout}
}

// Encode implements sidewire.Encodable.
func (o Outpoint) Encode(w io.Writer) error {
	if err := sidewire.WriteByte(w, byte(o.Kind)); err != nil {
		return err
	}
	if err := sidewire.WriteFixedBytes(w, o.Hash[:]); err != nil {
		return err
	}
	return sidewire.WriteUint32(w, o.Vout)
}

// Decode implements sidewire.Decodable.
func (o *Outpoint) Decode(r io.Reader) error {
	kind, err := sidewire.ReadByte(r)
	if err != nil {
		return err
	}
	if kind > byte(OutpointDeposit) {
		return fmt.Errorf("txmodel: unknown outpoint kind %d", kind)
	}
	hashBytes, err := sidewire.ReadFixedBytes(r, chainhash.HashSize)
	if err != nil {
		return err
	}
	vout, err := sidewire.ReadUint32(r)
	if err != nil {
		return err
	}
	o.Kind = OutpointKind(kind)
	copy(o.Hash[:], hashBytes)
	o.Vout = vout
	return nil
}
