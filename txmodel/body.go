// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txmodel

import (
	"fmt"
	"io"

	"github.com/nchashch/sdk/chainhash"
	"github.com/nchashch/sdk/sidewire"
)

// Body holds a block's coinbase outputs and ordinary transactions
// (spec.md §3). Coinbase is a list of RegularOutput, not a Transaction:
// it has no inputs, no signatures, and is never spent by txid/vout like
// a regular transaction output, only by the block's own hash (spec.md
// §4.2, Coinbase{block_hash, vout}).
type Body struct {
	Coinbase     []RegularOutput
	Transactions []Transaction
}

// ComputeMerkleRoot commits to the body's transaction list only; the
// coinbase is excluded (spec.md §3: "merkle_root is the content hash of
// the body's transaction list"). This is deliberately a flat hash, not a
// binary Merkle tree: spec.md §1 excludes individual-transaction
// inclusion proofs from scope, so there is nothing that needs the
// tree's log-sized proof path.
func (b Body) ComputeMerkleRoot() (chainhash.Hash, error) {
	var buf []byte
	for _, tx := range b.Transactions {
		txid, err := tx.Txid()
		if err != nil {
			return chainhash.Hash{}, err
		}
		buf = append(buf, txid[:]...)
	}
	return chainhash.HashH(buf), nil
}

// Encode implements sidewire.Encodable.
func (b Body) Encode(w io.Writer) error {
	if err := sidewire.WriteVarInt(w, uint64(len(b.Coinbase))); err != nil {
		return err
	}
	for _, out := range b.Coinbase {
		if err := out.Encode(w); err != nil {
			return err
		}
	}
	if err := sidewire.WriteVarInt(w, uint64(len(b.Transactions))); err != nil {
		return err
	}
	for _, tx := range b.Transactions {
		if err := tx.Encode(w); err != nil {
			return err
		}
	}
	return nil
}

// Decode implements sidewire.Decodable.
func (b *Body) Decode(r io.Reader) error {
	numCoinbase, err := sidewire.ReadVarInt(r)
	if err != nil {
		return err
	}
	if numCoinbase > maxTxListLen {
		return fmt.Errorf("txmodel: %d coinbase outputs exceeds decode limit", numCoinbase)
	}
	coinbase := make([]RegularOutput, numCoinbase)
	for i := range coinbase {
		if err := coinbase[i].Decode(r); err != nil {
			return err
		}
	}

	n, err := sidewire.ReadVarInt(r)
	if err != nil {
		return err
	}
	if n > maxTxListLen {
		return fmt.Errorf("txmodel: %d transactions exceeds decode limit", n)
	}
	txs := make([]Transaction, n)
	for i := range txs {
		if err := txs[i].Decode(r); err != nil {
			return err
		}
	}
	b.Coinbase = coinbase
	b.Transactions = txs
	return nil
}
