// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txmodel

import (
	"io"

	"github.com/nchashch/sdk/chainhash"
	"github.com/nchashch/sdk/sidewire"
)

// Header links a block to its predecessor and commits to its body
// (spec.md §3). There is no timestamp, difficulty bits, or nonce: block
// production here is not proof-of-work (spec.md §1 Non-goals).
type Header struct {
	PrevBlockHash chainhash.Hash
	MerkleRoot    chainhash.Hash
}

// Hash is the block hash: the content address of the header alone, not
// the body. Two blocks with identical headers but different bodies are
// indistinguishable by hash, which is why MerkleRoot must commit to the
// body's contents.
func (h Header) Hash() (chainhash.Hash, error) {
	b, err := sidewire.EncodeToBytes(h)
	if err != nil {
		return chainhash.Hash{}, err
	}
	return chainhash.HashH(b), nil
}

// Encode implements sidewire.Encodable.
func (h Header) Encode(w io.Writer) error {
	if err := sidewire.WriteFixedBytes(w, h.PrevBlockHash[:]); err != nil {
		return err
	}
	return sidewire.WriteFixedBytes(w, h.MerkleRoot[:])
}

// Decode implements sidewire.Decodable.
func (h *Header) Decode(r io.Reader) error {
	prev, err := sidewire.ReadFixedBytes(r, chainhash.HashSize)
	if err != nil {
		return err
	}
	root, err := sidewire.ReadFixedBytes(r, chainhash.HashSize)
	if err != nil {
		return err
	}
	copy(h.PrevBlockHash[:], prev)
	copy(h.MerkleRoot[:], root)
	return nil
}
