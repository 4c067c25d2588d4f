// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txmodel

import (
	"fmt"
	"io"

	"github.com/nchashch/sdk/chainhash"
	"github.com/nchashch/sdk/sidesig"
	"github.com/nchashch/sdk/sidewire"
)

// maxTxListLen bounds decoded slice lengths, guarding against a corrupt
// or hostile length prefix forcing an enormous allocation. There is no
// protocol-level cap in spec.md; this is a decode-time sanity bound only.
const maxTxListLen = 1 << 20

// Transaction is the unit of value transfer (spec.md §3). The invariant
// |Inputs| = |Signatures| is enforced by blockchain.ValidateTransaction,
// not by this type, so that a transaction can still be constructed and
// encoded mid-build (signatures attached after the stripped txid is
// known).
type Transaction struct {
	Inputs            []Outpoint
	Signatures        []sidesig.Signature
	Outputs           []RegularOutput
	WithdrawalOutputs []WithdrawalOutput
}

// WithoutSignatures returns a copy of tx with its signature list emptied.
// Each input's signature authorises spending by binding to the hash of
// this stripped form (spec.md §3), breaking the circularity of a
// signature that would otherwise need to cover itself.
func (tx Transaction) WithoutSignatures() Transaction {
	stripped := tx
	stripped.Signatures = nil
	return stripped
}

// StrippedTxid is the hash every input's signature is computed over.
func (tx Transaction) StrippedTxid() (chainhash.Hash, error) {
	b, err := sidewire.EncodeToBytes(tx.WithoutSignatures())
	if err != nil {
		return chainhash.Hash{}, err
	}
	return chainhash.HashH(b), nil
}

// Txid is computed from the entire transaction, signatures included
// (spec.md §3).
func (tx Transaction) Txid() (chainhash.Hash, error) {
	b, err := sidewire.EncodeToBytes(tx)
	if err != nil {
		return chainhash.Hash{}, err
	}
	return chainhash.HashH(b), nil
}

// Encode implements sidewire.Encodable.
func (tx Transaction) Encode(w io.Writer) error {
	if err := sidewire.WriteVarInt(w, uint64(len(tx.Inputs))); err != nil {
		return err
	}
	for _, in := range tx.Inputs {
		if err := in.Encode(w); err != nil {
			return err
		}
	}
	if err := sidewire.WriteVarInt(w, uint64(len(tx.Signatures))); err != nil {
		return err
	}
	for _, sig := range tx.Signatures {
		if err := sig.Encode(w); err != nil {
			return err
		}
	}
	if err := sidewire.WriteVarInt(w, uint64(len(tx.Outputs))); err != nil {
		return err
	}
	for _, out := range tx.Outputs {
		if err := out.Encode(w); err != nil {
			return err
		}
	}
	if err := sidewire.WriteVarInt(w, uint64(len(tx.WithdrawalOutputs))); err != nil {
		return err
	}
	for _, out := range tx.WithdrawalOutputs {
		if err := out.Encode(w); err != nil {
			return err
		}
	}
	return nil
}

// Decode implements sidewire.Decodable.
func (tx *Transaction) Decode(r io.Reader) error {
	numInputs, err := sidewire.ReadVarInt(r)
	if err != nil {
		return err
	}
	if numInputs > maxTxListLen {
		return fmt.Errorf("txmodel: %d inputs exceeds decode limit", numInputs)
	}
	inputs := make([]Outpoint, numInputs)
	for i := range inputs {
		if err := inputs[i].Decode(r); err != nil {
			return err
		}
	}

	numSigs, err := sidewire.ReadVarInt(r)
	if err != nil {
		return err
	}
	if numSigs > maxTxListLen {
		return fmt.Errorf("txmodel: %d signatures exceeds decode limit", numSigs)
	}
	sigs := make([]sidesig.Signature, numSigs)
	for i := range sigs {
		sig, err := sidesig.DecodeSignature(r)
		if err != nil {
			return err
		}
		sigs[i] = sig
	}

	numOutputs, err := sidewire.ReadVarInt(r)
	if err != nil {
		return err
	}
	if numOutputs > maxTxListLen {
		return fmt.Errorf("txmodel: %d outputs exceeds decode limit", numOutputs)
	}
	outputs := make([]RegularOutput, numOutputs)
	for i := range outputs {
		if err := outputs[i].Decode(r); err != nil {
			return err
		}
	}

	numWithdrawals, err := sidewire.ReadVarInt(r)
	if err != nil {
		return err
	}
	if numWithdrawals > maxTxListLen {
		return fmt.Errorf("txmodel: %d withdrawal outputs exceeds decode limit", numWithdrawals)
	}
	withdrawals := make([]WithdrawalOutput, numWithdrawals)
	for i := range withdrawals {
		if err := withdrawals[i].Decode(r); err != nil {
			return err
		}
	}

	tx.Inputs = inputs
	tx.Signatures = sigs
	tx.Outputs = outputs
	tx.WithdrawalOutputs = withdrawals
	return nil
}
