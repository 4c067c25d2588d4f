// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/nchashch/sdk/chainhash"
	"github.com/nchashch/sdk/sidewire"
	"github.com/nchashch/sdk/txmodel"
)

// lessOutpoint totally orders Outpoint values by kind, then hash, then
// vout, so that serializing a Snapshot is a pure function of its
// content and never of Go's randomized map iteration order (spec.md
// §4.1, Testable Property 5, scenario S3).
func lessOutpoint(a, b txmodel.Outpoint) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if cmp := bytes.Compare(a.Hash[:], b.Hash[:]); cmp != 0 {
		return cmp < 0
	}
	return a.Vout < b.Vout
}

// blockRecord is one connected block's header and body, paired so a
// Snapshot can be replayed in block_order without a second lookup.
type blockRecord struct {
	Hash   chainhash.Hash
	Header txmodel.Header
	Body   txmodel.Body
}

// Snapshot is the entire contents of a ChainState, exported for
// persistence (store) without leaking ChainState's internal maps.
// store.SaveSnapshot/LoadSnapshot read and write exactly this shape.
type Snapshot struct {
	Blocks            []blockRecord
	Outputs           map[txmodel.Outpoint]txmodel.RegularOutput
	DepositOutputs    map[txmodel.Outpoint]txmodel.DepositOutput
	WithdrawalOutputs map[txmodel.Outpoint]txmodel.WithdrawalOutput
	UnspentOutpoints  []txmodel.Outpoint
}

// NewSnapshotFromParts assembles a Snapshot from data read back out of
// an external store, such as store.Store's incremental LevelDB layout,
// which keeps headers/bodies/outputs in separate keyspaces rather than
// as a single Snapshot value.
func NewSnapshotFromParts(
	blockOrder []chainhash.Hash,
	headers map[chainhash.Hash]txmodel.Header,
	bodies map[chainhash.Hash]txmodel.Body,
	outputs map[txmodel.Outpoint]txmodel.RegularOutput,
	depositOutputs map[txmodel.Outpoint]txmodel.DepositOutput,
	withdrawalOutputs map[txmodel.Outpoint]txmodel.WithdrawalOutput,
	unspentOutpoints []txmodel.Outpoint,
) Snapshot {
	blocks := make([]blockRecord, len(blockOrder))
	for i, hash := range blockOrder {
		blocks[i] = blockRecord{Hash: hash, Header: headers[hash], Body: bodies[hash]}
	}
	return Snapshot{
		Blocks:            blocks,
		Outputs:           outputs,
		DepositOutputs:    depositOutputs,
		WithdrawalOutputs: withdrawalOutputs,
		UnspentOutpoints:  unspentOutpoints,
	}
}

// Snapshot exports the full contents of cs.
func (cs *ChainState) Snapshot() Snapshot {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	blocks := make([]blockRecord, len(cs.blockOrder))
	for i, hash := range cs.blockOrder {
		blocks[i] = blockRecord{Hash: hash, Header: cs.headers[hash], Body: cs.bodies[hash]}
	}
	outputs := make(map[txmodel.Outpoint]txmodel.RegularOutput, len(cs.outputs))
	for k, v := range cs.outputs {
		outputs[k] = v
	}
	depositOutputs := make(map[txmodel.Outpoint]txmodel.DepositOutput, len(cs.depositOutputs))
	for k, v := range cs.depositOutputs {
		depositOutputs[k] = v
	}
	withdrawalOutputs := make(map[txmodel.Outpoint]txmodel.WithdrawalOutput, len(cs.withdrawalOutputs))
	for k, v := range cs.withdrawalOutputs {
		withdrawalOutputs[k] = v
	}
	unspent := make([]txmodel.Outpoint, 0, len(cs.unspentOutpoints))
	for outpoint := range cs.unspentOutpoints {
		unspent = append(unspent, outpoint)
	}
	sort.Slice(unspent, func(i, j int) bool { return lessOutpoint(unspent[i], unspent[j]) })

	return Snapshot{
		Blocks:            blocks,
		Outputs:           outputs,
		DepositOutputs:    depositOutputs,
		WithdrawalOutputs: withdrawalOutputs,
		UnspentOutpoints:  unspent,
	}
}

// RestoreSnapshot rebuilds a ChainState from a previously exported
// Snapshot. The transaction index is rederived from the blocks'
// bodies, since it is a pure function of them.
func RestoreSnapshot(s Snapshot) *ChainState {
	cs := New()
	for _, rec := range s.Blocks {
		cs.headers[rec.Hash] = rec.Header
		cs.bodies[rec.Hash] = rec.Body
		cs.blockOrder = append(cs.blockOrder, rec.Hash)
		for _, tx := range rec.Body.Transactions {
			if txid, err := tx.Txid(); err == nil {
				cs.transactions[txid] = tx
			}
		}
	}
	for k, v := range s.Outputs {
		cs.outputs[k] = v
	}
	for k, v := range s.DepositOutputs {
		cs.depositOutputs[k] = v
	}
	for k, v := range s.WithdrawalOutputs {
		cs.withdrawalOutputs[k] = v
	}
	for _, outpoint := range s.UnspentOutpoints {
		cs.unspentOutpoints[outpoint] = struct{}{}
	}
	return cs
}

// maxSnapshotListLen bounds decoded slice lengths, guarding against a
// corrupt or hostile length prefix.
const maxSnapshotListLen = 1 << 24

// Encode implements sidewire.Encodable.
func (s Snapshot) Encode(w io.Writer) error {
	if err := sidewire.WriteVarInt(w, uint64(len(s.Blocks))); err != nil {
		return err
	}
	for _, rec := range s.Blocks {
		if err := rec.Header.Encode(w); err != nil {
			return err
		}
		if err := rec.Body.Encode(w); err != nil {
			return err
		}
	}

	if err := writeOutputMap(w, s.Outputs); err != nil {
		return err
	}
	if err := writeDepositOutputMap(w, s.DepositOutputs); err != nil {
		return err
	}
	if err := writeWithdrawalOutputMap(w, s.WithdrawalOutputs); err != nil {
		return err
	}

	if err := sidewire.WriteVarInt(w, uint64(len(s.UnspentOutpoints))); err != nil {
		return err
	}
	for _, outpoint := range s.UnspentOutpoints {
		if err := outpoint.Encode(w); err != nil {
			return err
		}
	}
	return nil
}

// sortedOutpointKeys returns m's keys in the canonical Outpoint order,
// so every encoder below writes map contents deterministically.
func sortedOutpointKeys[V any](m map[txmodel.Outpoint]V) []txmodel.Outpoint {
	keys := make([]txmodel.Outpoint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return lessOutpoint(keys[i], keys[j]) })
	return keys
}

func writeOutputMap(w io.Writer, m map[txmodel.Outpoint]txmodel.RegularOutput) error {
	if err := sidewire.WriteVarInt(w, uint64(len(m))); err != nil {
		return err
	}
	for _, outpoint := range sortedOutpointKeys(m) {
		if err := outpoint.Encode(w); err != nil {
			return err
		}
		if err := m[outpoint].Encode(w); err != nil {
			return err
		}
	}
	return nil
}

func writeDepositOutputMap(w io.Writer, m map[txmodel.Outpoint]txmodel.DepositOutput) error {
	if err := sidewire.WriteVarInt(w, uint64(len(m))); err != nil {
		return err
	}
	for _, outpoint := range sortedOutpointKeys(m) {
		if err := outpoint.Encode(w); err != nil {
			return err
		}
		if err := m[outpoint].Encode(w); err != nil {
			return err
		}
	}
	return nil
}

func writeWithdrawalOutputMap(w io.Writer, m map[txmodel.Outpoint]txmodel.WithdrawalOutput) error {
	if err := sidewire.WriteVarInt(w, uint64(len(m))); err != nil {
		return err
	}
	for _, outpoint := range sortedOutpointKeys(m) {
		if err := outpoint.Encode(w); err != nil {
			return err
		}
		if err := m[outpoint].Encode(w); err != nil {
			return err
		}
	}
	return nil
}

// Decode implements sidewire.Decodable.
func (s *Snapshot) Decode(r io.Reader) error {
	numBlocks, err := sidewire.ReadVarInt(r)
	if err != nil {
		return err
	}
	if numBlocks > maxSnapshotListLen {
		return fmt.Errorf("blockchain: %d blocks exceeds decode limit", numBlocks)
	}
	blocks := make([]blockRecord, numBlocks)
	for i := range blocks {
		var header txmodel.Header
		if err := header.Decode(r); err != nil {
			return err
		}
		var body txmodel.Body
		if err := body.Decode(r); err != nil {
			return err
		}
		hash, err := header.Hash()
		if err != nil {
			return err
		}
		blocks[i] = blockRecord{Hash: hash, Header: header, Body: body}
	}

	outputs, err := readOutputMap(r)
	if err != nil {
		return err
	}
	depositOutputs, err := readDepositOutputMap(r)
	if err != nil {
		return err
	}
	withdrawalOutputs, err := readWithdrawalOutputMap(r)
	if err != nil {
		return err
	}

	numUnspent, err := sidewire.ReadVarInt(r)
	if err != nil {
		return err
	}
	if numUnspent > maxSnapshotListLen {
		return fmt.Errorf("blockchain: %d unspent outpoints exceeds decode limit", numUnspent)
	}
	unspent := make([]txmodel.Outpoint, numUnspent)
	for i := range unspent {
		if err := unspent[i].Decode(r); err != nil {
			return err
		}
	}

	s.Blocks = blocks
	s.Outputs = outputs
	s.DepositOutputs = depositOutputs
	s.WithdrawalOutputs = withdrawalOutputs
	s.UnspentOutpoints = unspent
	return nil
}

func readOutputMap(r io.Reader) (map[txmodel.Outpoint]txmodel.RegularOutput, error) {
	n, err := sidewire.ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if n > maxSnapshotListLen {
		return nil, fmt.Errorf("blockchain: %d outputs exceeds decode limit", n)
	}
	m := make(map[txmodel.Outpoint]txmodel.RegularOutput, n)
	for i := uint64(0); i < n; i++ {
		var outpoint txmodel.Outpoint
		if err := outpoint.Decode(r); err != nil {
			return nil, err
		}
		var out txmodel.RegularOutput
		if err := out.Decode(r); err != nil {
			return nil, err
		}
		m[outpoint] = out
	}
	return m, nil
}

func readDepositOutputMap(r io.Reader) (map[txmodel.Outpoint]txmodel.DepositOutput, error) {
	n, err := sidewire.ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if n > maxSnapshotListLen {
		return nil, fmt.Errorf("blockchain: %d deposit outputs exceeds decode limit", n)
	}
	m := make(map[txmodel.Outpoint]txmodel.DepositOutput, n)
	for i := uint64(0); i < n; i++ {
		var outpoint txmodel.Outpoint
		if err := outpoint.Decode(r); err != nil {
			return nil, err
		}
		var out txmodel.DepositOutput
		if err := out.Decode(r); err != nil {
			return nil, err
		}
		m[outpoint] = out
	}
	return m, nil
}

func readWithdrawalOutputMap(r io.Reader) (map[txmodel.Outpoint]txmodel.WithdrawalOutput, error) {
	n, err := sidewire.ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if n > maxSnapshotListLen {
		return nil, fmt.Errorf("blockchain: %d withdrawal outputs exceeds decode limit", n)
	}
	m := make(map[txmodel.Outpoint]txmodel.WithdrawalOutput, n)
	for i := uint64(0); i < n; i++ {
		var outpoint txmodel.Outpoint
		if err := outpoint.Decode(r); err != nil {
			return nil, err
		}
		var out txmodel.WithdrawalOutput
		if err := out.Decode(r); err != nil {
			return nil, err
		}
		m[outpoint] = out
	}
	return m, nil
}
