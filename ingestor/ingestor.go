// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ingestor

import (
	"github.com/nchashch/sdk/chainutil"
	"github.com/nchashch/sdk/txmodel"
)

// DepositRecord is one parent-chain deposit as reported by the parent
// node: a decoded transaction, the index of its burn output, and the
// sidechain address the depositor targeted (spec.md §4.4, §6.3).
// Decoding txhex and parsing strdest into an Address is parentrpc's
// job, not ingestor's.
type DepositRecord struct {
	Tx          ParentTx
	BurnIndex   uint32
	Destination chainutil.Address
}

// BuildChunk orders records by their parent-chain spending graph and
// computes each deposit's incremental, sidechain-credited value
// (spec.md §4.4). last is the final Deposit of the previous chunk, or
// nil for the first chunk ever ingested.
//
// Credited value and chunk order are both derived from the same
// spending-graph-sorted sequence: spec.md §8 scenario S6 validates
// credited values directly against that order ([10, 25, 40] sorted ⇒
// [10, 15, 15] credited), so there is no separate chronological pass.
func BuildChunk(records []DepositRecord, last *Deposit) (DepositChunk, error) {
	recs := make([]record, len(records))
	byOutpoint := make(map[ParentOutpoint]DepositRecord, len(records))
	for i, dr := range records {
		recs[i] = record{tx: dr.Tx, burnIndex: dr.BurnIndex}
		byOutpoint[recs[i].outpoint()] = dr
	}

	ordered, err := sortDeposits(recs)
	if err != nil {
		return DepositChunk{}, err
	}

	prevValue := uint64(0)
	if last != nil {
		prevValue = last.Total
	}

	chunk := DepositChunk{
		Outputs:  make(map[txmodel.Outpoint]txmodel.DepositOutput, len(ordered)),
		Deposits: make([]Deposit, 0, len(ordered)),
	}
	for _, rec := range ordered {
		outpoint := rec.outpoint()
		value := rec.tx.Outputs[rec.burnIndex]
		if value < prevValue {
			continue
		}
		dr := byOutpoint[outpoint]
		credited := value - prevValue
		prevValue = value

		sideOutpoint := txmodel.DepositOutpoint(outpoint.Txid, outpoint.Vout)
		chunk.Outputs[sideOutpoint] = txmodel.DepositOutput{
			Address: dr.Destination,
			Value:   credited,
		}
		chunk.Deposits = append(chunk.Deposits, Deposit{
			Outpoint: outpoint,
			Total:    value,
		})
	}
	return chunk, nil
}
