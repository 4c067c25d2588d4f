// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ingestor

import "fmt"

// record pairs a parent transaction with the index of its burn output,
// as reported by the parent node (spec.md §4.4).
type record struct {
	tx        ParentTx
	burnIndex uint32
}

// outpoint returns the parent-chain outpoint of this record's burn
// output.
func (rec record) outpoint() ParentOutpoint {
	return ParentOutpoint{Txid: rec.tx.Txid, Vout: rec.burnIndex}
}

// sortDeposits totally orders a chunk's deposit records by their
// spending graph (spec.md §4.4): build spent_by by walking every tx's
// inputs, find the single root record whose transaction spends no other
// deposit in the chunk, then walk spent_by from that root. The parent
// node guarantees at most one root per well-formed chunk.
func sortDeposits(records []record) ([]record, error) {
	if len(records) == 0 {
		return nil, nil
	}

	byOutpoint := make(map[ParentOutpoint]record, len(records))
	for _, rec := range records {
		byOutpoint[rec.outpoint()] = rec
	}

	spentBy := make(map[ParentOutpoint]ParentOutpoint)
	var roots []ParentOutpoint
	for _, rec := range records {
		spent := false
		for _, in := range rec.tx.Inputs {
			if _, ok := byOutpoint[in]; ok {
				spentBy[in] = rec.outpoint()
				spent = true
			}
		}
		if !spent {
			roots = append(roots, rec.outpoint())
		}
	}
	if len(roots) != 1 {
		return nil, fmt.Errorf("ingestor: chunk has %d roots, want exactly 1", len(roots))
	}

	ordered := make([]record, 0, len(records))
	seen := make(map[ParentOutpoint]bool, len(records))
	cur := roots[0]
	for {
		if seen[cur] {
			return nil, fmt.Errorf("ingestor: spending graph contains a cycle")
		}
		seen[cur] = true
		ordered = append(ordered, byOutpoint[cur])
		next, ok := spentBy[cur]
		if !ok {
			break
		}
		cur = next
	}
	if len(ordered) != len(records) {
		return nil, fmt.Errorf("ingestor: spending graph is not a single chain (%d of %d deposits reachable from root)", len(ordered), len(records))
	}
	return ordered, nil
}
