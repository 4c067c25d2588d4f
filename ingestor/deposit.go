// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ingestor turns parent-chain deposit records into sidechain
// deposit outputs (spec.md §4.4). It owns two pure algorithms: ordering
// a chunk's deposits by their parent-chain spending graph, and computing
// each deposit's incremental, sidechain-credited value. Fetching the
// records themselves is parentrpc's job; ingestor never makes a network
// call.
package ingestor

import (
	"github.com/nchashch/sdk/chainhash"
	"github.com/nchashch/sdk/txmodel"
)

// ParentOutpoint identifies an output on the parent chain.
type ParentOutpoint struct {
	Txid chainhash.Hash
	Vout uint32
}

// ParentTx is the minimal view of a parent-chain transaction the
// linkage algorithm needs: its own id, the outpoints its inputs spend,
// and its outputs' values.
type ParentTx struct {
	Txid    chainhash.Hash
	Inputs  []ParentOutpoint
	Outputs []uint64
}

// Deposit records one parent-chain burn output and its cumulative value
// at the time it was observed, preserved across chunks so the next
// chunk's incremental-value computation can resume correctly (spec.md
// §4.4).
type Deposit struct {
	Outpoint ParentOutpoint
	Total    uint64
}

// DepositChunk is the ingestor's output: new deposit outputs ready for
// blockchain.ChainState.AddDeposits, plus the chunk's deposits in
// canonical parent-chain order for later disconnect (spec.md §4.4).
type DepositChunk struct {
	Outputs  map[txmodel.Outpoint]txmodel.DepositOutput
	Deposits []Deposit
}
