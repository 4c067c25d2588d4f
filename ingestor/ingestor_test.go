// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ingestor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nchashch/sdk/chainhash"
	"github.com/nchashch/sdk/chainutil"
	"github.com/nchashch/sdk/txmodel"
)

func txWithOutputs(label string, outputs ...uint64) ParentTx {
	return ParentTx{Txid: chainhash.HashH([]byte(label)), Outputs: outputs}
}

// TestBuildChunkCumulativeValue exercises spec.md §8 scenario S6: a
// three-deposit chain where each deposit tx spends the previous one's
// burn output and reports the cumulative value on the parent chain
// ([10, 25, 40]); the credited sidechain values must be the
// differences ([10, 15, 15]), and the Deposits list preserves the
// spending-graph order.
func TestBuildChunkCumulativeValue(t *testing.T) {
	t.Parallel()
	addr := chainutil.NewAddress(chainhash.HashH([]byte("depositor")))

	tx1 := txWithOutputs("tx1", 10)
	tx2 := ParentTx{
		Txid:    chainhash.HashH([]byte("tx2")),
		Inputs:  []ParentOutpoint{{Txid: tx1.Txid, Vout: 0}},
		Outputs: []uint64{25},
	}
	tx3 := ParentTx{
		Txid:    chainhash.HashH([]byte("tx3")),
		Inputs:  []ParentOutpoint{{Txid: tx2.Txid, Vout: 0}},
		Outputs: []uint64{40},
	}

	records := []DepositRecord{
		{Tx: tx3, BurnIndex: 0, Destination: addr},
		{Tx: tx1, BurnIndex: 0, Destination: addr},
		{Tx: tx2, BurnIndex: 0, Destination: addr},
	}

	chunk, err := BuildChunk(records, nil)
	require.NoError(t, err)
	require.Len(t, chunk.Deposits, 3)

	require.Equal(t, tx1.Txid, chunk.Deposits[0].Outpoint.Txid)
	require.Equal(t, tx2.Txid, chunk.Deposits[1].Outpoint.Txid)
	require.Equal(t, tx3.Txid, chunk.Deposits[2].Outpoint.Txid)

	require.Equal(t, uint64(10), chunk.Deposits[0].Total)
	require.Equal(t, uint64(25), chunk.Deposits[1].Total)
	require.Equal(t, uint64(40), chunk.Deposits[2].Total)

	credited := func(txid chainhash.Hash) uint64 {
		for outpoint, out := range chunk.Outputs {
			if outpoint.Hash == txid {
				return out.Value
			}
		}
		t.Fatalf("no deposit output for %s", txid)
		return 0
	}
	require.Equal(t, uint64(10), credited(tx1.Txid))
	require.Equal(t, uint64(15), credited(tx2.Txid))
	require.Equal(t, uint64(15), credited(tx3.Txid))
}

func TestBuildChunkResumesFromLastDeposit(t *testing.T) {
	t.Parallel()
	addr := chainutil.NewAddress(chainhash.HashH([]byte("depositor")))
	tx := txWithOutputs("tx4", 60)

	last := &Deposit{Outpoint: ParentOutpoint{Txid: chainhash.HashH([]byte("tx3")), Vout: 0}, Total: 40}
	records := []DepositRecord{{Tx: tx, BurnIndex: 0, Destination: addr}}

	chunk, err := BuildChunk(records, last)
	require.NoError(t, err)
	require.Len(t, chunk.Deposits, 1)
	require.Equal(t, uint64(60), chunk.Deposits[0].Total)

	out, ok := chunk.Outputs[txmodel.DepositOutpoint(tx.Txid, 0)]
	require.True(t, ok)
	require.Equal(t, uint64(20), out.Value)
}

func TestBuildChunkSkipsDecreasedValue(t *testing.T) {
	t.Parallel()
	addr := chainutil.NewAddress(chainhash.HashH([]byte("depositor")))
	tx := txWithOutputs("tx5", 5)

	last := &Deposit{Outpoint: ParentOutpoint{Txid: chainhash.HashH([]byte("tx3")), Vout: 0}, Total: 40}
	records := []DepositRecord{{Tx: tx, BurnIndex: 0, Destination: addr}}

	chunk, err := BuildChunk(records, last)
	require.NoError(t, err)
	require.Empty(t, chunk.Deposits)
	require.Empty(t, chunk.Outputs)
}

func TestBuildChunkRejectsMultipleRoots(t *testing.T) {
	t.Parallel()
	addr := chainutil.NewAddress(chainhash.HashH([]byte("depositor")))
	tx1 := txWithOutputs("tx6", 1)
	tx2 := txWithOutputs("tx7", 2)

	records := []DepositRecord{
		{Tx: tx1, BurnIndex: 0, Destination: addr},
		{Tx: tx2, BurnIndex: 0, Destination: addr},
	}
	_, err := BuildChunk(records, nil)
	require.Error(t, err)
}
