// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txmodel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nchashch/sdk/chainhash"
	"github.com/nchashch/sdk/sidesig"
)

func sampleTx(t *testing.T) Transaction {
	t.Helper()
	kp, err := sidesig.GenerateEd25519Keypair(bytes.NewReader(make([]byte, 64)))
	require.NoError(t, err)

	tx := Transaction{
		Inputs: []Outpoint{RegularOutpoint(chainhash.HashH([]byte("prev")), 0)},
		Outputs: []RegularOutput{
			{Address: kp.Address(), Value: 100},
		},
		WithdrawalOutputs: []WithdrawalOutput{
			{Value: 50, Fee: 1, SideAddress: kp.Address(), MainAddress: MainChainAddress("bc1qexample")},
		},
	}
	strippedTxid, err := tx.StrippedTxid()
	require.NoError(t, err)
	sig, err := kp.Authorise(strippedTxid)
	require.NoError(t, err)
	tx.Signatures = []sidesig.Signature{sig}
	return tx
}

func TestTransactionRoundTrip(t *testing.T) {
	t.Parallel()
	tx := sampleTx(t)

	var buf bytes.Buffer
	require.NoError(t, tx.Encode(&buf))

	var got Transaction
	require.NoError(t, got.Decode(&buf))

	gotTxid, err := got.Txid()
	require.NoError(t, err)
	wantTxid, err := tx.Txid()
	require.NoError(t, err)
	require.Equal(t, wantTxid, gotTxid)
}

func TestStrippedTxidExcludesSignatures(t *testing.T) {
	t.Parallel()
	tx := sampleTx(t)

	strippedBefore, err := tx.StrippedTxid()
	require.NoError(t, err)

	txidBefore, err := tx.Txid()
	require.NoError(t, err)

	tx.Signatures = nil
	strippedAfter, err := tx.StrippedTxid()
	require.NoError(t, err)
	txidAfter, err := tx.Txid()
	require.NoError(t, err)

	require.Equal(t, strippedBefore, strippedAfter, "stripped txid must not depend on signatures")
	require.NotEqual(t, txidBefore, txidAfter, "full txid must depend on signatures")
}

func TestOutpointRoundTrip(t *testing.T) {
	t.Parallel()
	kinds := []Outpoint{
		RegularOutpoint(chainhash.HashH([]byte("a")), 1),
		CoinbaseOutpoint(chainhash.HashH([]byte("b")), 2),
		WithdrawalOutpoint(chainhash.HashH([]byte("c")), 3),
		DepositOutpoint(chainhash.HashH([]byte("d")), 4),
	}
	for _, want := range kinds {
		var buf bytes.Buffer
		require.NoError(t, want.Encode(&buf))
		var got Outpoint
		require.NoError(t, got.Decode(&buf))
		require.Equal(t, want, got)
	}
}

func TestBodyMerkleRootExcludesCoinbase(t *testing.T) {
	t.Parallel()
	kp, err := sidesig.GenerateEd25519Keypair(bytes.NewReader(make([]byte, 64)))
	require.NoError(t, err)

	body := Body{
		Coinbase: []RegularOutput{{Address: kp.Address(), Value: 1}},
	}
	rootWithoutTx, err := body.ComputeMerkleRoot()
	require.NoError(t, err)

	body.Coinbase = []RegularOutput{{Address: kp.Address(), Value: 999}}
	rootAfterCoinbaseChange, err := body.ComputeMerkleRoot()
	require.NoError(t, err)

	require.Equal(t, rootWithoutTx, rootAfterCoinbaseChange,
		"merkle root must not change when only the coinbase changes")
}

func TestBodyRoundTrip(t *testing.T) {
	t.Parallel()
	tx := sampleTx(t)
	kp, err := sidesig.GenerateEd25519Keypair(bytes.NewReader(make([]byte, 64)))
	require.NoError(t, err)

	body := Body{
		Coinbase:     []RegularOutput{{Address: kp.Address(), Value: 1}},
		Transactions: []Transaction{tx},
	}
	var buf bytes.Buffer
	require.NoError(t, body.Encode(&buf))

	var got Body
	require.NoError(t, got.Decode(&buf))
	require.Len(t, got.Coinbase, 1)
	require.Len(t, got.Transactions, 1)

	wantRoot, err := body.ComputeMerkleRoot()
	require.NoError(t, err)
	gotRoot, err := got.ComputeMerkleRoot()
	require.NoError(t, err)
	require.Equal(t, wantRoot, gotRoot)
}

func TestHeaderHash(t *testing.T) {
	t.Parallel()
	h1 := Header{PrevBlockHash: chainhash.HashH([]byte("x")), MerkleRoot: chainhash.HashH([]byte("y"))}
	h2 := h1
	h2.MerkleRoot = chainhash.HashH([]byte("z"))

	hash1, err := h1.Hash()
	require.NoError(t, err)
	hash2, err := h2.Hash()
	require.NoError(t, err)
	require.NotEqual(t, hash1, hash2)

	var buf bytes.Buffer
	require.NoError(t, h1.Encode(&buf))
	var got Header
	require.NoError(t, got.Decode(&buf))
	require.Equal(t, h1, got)
}
