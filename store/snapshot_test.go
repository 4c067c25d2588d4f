// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nchashch/sdk/blockchain"
	"github.com/nchashch/sdk/chainhash"
	"github.com/nchashch/sdk/chainutil"
	"github.com/nchashch/sdk/ingestor"
	"github.com/nchashch/sdk/txmodel"
)

func sampleSnapshot() blockchain.Snapshot {
	addr := chainutil.NewAddress(chainhash.HashH([]byte("addr")))
	outpointA := txmodel.DepositOutpoint(chainhash.HashH([]byte("parent a")), 0)
	outpointB := txmodel.DepositOutpoint(chainhash.HashH([]byte("parent b")), 1)
	cs := blockchain.New()
	cs.AddDeposits(ingestor.DepositChunk{
		Outputs: map[txmodel.Outpoint]txmodel.DepositOutput{
			outpointA: {Address: addr, Value: 5},
			outpointB: {Address: addr, Value: 7},
		},
	})
	return cs.Snapshot()
}

func TestSaveLoadSnapshotRoundTrip(t *testing.T) {
	t.Parallel()
	snap := sampleSnapshot()

	var buf bytes.Buffer
	require.NoError(t, SaveSnapshot(&buf, snap))

	got, err := LoadSnapshot(&buf)
	require.NoError(t, err)
	require.Equal(t, snap.UnspentOutpoints, got.UnspentOutpoints)
	require.Equal(t, snap.DepositOutputs, got.DepositOutputs)
}

// TestSaveSnapshotByteIdentical covers spec.md §8 scenario S3's literal
// claim by exercising it at the persisted-blob level: saving the same
// chain-state snapshot twice must produce byte-identical output, since
// encoding is a pure function of content rather than of map iteration
// order. The snapshot here holds two deposit outpoints so the
// underlying map encoders are actually exercised.
func TestSaveSnapshotByteIdentical(t *testing.T) {
	t.Parallel()
	snap := sampleSnapshot()
	require.True(t, len(snap.UnspentOutpoints) >= 2, "fixture must leave at least two unspent outpoints")

	var first, second bytes.Buffer
	require.NoError(t, SaveSnapshot(&first, snap))
	require.NoError(t, SaveSnapshot(&second, snap))

	require.True(t, bytes.Equal(first.Bytes(), second.Bytes()), "saving the same snapshot twice must produce identical bytes")
}

func TestLoadSnapshotRejectsBadMagic(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	buf.WriteString("XXXX")
	buf.Write([]byte{1, 0, 0, 0})

	_, err := LoadSnapshot(&buf)
	require.Error(t, err)
}

func TestLoadSnapshotRejectsBadVersion(t *testing.T) {
	t.Parallel()
	snap := sampleSnapshot()
	var buf bytes.Buffer
	require.NoError(t, SaveSnapshot(&buf, snap))

	raw := buf.Bytes()
	// Corrupt the version field, which immediately follows the 4-byte
	// magic.
	corrupted := make([]byte, len(raw))
	copy(corrupted, raw)
	corrupted[4] = 0xff

	_, err := LoadSnapshot(bytes.NewReader(corrupted))
	require.Error(t, err)
}
