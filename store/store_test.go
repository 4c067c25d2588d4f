// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nchashch/sdk/chainhash"
	"github.com/nchashch/sdk/ingestor"
	"github.com/nchashch/sdk/sidesig"
	"github.com/nchashch/sdk/txmodel"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "chainstate"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestStoreConnectBlockAndLoadChainState(t *testing.T) {
	t.Parallel()
	s := openStore(t)

	depositor, err := sidesig.GenerateEd25519Keypair(bytes.NewReader(bytes.Repeat([]byte{1}, 64)))
	require.NoError(t, err)

	depositOutpoint := txmodel.DepositOutpoint(chainhash.HashH([]byte("parent tx")), 0)
	chunk := ingestor.DepositChunk{
		Outputs: map[txmodel.Outpoint]txmodel.DepositOutput{
			depositOutpoint: {Address: depositor.Address(), Value: 100},
		},
	}
	require.NoError(t, s.AddDeposits(chunk))

	tx := txmodel.Transaction{
		Inputs:  []txmodel.Outpoint{depositOutpoint},
		Outputs: []txmodel.RegularOutput{{Address: depositor.Address(), Value: 100}},
	}
	strippedTxid, err := tx.StrippedTxid()
	require.NoError(t, err)
	sig, err := depositor.Authorise(strippedTxid)
	require.NoError(t, err)
	tx.Signatures = []sidesig.Signature{sig}

	body := txmodel.Body{Transactions: []txmodel.Transaction{tx}}
	root, err := body.ComputeMerkleRoot()
	require.NoError(t, err)
	header := txmodel.Header{MerkleRoot: root}

	require.NoError(t, s.ConnectBlock(header, body))

	cs, err := s.LoadChainState()
	require.NoError(t, err)

	blockHash, err := header.Hash()
	require.NoError(t, err)
	require.Equal(t, blockHash, cs.BestBlockHash())

	txid, err := tx.Txid()
	require.NoError(t, err)
	spend := txmodel.Transaction{
		Inputs:  []txmodel.Outpoint{txmodel.RegularOutpoint(txid, 0)},
		Outputs: []txmodel.RegularOutput{{Address: depositor.Address(), Value: 1}},
	}
	spendStrippedTxid, err := spend.StrippedTxid()
	require.NoError(t, err)
	spendSig, err := depositor.Authorise(spendStrippedTxid)
	require.NoError(t, err)
	spend.Signatures = []sidesig.Signature{spendSig}
	require.NoError(t, cs.ValidateTransaction(spend))
}

func TestStoreConnectThenDisconnectBlockRestoresHeight(t *testing.T) {
	t.Parallel()
	s := openStore(t)

	depositor, err := sidesig.GenerateEd25519Keypair(bytes.NewReader(bytes.Repeat([]byte{2}, 64)))
	require.NoError(t, err)
	depositOutpoint := txmodel.DepositOutpoint(chainhash.HashH([]byte("p2")), 0)
	chunk := ingestor.DepositChunk{
		Outputs: map[txmodel.Outpoint]txmodel.DepositOutput{
			depositOutpoint: {Address: depositor.Address(), Value: 50},
		},
	}
	require.NoError(t, s.AddDeposits(chunk))

	tx := txmodel.Transaction{
		Inputs:  []txmodel.Outpoint{depositOutpoint},
		Outputs: []txmodel.RegularOutput{{Address: depositor.Address(), Value: 50}},
	}
	strippedTxid, err := tx.StrippedTxid()
	require.NoError(t, err)
	sig, err := depositor.Authorise(strippedTxid)
	require.NoError(t, err)
	tx.Signatures = []sidesig.Signature{sig}

	body := txmodel.Body{Transactions: []txmodel.Transaction{tx}}
	root, err := body.ComputeMerkleRoot()
	require.NoError(t, err)
	header := txmodel.Header{MerkleRoot: root}

	require.NoError(t, s.ConnectBlock(header, body))
	heightAfterConnect, err := s.height()
	require.NoError(t, err)
	require.Equal(t, uint64(1), heightAfterConnect)

	require.NoError(t, s.DisconnectBlock(header, body))
	heightAfterDisconnect, err := s.height()
	require.NoError(t, err)
	require.Equal(t, uint64(0), heightAfterDisconnect)

	cs, err := s.LoadChainState()
	require.NoError(t, err)
	require.Equal(t, chainhash.Hash{}, cs.BestBlockHash())
}

func TestStoreDisconnectDepositsRoundTrip(t *testing.T) {
	t.Parallel()
	s := openStore(t)

	depositor, err := sidesig.GenerateEd25519Keypair(bytes.NewReader(bytes.Repeat([]byte{3}, 64)))
	require.NoError(t, err)
	outpoint := txmodel.DepositOutpoint(chainhash.HashH([]byte("p3")), 0)
	chunk := ingestor.DepositChunk{
		Outputs: map[txmodel.Outpoint]txmodel.DepositOutput{
			outpoint: {Address: depositor.Address(), Value: 12},
		},
	}
	require.NoError(t, s.AddDeposits(chunk))
	require.NoError(t, s.DisconnectDeposits(chunk))

	cs, err := s.LoadChainState()
	require.NoError(t, err)
	require.Error(t, cs.ValidateTransaction(txmodel.Transaction{
		Inputs: []txmodel.Outpoint{outpoint},
	}))
}
