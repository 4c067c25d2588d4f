// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sidesig

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nchashch/sdk/chainhash"
)

func TestEd25519SignVerifyRoundTrip(t *testing.T) {
	t.Parallel()
	kp, err := GenerateEd25519Keypair(rand.Reader)
	require.NoError(t, err)

	msg := chainhash.HashH([]byte("stripped txid"))
	sig, err := kp.Authorise(msg)
	require.NoError(t, err)

	require.True(t, sig.Verify(msg))
	require.Equal(t, kp.Address(), sig.SignerAddress())

	other := chainhash.HashH([]byte("different message"))
	require.False(t, sig.Verify(other))
}

func TestSecp256k1SignVerifyRoundTrip(t *testing.T) {
	t.Parallel()
	kp, err := GenerateSecp256k1Keypair()
	require.NoError(t, err)

	msg := chainhash.HashH([]byte("stripped txid"))
	sig, err := kp.Authorise(msg)
	require.NoError(t, err)

	require.True(t, sig.Verify(msg))
	require.Equal(t, kp.Address(), sig.SignerAddress())

	other := chainhash.HashH([]byte("different message"))
	require.False(t, sig.Verify(other))
}

func TestSignatureEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()
	msg := chainhash.HashH([]byte("stripped txid"))

	edKp, err := GenerateEd25519Keypair(rand.Reader)
	require.NoError(t, err)
	edSig, err := edKp.Authorise(msg)
	require.NoError(t, err)

	secpKp, err := GenerateSecp256k1Keypair()
	require.NoError(t, err)
	secpSig, err := secpKp.Authorise(msg)
	require.NoError(t, err)

	for _, sig := range []Signature{edSig, secpSig} {
		var buf bytes.Buffer
		require.NoError(t, sig.Encode(&buf))
		decoded, err := DecodeSignature(&buf)
		require.NoError(t, err)
		require.True(t, decoded.Verify(msg))
		require.Equal(t, sig.SignerAddress(), decoded.SignerAddress())
	}
}

func TestDecodeSignatureUnknownScheme(t *testing.T) {
	t.Parallel()
	_, err := DecodeSignature(bytes.NewReader([]byte{0xff}))
	require.ErrorIs(t, err, ErrUnknownScheme)
}

func TestMalformedSignatureNeverPanics(t *testing.T) {
	t.Parallel()
	msg := chainhash.HashH([]byte("x"))

	bad := &Ed25519Signature{PublicKey: []byte{1, 2, 3}, Sig: []byte{4, 5}}
	require.NotPanics(t, func() {
		require.False(t, bad.Verify(msg))
	})

	badSecp := &Secp256k1Signature{PublicKey: []byte{1, 2, 3}, Sig: []byte{4, 5}}
	require.NotPanics(t, func() {
		require.False(t, badSecp.Verify(msg))
	})
}
