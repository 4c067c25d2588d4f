// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nchashch/sdk/chainhash"
)

func TestAddressStringRoundTrip(t *testing.T) {
	t.Parallel()
	addr := NewAddress(chainhash.HashH([]byte("a public key")))

	s := addr.String()
	got, err := ParseAddress(s)
	require.NoError(t, err)
	require.Equal(t, addr, got)
}

func TestParseAddressRejectsCorruptedString(t *testing.T) {
	t.Parallel()
	addr := NewAddress(chainhash.HashH([]byte("a public key")))
	s := addr.String()

	// Flip a character so the checksum/version no longer matches; base58
	// decoding should report an error rather than silently accepting it.
	mutated := []byte(s)
	mutated[0] = mutated[0] + 1
	_, err := ParseAddress(string(mutated))
	require.Error(t, err)
}

func TestDepositStringRoundTrip(t *testing.T) {
	t.Parallel()
	addr := NewAddress(chainhash.HashH([]byte("a public key")))

	depositStr := addr.ToDepositString(3)
	got, err := ParseDepositString(depositStr, 3)
	require.NoError(t, err)
	require.Equal(t, addr, got)
}

func TestDepositStringRejectsWrongSidechain(t *testing.T) {
	t.Parallel()
	addr := NewAddress(chainhash.HashH([]byte("a public key")))
	depositStr := addr.ToDepositString(3)

	_, err := ParseDepositString(depositStr, 4)
	require.Error(t, err)
}

func TestDepositStringRejectsTamperedChecksum(t *testing.T) {
	t.Parallel()
	addr := NewAddress(chainhash.HashH([]byte("a public key")))
	depositStr := addr.ToDepositString(3)

	last := depositStr[len(depositStr)-1]
	replacement := byte('0')
	if last == '0' {
		replacement = '1'
	}
	tampered := depositStr[:len(depositStr)-1] + string(replacement)
	_, err := ParseDepositString(tampered, 3)
	require.Error(t, err)
}

func TestAddressEncodeDecode(t *testing.T) {
	t.Parallel()
	addr := NewAddress(chainhash.HashH([]byte("a public key")))

	var buf bytes.Buffer
	require.NoError(t, addr.Encode(&buf))

	var got Address
	require.NoError(t, got.Decode(&buf))
	require.Equal(t, addr, got)
}
