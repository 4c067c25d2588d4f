// Copyright (c) 2013-2014 The btcsuite developers
// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/btcsuite/btcutil/base58"

	"github.com/nchashch/sdk/chainhash"
)

// addrVersion is the single base58check version byte used for every
// address on this sidechain. Unlike Bitcoin-family chains, there is only
// one address kind (spec.md §3: a content-addressed hash of a public
// key), so there is no P2PKH/P2SH/witness version family to distinguish.
const addrVersion = 0x3f

// Address is the content-addressed identifier of a public key:
// chainhash.HashH(pubkeyBytes). It renders externally as base58check over
// the 32-byte digest (spec.md §6.4).
type Address chainhash.Hash

// NewAddress wraps a raw 32-byte digest as an Address. Callers normally
// obtain the digest via sidesig, not by constructing it directly.
func NewAddress(h chainhash.Hash) Address {
	return Address(h)
}

// Hash returns the underlying 32-byte digest.
func (a Address) Hash() chainhash.Hash {
	return chainhash.Hash(a)
}

// String renders the address as base58check, Bitcoin alphabet.
func (a Address) String() string {
	return base58.CheckEncode(a[:], addrVersion)
}

// ParseAddress decodes the base58check string form produced by String.
func ParseAddress(s string) (Address, error) {
	decoded, version, err := base58.CheckDecode(s)
	if err != nil {
		return Address{}, fmt.Errorf("chainutil: invalid address: %w", err)
	}
	if version != addrVersion {
		return Address{}, fmt.Errorf("chainutil: unexpected address version %#x", version)
	}
	if len(decoded) != chainhash.HashSize {
		return Address{}, fmt.Errorf("chainutil: address digest must be %d bytes, got %d", chainhash.HashSize, len(decoded))
	}
	var a Address
	copy(a[:], decoded)
	return a, nil
}

// ToDepositString renders the deposit-address form presented to users for
// depositing into the sidechain numbered sidechainNumber (spec.md §6.4):
// "s{N}_{base58check}_{first 6 hex chars of sha256 of that prefix}". The
// parent chain treats this purely as an opaque destination string.
func (a Address) ToDepositString(sidechainNumber int) string {
	prefix := "s" + strconv.Itoa(sidechainNumber) + "_" + a.String() + "_"
	sum := sha256.Sum256([]byte(prefix))
	return prefix + hex.EncodeToString(sum[:])[:6]
}

// ParseDepositString is the inverse of ToDepositString: it recovers the
// Address embedded in a deposit-address string and verifies the checksum
// suffix and sidechain number, rejecting anything tampered with or
// destined for a different sidechain.
func ParseDepositString(s string, sidechainNumber int) (Address, error) {
	prefixWant := "s" + strconv.Itoa(sidechainNumber) + "_"
	if !strings.HasPrefix(s, prefixWant) {
		return Address{}, fmt.Errorf("chainutil: deposit string has wrong sidechain prefix")
	}
	rest := strings.TrimPrefix(s, prefixWant)
	parts := strings.SplitN(rest, "_", 2)
	if len(parts) != 2 {
		return Address{}, fmt.Errorf("chainutil: malformed deposit string")
	}
	addrPart, checksum := parts[0], parts[1]
	prefix := prefixWant + addrPart + "_"
	sum := sha256.Sum256([]byte(prefix))
	want := hex.EncodeToString(sum[:])[:6]
	if checksum != want {
		return Address{}, fmt.Errorf("chainutil: deposit string checksum mismatch")
	}
	return ParseAddress(addrPart)
}

// Encode implements sidewire.Encodable: an Address is a fixed-size array,
// written with no length prefix.
func (a Address) Encode(w io.Writer) error {
	_, err := w.Write(a[:])
	return err
}

// Decode implements sidewire.Decodable.
func (a *Address) Decode(r io.Reader) error {
	_, err := io.ReadFull(r, a[:])
	return err
}
