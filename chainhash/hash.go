// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash provides the 32-byte content-addressed identifier used
// throughout the sidechain core: block hashes, transaction ids, the body
// commitment, and addresses are all the same Hash type, distinguished only
// by what was hashed to produce them.
package chainhash

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// HashSize is the number of bytes in a Hash.
const HashSize = 32

// MaxHashStringSize is the maximum length of a Hash hash string.
const MaxHashStringSize = HashSize * 2

// ErrHashStrSize describes an error that indicates the caller specified a
// hash string that does not have the right number of characters.
var ErrHashStrSize = fmt.Errorf("max hash string length is %v bytes", MaxHashStringSize)

// Hash is used in several of the sidechain messages and data structures to
// identify data by the SHA-256 digest of its canonical encoding. Unlike
// Bitcoin's block/transaction hashes, this type has no byte-reversal
// convention: it is a plain content address, rendered as ordinary
// big-endian hex.
type Hash [HashSize]byte

// String returns the Hash as a hexadecimal string. Unlike Bitcoin's
// wire-protocol hashes, bytes are not reversed: this is a plain content
// address, not a value with an established byte-order convention.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// CloneBytes returns a copy of the bytes which represent the hash as a
// byte slice.
func (h Hash) CloneBytes() []byte {
	newHash := make([]byte, HashSize)
	copy(newHash, h[:])
	return newHash
}

// SetBytes sets the bytes which represent the hash. An error is returned
// if the number of bytes passed in is not HashSize.
func (h *Hash) SetBytes(newHash []byte) error {
	nhlen := len(newHash)
	if nhlen != HashSize {
		return fmt.Errorf("invalid hash length of %v, want %v", nhlen, HashSize)
	}
	copy(h[:], newHash)
	return nil
}

// IsEqual returns true if target is the same as the hash.
func (h *Hash) IsEqual(target *Hash) bool {
	if h == nil && target == nil {
		return true
	}
	if h == nil || target == nil {
		return false
	}
	return *h == *target
}

// NewHash returns a new Hash from a byte slice. An error is returned if
// the number of bytes passed in is not HashSize.
func NewHash(newHash []byte) (*Hash, error) {
	var sh Hash
	err := sh.SetBytes(newHash)
	if err != nil {
		return nil, err
	}
	return &sh, nil
}

// NewHashFromStr creates a Hash from a hash string. The string should be
// the hexadecimal string of a hash.
func NewHashFromStr(hash string) (*Hash, error) {
	ret := new(Hash)
	err := Decode(ret, hash)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Decode decodes the hexadecimal string encoding of a Hash to a
// destination.
func Decode(dst *Hash, src string) error {
	if len(src) != MaxHashStringSize {
		return ErrHashStrSize
	}

	var decoded Hash
	n, err := hex.Decode(decoded[:], []byte(src))
	if err != nil {
		return err
	}
	if n != HashSize {
		return errors.New("invalid hash length")
	}

	copy(dst[:], decoded[:])
	return nil
}

// HashB calculates the SHA-256 digest of the given byte slice.
func HashB(b []byte) []byte {
	sum := sha256.Sum256(b)
	return sum[:]
}

// HashH calculates the SHA-256 digest of the given byte slice and returns
// it as a Hash.
func HashH(b []byte) Hash {
	return Hash(sha256.Sum256(b))
}
