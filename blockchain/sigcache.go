// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/decred/dcrd/lru"

	"github.com/nchashch/sdk/chainhash"
	"github.com/nchashch/sdk/sidesig"
	"github.com/nchashch/sdk/sidewire"
)

// sigCache remembers signatures already found valid over a given
// signatures-stripped txid, so that re-validating a transaction already
// seen in the mempool (e.g. when assembling a candidate body, or
// re-checking a block about to be connected) need not repeat the
// underlying scheme's verification. A miss always falls through to a
// real Verify call; the cache only ever speeds up a repeat of the exact
// same (strippedTxid, signature) pair.
type sigCache struct {
	valid *lru.Cache[chainhash.Hash]
}

// newSigCache creates a sigCache holding up to maxEntries verified
// signature records.
func newSigCache(maxEntries uint) *sigCache {
	return &sigCache{valid: lru.NewCache[chainhash.Hash](maxEntries)}
}

// entryKey derives a single cache key from the signature's canonical
// encoding and the txid it was checked against, so that two identical
// signatures checked against different txids never collide.
func entryKey(sig sidesig.Signature, strippedTxid chainhash.Hash) (chainhash.Hash, error) {
	encoded, err := sidewire.EncodeToBytes(sig)
	if err != nil {
		return chainhash.Hash{}, err
	}
	return chainhash.HashH(append(encoded, strippedTxid[:]...)), nil
}

// Verify reports whether sig is valid over strippedTxid, consulting and
// populating the cache. A cache population failure (bad encoding) is
// treated as a verification failure, not a panic.
func (c *sigCache) Verify(sig sidesig.Signature, strippedTxid chainhash.Hash) bool {
	key, err := entryKey(sig, strippedTxid)
	if err != nil {
		return false
	}
	if c.valid.Contains(key) {
		return true
	}
	if !sig.Verify(strippedTxid) {
		return false
	}
	c.valid.Add(key)
	return true
}
