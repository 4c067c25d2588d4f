// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"sort"
	"sync"

	"github.com/nchashch/sdk/chainhash"
	"github.com/nchashch/sdk/chainutil"
	"github.com/nchashch/sdk/txmodel"
)

// entry is one staged transaction, keyed for ordering by (fee, txid) so
// that two transactions paying an identical fee both survive - the
// known limitation of keying by fee alone (spec.md §4.3, §9).
type entry struct {
	fee         uint64
	txid        chainhash.Hash
	transaction txmodel.Transaction
}

// less orders entries by descending fee, then by txid for a total order
// among same-fee entries.
func less(a, b entry) bool {
	if a.fee != b.fee {
		return a.fee > b.fee
	}
	return lessHash(a.txid, b.txid)
}

func lessHash(a, b chainhash.Hash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// MemPool is a fee-ordered staging pool of candidate transactions
// (spec.md §4.3). It does not validate transactions against chain
// state; a producer is expected to call
// blockchain.ChainState.ValidateBlock on any body CreateBody assembles
// before connecting it.
type MemPool struct {
	mu      sync.Mutex
	byTxid  map[chainhash.Hash]entry
	ordered []entry // kept sorted by less(); rebuilt lazily on structural change
	dirty   bool
}

// New creates an empty MemPool.
func New() *MemPool {
	return &MemPool{byTxid: make(map[chainhash.Hash]entry)}
}

// Insert adds transaction under the given fee key, keyed internally by
// (fee, txid). It reports whether a transaction with the same txid was
// already present and has now been replaced; a distinct transaction
// paying the same fee is never overwritten (spec.md §9).
func (mp *MemPool) Insert(fee uint64, transaction txmodel.Transaction) (bool, error) {
	txid, err := transaction.Txid()
	if err != nil {
		return false, err
	}
	mp.mu.Lock()
	defer mp.mu.Unlock()
	_, existed := mp.byTxid[txid]
	mp.byTxid[txid] = entry{fee: fee, txid: txid, transaction: transaction}
	mp.dirty = true
	return existed, nil
}

// Remove drops txid from the pool, if present. reason is informational
// only; MemPool does not act on it.
func (mp *MemPool) Remove(txid chainhash.Hash, reason RemovalReason) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	if _, ok := mp.byTxid[txid]; !ok {
		return
	}
	delete(mp.byTxid, txid)
	mp.dirty = true
	log.Debugf("removed %s from mempool: %v", txid, reason)
}

// Len returns the number of staged transactions.
func (mp *MemPool) Len() int {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return len(mp.byTxid)
}

// refreshLocked rebuilds the sorted order if the set of entries has
// changed since the last call. Called with mp.mu held.
func (mp *MemPool) refreshLocked() {
	if !mp.dirty {
		return
	}
	mp.ordered = mp.ordered[:0]
	for _, e := range mp.byTxid {
		mp.ordered = append(mp.ordered, e)
	}
	sort.Slice(mp.ordered, func(i, j int) bool { return less(mp.ordered[i], mp.ordered[j]) })
	mp.dirty = false
}

// CreateBody selects up to n transactions in descending fee order, sums
// their fees into a single coinbase output paying coinbaseAddress, and
// emits a body with that coinbase followed by the selected transactions
// in the same descending order (spec.md §4.3).
func (mp *MemPool) CreateBody(coinbaseAddress chainutil.Address, n int) txmodel.Body {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.refreshLocked()

	if n > len(mp.ordered) {
		n = len(mp.ordered)
	}
	selected := mp.ordered[:n]

	var totalFee uint64
	transactions := make([]txmodel.Transaction, n)
	for i, e := range selected {
		totalFee += e.fee
		transactions[i] = e.transaction
	}

	return txmodel.Body{
		Coinbase:     []txmodel.RegularOutput{{Address: coinbaseAddress, Value: totalFee}},
		Transactions: transactions,
	}
}
