// Copyright (c) 2016 The btcsuite developers
// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package mempool provides a fee-ordered staging pool of candidate sidechain
transactions and assembly of block bodies from it.

The pool does not itself validate transactions against chain state; a
producer is expected to call blockchain.ChainState.ValidateBlock on any
body this package assembles before connecting it. This keeps the pool a
pure ordering structure: it answers "what should go in the next block,
highest fee first" without needing a read lock on chain state for every
insertion.

# Fee ordering

Transactions are kept ordered by (fee, txid) so that two transactions
paying an identical fee both survive - the fee alone is not a unique key.
CreateBody selects the top N by that order, sums their fees into a single
coinbase output, and emits them following the coinbase in the same order.

# Removal

RemovalReason records why a transaction left the pool, so that a caller
composing ConnectBlock/DisconnectBlock with pool maintenance can tell a
block confirmation apart from a reorg-induced re-admission.
*/
package mempool
