// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockchain implements the sidechain's authoritative chain
// state: the accepted block index, the unspent-output set, and the
// transaction index (spec.md §4.2). ChainState is the single
// consensus-critical component; everything else in this module either
// feeds it (mempool, ingestor) or serves it (store, parentrpc).
package blockchain

import (
	"fmt"
	"sync"

	"github.com/nchashch/sdk/chainhash"
	"github.com/nchashch/sdk/chainutil"
	"github.com/nchashch/sdk/ingestor"
	"github.com/nchashch/sdk/txmodel"
)

// defaultSigCacheSize bounds the number of verified-signature records
// kept, matching the order of magnitude the teacher's txscript.SigCache
// defaults to.
const defaultSigCacheSize = 100000

// ChainState holds every block, transaction, and output the sidechain
// has accepted, plus the frontier of spendable outpoints (spec.md §3).
// A single writer goroutine is expected to call the mutating methods;
// many readers may call the read-only methods concurrently (spec.md
// §5).
type ChainState struct {
	mu sync.RWMutex

	blockOrder   []chainhash.Hash
	headers      map[chainhash.Hash]txmodel.Header
	bodies       map[chainhash.Hash]txmodel.Body
	transactions map[chainhash.Hash]txmodel.Transaction

	outputs           map[txmodel.Outpoint]txmodel.RegularOutput
	depositOutputs    map[txmodel.Outpoint]txmodel.DepositOutput
	withdrawalOutputs map[txmodel.Outpoint]txmodel.WithdrawalOutput
	unspentOutpoints  map[txmodel.Outpoint]struct{}

	sigCache *sigCache
}

// New creates an empty ChainState, ready to accept a genesis block
// whose header's PrevBlockHash is the zero hash.
func New() *ChainState {
	return &ChainState{
		headers:           make(map[chainhash.Hash]txmodel.Header),
		bodies:            make(map[chainhash.Hash]txmodel.Body),
		transactions:      make(map[chainhash.Hash]txmodel.Transaction),
		outputs:           make(map[txmodel.Outpoint]txmodel.RegularOutput),
		depositOutputs:    make(map[txmodel.Outpoint]txmodel.DepositOutput),
		withdrawalOutputs: make(map[txmodel.Outpoint]txmodel.WithdrawalOutput),
		unspentOutpoints:  make(map[txmodel.Outpoint]struct{}),
		sigCache:          newSigCache(defaultSigCacheSize),
	}
}

// BestBlockHash returns the tip's block hash, or the zero hash if no
// block has been connected yet.
func (cs *ChainState) BestBlockHash() chainhash.Hash {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.bestBlockHashLocked()
}

func (cs *ChainState) bestBlockHashLocked() chainhash.Hash {
	if len(cs.blockOrder) == 0 {
		return chainhash.Hash{}
	}
	return cs.blockOrder[len(cs.blockOrder)-1]
}

// resolvedInput is what every input resolves to: the value it carries
// and the address permitted to spend it, regardless of which of the
// three output maps it came from.
type resolvedInput struct {
	value   uint64
	address chainutil.Address
}

// resolveInput looks up outpoint across the three disjoint output maps
// (spec.md §3).
func (cs *ChainState) resolveInput(outpoint txmodel.Outpoint) (resolvedInput, bool) {
	if out, ok := cs.outputs[outpoint]; ok {
		return resolvedInput{value: out.Value, address: out.Address}, true
	}
	if out, ok := cs.withdrawalOutputs[outpoint]; ok {
		return resolvedInput{value: out.Value, address: out.SideAddress}, true
	}
	if out, ok := cs.depositOutputs[outpoint]; ok {
		return resolvedInput{value: out.Value, address: out.Address}, true
	}
	return resolvedInput{}, false
}

// AddDeposits extends deposit_outputs and unspent_outpoints with
// chunk's entries (spec.md §4.2). Applying the same chunk twice
// corrupts accounting; the caller is responsible for not doing so.
func (cs *ChainState) AddDeposits(chunk ingestor.DepositChunk) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for outpoint, out := range chunk.Outputs {
		cs.depositOutputs[outpoint] = out
		cs.unspentOutpoints[outpoint] = struct{}{}
	}
}

// DisconnectDeposits is the inverse of AddDeposits, used when the
// parent chain reorganises and previously reported deposits are rolled
// back (spec.md §9 Design notes). Every block that spent one of these
// deposit outputs must already have been disconnected; DisconnectDeposits
// refuses to remove an outpoint that is not currently unspent, since
// that would silently corrupt a still-connected block's accounting.
func (cs *ChainState) DisconnectDeposits(chunk ingestor.DepositChunk) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for outpoint := range chunk.Outputs {
		if _, unspent := cs.unspentOutpoints[outpoint]; !unspent {
			return ruleError(ErrOutputSpent, fmt.Sprintf(
				"cannot disconnect deposit %s: already spent, disconnect the spending block first",
				outpoint.Hash))
		}
	}
	for outpoint := range chunk.Outputs {
		delete(cs.depositOutputs, outpoint)
		delete(cs.unspentOutpoints, outpoint)
	}
	return nil
}

// ValidateTransaction checks tx against the current chain state without
// mutating it (spec.md §4.2). Checks run in the order the specification
// lists them; that order affects only which error is reported first,
// never the accept/reject decision.
func (cs *ChainState) ValidateTransaction(tx txmodel.Transaction) error {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.validateTransactionLocked(tx)
}

func (cs *ChainState) validateTransactionLocked(tx txmodel.Transaction) error {
	resolved := make([]resolvedInput, len(tx.Inputs))
	for i, outpoint := range tx.Inputs {
		r, ok := cs.resolveInput(outpoint)
		if !ok {
			return ruleError(ErrUnknownOutput, fmt.Sprintf("input %d: output %s does not exist", i, outpoint.Hash))
		}
		resolved[i] = r
	}
	for i, outpoint := range tx.Inputs {
		if _, unspent := cs.unspentOutpoints[outpoint]; !unspent {
			return ruleError(ErrOutputSpent, fmt.Sprintf("input %d: output %s already spent", i, outpoint.Hash))
		}
	}
	if len(tx.Inputs) != len(tx.Signatures) {
		return ruleError(ErrArity, fmt.Sprintf("%d inputs but %d signatures", len(tx.Inputs), len(tx.Signatures)))
	}

	var valueIn uint64
	for _, r := range resolved {
		valueIn += r.value
	}
	var valueOut uint64
	for _, out := range tx.Outputs {
		valueOut += out.Value
	}
	for _, out := range tx.WithdrawalOutputs {
		valueOut += out.Value
	}
	if valueOut > valueIn {
		return ruleError(ErrValueOutExceedsIn, fmt.Sprintf("value out %d exceeds value in %d", valueOut, valueIn))
	}

	strippedTxid, err := tx.StrippedTxid()
	if err != nil {
		return err
	}
	for i, sig := range tx.Signatures {
		if !cs.sigCache.Verify(sig, strippedTxid) {
			return ruleError(ErrBadSignature, fmt.Sprintf("input %d: signature does not verify", i))
		}
		if sig.SignerAddress() != resolved[i].address {
			return ruleError(ErrAddressMismatch, fmt.Sprintf("input %d: signature authorises a different address than the spent output", i))
		}
	}
	return nil
}

// GetFee returns the transaction's fee: the sum of its resolved inputs
// minus the sum of its outputs and withdrawal outputs. It is undefined
// (returns an error) if any input fails to resolve.
func (cs *ChainState) GetFee(tx txmodel.Transaction) (uint64, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.getFeeLocked(tx)
}

func (cs *ChainState) getFeeLocked(tx txmodel.Transaction) (uint64, error) {
	var valueIn uint64
	for i, outpoint := range tx.Inputs {
		r, ok := cs.resolveInput(outpoint)
		if !ok {
			return 0, ruleError(ErrUnknownOutput, fmt.Sprintf("input %d: output %s does not exist", i, outpoint.Hash))
		}
		valueIn += r.value
	}
	var valueOut uint64
	for _, out := range tx.Outputs {
		valueOut += out.Value
	}
	for _, out := range tx.WithdrawalOutputs {
		valueOut += out.Value
	}
	if valueOut > valueIn {
		return 0, ruleError(ErrValueOutExceedsIn, fmt.Sprintf("value out %d exceeds value in %d", valueOut, valueIn))
	}
	return valueIn - valueOut, nil
}

// ValidateBlock reports whether header/body may be connected on top of
// the current tip (spec.md §4.2): prev-hash linkage, merkle commitment,
// every transaction's individual validity, no outpoint spent twice
// within the body, and coinbase-equals-fees.
func (cs *ChainState) ValidateBlock(header txmodel.Header, body txmodel.Body) error {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.validateBlockLocked(header, body)
}

func (cs *ChainState) validateBlockLocked(header txmodel.Header, body txmodel.Body) error {
	if header.PrevBlockHash != cs.bestBlockHashLocked() {
		return ruleError(ErrPrevBlockMismatch, "header.prev_block_hash does not match the current tip")
	}
	root, err := body.ComputeMerkleRoot()
	if err != nil {
		return err
	}
	if header.MerkleRoot != root {
		return ruleError(ErrBadMerkleRoot, "header.merkle_root does not commit to the body's transactions")
	}

	spentInBlock := make(map[txmodel.Outpoint]bool)
	var totalFees uint64
	for txIndex, tx := range body.Transactions {
		if err := cs.validateTransactionLocked(tx); err != nil {
			return err
		}
		for _, outpoint := range tx.Inputs {
			if spentInBlock[outpoint] {
				return ruleError(ErrDuplicateBlockInput, fmt.Sprintf("transaction %d: input %s already spent earlier in this body", txIndex, outpoint.Hash))
			}
			spentInBlock[outpoint] = true
		}
		fee, err := cs.getFeeLocked(tx)
		if err != nil {
			return err
		}
		totalFees += fee
	}

	var coinbaseTotal uint64
	for _, out := range body.Coinbase {
		coinbaseTotal += out.Value
	}
	if coinbaseTotal != totalFees {
		return ruleError(ErrBadCoinbaseValue, fmt.Sprintf("coinbase total %d does not equal block fees %d", coinbaseTotal, totalFees))
	}
	return nil
}

// ConnectBlock applies header/body to chain state. The caller must have
// established that ValidateBlock(header, body) returns nil first;
// ConnectBlock re-validates under the same lock anyway, since the cost
// of doing so is small next to the cost of a consensus-state
// corruption bug.
func (cs *ChainState) ConnectBlock(header txmodel.Header, body txmodel.Body) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if err := cs.validateBlockLocked(header, body); err != nil {
		return err
	}

	for _, tx := range body.Transactions {
		txid, err := tx.Txid()
		if err != nil {
			return err
		}
		cs.transactions[txid] = tx
		for _, outpoint := range tx.Inputs {
			delete(cs.unspentOutpoints, outpoint)
		}
		for vout, out := range tx.Outputs {
			outpoint := txmodel.RegularOutpoint(txid, uint32(vout))
			cs.outputs[outpoint] = out
			cs.unspentOutpoints[outpoint] = struct{}{}
		}
		for vout, out := range tx.WithdrawalOutputs {
			outpoint := txmodel.WithdrawalOutpoint(txid, uint32(vout))
			cs.withdrawalOutputs[outpoint] = out
			cs.unspentOutpoints[outpoint] = struct{}{}
		}
	}

	blockHash, err := header.Hash()
	if err != nil {
		return err
	}
	for vout, out := range body.Coinbase {
		outpoint := txmodel.CoinbaseOutpoint(blockHash, uint32(vout))
		cs.outputs[outpoint] = out
		cs.unspentOutpoints[outpoint] = struct{}{}
	}
	cs.headers[blockHash] = header
	cs.bodies[blockHash] = body
	cs.blockOrder = append(cs.blockOrder, blockHash)

	log.Debugf("connected block %s at height %d with %d transactions", blockHash, len(cs.blockOrder)-1, len(body.Transactions))
	return nil
}

// DisconnectBlock is the exact inverse of ConnectBlock. It fails if
// header is not the current tip.
func (cs *ChainState) DisconnectBlock(header txmodel.Header, body txmodel.Body) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	blockHash, err := header.Hash()
	if err != nil {
		return err
	}
	if blockHash != cs.bestBlockHashLocked() {
		return ruleError(ErrNotTip, fmt.Sprintf("block %s is not the current tip", blockHash))
	}

	for i := len(body.Transactions) - 1; i >= 0; i-- {
		tx := body.Transactions[i]
		txid, err := tx.Txid()
		if err != nil {
			return err
		}
		for _, outpoint := range tx.Inputs {
			cs.unspentOutpoints[outpoint] = struct{}{}
		}
		for vout := range tx.Outputs {
			outpoint := txmodel.RegularOutpoint(txid, uint32(vout))
			delete(cs.outputs, outpoint)
			delete(cs.unspentOutpoints, outpoint)
		}
		for vout := range tx.WithdrawalOutputs {
			outpoint := txmodel.WithdrawalOutpoint(txid, uint32(vout))
			delete(cs.withdrawalOutputs, outpoint)
			delete(cs.unspentOutpoints, outpoint)
		}
		delete(cs.transactions, txid)
	}

	for vout := range body.Coinbase {
		outpoint := txmodel.CoinbaseOutpoint(blockHash, uint32(vout))
		delete(cs.outputs, outpoint)
		delete(cs.unspentOutpoints, outpoint)
	}
	delete(cs.bodies, blockHash)
	delete(cs.headers, blockHash)
	cs.blockOrder = cs.blockOrder[:len(cs.blockOrder)-1]

	log.Debugf("disconnected block %s", blockHash)
	return nil
}
