// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/nchashch/sdk/blockchain"
	"github.com/nchashch/sdk/chainhash"
	"github.com/nchashch/sdk/ingestor"
	"github.com/nchashch/sdk/sidewire"
	"github.com/nchashch/sdk/txmodel"
)

// Key namespaces. Each is a single ASCII byte so prefix iteration
// (used by LoadChainState) never has to worry about one namespace's
// keys being a prefix of another's.
const (
	nsHeader           = 'h'
	nsBody             = 'b'
	nsTransaction      = 't'
	nsOutput           = 'o'
	nsDepositOutput    = 'd'
	nsWithdrawalOutput = 'w'
	nsUnspent          = 'u'
	nsBlockOrder       = 'r'
	nsMeta             = 'm'
)

var metaHeightKey = []byte{nsMeta, 'h', 'e', 'i', 'g', 'h', 't'}

// Store persists ChainState's mutations incrementally to an on-disk
// LevelDB, so a node can resume without holding a full snapshot in
// memory (spec.md §9's "add a write-ahead log" note, resolved as a
// batched key-value log rather than a separate WAL file; LevelDB's own
// write-ahead log already gives each batch crash-atomicity).
type Store struct {
	db *leveldb.DB
}

// Open opens (creating if necessary) a LevelDB database at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func outpointKey(ns byte, outpoint txmodel.Outpoint) ([]byte, error) {
	encoded, err := sidewire.EncodeToBytes(outpoint)
	if err != nil {
		return nil, err
	}
	return append([]byte{ns}, encoded...), nil
}

func hashKey(ns byte, hash chainhash.Hash) []byte {
	return append([]byte{ns}, hash[:]...)
}

func heightKey(height uint64) []byte {
	key := make([]byte, 9)
	key[0] = nsBlockOrder
	binary.BigEndian.PutUint64(key[1:], height)
	return key
}

func (s *Store) height() (uint64, error) {
	v, err := s.db.Get(metaHeightKey, nil)
	if err == leveldb.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v), nil
}

// ConnectBlock applies the same mutation blockchain.ChainState.ConnectBlock
// does, atomically, to the on-disk database. The caller is responsible for
// having validated the block first.
func (s *Store) ConnectBlock(header txmodel.Header, body txmodel.Body) error {
	batch := new(leveldb.Batch)

	for _, tx := range body.Transactions {
		txid, err := tx.Txid()
		if err != nil {
			return err
		}
		txBytes, err := sidewire.EncodeToBytes(tx)
		if err != nil {
			return err
		}
		batch.Put(hashKey(nsTransaction, txid), txBytes)

		for _, in := range tx.Inputs {
			key, err := outpointKey(nsUnspent, in)
			if err != nil {
				return err
			}
			batch.Delete(key)
		}
		for vout, out := range tx.Outputs {
			outpoint := txmodel.RegularOutpoint(txid, uint32(vout))
			key, err := outpointKey(nsOutput, outpoint)
			if err != nil {
				return err
			}
			val, err := sidewire.EncodeToBytes(out)
			if err != nil {
				return err
			}
			batch.Put(key, val)
			unspentKey, err := outpointKey(nsUnspent, outpoint)
			if err != nil {
				return err
			}
			batch.Put(unspentKey, []byte{})
		}
		for vout, out := range tx.WithdrawalOutputs {
			outpoint := txmodel.WithdrawalOutpoint(txid, uint32(vout))
			key, err := outpointKey(nsWithdrawalOutput, outpoint)
			if err != nil {
				return err
			}
			val, err := sidewire.EncodeToBytes(out)
			if err != nil {
				return err
			}
			batch.Put(key, val)
			unspentKey, err := outpointKey(nsUnspent, outpoint)
			if err != nil {
				return err
			}
			batch.Put(unspentKey, []byte{})
		}
	}

	blockHash, err := header.Hash()
	if err != nil {
		return err
	}
	for vout, out := range body.Coinbase {
		outpoint := txmodel.CoinbaseOutpoint(blockHash, uint32(vout))
		key, err := outpointKey(nsOutput, outpoint)
		if err != nil {
			return err
		}
		val, err := sidewire.EncodeToBytes(out)
		if err != nil {
			return err
		}
		batch.Put(key, val)
		unspentKey, err := outpointKey(nsUnspent, outpoint)
		if err != nil {
			return err
		}
		batch.Put(unspentKey, []byte{})
	}

	headerBytes, err := sidewire.EncodeToBytes(header)
	if err != nil {
		return err
	}
	bodyBytes, err := sidewire.EncodeToBytes(body)
	if err != nil {
		return err
	}
	batch.Put(hashKey(nsHeader, blockHash), headerBytes)
	batch.Put(hashKey(nsBody, blockHash), bodyBytes)

	height, err := s.height()
	if err != nil {
		return err
	}
	batch.Put(heightKey(height), blockHash[:])
	heightBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(heightBytes, height+1)
	batch.Put(metaHeightKey, heightBytes)

	if err := s.db.Write(batch, nil); err != nil {
		return err
	}
	log.Debugf("wrote block %s at height %d", blockHash, height)
	return nil
}

// DisconnectBlock is the exact inverse of ConnectBlock.
func (s *Store) DisconnectBlock(header txmodel.Header, body txmodel.Body) error {
	batch := new(leveldb.Batch)

	blockHash, err := header.Hash()
	if err != nil {
		return err
	}

	for i := len(body.Transactions) - 1; i >= 0; i-- {
		tx := body.Transactions[i]
		txid, err := tx.Txid()
		if err != nil {
			return err
		}
		for _, in := range tx.Inputs {
			key, err := outpointKey(nsUnspent, in)
			if err != nil {
				return err
			}
			batch.Put(key, []byte{})
		}
		for vout := range tx.Outputs {
			outpoint := txmodel.RegularOutpoint(txid, uint32(vout))
			key, err := outpointKey(nsOutput, outpoint)
			if err != nil {
				return err
			}
			batch.Delete(key)
			unspentKey, err := outpointKey(nsUnspent, outpoint)
			if err != nil {
				return err
			}
			batch.Delete(unspentKey)
		}
		for vout := range tx.WithdrawalOutputs {
			outpoint := txmodel.WithdrawalOutpoint(txid, uint32(vout))
			key, err := outpointKey(nsWithdrawalOutput, outpoint)
			if err != nil {
				return err
			}
			batch.Delete(key)
			unspentKey, err := outpointKey(nsUnspent, outpoint)
			if err != nil {
				return err
			}
			batch.Delete(unspentKey)
		}
		batch.Delete(hashKey(nsTransaction, txid))
	}

	for vout := range body.Coinbase {
		outpoint := txmodel.CoinbaseOutpoint(blockHash, uint32(vout))
		key, err := outpointKey(nsOutput, outpoint)
		if err != nil {
			return err
		}
		batch.Delete(key)
		unspentKey, err := outpointKey(nsUnspent, outpoint)
		if err != nil {
			return err
		}
		batch.Delete(unspentKey)
	}

	batch.Delete(hashKey(nsBody, blockHash))
	batch.Delete(hashKey(nsHeader, blockHash))

	height, err := s.height()
	if err != nil {
		return err
	}
	if height == 0 {
		return fmt.Errorf("store: no blocks to disconnect")
	}
	batch.Delete(heightKey(height - 1))
	heightBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(heightBytes, height-1)
	batch.Put(metaHeightKey, heightBytes)

	if err := s.db.Write(batch, nil); err != nil {
		return err
	}
	log.Debugf("removed block %s at height %d", blockHash, height-1)
	return nil
}

// AddDeposits writes chunk's entries to the deposit-output and unspent
// keyspaces.
func (s *Store) AddDeposits(chunk ingestor.DepositChunk) error {
	batch := new(leveldb.Batch)
	for outpoint, out := range chunk.Outputs {
		key, err := outpointKey(nsDepositOutput, outpoint)
		if err != nil {
			return err
		}
		val, err := sidewire.EncodeToBytes(out)
		if err != nil {
			return err
		}
		batch.Put(key, val)
		unspentKey, err := outpointKey(nsUnspent, outpoint)
		if err != nil {
			return err
		}
		batch.Put(unspentKey, []byte{})
	}
	return s.db.Write(batch, nil)
}

// DisconnectDeposits is the inverse of AddDeposits.
func (s *Store) DisconnectDeposits(chunk ingestor.DepositChunk) error {
	batch := new(leveldb.Batch)
	for outpoint := range chunk.Outputs {
		key, err := outpointKey(nsDepositOutput, outpoint)
		if err != nil {
			return err
		}
		batch.Delete(key)
		unspentKey, err := outpointKey(nsUnspent, outpoint)
		if err != nil {
			return err
		}
		batch.Delete(unspentKey)
	}
	return s.db.Write(batch, nil)
}

// LoadChainState replays the entire database into a fresh ChainState.
func (s *Store) LoadChainState() (*blockchain.ChainState, error) {
	height, err := s.height()
	if err != nil {
		return nil, err
	}

	blockOrder := make([]chainhash.Hash, 0, height)
	orderIter := s.db.NewIterator(util.BytesPrefix([]byte{nsBlockOrder}), nil)
	for orderIter.Next() {
		var hash chainhash.Hash
		copy(hash[:], orderIter.Value())
		blockOrder = append(blockOrder, hash)
	}
	orderIter.Release()
	if err := orderIter.Error(); err != nil {
		return nil, err
	}

	headers := make(map[chainhash.Hash]txmodel.Header)
	headerIter := s.db.NewIterator(util.BytesPrefix([]byte{nsHeader}), nil)
	for headerIter.Next() {
		var hash chainhash.Hash
		copy(hash[:], headerIter.Key()[1:])
		var header txmodel.Header
		if err := header.Decode(bytes.NewReader(headerIter.Value())); err != nil {
			headerIter.Release()
			return nil, err
		}
		headers[hash] = header
	}
	headerIter.Release()
	if err := headerIter.Error(); err != nil {
		return nil, err
	}

	bodies := make(map[chainhash.Hash]txmodel.Body)
	bodyIter := s.db.NewIterator(util.BytesPrefix([]byte{nsBody}), nil)
	for bodyIter.Next() {
		var hash chainhash.Hash
		copy(hash[:], bodyIter.Key()[1:])
		var body txmodel.Body
		if err := body.Decode(bytes.NewReader(bodyIter.Value())); err != nil {
			bodyIter.Release()
			return nil, err
		}
		bodies[hash] = body
	}
	bodyIter.Release()
	if err := bodyIter.Error(); err != nil {
		return nil, err
	}

	outputs := make(map[txmodel.Outpoint]txmodel.RegularOutput)
	outputIter := s.db.NewIterator(util.BytesPrefix([]byte{nsOutput}), nil)
	for outputIter.Next() {
		var outpoint txmodel.Outpoint
		if err := outpoint.Decode(bytes.NewReader(outputIter.Key()[1:])); err != nil {
			outputIter.Release()
			return nil, err
		}
		var out txmodel.RegularOutput
		if err := out.Decode(bytes.NewReader(outputIter.Value())); err != nil {
			outputIter.Release()
			return nil, err
		}
		outputs[outpoint] = out
	}
	outputIter.Release()
	if err := outputIter.Error(); err != nil {
		return nil, err
	}

	depositOutputs := make(map[txmodel.Outpoint]txmodel.DepositOutput)
	depositIter := s.db.NewIterator(util.BytesPrefix([]byte{nsDepositOutput}), nil)
	for depositIter.Next() {
		var outpoint txmodel.Outpoint
		if err := outpoint.Decode(bytes.NewReader(depositIter.Key()[1:])); err != nil {
			depositIter.Release()
			return nil, err
		}
		var out txmodel.DepositOutput
		if err := out.Decode(bytes.NewReader(depositIter.Value())); err != nil {
			depositIter.Release()
			return nil, err
		}
		depositOutputs[outpoint] = out
	}
	depositIter.Release()
	if err := depositIter.Error(); err != nil {
		return nil, err
	}

	withdrawalOutputs := make(map[txmodel.Outpoint]txmodel.WithdrawalOutput)
	withdrawalIter := s.db.NewIterator(util.BytesPrefix([]byte{nsWithdrawalOutput}), nil)
	for withdrawalIter.Next() {
		var outpoint txmodel.Outpoint
		if err := outpoint.Decode(bytes.NewReader(withdrawalIter.Key()[1:])); err != nil {
			withdrawalIter.Release()
			return nil, err
		}
		var out txmodel.WithdrawalOutput
		if err := out.Decode(bytes.NewReader(withdrawalIter.Value())); err != nil {
			withdrawalIter.Release()
			return nil, err
		}
		withdrawalOutputs[outpoint] = out
	}
	withdrawalIter.Release()
	if err := withdrawalIter.Error(); err != nil {
		return nil, err
	}

	var unspent []txmodel.Outpoint
	unspentIter := s.db.NewIterator(util.BytesPrefix([]byte{nsUnspent}), nil)
	for unspentIter.Next() {
		var outpoint txmodel.Outpoint
		if err := outpoint.Decode(bytes.NewReader(unspentIter.Key()[1:])); err != nil {
			unspentIter.Release()
			return nil, err
		}
		unspent = append(unspent, outpoint)
	}
	unspentIter.Release()
	if err := unspentIter.Error(); err != nil {
		return nil, err
	}

	snap := blockchain.NewSnapshotFromParts(blockOrder, headers, bodies, outputs, depositOutputs, withdrawalOutputs, unspent)
	return blockchain.RestoreSnapshot(snap), nil
}
