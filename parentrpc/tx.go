// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package parentrpc

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/nchashch/sdk/chainhash"
	"github.com/nchashch/sdk/ingestor"
)

// segwitMarker/segwitFlag are the two bytes a segwit transaction inserts
// between the version and the input count (BIP 144).
const (
	segwitMarker = 0x00
	segwitFlag   = 0x01
)

// decodeParentTx parses the legacy Bitcoin-style consensus encoding
// listsidechaindeposits returns as txhex (original_source/src/client.rs:
// bitcoin::Transaction::deserialize), far enough to recover what the
// linkage algorithm needs: the txid, each input's previous outpoint, and
// each output's value. Witness data, if present, is skipped rather than
// interpreted; the sidechain never validates parent-chain signatures.
func decodeParentTx(raw []byte) (ingestor.ParentTx, error) {
	r := bytes.NewReader(raw)

	var versionBytes [4]byte
	if _, err := io.ReadFull(r, versionBytes[:]); err != nil {
		return ingestor.ParentTx{}, err
	}

	segwit := false
	numInputs, err := readVarInt(r)
	if err != nil {
		return ingestor.ParentTx{}, err
	}
	if numInputs == 0 {
		// Marker byte: the real input count follows a flag byte.
		flag, err := readByte(r)
		if err != nil {
			return ingestor.ParentTx{}, err
		}
		if flag != segwitFlag {
			return ingestor.ParentTx{}, fmt.Errorf("parentrpc: unsupported segwit flag %d", flag)
		}
		segwit = true
		numInputs, err = readVarInt(r)
		if err != nil {
			return ingestor.ParentTx{}, err
		}
	}

	inputs := make([]ingestor.ParentOutpoint, numInputs)
	for i := range inputs {
		var prevTxid chainhash.Hash
		if _, err := io.ReadFull(r, prevTxid[:]); err != nil {
			return ingestor.ParentTx{}, err
		}
		var voutBytes [4]byte
		if _, err := io.ReadFull(r, voutBytes[:]); err != nil {
			return ingestor.ParentTx{}, err
		}
		if err := skipVarBytes(r); err != nil { // scriptSig
			return ingestor.ParentTx{}, err
		}
		var sequence [4]byte
		if _, err := io.ReadFull(r, sequence[:]); err != nil {
			return ingestor.ParentTx{}, err
		}
		inputs[i] = ingestor.ParentOutpoint{
			Txid: prevTxid,
			Vout: binary.LittleEndian.Uint32(voutBytes[:]),
		}
	}

	numOutputs, err := readVarInt(r)
	if err != nil {
		return ingestor.ParentTx{}, err
	}
	outputs := make([]uint64, numOutputs)
	for i := range outputs {
		var valueBytes [8]byte
		if _, err := io.ReadFull(r, valueBytes[:]); err != nil {
			return ingestor.ParentTx{}, err
		}
		outputs[i] = binary.LittleEndian.Uint64(valueBytes[:])
		if err := skipVarBytes(r); err != nil { // scriptPubKey
			return ingestor.ParentTx{}, err
		}
	}

	if segwit {
		for range inputs {
			numWitnessItems, err := readVarInt(r)
			if err != nil {
				return ingestor.ParentTx{}, err
			}
			for j := uint64(0); j < numWitnessItems; j++ {
				if err := skipVarBytes(r); err != nil {
					return ingestor.ParentTx{}, err
				}
			}
		}
	}

	var lockTime [4]byte
	if _, err := io.ReadFull(r, lockTime[:]); err != nil {
		return ingestor.ParentTx{}, err
	}

	txid, err := parentTxid(raw, segwit)
	if err != nil {
		return ingestor.ParentTx{}, err
	}

	return ingestor.ParentTx{Txid: txid, Inputs: inputs, Outputs: outputs}, nil
}

// parentTxid computes a legacy Bitcoin txid: double SHA-256 of the
// non-witness serialization. For a segwit transaction that means
// re-decoding the fields and re-serializing without the marker, flag,
// and witness stack, since the RPC-provided hex includes them.
func parentTxid(raw []byte, segwit bool) (chainhash.Hash, error) {
	if !segwit {
		return doubleSHA256(raw), nil
	}

	r := bytes.NewReader(raw)
	var buf bytes.Buffer

	var version [4]byte
	if _, err := io.ReadFull(r, version[:]); err != nil {
		return chainhash.Hash{}, err
	}
	buf.Write(version[:])

	if _, err := io.ReadFull(r, make([]byte, 2)); err != nil { // marker, flag
		return chainhash.Hash{}, err
	}

	numInputs, err := readVarInt(r)
	if err != nil {
		return chainhash.Hash{}, err
	}
	writeVarInt(&buf, numInputs)
	for i := uint64(0); i < numInputs; i++ {
		prevTxid := make([]byte, 32)
		if _, err := io.ReadFull(r, prevTxid); err != nil {
			return chainhash.Hash{}, err
		}
		buf.Write(prevTxid)
		vout := make([]byte, 4)
		if _, err := io.ReadFull(r, vout); err != nil {
			return chainhash.Hash{}, err
		}
		buf.Write(vout)
		scriptSig, err := readVarBytes(r)
		if err != nil {
			return chainhash.Hash{}, err
		}
		writeVarBytes(&buf, scriptSig)
		sequence := make([]byte, 4)
		if _, err := io.ReadFull(r, sequence); err != nil {
			return chainhash.Hash{}, err
		}
		buf.Write(sequence)
	}

	numOutputs, err := readVarInt(r)
	if err != nil {
		return chainhash.Hash{}, err
	}
	writeVarInt(&buf, numOutputs)
	for i := uint64(0); i < numOutputs; i++ {
		value := make([]byte, 8)
		if _, err := io.ReadFull(r, value); err != nil {
			return chainhash.Hash{}, err
		}
		buf.Write(value)
		scriptPubKey, err := readVarBytes(r)
		if err != nil {
			return chainhash.Hash{}, err
		}
		writeVarBytes(&buf, scriptPubKey)
	}

	for i := uint64(0); i < numInputs; i++ {
		numWitnessItems, err := readVarInt(r)
		if err != nil {
			return chainhash.Hash{}, err
		}
		for j := uint64(0); j < numWitnessItems; j++ {
			if err := skipVarBytes(r); err != nil {
				return chainhash.Hash{}, err
			}
		}
	}

	lockTime := make([]byte, 4)
	if _, err := io.ReadFull(r, lockTime); err != nil {
		return chainhash.Hash{}, err
	}
	buf.Write(lockTime)

	return doubleSHA256(buf.Bytes()), nil
}

func doubleSHA256(b []byte) chainhash.Hash {
	first := sha256.Sum256(b)
	return chainhash.Hash(sha256.Sum256(first[:]))
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// readVarInt reads a Bitcoin CompactSize integer.
func readVarInt(r io.Reader) (uint64, error) {
	disc, err := readByte(r)
	if err != nil {
		return 0, err
	}
	switch disc {
	case 0xff:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint64(buf[:]), nil
	case 0xfe:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint32(buf[:])), nil
	case 0xfd:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint16(buf[:])), nil
	default:
		return uint64(disc), nil
	}
}

func writeVarInt(w io.Writer, n uint64) {
	switch {
	case n < 0xfd:
		w.Write([]byte{byte(n)})
	case n <= 0xffff:
		w.Write([]byte{0xfd})
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], uint16(n))
		w.Write(buf[:])
	case n <= 0xffffffff:
		w.Write([]byte{0xfe})
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(n))
		w.Write(buf[:])
	default:
		w.Write([]byte{0xff})
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], n)
		w.Write(buf[:])
	}
}

const maxScriptLen = 1 << 20

func readVarBytes(r io.Reader) ([]byte, error) {
	n, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	if n > maxScriptLen {
		return nil, fmt.Errorf("parentrpc: script length %d exceeds decode limit", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeVarBytes(w io.Writer, b []byte) {
	writeVarInt(w, uint64(len(b)))
	w.Write(b)
}

func skipVarBytes(r io.Reader) error {
	_, err := readVarBytes(r)
	return err
}
