// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package sidewire implements the single canonical binary encoding used
// both to derive content-addressed identifiers (chainhash.Hash) and to
// persist the chain-state aggregate. The encoding is fixed
// once and must never change meaning for an existing byte sequence:
// doing so would silently change every identifier derived from it.
//
// Every domain type in txmodel implements Encodable/Decodable with this
// package's primitives: fixed-width unsigned integers (little-endian),
// a VarInt length prefix ahead of every variable-length sequence, and a
// discriminant byte ahead of the payload of every tagged union (Outpoint,
// in txmodel). This mirrors the teacher's wire package idiom
// (Encode(w io.Writer) error / Decode(r io.Reader) error method pairs
// plus ReadVarInt/WriteVarInt framing) adapted from the flokicoin
// protocol wire encoding to a persistence-and-hashing codec instead of a
// peer-to-peer one.
package sidewire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// Encodable is implemented by every type that participates in the
// canonical encoding.
type Encodable interface {
	Encode(w io.Writer) error
}

// Decodable is implemented by every type that participates in the
// canonical encoding.
type Decodable interface {
	Decode(r io.Reader) error
}

// ErrVarIntOverflow is returned when a decoded VarInt does not fit the
// range the caller requested it for (e.g. a vout or length used as an
// int).
var ErrVarIntOverflow = errors.New("sidewire: varint overflows requested width")

// WriteUint32 writes a fixed-width little-endian uint32.
func WriteUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint32 reads a fixed-width little-endian uint32.
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// WriteUint64 writes a fixed-width little-endian uint64.
func WriteUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint64 reads a fixed-width little-endian uint64.
func ReadUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// WriteByte writes a single discriminant or flag byte.
func WriteByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

// ReadByte reads a single discriminant or flag byte.
func ReadByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// WriteVarInt writes n as a VarInt, a length-prefix encoding that keeps
// small counts (the overwhelming common case: number of inputs, outputs,
// signatures) to a single byte.
func WriteVarInt(w io.Writer, n uint64) error {
	switch {
	case n < 0xfd:
		return WriteByte(w, byte(n))
	case n <= 0xffff:
		if err := WriteByte(w, 0xfd); err != nil {
			return err
		}
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], uint16(n))
		_, err := w.Write(buf[:])
		return err
	case n <= 0xffffffff:
		if err := WriteByte(w, 0xfe); err != nil {
			return err
		}
		return WriteUint32(w, uint32(n))
	default:
		if err := WriteByte(w, 0xff); err != nil {
			return err
		}
		return WriteUint64(w, n)
	}
}

// ReadVarInt reads a VarInt written by WriteVarInt.
func ReadVarInt(r io.Reader) (uint64, error) {
	disc, err := ReadByte(r)
	if err != nil {
		return 0, err
	}
	switch disc {
	case 0xff:
		return ReadUint64(r)
	case 0xfe:
		v, err := ReadUint32(r)
		return uint64(v), err
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

// WriteVarBytes writes a VarInt length prefix followed by the raw bytes.
func WriteVarBytes(w io.Writer, b []byte) error {
	if err := WriteVarInt(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// ReadVarBytes reads a length-prefixed byte slice written by
// WriteVarBytes. maxLen bounds the length to guard against a corrupt or
// hostile length prefix forcing an enormous allocation.
func ReadVarBytes(r io.Reader, maxLen uint64) ([]byte, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if n > maxLen {
		return nil, ErrVarIntOverflow
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteFixedBytes writes exactly len(b) bytes with no length prefix, for
// fixed-size arrays such as a chainhash.Hash or a public key.
func WriteFixedBytes(w io.Writer, b []byte) error {
	_, err := w.Write(b)
	return err
}

// ReadFixedBytes reads exactly n bytes with no length prefix.
func ReadFixedBytes(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// EncodeToBytes runs e.Encode against an in-memory buffer and returns the
// result, for callers (txmodel, blockchain, store) that need the canonical bytes
// rather than a streaming write.
func EncodeToBytes(e Encodable) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
