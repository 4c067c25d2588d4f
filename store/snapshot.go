// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package store persists chain state two ways: SaveSnapshot/LoadSnapshot
// write and read the entire ChainState as one magic-and-version-prefixed
// blob, and Store applies the same mutations ChainState does,
// incrementally, to an on-disk LevelDB so a node need not hold a full
// snapshot in memory to resume. Neither mode is authoritative over the
// other; a node typically loads the latest snapshot (or replays the
// LevelDB incrementally) at startup and keeps Store current thereafter.
package store

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/nchashch/sdk/blockchain"
)

// SnapshotMagic identifies a snapshot blob. spec.md §9 flags the
// original format as having neither a magic number nor a version,
// making a format change silently backward-incompatible; this resolves
// that.
const SnapshotMagic = "SDKS"

// SnapshotVersion is the current snapshot encoding version. Bump it,
// and branch LoadSnapshot on the value read, whenever Snapshot's wire
// shape changes incompatibly.
const SnapshotVersion = 1

// SaveSnapshot writes magic, version, and the canonical encoding of
// snap to w.
func SaveSnapshot(w io.Writer, snap blockchain.Snapshot) error {
	if _, err := io.WriteString(w, SnapshotMagic); err != nil {
		return err
	}
	var versionBytes [4]byte
	binary.LittleEndian.PutUint32(versionBytes[:], SnapshotVersion)
	if _, err := w.Write(versionBytes[:]); err != nil {
		return err
	}
	return snap.Encode(w)
}

// LoadSnapshot reads and validates the magic and version written by
// SaveSnapshot, then decodes the snapshot body.
func LoadSnapshot(r io.Reader) (blockchain.Snapshot, error) {
	magic := make([]byte, len(SnapshotMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return blockchain.Snapshot{}, err
	}
	if string(magic) != SnapshotMagic {
		return blockchain.Snapshot{}, fmt.Errorf("store: bad snapshot magic %q", magic)
	}
	var versionBytes [4]byte
	if _, err := io.ReadFull(r, versionBytes[:]); err != nil {
		return blockchain.Snapshot{}, err
	}
	version := binary.LittleEndian.Uint32(versionBytes[:])
	if version != SnapshotVersion {
		return blockchain.Snapshot{}, fmt.Errorf("store: unsupported snapshot version %d", version)
	}
	var snap blockchain.Snapshot
	if err := snap.Decode(r); err != nil {
		return blockchain.Snapshot{}, err
	}
	return snap, nil
}
