// Copyright (c) 2016 The btcsuite developers
// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package log

import (
	"io"
	"os"

	"github.com/jrick/logrotate/rotator"
)

// NewRotatingBackend creates a Backend that writes to both stdout and a
// size-rotated log file at logFile, keeping up to maxRolls old files.
func NewRotatingBackend(logFile string, maxRolls int) (*Backend, error) {
	r, err := rotator.New(logFile, 10*1024, false, maxRolls)
	if err != nil {
		return nil, err
	}
	return NewBackend(io.MultiWriter(os.Stdout, r)), nil
}
