// Copyright (c) 2016 The btcsuite developers
// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package parentrpc

import slog "github.com/nchashch/sdk/log"

// log is a logger that is initialized with no output filters. This
// means the package will not perform any logging by default until the
// caller requests it.
var log slog.Logger

func init() {
	DisableLog()
}

// DisableLog disables all library log output.
func DisableLog() {
	log = slog.Disabled
}

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger slog.Logger) {
	log = logger
}
