// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

// version is sidechaind's reported version string.
const version = "0.1.0"
