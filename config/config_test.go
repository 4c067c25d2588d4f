// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()
	cfg, _, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, uint32(0), cfg.SidechainNumber)
}

func TestLoadRejectsUnknownLogLevel(t *testing.T) {
	t.Parallel()
	_, _, err := Load([]string{"--loglevel=nonsense"})
	require.Error(t, err)
}

func TestLoadFlagsOverrideConfigFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	confPath := filepath.Join(dir, "sdkd.conf")
	require.NoError(t, os.WriteFile(confPath, []byte("sidechain=3\nloglevel=debug\n"), 0o600))

	cfg, _, err := Load([]string{"--configfile=" + confPath, "--sidechain=9"})
	require.NoError(t, err)
	require.Equal(t, uint32(9), cfg.SidechainNumber, "command-line flags must win over the config file")
	require.Equal(t, "debug", cfg.LogLevel, "config file still applies where no flag overrides it")
}

func TestLoadShowVersionShortCircuits(t *testing.T) {
	t.Parallel()
	cfg, _, err := Load([]string{"--version"})
	require.NoError(t, err)
	require.True(t, cfg.ShowVersion)
}
