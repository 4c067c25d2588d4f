// Copyright (c) 2013-2015 The btcsuite developers
// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package config loads sidechaind's configuration from the command line
// and an optional ini-style config file, following the same precedence
// order as the teacher's cmd/flokicoind-cli: defaults, then config file,
// then command-line flags, each overriding the last.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flags "github.com/jessevdk/go-flags"

	slog "github.com/nchashch/sdk/log"
)

var defaultDataDir = filepath.Join(appDataDir(), "sdk")

const defaultConfigFilename = "sdkd.conf"

// Config holds every setting sidechaind needs: where to keep its data,
// which parent-chain RPC server to poll, which sidechain slot it serves
// (spec.md §6.3's sidechain_number), and how verbosely to log.
type Config struct {
	ConfigFile string `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir    string `short:"b" long:"datadir" description:"Directory to store data"`
	LogDir     string `long:"logdir" description:"Directory to log output"`
	LogLevel   string `long:"loglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`

	SidechainNumber uint32 `long:"sidechain" description:"Sidechain slot number this node serves"`

	ParentRPCHost       string `long:"parentrpchost" description:"Parent chain RPC host:port"`
	ParentRPCUser       string `long:"parentrpcuser" description:"Parent chain RPC username"`
	ParentRPCPass       string `long:"parentrpcpass" default-mask:"-" description:"Parent chain RPC password"`
	ParentRPCDisableTLS bool   `long:"parentrpcnotls" description:"Disable TLS when talking to the parent chain RPC server"`

	ListenAddress string `long:"listen" description:"Address to serve the sidechain's own RPC on"`

	ShowVersion bool `short:"V" long:"version" description:"Display version information and exit"`
}

// appDataDir returns the user's home directory, or "." if it cannot be
// determined, standing in for the teacher's chainutil.AppDataDir
// (filtered out of the retrieval pack; this is a minimal from-scratch
// replacement, not copied from any retrieved file). It does no per-OS
// special-casing.
func appDataDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home
	}
	return "."
}

// defaults returns a Config populated with sane defaults, before any
// file or flag has been applied.
func defaults() Config {
	return Config{
		ConfigFile:      filepath.Join(defaultDataDir, defaultConfigFilename),
		DataDir:         defaultDataDir,
		LogDir:          filepath.Join(defaultDataDir, "logs"),
		LogLevel:        "info",
		SidechainNumber: 0,
		ParentRPCHost:   "localhost:8332",
	}
}

// Load parses command-line flags, falling back to an ini-style config
// file for anything not given on the command line. Flags always take
// precedence over the file, matching loadConfig's precedence in the
// teacher's cmd/flokicoind-cli/config.go.
func Load(args []string) (*Config, []string, error) {
	cfg := defaults()

	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag|flags.IgnoreUnknown)
	if _, err := preParser.ParseArgs(args); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			return nil, nil, err
		}
	}

	if preCfg.ShowVersion {
		return &preCfg, nil, nil
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := os.Stat(preCfg.ConfigFile); err == nil {
		if err := flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile); err != nil {
			return nil, nil, fmt.Errorf("config: parsing config file: %w", err)
		}
	}

	remaining, err := parser.ParseArgs(args)
	if err != nil {
		return nil, nil, err
	}

	if _, ok := slog.LevelFromString(cfg.LogLevel); !ok {
		return nil, nil, fmt.Errorf("config: unknown log level %q", cfg.LogLevel)
	}

	cfg.DataDir = cleanAndExpandPath(cfg.DataDir)
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)

	return &cfg, remaining, nil
}

// cleanAndExpandPath expands environment variables and a leading ~ in
// path, then cleans the result.
func cleanAndExpandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = strings.Replace(path, "~", home, 1)
		}
	}
	return filepath.Clean(os.ExpandEnv(path))
}
