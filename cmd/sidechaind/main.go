// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command sidechaind is an illustrative entry point wiring config,
// logging, chain state, the mempool, and the parent-chain ingestor
// together for a manual smoke run. It is not a stable surface: there is
// no accompanying RPC/wallet command set, matching spec.md §6.2's call
// that the node's external API is out of scope for this module.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nchashch/sdk/blockchain"
	"github.com/nchashch/sdk/config"
	"github.com/nchashch/sdk/ingestor"
	slog "github.com/nchashch/sdk/log"
	"github.com/nchashch/sdk/mempool"
	"github.com/nchashch/sdk/parentrpc"
	"github.com/nchashch/sdk/store"
)

var (
	backend *slog.Backend
	log     slog.Logger
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, _, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}
	if cfg.ShowVersion {
		fmt.Println("sidechaind version", version)
		return nil
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.LogDir, 0700); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	logFile := filepath.Join(cfg.LogDir, "sidechaind.log")
	backend, err = slog.NewRotatingBackend(logFile, 3)
	if err != nil {
		return fmt.Errorf("initializing log backend: %w", err)
	}
	initSubsystemLoggers(cfg.LogLevel)
	defer log.Info("shutdown complete")

	interrupt := interruptListener()

	log.Infof("opening store at %s", cfg.DataDir)
	db, err := store.Open(filepath.Join(cfg.DataDir, "chainstate"))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	chainState, err := db.LoadChainState()
	if err != nil {
		return fmt.Errorf("loading chain state: %w", err)
	}
	log.Infof("chain tip is %s", chainState.BestBlockHash())

	pool := mempool.New()

	rpc := parentrpc.New(parentrpc.ConnConfig{
		Host:       cfg.ParentRPCHost,
		User:       cfg.ParentRPCUser,
		Pass:       cfg.ParentRPCPass,
		DisableTLS: cfg.ParentRPCDisableTLS,
	}, cfg.SidechainNumber)

	log.Infof("sidechaind ready, serving sidechain slot %d", cfg.SidechainNumber)
	_ = pool
	_ = rpc

	<-interrupt
	return nil
}

// initSubsystemLoggers wires the shared backend into every package's
// UseLogger hook, matching the teacher's per-subsystem UseLogger wiring
// at startup.
func initSubsystemLoggers(level string) {
	lvl, _ := slog.LevelFromString(level)

	setLevel := func(l slog.Logger) slog.Logger {
		l.SetLevel(lvl)
		return l
	}

	log = setLevel(backend.Subsystem("SDCD"))
	blockchain.UseLogger(setLevel(backend.Subsystem("CHST")))
	mempool.UseLogger(setLevel(backend.Subsystem("MPOL")))
	ingestor.UseLogger(setLevel(backend.Subsystem("INGS")))
	store.UseLogger(setLevel(backend.Subsystem("STOR")))
	parentrpc.UseLogger(setLevel(backend.Subsystem("PRPC")))
}

// interruptListener returns a channel closed when SIGINT or SIGTERM is
// received, so run's deferred cleanup executes before the process exits.
func interruptListener() <-chan struct{} {
	c := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		close(c)
	}()
	return c
}
