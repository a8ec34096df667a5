// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2018 The Monkey developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	btcdblockchain "github.com/btcsuite/btcd/blockchain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/monkeyproject/monkeyd/blockchain"
	"github.com/monkeyproject/monkeyd/chaincfg"
	"github.com/monkeyproject/monkeyd/spork"
	"github.com/monkeyproject/monkeyd/wire"
)

var (
	cfg *config
)

// node groups the consensus components of a running daemon.
type node struct {
	params      *chaincfg.Params
	index       *blockchain.BlockIndex
	checkpoints *blockchain.Checkpoints
	sporks      *spork.Manager
}

// newNode wires the consensus components of the passed network together.
// Accepted spork messages are handed to relay.
func newNode(params *chaincfg.Params, relay func(*wire.MsgSpork)) (*node, error) {
	index := blockchain.NewBlockIndex(params.GenesisHash)
	checkpoints := blockchain.NewCheckpoints(params, index)

	sporks, err := spork.NewManager(&spork.Config{
		ChainParams: params,
		Relay:       relay,
		Execute: func(id spork.ID, value int64) {
			sprkLog.Debugf("Executing spork %v with value %d", id,
				value)
		},
		TimeSource: btcdblockchain.NewMedianTime(),
	})
	if err != nil {
		return nil, err
	}

	return &node{
		params:      params,
		index:       index,
		checkpoints: checkpoints,
		sporks:      sporks,
	}, nil
}

// applySporkSettings installs the spork updates given on the command line.
func (n *node) applySporkSettings(wif string, settings []sporkSetting) error {
	if len(settings) == 0 {
		return nil
	}
	if err := n.sporks.SetPrivKey(wif); err != nil {
		return fmt.Errorf("unable to use spork key: %w", err)
	}
	for _, s := range settings {
		if err := n.sporks.SetByName(s.name, s.value); err != nil {
			return err
		}
	}
	return nil
}

// sortedNames returns the keys of m in ascending order.
func sortedNames[V any](m map[string]V) []string {
	names := maps.Keys(m)
	slices.Sort(names)
	return names
}

// writeSporkValues writes the value of every spork sorted by name.
func writeSporkValues(w io.Writer, values map[string]int64) {
	for _, name := range sortedNames(values) {
		fmt.Fprintf(w, "%s: %d\n", name, values[name])
	}
}

// writeSporkStates writes whether every spork is active sorted by name.
func writeSporkStates(w io.Writer, states map[string]bool) {
	for _, name := range sortedNames(states) {
		fmt.Fprintf(w, "%s: %v\n", name, states[name])
	}
}

// startMetricsServer serves the prometheus registry on listenAddr.  The
// returned function stops the server.
func startMetricsServer(listenAddr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		mnkdLog.Infof("Metrics server listening on %s", listenAddr)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			mnkdLog.Errorf("Metrics server: %v", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(),
			5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			mnkdLog.Errorf("Unable to stop metrics server: %v", err)
		}
	}
}

// monkeydMain is the real main function for monkeyd.  It is necessary to work
// around the fact that deferred functions do not run when os.Exit() is called.
func monkeydMain() error {
	// Load configuration and parse command line.  This function also
	// initializes logging and configures it accordingly.
	tcfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg = tcfg
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	// Get a channel that will be closed when a shutdown signal has been
	// triggered either from an OS signal such as SIGINT (Ctrl+C) or from
	// another subsystem.
	interrupt := interruptListener()
	defer mnkdLog.Info("Shutdown complete")

	// Show version at startup.
	mnkdLog.Infof("Version %s", version())

	params := chaincfg.ActiveNetParams()
	n, err := newNode(params, func(msg *wire.MsgSpork) {
		sprkLog.Debugf("Queued spork %v for relay", spork.ID(msg.SporkID))
	})
	if err != nil {
		mnkdLog.Errorf("%v", err)
		return err
	}
	mnkdLog.Infof("Genesis %v, %d checkpoints, estimated chain height %d",
		params.GenesisHash, len(n.checkpoints.Checkpoints()),
		n.checkpoints.TotalBlocksEstimate())

	if err := n.applySporkSettings(cfg.SporkKey, cfg.sporkSets); err != nil {
		mnkdLog.Errorf("%v", err)
		return err
	}

	// One-shot administrative commands.
	switch {
	case cfg.ShowSporks:
		writeSporkValues(os.Stdout, n.sporks.Show())
		return nil
	case cfg.ActiveSporks:
		writeSporkStates(os.Stdout, n.sporks.ActiveStates())
		return nil
	case cfg.ShowCheckpoints:
		fmt.Println(n.checkpoints.TotalBlocksEstimate())
		return nil
	}

	// Return now if an interrupt signal was triggered.
	if interruptRequested(interrupt) {
		return nil
	}

	if cfg.MetricsListen != "" {
		stopMetrics := startMetricsServer(cfg.MetricsListen)
		defer stopMetrics()
	}

	// Wait until the interrupt signal is received from an OS signal or
	// shutdown is requested through one of the subsystems.
	<-interrupt
	return nil
}

func main() {
	// Work around defer not working after os.Exit()
	if err := monkeydMain(); err != nil {
		os.Exit(1)
	}
}
