// Copyright (c) 2018 The Monkey developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"fmt"
	"sync"

	"github.com/monkeyproject/monkeyd/wire"
)

var (
	// activeMtx guards activeParams.  Selection normally happens once at
	// startup, but test harnesses may switch networks.
	activeMtx    sync.RWMutex
	activeParams = &MainNetParams
)

// ParamsForNet returns the default parameters of the passed network.
func ParamsForNet(id NetworkID) (*Params, error) {
	switch id {
	case MainNet:
		return &MainNetParams, nil
	case TestNet:
		return &TestNetParams, nil
	case RegTest:
		return &RegressionNetParams, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownNet, id)
}

// Select makes the passed network the active one for the process.  It must
// be called during startup before any subsystem caches values derived from
// ActiveNetParams.  Unknown networks leave the selection untouched and
// return ErrUnknownNet, which callers must treat as fatal.
func Select(id NetworkID) error {
	params, err := ParamsForNet(id)
	if err != nil {
		return err
	}

	activeMtx.Lock()
	activeParams = params
	activeMtx.Unlock()

	log.Infof("Selected %s network (%s magic %08x, port %s)", params.Name,
		wire.NetString(params.Net), uint32(params.Net), params.DefaultPort)
	return nil
}

// ActiveNetParams returns the parameters of the selected network.  The main
// network is selected until Select is called.
func ActiveNetParams() *Params {
	activeMtx.RLock()
	defer activeMtx.RUnlock()
	return activeParams
}
