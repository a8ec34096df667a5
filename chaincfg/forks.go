// Copyright (c) 2018 The Monkey developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import "time"

// Heights at which the soft forks of the chain activate.  They are the same on
// every network.
const (
	SoftForkHeight140 int32 = 15999
	SoftForkHeight143 int32 = 65000
	SoftForkHeight200 int32 = 89500
	SoftForkHeight210 int32 = 122000
)

// SoftFork names a consensus rule change and the height it activates at.
type SoftFork struct {
	Name             string
	ActivationHeight int32
}

// SoftForks is the list of soft forks ordered by activation height.
var SoftForks = []SoftFork{
	{Name: "v1.4.0", ActivationHeight: SoftForkHeight140},
	{Name: "v1.4.3", ActivationHeight: SoftForkHeight143},
	{Name: "v2.0.0", ActivationHeight: SoftForkHeight200},
	{Name: "v2.1.0", ActivationHeight: SoftForkHeight210},
}

// ActiveSoftForks returns the soft forks in effect at the passed height.
func ActiveSoftForks(height int32) []SoftFork {
	var active []SoftFork
	for _, fork := range SoftForks {
		if height >= fork.ActivationHeight {
			active = append(active, fork)
		}
	}
	return active
}

// StakeMaxAge returns the maximum stake age in effect on top of a chain whose
// best height is bestHeight.  It has to be evaluated again for every new best
// block since the answer changes at SoftForkHeight200.
func (p *Params) StakeMaxAge(bestHeight int32) time.Duration {
	if bestHeight >= SoftForkHeight200 {
		return p.StakeMaxAgeV2
	}
	return p.StakeMaxAgeV1
}

// ProofOfWorkAllowed reports whether a proof of work block is acceptable at
// the passed height.
func (p *Params) ProofOfWorkAllowed(height int32) bool {
	return height <= p.LastPoWBlock
}
