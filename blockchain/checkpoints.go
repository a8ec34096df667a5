// Copyright (c) 2018 The Monkey developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/monkeyproject/monkeyd/chaincfg"
)

// SyncCheckpointSpan is the number of blocks the automatically selected sync
// checkpoint trails the tip of the best chain by.
const SyncCheckpointSpan = 5000

// Checkpoints enforces the hard-coded checkpoints of a network along with
// the rolling sync checkpoint that limits the depth of reorganizations.
type Checkpoints struct {
	checkpoints         []chaincfg.Checkpoint
	checkpointsByHeight map[int32]*chaincfg.Checkpoint
	lookup              BlockLookup
}

// NewCheckpoints returns the checkpoint rules of the passed network evaluated
// against the chain state exposed by lookup.
func NewCheckpoints(params *chaincfg.Params, lookup BlockLookup) *Checkpoints {
	initPrometheusMetrics()

	c := &Checkpoints{
		checkpoints: params.Checkpoints,
		lookup:      lookup,
	}
	if len(c.checkpoints) > 0 {
		c.checkpointsByHeight = make(map[int32]*chaincfg.Checkpoint,
			len(c.checkpoints))
		for i := range c.checkpoints {
			checkpoint := &c.checkpoints[i]
			c.checkpointsByHeight[checkpoint.Height] = checkpoint
		}
	}
	return c
}

// Checkpoints returns a slice of checkpoints (regardless of whether they are
// already known).  When there are no checkpoints for the chain, it will return
// nil.
//
// This function is safe for concurrent access.
func (c *Checkpoints) Checkpoints() []chaincfg.Checkpoint {
	return c.checkpoints
}

// HasCheckpoints returns whether the network has checkpoints defined.
//
// This function is safe for concurrent access.
func (c *Checkpoints) HasCheckpoints() bool {
	return len(c.checkpoints) > 0
}

// CheckHardened returns whether the passed block height and hash combination
// match the checkpoint data.  It also returns true if there is no checkpoint
// data for the passed block height.
//
// This function is safe for concurrent access.
func (c *Checkpoints) CheckHardened(height int32, hash *chainhash.Hash) bool {
	checkpoint, exists := c.checkpointsByHeight[height]
	if !exists {
		return true
	}

	if !checkpoint.Hash.IsEqual(hash) {
		return false
	}

	log.Debugf("Verified checkpoint at height %d/block %s", checkpoint.Height,
		checkpoint.Hash)
	return true
}

// TotalBlocksEstimate returns the height of the final checkpoint, or zero
// when the network has none.  It is only meant for progress reporting.
//
// This function is safe for concurrent access.
func (c *Checkpoints) TotalBlocksEstimate() int32 {
	if !c.HasCheckpoints() {
		return 0
	}
	return c.checkpoints[len(c.checkpoints)-1].Height
}

// LatestCheckpoint returns the most recent checkpoint (regardless of whether it
// is already known). When there are no defined checkpoints for the active chain
// instance, it will return nil.
//
// This function is safe for concurrent access.
func (c *Checkpoints) LatestCheckpoint() *chaincfg.Checkpoint {
	if !c.HasCheckpoints() {
		return nil
	}
	return &c.checkpoints[len(c.checkpoints)-1]
}

// NextCheckpoint returns the next checkpoint after the passed height.  It
// returns nil when there is not one because the height is already later than
// the final checkpoint or the network has no checkpoints.
//
// This function is safe for concurrent access.
func (c *Checkpoints) NextCheckpoint(height int32) *chaincfg.Checkpoint {
	if !c.HasCheckpoints() {
		return nil
	}

	// There is no next checkpoint if the height is already after the final
	// checkpoint.
	finalCheckpoint := &c.checkpoints[len(c.checkpoints)-1]
	if height >= finalCheckpoint.Height {
		return nil
	}

	// Find the next checkpoint.
	nextCheckpoint := finalCheckpoint
	for i := len(c.checkpoints) - 2; i >= 0; i-- {
		if height >= c.checkpoints[i].Height {
			break
		}
		nextCheckpoint = &c.checkpoints[i]
	}
	return nextCheckpoint
}

// LastCheckpoint returns the block index entry of the most recent checkpoint
// that is present in the block index.  It returns nil when none of them are
// known.
//
// This function is safe for concurrent access.
func (c *Checkpoints) LastCheckpoint() BlockRef {
	for i := len(c.checkpoints) - 1; i >= 0; i-- {
		node := c.lookup.LookupNode(c.checkpoints[i].Hash)
		if node != nil {
			return node
		}
	}
	return nil
}

// AutoSelectSyncCheckpoint returns the ancestor of the best chain tip that
// trails it by SyncCheckpointSpan blocks, or the genesis block when the chain
// is shorter than that.  It returns nil when no chain is loaded.
//
// This function is safe for concurrent access.
func (c *Checkpoints) AutoSelectSyncCheckpoint() BlockRef {
	tip := c.lookup.Tip()
	if tip == nil {
		return nil
	}

	node := tip
	for node.Height()+SyncCheckpointSpan > tip.Height() {
		parent := node.Parent()
		if parent == nil {
			break
		}
		node = parent
	}
	return node
}

// CheckSync returns whether a block at the passed height extends the chain
// past the sync checkpoint.  Blocks at or below it would fork the chain
// deeper than reorganizations are allowed to go.
//
// This function is safe for concurrent access.
func (c *Checkpoints) CheckSync(height int32) bool {
	syncCheckpoint := c.AutoSelectSyncCheckpoint()
	if syncCheckpoint == nil {
		return true
	}
	return height > syncCheckpoint.Height()
}

// CheckBlock applies both checkpoint rules to a candidate block.  A
// RuleError with ErrBadCheckpoint or ErrForkTooOld is returned when the block
// must not be accepted.
//
// This function is safe for concurrent access.
func (c *Checkpoints) CheckBlock(height int32, hash *chainhash.Hash) error {
	if !c.CheckHardened(height, hash) {
		prometheusCheckpointRejections.WithLabelValues("hardened").Inc()

		checkpoint := c.checkpointsByHeight[height]
		str := fmt.Sprintf("block at height %d does not match "+
			"checkpoint hash - got %s, expected %s", height, hash,
			checkpoint.Hash)
		log.Infof("Rejected block %v: %s", hash, str)
		return ruleError(ErrBadCheckpoint, str)
	}

	syncCheckpoint := c.AutoSelectSyncCheckpoint()
	if syncCheckpoint != nil && height <= syncCheckpoint.Height() {
		prometheusCheckpointRejections.WithLabelValues("sync").Inc()

		str := fmt.Sprintf("block at height %d forks the chain at or "+
			"before the sync checkpoint at height %d", height,
			syncCheckpoint.Height())
		log.Infof("Rejected block %v: %s", hash, str)
		return ruleError(ErrForkTooOld, str)
	}

	return nil
}
