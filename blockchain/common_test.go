// Copyright (c) 2018 The Monkey developers
// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"encoding/binary"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/monkeyproject/monkeyd/chaincfg"
)

// fakeHash returns a made up block hash for the passed height on the branch
// identified by fork.
func fakeHash(fork byte, height int32) chainhash.Hash {
	var b [5]byte
	b[0] = fork
	binary.LittleEndian.PutUint32(b[1:], uint32(height))
	return chainhash.DoubleHashH(b[:])
}

// newFakeChain returns a block index for the passed network holding a chain
// of made up blocks up to and including height tip, which is also set as the
// tip of the best chain.
func newFakeChain(t *testing.T, params *chaincfg.Params, tip int32) *BlockIndex {
	t.Helper()

	index := NewBlockIndex(params.GenesisHash)
	extendFakeChain(t, index, *params.GenesisHash, 0, 1, tip)
	return index
}

// extendFakeChain adds made up blocks on top of the block prev at height
// prevHeight until the tip height is reached and sets the last one as the
// tip.
func extendFakeChain(t *testing.T, index *BlockIndex, prev chainhash.Hash,
	prevHeight int32, fork byte, tip int32) {

	t.Helper()

	for height := prevHeight + 1; height <= tip; height++ {
		hash := fakeHash(fork, height)
		if _, err := index.AddNode(&hash, &prev); err != nil {
			t.Fatalf("AddNode at height %d: %v", height, err)
		}
		prev = hash
	}
	if err := index.SetTip(&prev); err != nil {
		t.Fatalf("SetTip: %v", err)
	}
}
