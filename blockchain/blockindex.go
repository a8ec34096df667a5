// Copyright (c) 2018 The Monkey developers
// Copyright (c) 2015-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// BlockRef is a read-only view of an entry in a block index.  The hash,
// height and parent of an entry never change once it has been added, so a
// BlockRef may be walked without holding the lock of the index that returned
// it.
type BlockRef interface {
	// Hash returns the hash of the block.
	Hash() chainhash.Hash

	// Height returns the height of the block.
	Height() int32

	// Parent returns the previous block, or nil for the genesis block.
	Parent() BlockRef
}

// BlockLookup is the view of the chain state the checkpoint rules need.
// Implementations must be safe for concurrent access.
type BlockLookup interface {
	// LookupNode returns the entry of the block with the passed hash, or
	// nil when the block is not known.
	LookupNode(hash *chainhash.Hash) BlockRef

	// Tip returns the entry at the tip of the best chain, or nil when no
	// chain is loaded yet.
	Tip() BlockRef
}

// blockNode represents a block within the block index.
type blockNode struct {
	// parent is the parent block for this node.
	parent *blockNode

	// hash is the double sha 256 of the block.
	hash chainhash.Hash

	// height is the position in the block chain.
	height int32
}

// Hash returns the hash of the block.  This is part of the BlockRef
// interface.
func (node *blockNode) Hash() chainhash.Hash {
	return node.hash
}

// Height returns the height of the block.  This is part of the BlockRef
// interface.
func (node *blockNode) Height() int32 {
	return node.height
}

// Parent returns the previous block.  This is part of the BlockRef interface.
func (node *blockNode) Parent() BlockRef {
	if node.parent == nil {
		return nil
	}
	return node.parent
}

// Ancestor returns the ancestor of node at the provided height by following
// the chain backwards.  nil is returned when the height is negative or above
// the height of node.
func Ancestor(node BlockRef, height int32) BlockRef {
	if node == nil || height < 0 || height > node.Height() {
		return nil
	}

	n := node
	for n != nil && n.Height() != height {
		n = n.Parent()
	}
	return n
}

// BlockIndex provides facilities for keeping track of an in-memory index of
// the block chain.
type BlockIndex struct {
	sync.RWMutex
	index map[chainhash.Hash]*blockNode
	tip   *blockNode
}

// NewBlockIndex returns a new block index holding only the genesis block,
// which is also the tip.
func NewBlockIndex(genesisHash *chainhash.Hash) *BlockIndex {
	genesis := &blockNode{hash: *genesisHash}
	return &BlockIndex{
		index: map[chainhash.Hash]*blockNode{*genesisHash: genesis},
		tip:   genesis,
	}
}

// HaveBlock returns whether or not the block index contains the provided hash.
//
// This function is safe for concurrent access.
func (bi *BlockIndex) HaveBlock(hash *chainhash.Hash) bool {
	bi.RLock()
	_, hasBlock := bi.index[*hash]
	bi.RUnlock()
	return hasBlock
}

// LookupNode returns the block node identified by the provided hash.  It will
// return nil if there is no entry for the hash.
//
// This function is safe for concurrent access.
func (bi *BlockIndex) LookupNode(hash *chainhash.Hash) BlockRef {
	bi.RLock()
	node := bi.index[*hash]
	bi.RUnlock()
	if node == nil {
		return nil
	}
	return node
}

// Tip returns the tip of the best chain.
//
// This function is safe for concurrent access.
func (bi *BlockIndex) Tip() BlockRef {
	bi.RLock()
	tip := bi.tip
	bi.RUnlock()
	if tip == nil {
		return nil
	}
	return tip
}

// AddNode adds the block identified by hash on top of the block identified by
// prevHash.
//
// This function is safe for concurrent access.
func (bi *BlockIndex) AddNode(hash, prevHash *chainhash.Hash) (BlockRef, error) {
	bi.Lock()
	defer bi.Unlock()

	if _, exists := bi.index[*hash]; exists {
		str := fmt.Sprintf("already have block %v", hash)
		return nil, ruleError(ErrDuplicateBlock, str)
	}
	parent := bi.index[*prevHash]
	if parent == nil {
		str := fmt.Sprintf("previous block %s is unknown", prevHash)
		return nil, ruleError(ErrPreviousBlockUnknown, str)
	}

	node := &blockNode{
		parent: parent,
		hash:   *hash,
		height: parent.height + 1,
	}
	bi.index[*hash] = node
	return node, nil
}

// SetTip makes the block identified by hash the tip of the best chain.
//
// This function is safe for concurrent access.
func (bi *BlockIndex) SetTip(hash *chainhash.Hash) error {
	bi.Lock()
	defer bi.Unlock()

	node := bi.index[*hash]
	if node == nil {
		str := fmt.Sprintf("block %s is not in the index", hash)
		return ruleError(ErrUnknownBlock, str)
	}
	bi.tip = node

	log.Debugf("New tip %v (height %d)", node.hash, node.height)
	return nil
}

// Ensure BlockIndex satisfies the BlockLookup interface.
var _ BlockLookup = (*BlockIndex)(nil)
