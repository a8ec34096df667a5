// Copyright (c) 2018 The Monkey developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	btcwire "github.com/btcsuite/btcd/wire"
)

// MsgBlock is a block made of the standard 80 byte header, its proof-of-stake
// era transactions and the block signature of the staker.  The signature is
// empty for proof-of-work blocks.
type MsgBlock struct {
	Header       btcwire.BlockHeader
	Transactions []*MsgTx
	Signature    []byte
}

// AddTransaction adds a transaction to the message.
func (msg *MsgBlock) AddTransaction(tx *MsgTx) {
	msg.Transactions = append(msg.Transactions, tx)
}

// BlockHash computes the block identifier hash for this block.
func (msg *MsgBlock) BlockHash() chainhash.Hash {
	return msg.Header.BlockHash()
}

// TxHashes returns the hashes of all transactions in the block in order.
func (msg *MsgBlock) TxHashes() []chainhash.Hash {
	hashes := make([]chainhash.Hash, 0, len(msg.Transactions))
	for _, tx := range msg.Transactions {
		hashes = append(hashes, tx.TxHash())
	}
	return hashes
}

// CalcMerkleRoot computes the merkle root over the passed transactions.  Odd
// levels duplicate their last hash, so a single transaction is its own root.
// The zero hash is returned for an empty slice.
func CalcMerkleRoot(txns []*MsgTx) chainhash.Hash {
	if len(txns) == 0 {
		return chainhash.Hash{}
	}

	level := make([]chainhash.Hash, 0, len(txns))
	for _, tx := range txns {
		level = append(level, tx.TxHash())
	}

	var buf [chainhash.HashSize * 2]byte
	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := level[:0]
		for i := 0; i < len(level); i += 2 {
			copy(buf[:chainhash.HashSize], level[i][:])
			copy(buf[chainhash.HashSize:], level[i+1][:])
			next = append(next, chainhash.DoubleHashH(buf[:]))
		}
		level = next
	}
	return level[0]
}
