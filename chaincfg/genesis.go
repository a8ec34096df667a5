// Copyright (c) 2018 The Monkey developers
// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	btcwire "github.com/btcsuite/btcd/wire"

	"github.com/monkeyproject/monkeyd/wire"
)

// ErrGenesisMismatch describes an error where a rebuilt genesis block does not
// hash to the hard-coded value of its network.
var ErrGenesisMismatch = errors.New("genesis block mismatch")

// genesisTimestamp is the provenance string embedded in the coinbase of every
// genesis block.
const genesisTimestamp = "https://news.bitcoin.com/mark-karpeles-wants-resurrect-mt-gox-ico"

// genesisSpec holds everything needed to rebuild a genesis block along with
// the values the result must hash to.
type genesisSpec struct {
	provenance string
	txTime     time.Time
	blockTime  time.Time
	nonce      uint32
	hash       *chainhash.Hash
	merkleRoot *chainhash.Hash
}

// genesisMerkleRoot is the hash of the only transaction of the genesis block.
// It is the same on every network.
var genesisMerkleRoot = newHashFromStr("c08b7e10f87514a98554968c06868edbdb6d97ad560112b3c1f9c90c09656d95")

// genesisSpecs holds the genesis block definition of every network.  The
// networks only differ by the nonce and the difficulty bits, which follow the
// proof of work limit of the network.
var genesisSpecs = map[NetworkID]genesisSpec{
	MainNet: {
		provenance: genesisTimestamp,
		txTime:     time.Unix(1511096400, 0), // 2017-11-19 13:00:00 +0000 UTC
		blockTime:  time.Unix(1511096400, 0),
		nonce:      1774559,
		hash:       newHashFromStr("a70786e0e271a7a4f1156fecdd24e121ccc1e7e44975f5e88bdc0cfb7c59db33"),
		merkleRoot: genesisMerkleRoot,
	},
	TestNet: {
		provenance: genesisTimestamp,
		txTime:     time.Unix(1511096400, 0),
		blockTime:  time.Unix(1511096400, 0),
		nonce:      1838579,
		hash:       newHashFromStr("473fdaa2b99e81f1881327cb3c8b9315ed8fa952aa4bc5b2cbc39f54acc886c9"),
		merkleRoot: genesisMerkleRoot,
	},
	RegTest: {
		provenance: genesisTimestamp,
		txTime:     time.Unix(1511096400, 0),
		blockTime:  time.Unix(1511096400, 0),
		nonce:      8,
		hash:       newHashFromStr("d71070fcc3716190c4644863a8a6e99ec9208cca36b05dbd76b1cec978ea312b"),
		merkleRoot: genesisMerkleRoot,
	},
}

// genesisCoinbaseTx builds the coinbase-style transaction of the genesis
// block.  Its signature script is OP_0 <42> <provenance>, and its single
// output is empty.
func genesisCoinbaseTx(spec *genesisSpec) (*wire.MsgTx, error) {
	sigScript, err := txscript.NewScriptBuilder().
		AddInt64(0).
		AddData([]byte{42}).
		AddData([]byte(spec.provenance)).
		Script()
	if err != nil {
		return nil, err
	}

	tx := &wire.MsgTx{
		Version: wire.TxVersion,
		Time:    uint32(spec.txTime.Unix()),
	}
	tx.AddTxIn(&btcwire.TxIn{
		PreviousOutPoint: btcwire.OutPoint{
			Hash:  chainhash.Hash{},
			Index: 0xffffffff,
		},
		SignatureScript: sigScript,
		Sequence:        btcwire.MaxTxInSequenceNum,
	})
	tx.AddTxOut(&btcwire.TxOut{Value: 0, PkScript: nil})
	return tx, nil
}

// buildGenesis rebuilds the genesis block described by spec using the passed
// difficulty bits and verifies it against the expected hash and merkle root.
func buildGenesis(spec *genesisSpec, bits uint32) (*wire.MsgBlock, error) {
	coinbase, err := genesisCoinbaseTx(spec)
	if err != nil {
		return nil, err
	}

	block := &wire.MsgBlock{
		Header: btcwire.BlockHeader{
			Version:   1,
			PrevBlock: chainhash.Hash{},
			Timestamp: spec.blockTime,
			Bits:      bits,
			Nonce:     spec.nonce,
		},
	}
	block.AddTransaction(coinbase)
	block.Header.MerkleRoot = wire.CalcMerkleRoot(block.Transactions)

	if err := checkGenesis(block, spec.hash, spec.merkleRoot); err != nil {
		return nil, err
	}
	return block, nil
}

// checkGenesis recomputes the merkle root and hash of block and compares them
// with the expected values.
func checkGenesis(block *wire.MsgBlock, hash, merkleRoot *chainhash.Hash) error {
	gotMerkle := wire.CalcMerkleRoot(block.Transactions)
	if !gotMerkle.IsEqual(merkleRoot) ||
		!block.Header.MerkleRoot.IsEqual(merkleRoot) {

		return fmt.Errorf("%w: merkle root %v, want %v",
			ErrGenesisMismatch, gotMerkle, merkleRoot)
	}
	gotHash := block.BlockHash()
	if !gotHash.IsEqual(hash) {
		return fmt.Errorf("%w: hash %v, want %v", ErrGenesisMismatch,
			gotHash, hash)
	}
	return nil
}
