// Copyright (c) 2018 The Monkey developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	btcwire "github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

// provenanceTx returns the coinbase style transaction carried by every
// genesis block.
func provenanceTx() *MsgTx {
	stamp := []byte("https://news.bitcoin.com/mark-karpeles-wants-resurrect-mt-gox-ico")
	script := append([]byte{0x00, 0x01, 0x2a, byte(len(stamp))}, stamp...)

	tx := &MsgTx{Version: 1, Time: 1511096400}
	tx.AddTxIn(&btcwire.TxIn{
		PreviousOutPoint: btcwire.OutPoint{Index: 0xffffffff},
		SignatureScript:  script,
		Sequence:         0xffffffff,
	})
	tx.AddTxOut(&btcwire.TxOut{})
	return tx
}

var provenanceTxHash = chainhash.Hash([chainhash.HashSize]byte{
	0x95, 0x6d, 0x65, 0x09, 0x0c, 0xc9, 0xf9, 0xc1,
	0xb3, 0x12, 0x01, 0x56, 0xad, 0x97, 0x6d, 0xdb,
	0xdb, 0x8e, 0x86, 0x06, 0x8c, 0x96, 0x54, 0x85,
	0xa9, 0x14, 0x75, 0xf8, 0x10, 0x7e, 0x8b, 0xc0,
})

func TestTxHash(t *testing.T) {
	tx := provenanceTx()
	require.Equal(t, provenanceTxHash, tx.TxHash())

	// A single transaction is its own merkle root.
	require.Equal(t, provenanceTxHash, CalcMerkleRoot([]*MsgTx{tx}))

	// The time field is covered by the hash.
	tx.Time++
	require.NotEqual(t, provenanceTxHash, tx.TxHash())
}

func TestTxSerializeDeserialize(t *testing.T) {
	tx := provenanceTx()
	tx.LockTime = 42
	tx.AddTxOut(btcwire.NewTxOut(5000, []byte{0x76, 0xa9}))

	var buf bytes.Buffer
	require.NoError(t, tx.Serialize(&buf))

	var decoded MsgTx
	require.NoError(t, decoded.Deserialize(bytes.NewReader(buf.Bytes())))
	require.Equal(t, tx.TxHash(), decoded.TxHash())
	require.Equal(t, tx.Time, decoded.Time)
	require.Equal(t, uint32(42), decoded.LockTime)
	require.Len(t, decoded.TxOut, 2)
	require.Equal(t, int64(5000), decoded.TxOut[1].Value)

	// Truncated input fails rather than producing a partial transaction.
	var short MsgTx
	err := short.Deserialize(bytes.NewReader(buf.Bytes()[:buf.Len()-1]))
	require.Error(t, err)
}

func TestCalcMerkleRoot(t *testing.T) {
	require.Equal(t, chainhash.Hash{}, CalcMerkleRoot(nil))

	a := provenanceTx()
	b := provenanceTx()
	b.Time++
	c := provenanceTx()
	c.LockTime = 7

	ha, hb, hc := a.TxHash(), b.TxHash(), c.TxHash()
	pair := func(l, r chainhash.Hash) chainhash.Hash {
		return chainhash.DoubleHashH(append(l[:], r[:]...))
	}

	require.Equal(t, pair(ha, hb), CalcMerkleRoot([]*MsgTx{a, b}))

	// Odd counts duplicate the final hash of the level.
	want := pair(pair(ha, hb), pair(hc, hc))
	require.Equal(t, want, CalcMerkleRoot([]*MsgTx{a, b, c}))
}

func TestBlockHash(t *testing.T) {
	block := MsgBlock{
		Header: btcwire.BlockHeader{
			Version: 1,
			Bits:    0x1e0fffff,
			Nonce:   1774559,
		},
	}
	block.AddTransaction(provenanceTx())
	block.Header.MerkleRoot = CalcMerkleRoot(block.Transactions)

	require.Equal(t, block.Header.BlockHash(), block.BlockHash())
	require.Equal(t, []chainhash.Hash{provenanceTxHash}, block.TxHashes())
}
