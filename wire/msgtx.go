// Copyright (c) 2018 The Monkey developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	btcwire "github.com/btcsuite/btcd/wire"
)

const (
	// TxVersion is the current latest supported transaction version.
	TxVersion = 1

	// maxTxInPerMessage and maxTxOutPerMessage bound the counts read while
	// decoding so a forged count cannot force a huge allocation.
	maxTxInPerMessage  = btcwire.MaxMessagePayload / 41
	maxTxOutPerMessage = btcwire.MaxMessagePayload / 9

	// maxScriptSize is the largest script accepted while decoding.
	maxScriptSize = 10000
)

// MsgTx is a proof-of-stake era transaction.  It differs from the bitcoin
// transaction only by the Time field, which is serialized right after the
// version and is covered by the transaction hash.
type MsgTx struct {
	Version  int32
	Time     uint32
	TxIn     []*btcwire.TxIn
	TxOut    []*btcwire.TxOut
	LockTime uint32
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *btcwire.TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *btcwire.TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// TxHash generates the hash for the transaction.
func (msg *MsgTx) TxHash() chainhash.Hash {
	var buf bytes.Buffer
	_ = msg.Serialize(&buf)
	return chainhash.DoubleHashH(buf.Bytes())
}

// Serialize encodes the transaction to w using the reference serialization.
func (msg *MsgTx) Serialize(w io.Writer) error {
	var scratch [8]byte

	binary.LittleEndian.PutUint32(scratch[:4], uint32(msg.Version))
	binary.LittleEndian.PutUint32(scratch[4:8], msg.Time)
	if _, err := w.Write(scratch[:8]); err != nil {
		return err
	}

	err := btcwire.WriteVarInt(w, ProtocolVersion, uint64(len(msg.TxIn)))
	if err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeTxIn(w, ti); err != nil {
			return err
		}
	}

	err = btcwire.WriteVarInt(w, ProtocolVersion, uint64(len(msg.TxOut)))
	if err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		binary.LittleEndian.PutUint64(scratch[:], uint64(to.Value))
		if _, err := w.Write(scratch[:]); err != nil {
			return err
		}
		err := btcwire.WriteVarBytes(w, ProtocolVersion, to.PkScript)
		if err != nil {
			return err
		}
	}

	binary.LittleEndian.PutUint32(scratch[:4], msg.LockTime)
	_, err = w.Write(scratch[:4])
	return err
}

// Deserialize decodes a transaction from r into the receiver using the
// reference serialization.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	var scratch [8]byte

	if _, err := io.ReadFull(r, scratch[:8]); err != nil {
		return err
	}
	msg.Version = int32(binary.LittleEndian.Uint32(scratch[:4]))
	msg.Time = binary.LittleEndian.Uint32(scratch[4:8])

	count, err := btcwire.ReadVarInt(r, ProtocolVersion)
	if err != nil {
		return err
	}
	if count > uint64(maxTxInPerMessage) {
		return fmt.Errorf("too many input transactions to fit into "+
			"max message size [count %d, max %d]", count,
			maxTxInPerMessage)
	}
	msg.TxIn = make([]*btcwire.TxIn, 0, count)
	for i := uint64(0); i < count; i++ {
		ti, err := readTxIn(r)
		if err != nil {
			return err
		}
		msg.TxIn = append(msg.TxIn, ti)
	}

	count, err = btcwire.ReadVarInt(r, ProtocolVersion)
	if err != nil {
		return err
	}
	if count > uint64(maxTxOutPerMessage) {
		return fmt.Errorf("too many output transactions to fit into "+
			"max message size [count %d, max %d]", count,
			maxTxOutPerMessage)
	}
	msg.TxOut = make([]*btcwire.TxOut, 0, count)
	for i := uint64(0); i < count; i++ {
		if _, err := io.ReadFull(r, scratch[:]); err != nil {
			return err
		}
		value := int64(binary.LittleEndian.Uint64(scratch[:]))
		pkScript, err := btcwire.ReadVarBytes(r, ProtocolVersion,
			maxScriptSize, "pkscript")
		if err != nil {
			return err
		}
		msg.TxOut = append(msg.TxOut, btcwire.NewTxOut(value, pkScript))
	}

	if _, err := io.ReadFull(r, scratch[:4]); err != nil {
		return err
	}
	msg.LockTime = binary.LittleEndian.Uint32(scratch[:4])
	return nil
}

// writeTxIn encodes ti to w.
func writeTxIn(w io.Writer, ti *btcwire.TxIn) error {
	var scratch [4]byte

	if _, err := w.Write(ti.PreviousOutPoint.Hash[:]); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(scratch[:], ti.PreviousOutPoint.Index)
	if _, err := w.Write(scratch[:]); err != nil {
		return err
	}
	err := btcwire.WriteVarBytes(w, ProtocolVersion, ti.SignatureScript)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(scratch[:], ti.Sequence)
	_, err = w.Write(scratch[:])
	return err
}

// readTxIn decodes the next transaction input from r.
func readTxIn(r io.Reader) (*btcwire.TxIn, error) {
	var (
		scratch [4]byte
		op      btcwire.OutPoint
	)
	if _, err := io.ReadFull(r, op.Hash[:]); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, scratch[:]); err != nil {
		return nil, err
	}
	op.Index = binary.LittleEndian.Uint32(scratch[:])

	sigScript, err := btcwire.ReadVarBytes(r, ProtocolVersion,
		maxScriptSize, "sigscript")
	if err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, scratch[:]); err != nil {
		return nil, err
	}

	ti := btcwire.NewTxIn(&op, sigScript, nil)
	ti.Sequence = binary.LittleEndian.Uint32(scratch[:])
	return ti, nil
}
