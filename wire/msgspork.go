// Copyright (c) 2018 The Monkey developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	btcwire "github.com/btcsuite/btcd/wire"
)

const (
	// CmdSpork is the command string of the spork message.
	CmdSpork = "spork"

	// CmdGetSporks is the command string of the getsporks message.
	CmdGetSporks = "getsporks"

	// MaxSporkSigSize is the largest signature accepted in a spork
	// message.  Compact signatures are 65 bytes and DER signatures at most
	// 72, so this leaves generous room.
	MaxSporkSigSize = 128

	// sporkDigestSize is the number of serialized bytes covered by the
	// spork hash: id, value and signing time.
	sporkDigestSize = 4 + 8 + 8
)

// MsgSpork implements the Message interface and represents a signed
// governance update.  Everything in it is attacker controlled until the
// signature has been checked against the master key.
type MsgSpork struct {
	SporkID    int32
	Value      int64
	TimeSigned int64
	Signature  []byte
}

// digestBytes returns the serialized fields covered by the signature.
func (msg *MsgSpork) digestBytes() []byte {
	var b [sporkDigestSize]byte
	binary.LittleEndian.PutUint32(b[0:4], uint32(msg.SporkID))
	binary.LittleEndian.PutUint64(b[4:12], uint64(msg.Value))
	binary.LittleEndian.PutUint64(b[12:20], uint64(msg.TimeSigned))
	return b[:]
}

// Hash returns the double sha256 of the id, value and signing time.  It is
// both the inventory hash of the message and the digest that gets signed.
func (msg *MsgSpork) Hash() chainhash.Hash {
	return chainhash.DoubleHashH(msg.digestBytes())
}

// BtcDecode decodes r using the protocol encoding into the receiver.
// This is part of the Message interface implementation.
func (msg *MsgSpork) BtcDecode(r io.Reader, pver uint32, _ btcwire.MessageEncoding) error {
	var b [sporkDigestSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return err
	}
	msg.SporkID = int32(binary.LittleEndian.Uint32(b[0:4]))
	msg.Value = int64(binary.LittleEndian.Uint64(b[4:12]))
	msg.TimeSigned = int64(binary.LittleEndian.Uint64(b[12:20]))

	sig, err := btcwire.ReadVarBytes(r, pver, MaxSporkSigSize,
		"spork signature")
	if err != nil {
		return err
	}
	msg.Signature = sig
	return nil
}

// BtcEncode encodes the receiver to w using the protocol encoding.
// This is part of the Message interface implementation.
func (msg *MsgSpork) BtcEncode(w io.Writer, pver uint32, _ btcwire.MessageEncoding) error {
	if len(msg.Signature) > MaxSporkSigSize {
		return fmt.Errorf("MsgSpork.BtcEncode: signature is too long "+
			"[len %d, max %d]", len(msg.Signature), MaxSporkSigSize)
	}
	if _, err := w.Write(msg.digestBytes()); err != nil {
		return err
	}
	return btcwire.WriteVarBytes(w, pver, msg.Signature)
}

// Command returns the protocol command string for the message.  This is part
// of the Message interface implementation.
func (msg *MsgSpork) Command() string {
	return CmdSpork
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the Message interface implementation.
func (msg *MsgSpork) MaxPayloadLength(_ uint32) uint32 {
	return sporkDigestSize + uint32(btcwire.VarIntSerializeSize(MaxSporkSigSize)) +
		MaxSporkSigSize
}

// NewMsgSpork returns a new unsigned spork message that conforms to the
// Message interface.  See MsgSpork for details.
func NewMsgSpork(id int32, value, timeSigned int64) *MsgSpork {
	return &MsgSpork{
		SporkID:    id,
		Value:      value,
		TimeSigned: timeSigned,
	}
}

// MsgGetSporks implements the Message interface and asks a peer for every
// spork message it currently has installed.  It has no payload.
type MsgGetSporks struct{}

// BtcDecode decodes r using the protocol encoding into the receiver.
// This is part of the Message interface implementation.
func (msg *MsgGetSporks) BtcDecode(_ io.Reader, _ uint32, _ btcwire.MessageEncoding) error {
	return nil
}

// BtcEncode encodes the receiver to w using the protocol encoding.
// This is part of the Message interface implementation.
func (msg *MsgGetSporks) BtcEncode(_ io.Writer, _ uint32, _ btcwire.MessageEncoding) error {
	return nil
}

// Command returns the protocol command string for the message.  This is part
// of the Message interface implementation.
func (msg *MsgGetSporks) Command() string {
	return CmdGetSporks
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the Message interface implementation.
func (msg *MsgGetSporks) MaxPayloadLength(_ uint32) uint32 {
	return 0
}

// NewMsgGetSporks returns a new getsporks message.
func NewMsgGetSporks() *MsgGetSporks {
	return &MsgGetSporks{}
}

// Ensure the messages satisfy the btcd Message interface so they can be
// handed to its message framing.
var (
	_ btcwire.Message = (*MsgSpork)(nil)
	_ btcwire.Message = (*MsgGetSporks)(nil)
)
