// Copyright (c) 2018 The Monkey developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	btcwire "github.com/btcsuite/btcd/wire"
)

const (
	// ProtocolVersion is the latest protocol version this package supports.
	ProtocolVersion uint32 = 70061

	// InitProtoVersion is the protocol version used before version/verack
	// negotiation completes.
	InitProtoVersion uint32 = 209

	// MinProtoVersion is the oldest protocol version a peer may speak at
	// all.
	MinProtoVersion uint32 = 209

	// MinPeerProtoVersion is the oldest protocol version accepted from a
	// connected peer before any of the soft forks activated.
	MinPeerProtoVersion uint32 = 70030

	// MinPeerProtoVersion140 through MinPeerProtoVersion210 are the oldest
	// peer protocol versions accepted once the matching soft fork is active.
	MinPeerProtoVersion140 uint32 = 70040
	MinPeerProtoVersion143 uint32 = 70050
	MinPeerProtoVersion200 uint32 = 70060
	MinPeerProtoVersion210 uint32 = 70061

	// MinPoolPeerProtoVersion is the oldest version allowed to take part
	// in mixing pools.
	MinPoolPeerProtoVersion uint32 = 70061

	// MinInstantXProtoVersion is the oldest version allowed to take part
	// in instant transactions.
	MinInstantXProtoVersion uint32 = 70061

	// MinMasternodePaymentProtoVersion is the oldest version that can
	// receive masternode payments.
	MinMasternodePaymentProtoVersion uint32 = 70061

	// SporkVersion is the first protocol version which relays spork
	// messages.
	SporkVersion = MinPeerProtoVersion
)

// Magic values used to identify each network on the wire.  They are the
// little-endian interpretation of the four message start bytes, so MainNet is
// sent as 0x42 0xa4 0xc5 0x2b.
const (
	// MainNet represents the main network.
	MainNet btcwire.BitcoinNet = 0x2bc5a442

	// TestNet represents the public test network.
	TestNet btcwire.BitcoinNet = 0xc321ab2c

	// RegTest represents the regression test network.
	RegTest btcwire.BitcoinNet = 0xdab5bffa
)

// netStrings maps the networks defined here to human-readable names.
var netStrings = map[btcwire.BitcoinNet]string{
	MainNet: "MainNet",
	TestNet: "TestNet",
	RegTest: "RegTest",
}

// NetString returns the name of the passed network magic, or "Unknown" for
// magic values not defined by this package.
func NetString(net btcwire.BitcoinNet) string {
	if s, ok := netStrings[net]; ok {
		return s
	}
	return "Unknown"
}

// MessageStart returns the four bytes that prefix every message sent on the
// passed network.
func MessageStart(net btcwire.BitcoinNet) [4]byte {
	return [4]byte{
		byte(net),
		byte(net >> 8),
		byte(net >> 16),
		byte(net >> 24),
	}
}
