// Copyright (c) 2018 The Monkey developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"net"
	"time"

	btcwire "github.com/btcsuite/btcd/wire"
)

// seedSpec is a compiled in peer address.  IPv4 peers use the IPv4-mapped
// IPv6 form.
type seedSpec struct {
	addr [16]byte
	port uint16
}

// randReader is the source of randomness for the seed timestamps.
var randReader io.Reader = rand.Reader

// mainFixedSeeds is the list of fallback peers of the main network.
var mainFixedSeeds = []seedSpec{
	{[16]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0xff, 0xff, 198, 51, 100, 17}, 8710},
	{[16]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0xff, 0xff, 198, 51, 100, 42}, 8710},
	{[16]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0xff, 0xff, 203, 0, 113, 8}, 8710},
	{[16]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0xff, 0xff, 203, 0, 113, 77}, 8710},
	{[16]byte{0x20, 0x01, 0x0d, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x10}, 8710},
}

// convertSeeds turns the seed specs into network addresses.  A node only needs
// one or two of them since the first connection hands out plenty of fresher
// addresses, so each is given a random last seen time between one and two
// weeks before now.
func convertSeeds(seeds []seedSpec, now time.Time, rnd io.Reader) ([]*btcwire.NetAddress, error) {
	if len(seeds) == 0 {
		return nil, nil
	}

	week := uint64(oneWeek / time.Second)
	addrs := make([]*btcwire.NetAddress, 0, len(seeds))
	for _, seed := range seeds {
		var b [8]byte
		if _, err := io.ReadFull(rnd, b[:]); err != nil {
			return nil, err
		}
		offset := binary.LittleEndian.Uint64(b[:]) % week
		lastSeen := now.Add(-oneWeek).Add(-time.Duration(offset) * time.Second)

		ip := make(net.IP, net.IPv6len)
		copy(ip, seed.addr[:])
		addrs = append(addrs, btcwire.NewNetAddressTimestamp(lastSeen,
			btcwire.SFNodeNetwork, ip, seed.port))
	}
	return addrs, nil
}
