// Copyright (c) 2018 The Monkey developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"errors"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
)

// ErrInvalidHashLen describes an error where a hash passed for address
// encoding is not 20 bytes long.
var ErrInvalidHashLen = errors.New("address hash must be 20 bytes")

// EncodePubKeyHash returns the base58check pay-to-pubkey-hash address of the
// passed 20 byte hash on this network.
func (p *Params) EncodePubKeyHash(pkHash []byte) (string, error) {
	if len(pkHash) != 20 {
		return "", ErrInvalidHashLen
	}
	return base58.CheckEncode(pkHash, p.PubKeyHashAddrID), nil
}

// EncodeScriptHash returns the base58check pay-to-script-hash address of the
// passed 20 byte script hash on this network.
func (p *Params) EncodeScriptHash(scriptHash []byte) (string, error) {
	if len(scriptHash) != 20 {
		return "", ErrInvalidHashLen
	}
	return base58.CheckEncode(scriptHash, p.ScriptHashAddrID), nil
}

// PubKeyAddress returns the pay-to-pubkey-hash address of a serialized public
// key on this network.
func (p *Params) PubKeyAddress(serializedPubKey []byte) string {
	addr, _ := p.EncodePubKeyHash(btcutil.Hash160(serializedPubKey))
	return addr
}

// IsAddressForNet reports whether addr is a well formed address carrying one
// of this network's version bytes.
func (p *Params) IsAddressForNet(addr string) bool {
	decoded, version, err := base58.CheckDecode(addr)
	if err != nil || len(decoded) != 20 {
		return false
	}
	return version == p.PubKeyHashAddrID || version == p.ScriptHashAddrID
}
