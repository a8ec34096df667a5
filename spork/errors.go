// Copyright (c) 2018 The Monkey developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package spork

import "errors"

var (
	// ErrNotAuthorized is returned when a spork update is requested on a
	// node that has no signing key configured.
	ErrNotAuthorized = errors.New("no spork signing key configured")

	// ErrKeyMismatch is returned when a signing key does not belong to the
	// master public key of the network.
	ErrKeyMismatch = errors.New("signing key does not match the spork " +
		"master key")

	// ErrWrongNetKey is returned when a WIF encoded key was encoded for a
	// different network.
	ErrWrongNetKey = errors.New("private key is for a different network")

	// ErrUnknownSpork is returned when an update names a spork this node
	// does not know.
	ErrUnknownSpork = errors.New("unknown spork")

	// ErrUpdateRejected is returned when a locally signed update was not
	// installed.
	ErrUpdateRejected = errors.New("spork update rejected")
)
