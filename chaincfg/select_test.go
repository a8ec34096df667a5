// Copyright (c) 2018 The Monkey developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"errors"
	"testing"
)

func TestSelect(t *testing.T) {
	defer func() {
		if err := Select(MainNet); err != nil {
			t.Fatalf("restore main network: %v", err)
		}
	}()

	if ActiveNetParams() != &MainNetParams {
		t.Fatal("main network is not selected by default")
	}

	if err := Select(RegTest); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if ActiveNetParams() != &RegressionNetParams {
		t.Fatalf("active network is %s, want regtest",
			ActiveNetParams().Name)
	}

	err := Select(NetworkID(42))
	if !errors.Is(err, ErrUnknownNet) {
		t.Fatalf("Select unknown: got %v, want %v", err, ErrUnknownNet)
	}
	if ActiveNetParams() != &RegressionNetParams {
		t.Fatal("failed selection changed the active network")
	}
}

func TestNetworkIDString(t *testing.T) {
	tests := []struct {
		id   NetworkID
		want string
	}{
		{MainNet, "main"},
		{TestNet, "test"},
		{RegTest, "regtest"},
		{NetworkID(9), "Unknown NetworkID (9)"},
	}
	for _, test := range tests {
		if got := test.id.String(); got != test.want {
			t.Errorf("String: got %q, want %q", got, test.want)
		}
	}
}
