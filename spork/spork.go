// Copyright (c) 2018 The Monkey developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package spork

import "fmt"

// ID identifies a spork on the wire.  IDs are never reused for a different
// spork since old nodes would keep interpreting them the old way.
type ID int32

// Range of ids reserved for sporks.
const (
	IDStart ID = 10000
	IDEnd   ID = 10010
)

// Known sporks.
const (
	EnableMasternodePayments     ID = 10000
	InstantX                     ID = 10001
	InstantXBlockFiltering       ID = 10002
	MaxValue                     ID = 10004
	MasternodePaymentEnforcement ID = 10007
	MasternodePayUpdatedNodes    ID = 10009
	MasternodeWinnerMinimumAge   ID = 10010
)

// disabledUntil is a timestamp far enough in the future to keep a
// timestamp spork off.  It is 2099-01-01 00:00:00 UTC.
const disabledUntil = 4070908800

// Rule describes how the value of a spork is turned into an on/off state.
type Rule int

const (
	// RuleTimestamp sporks hold a unix time and are active once the
	// adjusted network time has reached it.
	RuleTimestamp Rule = iota

	// RulePositive sporks hold a limit or a duration and are active
	// whenever the value is above zero.
	RulePositive
)

// String returns the Rule in human-readable form.
func (r Rule) String() string {
	switch r {
	case RuleTimestamp:
		return "timestamp"
	case RulePositive:
		return "positive"
	}
	return fmt.Sprintf("Unknown Rule (%d)", int(r))
}

// Definition describes a spork known to this node.
type Definition struct {
	ID      ID
	Name    string
	Default int64
	Rule    Rule
}

// definitions holds every known spork ordered by id.
var definitions = []Definition{
	{EnableMasternodePayments, "SPORK_1_ENABLE_MASTERNODE_PAYMENTS", disabledUntil, RuleTimestamp},
	{InstantX, "SPORK_2_INSTANTX", disabledUntil, RuleTimestamp},
	{InstantXBlockFiltering, "SPORK_3_INSTANTX_BLOCK_FILTERING", disabledUntil, RuleTimestamp},

	// Not used by any rule yet.
	{MaxValue, "SPORK_5_MAX_VALUE", 0, RulePositive},

	{MasternodePaymentEnforcement, "SPORK_8_MASTERNODE_PAYMENT_ENFORCEMENT", disabledUntil, RuleTimestamp},
	{MasternodePayUpdatedNodes, "SPORK_10_MASTERNODE_PAY_UPDATED_NODES", disabledUntil, RuleTimestamp},

	// Age in seconds a masternode needs before it can win a payment.  It
	// should stay above the masternode removal time, and zero restores
	// the behaviour from before the spork existed.
	{MasternodeWinnerMinimumAge, "SPORK_11_MN_WINNER_MINIMUM_AGE", 8000, RulePositive},
}

var (
	defsByID   = make(map[ID]*Definition, len(definitions))
	defsByName = make(map[string]*Definition, len(definitions))
)

func init() {
	for i := range definitions {
		def := &definitions[i]
		defsByID[def.ID] = def
		defsByName[def.Name] = def
	}
}

// Definitions returns a copy of the known spork definitions ordered by id.
func Definitions() []Definition {
	return append([]Definition(nil), definitions...)
}

// Lookup returns the definition of the passed spork.
func Lookup(id ID) (Definition, bool) {
	def, ok := defsByID[id]
	if !ok {
		return Definition{}, false
	}
	return *def, true
}

// NameByID returns the name of the passed spork, or "Unknown".
func NameByID(id ID) string {
	if def, ok := defsByID[id]; ok {
		return def.Name
	}
	return "Unknown"
}

// IDByName returns the id of the named spork, or -1 when there is no such
// spork.
func IDByName(name string) ID {
	if def, ok := defsByName[name]; ok {
		return def.ID
	}
	return -1
}

// String returns the spork name.
func (id ID) String() string {
	return NameByID(id)
}
