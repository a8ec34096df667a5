// Copyright (c) 2018 The Monkey developers
// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"errors"
	"fmt"
	"testing"
)

// TestErrorCodeStringer tests the stringized output for the ErrorCode type.
func TestErrorCodeStringer(t *testing.T) {
	tests := []struct {
		in   ErrorCode
		want string
	}{
		{ErrDuplicateBlock, "ErrDuplicateBlock"},
		{ErrPreviousBlockUnknown, "ErrPreviousBlockUnknown"},
		{ErrUnknownBlock, "ErrUnknownBlock"},
		{ErrBadCheckpoint, "ErrBadCheckpoint"},
		{ErrForkTooOld, "ErrForkTooOld"},
		{0xffff, "Unknown ErrorCode (65535)"},
	}

	// Detect additional error codes that don't have the stringer added.
	if len(tests)-1 != int(numErrorCodes) {
		t.Errorf("It appears an error code was added without adding an " +
			"associated stringer test")
	}

	t.Logf("Running %d tests", len(tests))
	for i, test := range tests {
		result := test.in.String()
		if result != test.want {
			t.Errorf("String #%d\n got: %s want: %s", i, result,
				test.want)
			continue
		}
	}
}

// TestRuleError tests the error output for the RuleError type.
func TestRuleError(t *testing.T) {
	tests := []struct {
		in   RuleError
		want string
	}{
		{
			RuleError{Description: "duplicate block"},
			"duplicate block",
		},
		{
			RuleError{Description: "human-readable error"},
			"human-readable error",
		},
	}

	t.Logf("Running %d tests", len(tests))
	for i, test := range tests {
		result := test.in.Error()
		if result != test.want {
			t.Errorf("Error #%d\n got: %s want: %s", i, result,
				test.want)
			continue
		}
	}
}

// TestIsErrorCode ensures wrapped rule errors are recognized.
func TestIsErrorCode(t *testing.T) {
	err := fmt.Errorf("process block: %w",
		ruleError(ErrForkTooOld, "fork too old"))

	if !IsErrorCode(err, ErrForkTooOld) {
		t.Fatal("wrapped rule error not recognized")
	}
	if IsErrorCode(err, ErrBadCheckpoint) {
		t.Fatal("rule error matched the wrong code")
	}
	if IsErrorCode(errors.New("fork too old"), ErrForkTooOld) {
		t.Fatal("plain error matched a rule error code")
	}
}
