// Copyright (c) 2018 The Monkey developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package spork

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	btcdchaincfg "github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/monkeyproject/monkeyd/chaincfg"
	"github.com/monkeyproject/monkeyd/wire"
)

var (
	// testStartTime is the time the test clocks start at.
	testStartTime = time.Unix(1700000000, 0)

	// masterKeyBytes and otherKeyBytes are the private keys used to sign
	// test messages.
	masterKeyBytes = []byte{
		0x2b, 0x8c, 0x52, 0xb7, 0x7b, 0x32, 0x7c, 0x75,
		0x5b, 0x9b, 0x37, 0x55, 0x00, 0xd3, 0xf4, 0xb2,
		0xda, 0x9b, 0x0a, 0x1f, 0xf6, 0x5f, 0x68, 0x91,
		0xd3, 0x11, 0xfe, 0x94, 0x29, 0x5b, 0xc2, 0x6a,
	}
	otherKeyBytes = []byte{
		0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88,
		0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff, 0x01,
		0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88,
		0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff, 0x01,
	}
)

// relayRecorder collects the messages a manager relays.
type relayRecorder struct {
	mtx  sync.Mutex
	msgs []*wire.MsgSpork
}

func (r *relayRecorder) relay(msg *wire.MsgSpork) {
	r.mtx.Lock()
	r.msgs = append(r.msgs, msg)
	r.mtx.Unlock()
}

func (r *relayRecorder) count() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return len(r.msgs)
}

func (r *relayRecorder) last() *wire.MsgSpork {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if len(r.msgs) == 0 {
		return nil
	}
	return r.msgs[len(r.msgs)-1]
}

// testParams returns regression test parameters whose spork master key is
// the test master key.
func testParams() (*chaincfg.Params, *btcec.PrivateKey) {
	key, pub := btcec.PrivKeyFromBytes(masterKeyBytes)
	params := chaincfg.RegressionNetParams
	params.SporkPubKey = pub.SerializeUncompressed()
	return &params, key
}

// newTestManager returns a manager of the test network along with its relay
// recorder, the master key and the clock driving it.
func newTestManager(t *testing.T) (*Manager, *relayRecorder, *btcec.PrivateKey, *clock.TestClock) {
	t.Helper()

	params, key := testParams()
	clk := clock.NewTestClock(testStartTime)
	relays := &relayRecorder{}
	m, err := NewManager(&Config{
		ChainParams: params,
		Relay:       relays.relay,
		Clock:       clk,
	})
	require.NoError(t, err)
	return m, relays, key, clk
}

// signedSpork returns a spork message signed with key.
func signedSpork(key *btcec.PrivateKey, id ID, value, timeSigned int64) *wire.MsgSpork {
	msg := wire.NewMsgSpork(int32(id), value, timeSigned)
	sign(msg, key)
	return msg
}

func TestNewManagerBadKey(t *testing.T) {
	params := chaincfg.RegressionNetParams
	params.SporkPubKey = []byte{0x04, 0x01, 0x02}
	_, err := NewManager(&Config{ChainParams: &params})
	require.Error(t, err)

	_, err = NewManager(&Config{})
	require.Error(t, err)
}

func TestDefaultValues(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	for _, def := range Definitions() {
		require.Equal(t, def.Default, m.Value(def.ID), def.Name)
	}
	require.Equal(t, int64(-1), m.Value(10003))

	// Timestamp sporks are off until 2099.
	require.False(t, m.IsActive(InstantX))
	require.False(t, m.IsActive(EnableMasternodePayments))

	// A zero limit is off and a positive duration is on.
	require.False(t, m.IsActive(MaxValue))
	require.True(t, m.IsActive(MasternodeWinnerMinimumAge))

	require.False(t, m.IsActive(10003))
	require.Empty(t, m.ActiveMessages())
}

func TestCheckSignature(t *testing.T) {
	m, _, key, _ := newTestManager(t)
	other, _ := btcec.PrivKeyFromBytes(otherKeyBytes)

	msg := signedSpork(key, InstantX, 0, testStartTime.Unix())
	require.True(t, m.CheckSignature(msg))

	tampered := *msg
	tampered.Value = 1
	require.False(t, m.CheckSignature(&tampered))

	require.False(t, m.CheckSignature(signedSpork(other, InstantX, 0,
		testStartTime.Unix())))

	unsigned := wire.NewMsgSpork(int32(InstantX), 0, testStartTime.Unix())
	require.False(t, m.CheckSignature(unsigned))

	garbage := *msg
	garbage.Signature = []byte{0x01, 0x02, 0x03}
	require.False(t, m.CheckSignature(&garbage))
}

// TestProcessIdempotent ensures processing the same message twice changes
// nothing the second time.
func TestProcessIdempotent(t *testing.T) {
	m, relays, key, _ := newTestManager(t)

	msg := signedSpork(key, InstantX, 12345, testStartTime.Unix())
	require.Equal(t, Accepted, m.ProcessSpork(msg))
	require.Equal(t, int64(12345), m.Value(InstantX))
	require.Equal(t, 1, relays.count())

	copied := *msg
	require.Equal(t, Duplicate, m.ProcessSpork(&copied))
	require.Equal(t, int64(12345), m.Value(InstantX))
	require.Equal(t, 1, relays.count())

	// Mutating the caller's message does not affect the installed one.
	msg.Signature[0] ^= 0xff
	installed := m.ActiveMessages()
	require.Len(t, installed, 1)
	require.True(t, m.CheckSignature(installed[0]))
}

// TestProcessOrder ensures the newest message wins regardless of the order
// messages arrive in.
func TestProcessOrder(t *testing.T) {
	_, _, key, _ := newTestManager(t)
	older := signedSpork(key, MaxValue, 100, testStartTime.Unix())
	newer := signedSpork(key, MaxValue, 200, testStartTime.Unix()+60)

	tests := []struct {
		name  string
		order []*wire.MsgSpork
		want  []ProcessResult
	}{
		{"in order", []*wire.MsgSpork{older, newer}, []ProcessResult{Accepted, Accepted}},
		{"out of order", []*wire.MsgSpork{newer, older}, []ProcessResult{Accepted, Stale}},
	}

	for _, test := range tests {
		m, relays, _, _ := newTestManager(t)
		for i, msg := range test.order {
			if got := m.ProcessSpork(msg); got != test.want[i] {
				t.Fatalf("%s: message %d: got %v, want %v",
					test.name, i, got, test.want[i])
			}
		}
		require.Equal(t, int64(200), m.Value(MaxValue), test.name)
		require.Equal(t, newer.TimeSigned, relays.last().TimeSigned,
			test.name)
	}

	// A different message with the same signing time is not newer.
	m, _, _, _ := newTestManager(t)
	require.Equal(t, Accepted, m.ProcessSpork(newer))
	same := signedSpork(key, MaxValue, 300, newer.TimeSigned)
	require.Equal(t, Stale, m.ProcessSpork(same))
	require.Equal(t, int64(200), m.Value(MaxValue))
}

// TestProcessRejected ensures invalid messages leave the table untouched and
// are not relayed.
func TestProcessRejected(t *testing.T) {
	m, relays, key, _ := newTestManager(t)
	other, _ := btcec.PrivKeyFromBytes(otherKeyBytes)

	before := testutil.ToFloat64(
		prometheusSporkMessages.WithLabelValues(BadSignature.String()))

	msg := signedSpork(key, InstantX, 0, testStartTime.Unix())
	tampered := *msg
	tampered.Value = 1
	require.Equal(t, BadSignature, m.ProcessSpork(&tampered))
	require.Equal(t, BadSignature, m.ProcessSpork(signedSpork(other,
		InstantX, 0, testStartTime.Unix())))
	require.Equal(t, UnknownSpork, m.ProcessSpork(signedSpork(key, 10003,
		1, testStartTime.Unix())))

	require.Equal(t, int64(4070908800), m.Value(InstantX))
	require.Equal(t, 0, relays.count())
	require.Equal(t, before+2, testutil.ToFloat64(
		prometheusSporkMessages.WithLabelValues(BadSignature.String())))

	// A forged copy of a message does not stop the real one.
	forged := *msg
	forged.Signature = signedSpork(other, InstantX, 0,
		testStartTime.Unix()).Signature
	require.Equal(t, BadSignature, m.ProcessSpork(&forged))
	require.Equal(t, Accepted, m.ProcessSpork(msg))
	require.Equal(t, 1, relays.count())
}

func TestUpdateSporkNotAuthorized(t *testing.T) {
	m, relays, _, _ := newTestManager(t)

	err := m.UpdateSpork(InstantX, 0)
	require.True(t, errors.Is(err, ErrNotAuthorized), "got %v", err)
	err = m.SetByName("SPORK_2_INSTANTX", 0)
	require.True(t, errors.Is(err, ErrNotAuthorized), "got %v", err)

	require.Equal(t, 0, relays.count())
	require.False(t, m.IsActive(InstantX))
}

func TestSetSigningKey(t *testing.T) {
	m, _, key, _ := newTestManager(t)
	other, _ := btcec.PrivKeyFromBytes(otherKeyBytes)

	require.True(t, errors.Is(m.SetSigningKey(other), ErrKeyMismatch))

	regtest := &btcdchaincfg.Params{
		PrivateKeyID: chaincfg.RegressionNetParams.PrivateKeyID,
	}
	mainnet := &btcdchaincfg.Params{
		PrivateKeyID: chaincfg.MainNetParams.PrivateKeyID,
	}

	wif, err := btcutil.NewWIF(other, regtest, false)
	require.NoError(t, err)
	require.True(t, errors.Is(m.SetPrivKey(wif.String()), ErrKeyMismatch))

	wif, err = btcutil.NewWIF(key, mainnet, false)
	require.NoError(t, err)
	require.True(t, errors.Is(m.SetPrivKey(wif.String()), ErrWrongNetKey))

	require.Error(t, m.SetPrivKey("not a key"))
	require.True(t, errors.Is(m.UpdateSpork(InstantX, 0), ErrNotAuthorized))

	wif, err = btcutil.NewWIF(key, regtest, false)
	require.NoError(t, err)
	require.NoError(t, m.SetPrivKey(wif.String()))
	require.NoError(t, m.UpdateSpork(InstantX, 0))
}

// TestUpdateSporkPropagation switches InstantX on at one node and relays the
// resulting message to a peer that has never seen anything but the default.
func TestUpdateSporkPropagation(t *testing.T) {
	node, nodeRelays, key, _ := newTestManager(t)
	peer, peerRelays, _, _ := newTestManager(t)
	require.NoError(t, node.SetSigningKey(key))

	var executed []ID
	node.cfg.Execute = func(id ID, value int64) {
		executed = append(executed, id)
	}

	require.False(t, node.IsActive(InstantX))
	require.NoError(t, node.UpdateSpork(InstantX, 0))
	require.True(t, node.IsActive(InstantX))
	require.Equal(t, []ID{InstantX}, executed)

	require.Equal(t, 1, nodeRelays.count())
	msg := nodeRelays.last()
	require.Equal(t, int32(InstantX), msg.SporkID)
	require.Equal(t, testStartTime.Unix(), msg.TimeSigned)

	require.False(t, peer.IsActive(InstantX))
	require.Equal(t, Accepted, peer.ProcessSpork(msg))
	require.Equal(t, int64(0), peer.Value(InstantX))
	require.True(t, peer.IsActive(InstantX))
	require.Equal(t, 1, peerRelays.count())

	// The relay reaching the origin again is dropped.
	require.Equal(t, Duplicate, node.ProcessSpork(peerRelays.last()))
	require.Equal(t, 1, nodeRelays.count())
}

func TestUpdateSporkSameSecond(t *testing.T) {
	m, relays, key, clk := newTestManager(t)
	require.NoError(t, m.SetSigningKey(key))

	require.NoError(t, m.UpdateSpork(MaxValue, 1))
	require.NoError(t, m.UpdateSpork(MaxValue, 2))
	require.Equal(t, int64(2), m.Value(MaxValue))
	require.Equal(t, testStartTime.Unix()+1, relays.last().TimeSigned)

	clk.SetTime(testStartTime.Add(time.Hour))
	require.NoError(t, m.SetByName("SPORK_5_MAX_VALUE", 3))
	require.Equal(t, testStartTime.Add(time.Hour).Unix(),
		relays.last().TimeSigned)

	err := m.SetByName("SPORK_4_NOTHING", 1)
	require.True(t, errors.Is(err, ErrUnknownSpork), "got %v", err)
	err = m.UpdateSpork(10003, 1)
	require.True(t, errors.Is(err, ErrUnknownSpork), "got %v", err)
}

// TestTimestampActivation ensures timestamp sporks switch on once the
// adjusted time reaches their value.
func TestTimestampActivation(t *testing.T) {
	m, _, key, clk := newTestManager(t)

	at := testStartTime.Add(time.Hour).Unix()
	msg := signedSpork(key, MasternodePaymentEnforcement, at,
		testStartTime.Unix())
	require.Equal(t, Accepted, m.ProcessSpork(msg))
	require.False(t, m.IsActive(MasternodePaymentEnforcement))

	clk.SetTime(time.Unix(at, 0))
	require.True(t, m.IsActive(MasternodePaymentEnforcement))
}

func TestAdminSurface(t *testing.T) {
	m, _, key, _ := newTestManager(t)
	require.NoError(t, m.SetSigningKey(key))
	require.NoError(t, m.UpdateSpork(MasternodeWinnerMinimumAge, 0))
	require.NoError(t, m.UpdateSpork(EnableMasternodePayments, 1))

	values := m.Show()
	require.Len(t, values, len(definitions))
	require.Equal(t, int64(0), values["SPORK_11_MN_WINNER_MINIMUM_AGE"])
	require.Equal(t, int64(1), values["SPORK_1_ENABLE_MASTERNODE_PAYMENTS"])
	require.Equal(t, int64(4070908800), values["SPORK_2_INSTANTX"])

	states := m.ActiveStates()
	require.Len(t, states, len(definitions))
	require.False(t, states["SPORK_11_MN_WINNER_MINIMUM_AGE"])
	require.True(t, states["SPORK_1_ENABLE_MASTERNODE_PAYMENTS"])
	require.False(t, states["SPORK_2_INSTANTX"])

	msgs := m.ActiveMessages()
	require.Len(t, msgs, 2)
	require.Equal(t, int32(EnableMasternodePayments), msgs[0].SporkID)
	require.Equal(t, int32(MasternodeWinnerMinimumAge), msgs[1].SporkID)
}

// TestProcessConcurrent feeds messages for one spork from several goroutines
// and ensures the newest one ends up installed.
func TestProcessConcurrent(t *testing.T) {
	m, _, key, _ := newTestManager(t)

	const numMsgs = 32
	msgs := make([]*wire.MsgSpork, numMsgs)
	for i := range msgs {
		msgs[i] = signedSpork(key, MaxValue, int64(i+1),
			testStartTime.Unix()+int64(i))
	}

	var wg sync.WaitGroup
	for i := range msgs {
		wg.Add(1)
		go func(msg *wire.MsgSpork) {
			defer wg.Done()
			m.ProcessSpork(msg)
			_ = m.IsActive(MaxValue)
		}(msgs[i])
	}
	wg.Wait()

	require.Equal(t, int64(numMsgs), m.Value(MaxValue))
}

func TestProcessResultString(t *testing.T) {
	tests := []struct {
		in   ProcessResult
		want string
	}{
		{Accepted, "accepted"},
		{Stale, "stale"},
		{Duplicate, "duplicate"},
		{BadSignature, "bad_signature"},
		{UnknownSpork, "unknown_spork"},
		{ProcessResult(99), "Unknown ProcessResult (99)"},
	}
	for _, test := range tests {
		require.Equal(t, test.want, test.in.String())
	}
}

func TestOnGetSporks(t *testing.T) {
	m, _, key, _ := newTestManager(t)

	var sent []*wire.MsgSpork
	send := func(msg *wire.MsgSpork) {
		sent = append(sent, msg)
	}

	m.OnGetSporks(wire.NewMsgGetSporks(), send)
	require.Empty(t, sent)

	require.Equal(t, Accepted, m.ProcessSpork(signedSpork(key, InstantX, 0,
		testStartTime.Unix())))
	m.OnGetSporks(wire.NewMsgGetSporks(), send)
	require.Len(t, sent, 1)
	require.True(t, m.CheckSignature(sent[0]))
}
