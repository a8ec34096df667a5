// Copyright (c) 2018 The Monkey developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package spork

import (
	"fmt"
	"sync"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	btcdchaincfg "github.com/btcsuite/btcd/chaincfg"
	"github.com/decred/dcrd/lru"
	"github.com/lightningnetwork/lnd/clock"
	"golang.org/x/exp/slices"

	"github.com/monkeyproject/monkeyd/chaincfg"
	"github.com/monkeyproject/monkeyd/wire"
)

// defaultSeenCacheSize is the number of verified message hashes remembered
// when Config.SeenCacheSize is zero.
const defaultSeenCacheSize = 1000

// ProcessResult describes what happened to a spork message.
type ProcessResult int

const (
	// Accepted means the message was installed and relayed.
	Accepted ProcessResult = iota

	// Stale means a message with the same or a later signing time is
	// already installed.
	Stale

	// Duplicate means the exact message was already processed.
	Duplicate

	// BadSignature means the message was not signed by the master key.
	BadSignature

	// UnknownSpork means the message names a spork this node does not
	// know.
	UnknownSpork
)

// Map of ProcessResult values back to their names for pretty printing and
// metric labels.
var processResultStrings = map[ProcessResult]string{
	Accepted:     "accepted",
	Stale:        "stale",
	Duplicate:    "duplicate",
	BadSignature: "bad_signature",
	UnknownSpork: "unknown_spork",
}

// String returns the ProcessResult in human-readable form.
func (r ProcessResult) String() string {
	if s, ok := processResultStrings[r]; ok {
		return s
	}
	return fmt.Sprintf("Unknown ProcessResult (%d)", int(r))
}

// TimeSource provides the network adjusted time.  The median time source of
// the chain satisfies it.
type TimeSource interface {
	AdjustedTime() time.Time
}

// clockTimeSource adapts a clock to a TimeSource without any adjustment.
type clockTimeSource struct {
	clock.Clock
}

// AdjustedTime returns the current time of the wrapped clock.
func (c clockTimeSource) AdjustedTime() time.Time {
	return c.Now()
}

// Query is the read side of the spork state other subsystems gate features
// on.
type Query interface {
	// Value returns the value in effect for the passed spork.
	Value(id ID) int64

	// IsActive reports whether the passed spork is switched on.
	IsActive(id ID) bool
}

// Config is a descriptor containing the spork manager configuration.
type Config struct {
	// ChainParams identifies which chain parameters the manager is
	// associated with.  Its SporkPubKey is the only key whose messages
	// are accepted.
	ChainParams *chaincfg.Params

	// Relay is called with every newly installed message so it can be
	// announced to peers.  It is called without any lock held and must
	// neither block nor modify the message.
	Relay func(msg *wire.MsgSpork)

	// Execute is an optional callback invoked after a spork value
	// changes.
	Execute func(id ID, value int64)

	// TimeSource provides the adjusted time timestamp sporks are compared
	// against.  Clock is used when it is nil.
	TimeSource TimeSource

	// Clock provides the signing time of local updates.  The system clock
	// is used when it is nil.
	Clock clock.Clock

	// SeenCacheSize is the number of verified message hashes remembered
	// to skip reprocessing of relayed duplicates.
	SeenCacheSize uint
}

// Manager keeps track of the spork values in effect on the network.  It
// verifies incoming spork messages against the master key of the network,
// installs the newest message per spork and relays it.
type Manager struct {
	cfg       Config
	masterKey *btcec.PublicKey

	// seen holds the hashes of messages whose signature was verified.
	seen lru.Cache

	mtx        sync.RWMutex
	active     map[ID]*wire.MsgSpork
	signingKey *btcec.PrivateKey
}

// NewManager returns a new spork manager for the network described by the
// passed configuration.
func NewManager(cfg *Config) (*Manager, error) {
	if cfg.ChainParams == nil {
		return nil, fmt.Errorf("spork manager requires chain parameters")
	}
	masterKey, err := btcec.ParsePubKey(cfg.ChainParams.SporkPubKey)
	if err != nil {
		return nil, fmt.Errorf("invalid spork master key: %w", err)
	}

	initPrometheusMetrics()

	c := *cfg
	if c.Clock == nil {
		c.Clock = clock.NewDefaultClock()
	}
	if c.TimeSource == nil {
		c.TimeSource = clockTimeSource{c.Clock}
	}
	if c.SeenCacheSize == 0 {
		c.SeenCacheSize = defaultSeenCacheSize
	}

	return &Manager{
		cfg:       c,
		masterKey: masterKey,
		seen:      lru.NewCache(c.SeenCacheSize),
		active:    make(map[ID]*wire.MsgSpork),
	}, nil
}

// CheckSignature returns whether the signature of msg was produced by the
// master key over the id, value and signing time of the message.
//
// This function is safe for concurrent access.
func (m *Manager) CheckSignature(msg *wire.MsgSpork) bool {
	if len(msg.Signature) == 0 {
		return false
	}
	hash := msg.Hash()
	pubKey, _, err := ecdsa.RecoverCompact(msg.Signature, hash[:])
	if err != nil {
		return false
	}
	return pubKey.IsEqual(m.masterKey)
}

// sign signs msg with key.
func sign(msg *wire.MsgSpork, key *btcec.PrivateKey) {
	hash := msg.Hash()
	msg.Signature = ecdsa.SignCompact(key, hash[:], false)
}

// ProcessSpork handles a spork message received from a peer.  The message is
// installed and relayed when it is correctly signed and newer than the one
// in effect for its spork.  Every other message is dropped, and the result
// tells why.
//
// This function is safe for concurrent access.
func (m *Manager) ProcessSpork(msg *wire.MsgSpork) ProcessResult {
	result := m.processSpork(msg)
	prometheusSporkMessages.WithLabelValues(result.String()).Inc()
	return result
}

func (m *Manager) processSpork(msg *wire.MsgSpork) ProcessResult {
	id := ID(msg.SporkID)
	if _, ok := defsByID[id]; !ok {
		log.Debugf("Ignoring unknown spork %d", msg.SporkID)
		return UnknownSpork
	}

	hash := msg.Hash()
	if m.seen.Contains(hash) {
		return Duplicate
	}

	// Skip the signature check for messages that would be refused anyway.
	if m.isStale(id, msg.TimeSigned) {
		log.Debugf("Ignoring stale spork %v signed at %d", id,
			msg.TimeSigned)
		return Stale
	}

	if !m.CheckSignature(msg) {
		log.Debugf("Ignoring spork %v with invalid signature", id)
		return BadSignature
	}

	installed := &wire.MsgSpork{
		SporkID:    msg.SporkID,
		Value:      msg.Value,
		TimeSigned: msg.TimeSigned,
		Signature:  append([]byte(nil), msg.Signature...),
	}

	m.mtx.Lock()
	// Another message may have been installed while the signature was
	// checked.
	if cur, ok := m.active[id]; ok && msg.TimeSigned <= cur.TimeSigned {
		m.mtx.Unlock()
		return Stale
	}
	m.active[id] = installed
	m.mtx.Unlock()

	m.seen.Add(hash)

	log.Infof("Spork %v set to %d (signed %v)", id, msg.Value,
		time.Unix(msg.TimeSigned, 0).UTC())

	if m.cfg.Execute != nil {
		m.cfg.Execute(id, msg.Value)
	}
	if m.cfg.Relay != nil {
		m.cfg.Relay(installed)
	}
	return Accepted
}

// isStale returns whether a message for id signed at timeSigned is not newer
// than the installed one.
func (m *Manager) isStale(id ID, timeSigned int64) bool {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	cur, ok := m.active[id]
	return ok && timeSigned <= cur.TimeSigned
}

// SetSigningKey configures the key local spork updates are signed with.  It
// must belong to the master public key of the network.
//
// This function is safe for concurrent access.
func (m *Manager) SetSigningKey(key *btcec.PrivateKey) error {
	if !key.PubKey().IsEqual(m.masterKey) {
		return ErrKeyMismatch
	}

	m.mtx.Lock()
	m.signingKey = key
	m.mtx.Unlock()

	log.Infof("Spork signing key configured for %s",
		m.cfg.ChainParams.PubKeyAddress(m.masterKey.SerializeUncompressed()))
	return nil
}

// SetPrivKey configures the signing key from its WIF encoding.
//
// This function is safe for concurrent access.
func (m *Manager) SetPrivKey(wifStr string) error {
	wif, err := btcutil.DecodeWIF(wifStr)
	if err != nil {
		return err
	}
	net := &btcdchaincfg.Params{PrivateKeyID: m.cfg.ChainParams.PrivateKeyID}
	if !wif.IsForNet(net) {
		return ErrWrongNetKey
	}
	return m.SetSigningKey(wif.PrivKey)
}

// UpdateSpork signs a new value for the passed spork with the configured
// signing key, installs it and relays it.  ErrNotAuthorized is returned when
// no signing key is configured, in which case no message is produced.
//
// This function is safe for concurrent access.
func (m *Manager) UpdateSpork(id ID, value int64) error {
	if _, ok := defsByID[id]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSpork, int32(id))
	}

	m.mtx.RLock()
	key := m.signingKey
	var lastSigned int64
	if cur, ok := m.active[id]; ok {
		lastSigned = cur.TimeSigned
	}
	m.mtx.RUnlock()

	if key == nil {
		return ErrNotAuthorized
	}

	// Updates issued within the same second must still supersede each
	// other.
	timeSigned := m.cfg.Clock.Now().Unix()
	if timeSigned <= lastSigned {
		timeSigned = lastSigned + 1
	}

	msg := wire.NewMsgSpork(int32(id), value, timeSigned)
	sign(msg, key)

	prometheusSporkUpdates.Inc()
	if result := m.ProcessSpork(msg); result != Accepted {
		return fmt.Errorf("%w: %v", ErrUpdateRejected, result)
	}
	return nil
}

// SetByName is UpdateSpork with the spork given by name.
//
// This function is safe for concurrent access.
func (m *Manager) SetByName(name string, value int64) error {
	id := IDByName(name)
	if id == -1 {
		return fmt.Errorf("%w: %s", ErrUnknownSpork, name)
	}
	return m.UpdateSpork(id, value)
}

// Value returns the value in effect for the passed spork: the value of the
// newest installed message, or the default when none was received.  Unknown
// sporks have the value -1.
//
// This function is safe for concurrent access.
func (m *Manager) Value(id ID) int64 {
	m.mtx.RLock()
	msg, ok := m.active[id]
	m.mtx.RUnlock()
	if ok {
		return msg.Value
	}

	if def, ok := defsByID[id]; ok {
		return def.Default
	}
	log.Debugf("Value requested for unknown spork %d", int32(id))
	return -1
}

// IsActive reports whether the passed spork is switched on according to the
// rule of its definition.  Unknown sporks are never active.
//
// This function is safe for concurrent access.
func (m *Manager) IsActive(id ID) bool {
	def, ok := defsByID[id]
	if !ok {
		return false
	}

	value := m.Value(id)
	switch def.Rule {
	case RuleTimestamp:
		return value <= m.cfg.TimeSource.AdjustedTime().Unix()
	case RulePositive:
		return value > 0
	}
	return false
}

// ActiveMessages returns the installed spork messages ordered by spork id.
// They are what a node sends in reply to a getsporks request and must not be
// modified.
//
// This function is safe for concurrent access.
func (m *Manager) ActiveMessages() []*wire.MsgSpork {
	m.mtx.RLock()
	msgs := make([]*wire.MsgSpork, 0, len(m.active))
	for _, msg := range m.active {
		msgs = append(msgs, msg)
	}
	m.mtx.RUnlock()

	slices.SortFunc(msgs, func(a, b *wire.MsgSpork) bool {
		return a.SporkID < b.SporkID
	})
	return msgs
}

// OnGetSporks answers a getsporks request from a peer by handing every
// installed message to send.
//
// This function is safe for concurrent access.
func (m *Manager) OnGetSporks(_ *wire.MsgGetSporks, send func(msg *wire.MsgSpork)) {
	for _, msg := range m.ActiveMessages() {
		send(msg)
	}
}

// Show returns the value in effect for every known spork keyed by name.
//
// This function is safe for concurrent access.
func (m *Manager) Show() map[string]int64 {
	values := make(map[string]int64, len(definitions))
	for _, def := range definitions {
		values[def.Name] = m.Value(def.ID)
	}
	return values
}

// ActiveStates returns whether every known spork is active keyed by name.
//
// This function is safe for concurrent access.
func (m *Manager) ActiveStates() map[string]bool {
	states := make(map[string]bool, len(definitions))
	for _, def := range definitions {
		states[def.Name] = m.IsActive(def.ID)
	}
	return states
}

// Ensure Manager satisfies the Query interface.
var _ Query = (*Manager)(nil)
