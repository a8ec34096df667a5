// Copyright (c) 2018 The Monkey developers
// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	btcwire "github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/clock"

	"github.com/monkeyproject/monkeyd/wire"
)

// These variables are the chain proof-of-work and proof-of-stake limit
// parameters for each default network.
var (
	// bigOne is 1 represented as a big.Int.  It is defined here to avoid
	// the overhead of creating it multiple times.
	bigOne = big.NewInt(1)

	// mainPowLimit is the highest proof of work value a block can have
	// for the main network.  It is the value 2^236 - 1.
	mainPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 236), bigOne)

	// mainPosLimit is the highest proof of stake value a block can have.
	// It is the value 2^236 - 1 on every network.
	mainPosLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 236), bigOne)

	// testNetPowLimit is the highest proof of work value a block can have
	// for the test network.  It is the value 2^240 - 1.
	testNetPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 240), bigOne)

	// regressionPowLimit is the highest proof of work value a block can
	// have for the regression test network.  It is the value 2^255 - 1.
	regressionPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)
)

const (
	// neverHeight is used for heights that are never reached.
	neverHeight = 0x7fffffff

	// oneWeek is the width of the window fixed seed timestamps are drawn
	// from.
	oneWeek = 7 * 24 * time.Hour
)

// NetworkID identifies one of the networks a node can run on.
type NetworkID int

const (
	// MainNet is the production network.
	MainNet NetworkID = iota

	// TestNet is the public test network.
	TestNet

	// RegTest is the private regression test network.
	RegTest
)

// String returns the NetworkID in human-readable form.
func (id NetworkID) String() string {
	switch id {
	case MainNet:
		return "main"
	case TestNet:
		return "test"
	case RegTest:
		return "regtest"
	}
	return fmt.Sprintf("Unknown NetworkID (%d)", int(id))
}

// Checkpoint identifies a known good point in the block chain.  A block at a
// checkpointed height whose hash differs from the checkpoint can never be part
// of the main chain.
type Checkpoint struct {
	Height int32
	Hash   *chainhash.Hash
}

// DNSSeed identifies a DNS seed.
type DNSSeed struct {
	// Name is a short label for the seed operator.
	Name string

	// Host defines the hostname of the seed.
	Host string
}

// String returns the hostname of the DNS seed in human-readable form.
func (d DNSSeed) String() string {
	return d.Host
}

// Params defines a network by its parameters.  A Params value is fully
// materialized when built and is never modified afterwards, so it is safe
// for concurrent readers.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// NetworkID is the network this record describes.
	NetworkID NetworkID

	// Net defines the magic bytes used to identify the network.
	Net btcwire.BitcoinNet

	// DefaultPort defines the default peer-to-peer port for the network.
	DefaultPort string

	// RPCPort defines the default RPC server port for the network.
	RPCPort string

	// DataDir is the name of the sub directory holding the chain data,
	// empty for the main network.
	DataDir string

	// DNSSeeds defines a list of DNS seeds for the network that are used
	// as one method to discover peers.
	DNSSeeds []DNSSeed

	// FixedSeeds are compiled in peer addresses used when DNS seeding
	// fails.  Their timestamps are one to two weeks in the past.
	FixedSeeds []*btcwire.NetAddress

	// GenesisBlock defines the first block of the chain.
	GenesisBlock *wire.MsgBlock

	// GenesisHash is the starting block hash.
	GenesisHash *chainhash.Hash

	// GenesisMerkleRoot is the merkle root of the genesis block.
	GenesisMerkleRoot *chainhash.Hash

	// PowLimit defines the highest allowed proof of work value for a block
	// as a uint256.
	PowLimit *big.Int

	// PowLimitBits defines the highest allowed proof of work value for a
	// block in compact form.
	PowLimitBits uint32

	// PosLimit defines the highest allowed proof of stake value for a
	// block as a uint256.
	PosLimit *big.Int

	// PosLimitBits defines the highest allowed proof of stake value for a
	// block in compact form.
	PosLimitBits uint32

	// Checkpoints ordered from oldest to newest.
	Checkpoints []Checkpoint

	// AlertPubKey is the serialized key network alerts are signed with.
	AlertPubKey []byte

	// SporkPubKey is the serialized master key spork messages must be
	// signed with.
	SporkPubKey []byte

	// PoolMaxTransactions is the number of transactions mixed per pool
	// session.
	PoolMaxTransactions int

	// PoolDummyAddress is the address used as a placeholder output by the
	// mixing pool.
	PoolDummyAddress string

	// LastPoWBlock is the last height a proof of work block is accepted
	// at.
	LastPoWBlock int32

	// FirstPoSBlock is the first height a proof of stake block is
	// accepted at.
	FirstPoSBlock int32

	// StakeMinAge is the minimum age of an output before it can stake.
	StakeMinAge time.Duration

	// StakeMaxAgeV1 is the age past which coin age stops accumulating
	// before SoftForkHeight200.
	StakeMaxAgeV1 time.Duration

	// StakeMaxAgeV2 replaces StakeMaxAgeV1 from SoftForkHeight200 onwards.
	StakeMaxAgeV2 time.Duration

	// MasternodeCountDrift is the tolerated difference between the local
	// masternode count and the one used for payments.
	MasternodeCountDrift int

	// RequireRPCPassword reports whether the RPC server refuses to start
	// without credentials.
	RequireRPCPassword bool

	// Address encoding magics
	PubKeyHashAddrID byte // First byte of a P2PKH address
	ScriptHashAddrID byte // First byte of a P2SH address
	PrivateKeyID     byte // First byte of a WIF private key

	// BIP32 hierarchical deterministic extended key magics
	HDPrivateKeyID [4]byte
	HDPublicKeyID  [4]byte
}

// mainCheckpoints is the hardcoded checkpoint table of the main network.
// Height zero is filled in with the genesis hash when the parameters are
// built.
var mainCheckpoints = []Checkpoint{
	{4500, newHashFromStr("28370f64f653e242cb6d396e66b2fcf0a9c67567cf71a12c3ba67729ab47a9c6")},
	{10501, newHashFromStr("0000000000006993c25060db05eb91c5d3011570d12dc78bbbd788a7aeed8743")},
	{10502, newHashFromStr("44dc047eb8839e13e12e05d6044d868df61e40cc7c09d43ce2580ffc185df7be")},
	{20000, newHashFromStr("9e4781446d683d5f9e8a1d258c1ef6682642200bf485924a2ad3e29849bd9655")},
	{30000, newHashFromStr("0238931fe88d10f8ee20f4fccb4fce99e7d9ac9985eeb96195f2f3ee81c4afce")},
	{40000, newHashFromStr("3ff7da9aac362b499abd28fe260a200828a761e124c13a8e68f31929d9fa0c32")},
	{50000, newHashFromStr("614323e40a7dbe3dc34b1b624db961c5cab1d99c6440ddea0fb5504e4fc1afee")},
	{60000, newHashFromStr("e6c9870f9874575934456949ae9ea1bbc76362c7e8674600a9efcf39d440e1cc")},
	{70000, newHashFromStr("519767e8c3b0c9e94129e8a642f1dd65cbb93f9916184f319710d472b46576cb")},
	{80000, newHashFromStr("0bf354b70339cfa3db8fceaf8576ba40ee762f8a2b0a7bc9781198cf342c1255")},
	{85000, newHashFromStr("b04c7cc602fa65b849a4d59fe363aed9d23c0a4b4d34f14cf2fe0adc60e2dee3")},
}

// mainNetParams returns a freshly allocated record holding the main network
// values.  The other networks start from it and apply their overrides, so
// nothing returned here may be shared between calls.
func mainNetParams() Params {
	return Params{
		Name:        "mainnet",
		NetworkID:   MainNet,
		Net:         wire.MainNet,
		DefaultPort: "8710",
		RPCPort:     "8101",
		DataDir:     "",
		DNSSeeds: []DNSSeed{
			{"monk1.cryptoservices.tk", "monk1.cryptoservices.tk"},
			{"monk2.cryptoservices.tk", "monk2.cryptoservices.tk"},
			{"monk3.cryptoservices.tk", "monk3.cryptoservices.tk"},
			{"seed1", "seed1.monkey.vision"},
			{"seed2", "seed2.monkey.vision"},
			{"seed3", "seed3.monkey.vision"},
		},

		// Chain parameters
		PowLimit:     new(big.Int).Set(mainPowLimit),
		PowLimitBits: blockchain.BigToCompact(mainPowLimit), // 0x1e0fffff
		PosLimit:     new(big.Int).Set(mainPosLimit),
		PosLimitBits: blockchain.BigToCompact(mainPosLimit), // 0x1e0fffff

		// Checkpoints ordered from oldest to newest.
		Checkpoints: append([]Checkpoint(nil), mainCheckpoints...),

		AlertPubKey: mustDecodeHex("04f35675a3f24fd836bec1735d65b0dbc7f8cd" +
			"491423ef50cdb9e1aab39721d4a752d9777be7d699e26f4c6db186e8" +
			"83c87b2fad0428ae216faf5bed61cf8d317f"),
		SporkPubKey: mustDecodeHex("0431a3e4fcb29011df5ac2e47e0da085f9378c" +
			"7de8174cf9b7ccd8959235c4be2be224b5880c6036c5f7718c12c988" +
			"c39db7f2af0e392748cca23726a4cfd97815"),
		PoolMaxTransactions: 3,
		PoolDummyAddress:    "Mgn67cAEbNSs6Ajfq52HzNMbdtsxV9XHxL",

		LastPoWBlock:         75000,
		FirstPoSBlock:        0,
		StakeMinAge:          8 * time.Hour,
		StakeMaxAgeV1:        48 * time.Hour,
		StakeMaxAgeV2:        240 * time.Hour,
		MasternodeCountDrift: 20,
		RequireRPCPassword:   true,

		// Address encoding magics
		PubKeyHashAddrID: 0x33, // starts with M
		ScriptHashAddrID: 0x1c,
		PrivateKeyID:     0x37,

		// BIP32 hierarchical deterministic extended key magics
		HDPrivateKeyID: [4]byte{0x04, 0x88, 0xad, 0xe4}, // starts with xprv
		HDPublicKeyID:  [4]byte{0x04, 0x88, 0xb2, 0x1e}, // starts with xpub
	}
}

// testNetOverrides turns a main network record into the test network one.
func testNetOverrides(p *Params) {
	p.Name = "testnet"
	p.NetworkID = TestNet
	p.Net = wire.TestNet
	p.DefaultPort = "8711"
	p.RPCPort = "8102"
	p.DataDir = "testnet"
	p.DNSSeeds = nil
	p.FixedSeeds = nil

	p.PowLimit = new(big.Int).Set(testNetPowLimit)
	p.PowLimitBits = blockchain.BigToCompact(testNetPowLimit) // 0x1f00ffff

	// The test network has no checkpoints.
	p.Checkpoints = nil

	p.AlertPubKey = mustDecodeHex("0434ff6edbff4e2b6b1474e80c4436f5b266e2" +
		"92fd203fc8425c788688f96e89975c4ba08fb160181b56048d560e83b5ea" +
		"8ac118a29f9d3b9f4ab90a6de23a817f")
	p.SporkPubKey = mustDecodeHex("04bae79cbfbcc3c555643d371388bd02ade4c8" +
		"b09d1529e191aa6e06becd4d3ab0fde31d320704d1bc6d5e33b107335aa4" +
		"1e3a89eec6b0dfce015c9ab37eee966c")

	p.LastPoWBlock = 1000
	p.StakeMinAge = 20 * time.Minute
	p.MasternodeCountDrift = 4

	p.PubKeyHashAddrID = 0x7f
	p.ScriptHashAddrID = 0xc4
	p.PrivateKeyID = 0x3f

	p.HDPrivateKeyID = [4]byte{0x04, 0x35, 0x83, 0x94} // starts with tprv
	p.HDPublicKeyID = [4]byte{0x04, 0x35, 0x87, 0xcf}  // starts with tpub
}

// regTestOverrides turns a test network record into the regression test
// network one.
func regTestOverrides(p *Params) {
	p.Name = "regtest"
	p.NetworkID = RegTest
	p.Net = wire.RegTest
	p.DefaultPort = "10300"
	p.DataDir = "regtest"

	// Regtest mode doesn't have any DNS seeds.
	p.DNSSeeds = nil

	p.PowLimit = new(big.Int).Set(regressionPowLimit)
	p.PowLimitBits = blockchain.BigToCompact(regressionPowLimit) // 0x207fffff

	// Proof of work blocks stay valid forever so tests can mine at will.
	p.LastPoWBlock = neverHeight

	p.RequireRPCPassword = false
}

var (
	// ErrDuplicateNet describes an error where the parameters for a network
	// could not be registered because another registered network already
	// uses the same magic bytes or peer port.
	ErrDuplicateNet = errors.New("duplicate network")

	// ErrUnknownNet describes an error where a network identity that is
	// not defined by this package was requested.
	ErrUnknownNet = errors.New("unknown network")
)

var (
	registeredNets    = make(map[btcwire.BitcoinNet]struct{})
	registeredPorts   = make(map[string]struct{})
	pubKeyHashAddrIDs = make(map[byte]struct{})
	scriptHashAddrIDs = make(map[byte]struct{})
)

// Register registers the network parameters so the magic bytes and address
// prefixes can be looked up by other packages.  It fails with ErrDuplicateNet
// when either the magic or the peer port is already taken, which keeps
// messages and connections of different networks apart.
func Register(params *Params) error {
	if _, ok := registeredNets[params.Net]; ok {
		return ErrDuplicateNet
	}
	if _, ok := registeredPorts[params.DefaultPort]; ok {
		return ErrDuplicateNet
	}
	registeredNets[params.Net] = struct{}{}
	registeredPorts[params.DefaultPort] = struct{}{}
	pubKeyHashAddrIDs[params.PubKeyHashAddrID] = struct{}{}
	scriptHashAddrIDs[params.ScriptHashAddrID] = struct{}{}
	return nil
}

// mustRegister performs the same function as Register except it panics if there
// is an error.  This should only be called from package init functions.
func mustRegister(params *Params) {
	if err := Register(params); err != nil {
		panic("failed to register network: " + err.Error())
	}
}

// IsPubKeyHashAddrID returns whether the id is an identifier known to prefix a
// pay-to-pubkey-hash address on any default or registered network.
func IsPubKeyHashAddrID(id byte) bool {
	_, ok := pubKeyHashAddrIDs[id]
	return ok
}

// IsScriptHashAddrID returns whether the id is an identifier known to prefix a
// pay-to-script-hash address on any default or registered network.
func IsScriptHashAddrID(id byte) bool {
	_, ok := scriptHashAddrIDs[id]
	return ok
}

// newHashFromStr converts the passed big-endian hex string into a
// chainhash.Hash.  It only differs from the one available in chainhash in that
// it panics on an error since it will only (and must only) be called with
// hard-coded, and therefore known good, hashes.
func newHashFromStr(hexStr string) *chainhash.Hash {
	hash, err := chainhash.NewHashFromStr(hexStr)
	if err != nil {
		panic(err)
	}
	return hash
}

// mustDecodeHex decodes a hard-coded hex string and panics on failure.
func mustDecodeHex(hexStr string) []byte {
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		panic(err)
	}
	return b
}

// Build constructs the parameters of the passed network.  The test network
// is the main network with its override list applied and the regression test
// network is the test network with a further list applied.  The genesis block
// is rebuilt and its hash and merkle root are checked against the expected
// values; ErrGenesisMismatch is returned when they differ.
func Build(id NetworkID, clk clock.Clock) (*Params, error) {
	spec, ok := genesisSpecs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownNet, id)
	}

	p := mainNetParams()
	seeds := mainFixedSeeds
	switch id {
	case TestNet:
		testNetOverrides(&p)
		seeds = nil
	case RegTest:
		testNetOverrides(&p)
		regTestOverrides(&p)
		seeds = nil
	}

	genesis, err := buildGenesis(&spec, p.PowLimitBits)
	if err != nil {
		return nil, fmt.Errorf("%v genesis: %w", id, err)
	}
	p.GenesisBlock = genesis
	p.GenesisHash = spec.hash
	p.GenesisMerkleRoot = spec.merkleRoot

	// The checkpoint at height zero is always the genesis block.
	if len(p.Checkpoints) > 0 {
		p.Checkpoints = append([]Checkpoint{{0, p.GenesisHash}},
			p.Checkpoints...)
	}

	p.FixedSeeds, err = convertSeeds(seeds, clk.Now(), randReader)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// mustBuild performs the same function as Build except it panics if there is
// an error.  A failure here means the binary itself is inconsistent.
func mustBuild(id NetworkID) Params {
	p, err := Build(id, clock.NewDefaultClock())
	if err != nil {
		panic("invalid chain parameters: " + err.Error())
	}
	return *p
}

// MainNetParams defines the network parameters for the main network.
var MainNetParams = mustBuild(MainNet)

// TestNetParams defines the network parameters for the public test network.
var TestNetParams = mustBuild(TestNet)

// RegressionNetParams defines the network parameters for the regression test
// network.  Not to be confused with the public test network.
var RegressionNetParams = mustBuild(RegTest)

func init() {
	// Register all default networks when the package is initialized.
	mustRegister(&MainNetParams)
	mustRegister(&TestNetParams)
	mustRegister(&RegressionNetParams)
}
