// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2018 The Monkey developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	flags "github.com/jessevdk/go-flags"

	"github.com/monkeyproject/monkeyd/chaincfg"
	"github.com/monkeyproject/monkeyd/spork"
)

const (
	defaultConfigFilename = "monkeyd.conf"
	defaultDataDirname    = "data"
	defaultLogLevel       = "info"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "monkeyd.log"
)

var (
	defaultHomeDir    = btcutil.AppDataDir("monkeyd", false)
	defaultConfigFile = filepath.Join(defaultHomeDir, defaultConfigFilename)
	defaultDataDir    = filepath.Join(defaultHomeDir, defaultDataDirname)
	defaultLogDir     = filepath.Join(defaultHomeDir, defaultLogDirname)
)

// config defines the configuration options for monkeyd.
//
// See loadConfig for details on the configuration load process.
type config struct {
	ShowVersion     bool     `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile      string   `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir         string   `short:"b" long:"datadir" description:"Directory to store data"`
	LogDir          string   `long:"logdir" description:"Directory to log output."`
	DebugLevel      string   `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
	TestNet         bool     `long:"testnet" description:"Use the test network"`
	RegressionTest  bool     `long:"regtest" description:"Use the regression test network"`
	MetricsListen   string   `long:"metricslisten" description:"Serve prometheus metrics on this interface/port (eg. 127.0.0.1:9710)"`
	SporkKey        string   `long:"sporkkey" default-mask:"-" description:"WIF encoded spork master private key used to sign spork updates"`
	SetSporks       []string `long:"setspork" description:"Sign and install a spork update given as NAME=VALUE -- requires --sporkkey"`
	ShowSporks      bool     `long:"showsporks" description:"Print the value of every spork and exit"`
	ActiveSporks    bool     `long:"activesporks" description:"Print which sporks are active and exit"`
	ShowCheckpoints bool     `long:"showcheckpoints" description:"Print the checkpoint height estimate and exit"`

	networkID chaincfg.NetworkID
	sporkSets []sporkSetting
}

// sporkSetting is a parsed --setspork option.
type sporkSetting struct {
	name  string
	value int64
}

// parseSporkSetting parses a NAME=VALUE spork update.
func parseSporkSetting(s string) (sporkSetting, error) {
	name, valueStr, ok := strings.Cut(s, "=")
	if !ok {
		return sporkSetting{}, fmt.Errorf("spork update %q is not of "+
			"the form NAME=VALUE", s)
	}
	if spork.IDByName(name) == -1 {
		return sporkSetting{}, fmt.Errorf("spork update %q: unknown "+
			"spork %q", s, name)
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return sporkSetting{}, fmt.Errorf("spork update %q: invalid "+
			"value: %w", s, err)
	}
	return sporkSetting{name: name, value: value}, nil
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(defaultHomeDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but they variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// networkDir returns the per network sub directory name for the passed
// parameters.
func networkDir(params *chaincfg.Params) string {
	if params.DataDir == "" {
		return params.Name
	}
	return params.DataDir
}

// parseConfig parses args on top of the defaults and the configuration file
// and validates the result.  It does not touch any global state.
func parseConfig(args []string) (*config, *flags.Parser, error) {
	cfg := config{
		ConfigFile: defaultConfigFile,
		DebugLevel: defaultLogLevel,
		DataDir:    defaultDataDir,
		LogDir:     defaultLogDir,
	}

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.  Any errors aside from the
	// help message error can be ignored here since they will be caught by
	// the final parse below.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag)
	_, err := preParser.ParseArgs(args)
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			return nil, preParser, err
		}
	}
	if preCfg.ShowVersion {
		return &preCfg, preParser, nil
	}

	// Load additional config from file.
	parser := flags.NewParser(&cfg, flags.HelpFlag|flags.PassDoubleDash)
	configFile := cleanAndExpandPath(preCfg.ConfigFile)
	if fileExists(configFile) {
		err := flags.NewIniParser(parser).ParseFile(configFile)
		if err != nil {
			return nil, parser, fmt.Errorf("error parsing config "+
				"file %s: %w", configFile, err)
		}
	} else if preCfg.ConfigFile != defaultConfigFile {
		return nil, parser, fmt.Errorf("config file %s does not exist",
			configFile)
	}

	// Parse command line options again to ensure they take precedence.
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, parser, err
	}

	// Multiple networks can't be selected simultaneously.
	numNets := 0
	cfg.networkID = chaincfg.MainNet
	if cfg.TestNet {
		numNets++
		cfg.networkID = chaincfg.TestNet
	}
	if cfg.RegressionTest {
		numNets++
		cfg.networkID = chaincfg.RegTest
	}
	if numNets > 1 {
		return nil, parser, errors.New("the testnet and regtest params " +
			"can't be used together -- choose one of the two")
	}

	for _, s := range cfg.SetSporks {
		setting, err := parseSporkSetting(s)
		if err != nil {
			return nil, parser, err
		}
		cfg.sporkSets = append(cfg.sporkSets, setting)
	}
	if len(cfg.sporkSets) > 0 && cfg.SporkKey == "" {
		return nil, parser, errors.New("--setspork requires --sporkkey")
	}

	params, err := chaincfg.ParamsForNet(cfg.networkID)
	if err != nil {
		return nil, parser, err
	}
	cfg.DataDir = filepath.Join(cleanAndExpandPath(cfg.DataDir),
		networkDir(params))
	cfg.LogDir = filepath.Join(cleanAndExpandPath(cfg.LogDir),
		networkDir(params))

	return &cfg, parser, nil
}

// loadConfig initializes and parses the config using a config file and
// command line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// The above results in monkeyd functioning properly without any config
// settings while still allowing the user to override settings with config
// files and command line options.  Command line options always take
// precedence.
func loadConfig() (*config, error) {
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))

	cfg, parser, err := parseConfig(os.Args[1:])
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		if parser != nil {
			parser.WriteHelp(os.Stderr)
		}
		return nil, err
	}

	// Show the version and exit if the version flag was specified.
	if cfg.ShowVersion {
		fmt.Println(appName, "version", version())
		os.Exit(0)
	}

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", supportedSubsystems())
		os.Exit(0)
	}

	// Initialize log rotation.  After log rotation has been initialized,
	// the logger variables may be used.
	initLogRotator(filepath.Join(cfg.LogDir, defaultLogFilename))

	// Parse, validate, and set debug log level(s).
	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		err := fmt.Errorf("%s: %v", "loadConfig", err.Error())
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, err
	}

	// Selecting the network is fatal on failure.
	if err := chaincfg.Select(cfg.networkID); err != nil {
		return nil, err
	}

	return cfg, nil
}
