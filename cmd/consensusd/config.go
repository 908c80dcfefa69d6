package main

import (
	"github.com/jessevdk/go-flags"

	"github.com/meridian-dag/consensus/dagparams"
)

const (
	logFilename    = "consensusd.log"
	errLogFilename = "consensusd_err.log"
)

var activeConfig *config

type config struct {
	HTTPListen string `long:"listen" description:"HTTP address the read-only query server listens on" default:"0.0.0.0:8080"`
	DataDir    string `long:"datadir" description:"directory for the leveldb block repository" default:"./consensusd-data"`
	LogDir     string `long:"logdir" description:"directory for rotated log files" default:"./consensusd-logs"`
	Network    string `long:"network" description:"mainnet, testnet, or simnet" default:"mainnet" choice:"mainnet" choice:"testnet" choice:"simnet"`
	MaxOrphans int    `long:"maxorphans" description:"maximum number of orphan blocks held awaiting missing parents" default:"100"`
}

func (c *config) netParams() dagparams.GhostDagParams {
	switch c.Network {
	case "testnet":
		return dagparams.Testnet
	case "simnet":
		return dagparams.Simnet
	default:
		return dagparams.Mainnet
	}
}

// parseConfig parses CLI flags into the active configuration, mirroring
// kasparovd/config/config.go's Parse.
func parseConfig() (*config, error) {
	cfg := &config{}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag)
	if _, err := parser.Parse(); err != nil {
		return nil, err
	}
	activeConfig = cfg
	return cfg, nil
}
