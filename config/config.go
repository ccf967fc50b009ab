package config

import (
	"fmt"

	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

// Config is the fully-resolved, validated node configuration built from
// Flags. Unlike Flags, every field here is ready to hand to a component
// constructor.
type Config struct {
	Address string
	Port    int
	RPCPort int

	MinerAddress types.Address
	BootNode     string

	InMemoryDB bool
	RemoveData bool
	Test       bool

	Name string

	// DataDir is the on-disk database root used when InMemoryDB is false.
	DataDir string
}

// Load turns parsed Flags into a validated Config. A blank --miner-address
// is accepted: the node still mines, crediting the coinbase address.
func Load(f *Flags) (*Config, error) {
	cfg := &Config{
		Address:    f.Address,
		Port:       f.Port,
		RPCPort:    f.RPCPort,
		BootNode:   f.BootNode,
		InMemoryDB: f.InMemoryDB,
		RemoveData: f.RemoveData,
		Test:       f.Test,
		Name:       f.Name,
		DataDir:    "./data",
	}

	if f.MinerAddress != "" {
		addr, err := types.ParseAddress(f.MinerAddress)
		if err != nil {
			return nil, fmt.Errorf("miner-address: %w", err)
		}
		cfg.MinerAddress = addr
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
