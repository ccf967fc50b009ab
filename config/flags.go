// Package config parses the node's command-line flags and turns them into
// the runtime Config each component is constructed from.
package config

import (
	"flag"
	"fmt"
	"os"
)

// Flags holds parsed command-line flags, before validation/defaulting.
type Flags struct {
	Address      string
	Port         int
	RPCPort      int
	MinerAddress string
	BootNode     string
	InMemoryDB   bool
	RemoveData   bool
	Test         bool
	Name         string
}

// ParseFlags parses os.Args[1:] into a Flags.
func ParseFlags() *Flags {
	return ParseFlagsArgs(os.Args[1:])
}

// ParseFlagsArgs parses args into a Flags; split out from ParseFlags so
// tests can exercise it without touching the process's real argv.
func ParseFlagsArgs(args []string) *Flags {
	f := &Flags{}
	fs := flag.NewFlagSet("pintnode", flag.ExitOnError)

	fs.StringVar(&f.Address, "address", "127.0.0.1", "bind address for the P2P listener")
	fs.IntVar(&f.Port, "port", 33333, "P2P listen port")
	fs.IntVar(&f.RPCPort, "rpc-port", 8888, "JSON-RPC listen port")
	fs.StringVar(&f.MinerAddress, "miner-address", "", "20-byte hex address credited with mined blocks")
	fs.StringVar(&f.BootNode, "boot-node", "", "address of a boot node to dial at startup (host:port)")
	fs.BoolVar(&f.InMemoryDB, "in-memory-db", false, "use an in-memory database instead of the on-disk one")
	fs.BoolVar(&f.RemoveData, "remove-data", false, "wipe the on-disk database before starting")
	fs.BoolVar(&f.Test, "test", false, "seed demo accounts and submit a demo transaction at startup")
	fs.StringVar(&f.Name, "name", "pint", "log tag identifying this node")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "pintnode [flags]")
		fs.PrintDefaults()
	}

	fs.Parse(args)
	return f
}
