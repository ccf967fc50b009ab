package consensus

import (
	"github.com/Pyoyeongjong/pint-chain/pkg/block"
	"github.com/Pyoyeongjong/pint-chain/pkg/tx"
)

// Inbound is the engine's external message taxonomy: blocks and
// transactions arriving from the network manager or the RPC surface.
type Inbound interface {
	isInbound()
}

// ImportBlock asks the engine to validate and, on success, commit blk.
// The engine also re-enters this path for its own mined blocks, so every
// block — local or remote — goes through the same validation.
type ImportBlock struct {
	Block *block.Block
}

// NewTransaction notifies the engine that recovered has entered the pool,
// so it can kick off a fresh payload build.
type NewTransaction struct {
	Recovered *tx.Recovered
}

func (ImportBlock) isInbound()    {}
func (NewTransaction) isInbound() {}
