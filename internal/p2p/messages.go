package p2p

import (
	"github.com/Pyoyeongjong/pint-chain/pkg/block"
	"github.com/Pyoyeongjong/pint-chain/pkg/tx"
)

// Inbound is the network manager's internal-only command taxonomy: things
// other components ask the network to do. None of these ever appear on
// the wire; BroadcastBlock and BroadcastTransaction are translated into
// NewPayload/NewTransaction frames fanned out to every peer.
type Inbound interface {
	isInbound()
}

// BroadcastBlock fans blk out to every peer as a NewPayload frame. The
// consensus engine sends this after a successful local import.
type BroadcastBlock struct {
	Block *block.Block
}

// BroadcastTransaction fans a locally-accepted transaction out to every
// peer except its source (if it arrived from the network).
type BroadcastTransaction struct {
	Signed *tx.SignedTransaction
	Except uint64
}

// RemovePeer drops a peer immediately.
type RemovePeer struct {
	ID uint64
}

// RemoveUnresponsivePeer drops peer ID unless it has been marked alive
// again since the liveness probe that scheduled this removal.
type RemoveUnresponsivePeer struct {
	ID uint64
}

// ReorgChainData starts a reorg probe against one connected peer, walking
// its last ancestor hashes to find a common fork point.
type ReorgChainData struct{}

func (BroadcastBlock) isInbound()         {}
func (BroadcastTransaction) isInbound()   {}
func (RemovePeer) isInbound()             {}
func (RemoveUnresponsivePeer) isInbound() {}
func (ReorgChainData) isInbound()         {}
