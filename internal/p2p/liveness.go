package p2p

import "time"

// livenessLoop broadcasts an internal PeerConnectionTest every
// livenessInterval: every peer is marked tentatively dead, sent the
// wire-level ping, and scheduled for removal unless a reply flips it
// alive again before unresponsiveTimeout elapses.
func (n *Node) livenessLoop() {
	ticker := time.NewTicker(livenessInterval)
	defer ticker.Stop()
	for range ticker.C {
		for _, p := range n.peers.all() {
			p.setAlive(false)
			n.sendTo(p, frame(tagPeerConnectionTest, nil))
			go n.scheduleUnresponsiveCheck(p.id)
		}
	}
}

func (n *Node) scheduleUnresponsiveCheck(id uint64) {
	time.Sleep(unresponsiveTimeout)
	p, ok := n.peers.get(id)
	if !ok {
		return
	}
	if !p.isAlive() {
		n.dropPeer(p)
	}
}

// Run drives the node's internal command loop: BroadcastBlock,
// BroadcastTransaction, RemovePeer, RemoveUnresponsivePeer and
// ReorgChainData all arrive here from other components via Handle().
func (n *Node) Run() {
	for msg := range n.in {
		switch v := msg.(type) {
		case BroadcastBlock:
			n.peers.broadcast(frame(tagNewPayload, v.Block.Encode()), 0)
		case BroadcastTransaction:
			n.peers.broadcast(frame(tagNewTransaction, v.Signed.Encode()), v.Except)
		case RemovePeer:
			if p, ok := n.peers.get(v.ID); ok {
				n.dropPeer(p)
			}
		case RemoveUnresponsivePeer:
			if p, ok := n.peers.get(v.ID); ok && !p.isAlive() {
				n.dropPeer(p)
			}
		case ReorgChainData:
			if p, ok := n.peers.random(); ok {
				n.sendTo(p, frame(tagRequestChainData, encodeIPPort(localIP(n.cfg.ListenAddr), uint16(n.cfg.Port))))
			}
		}
	}
}
