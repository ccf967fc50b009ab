package p2p

import (
	"errors"
	"net"

	"github.com/Pyoyeongjong/pint-chain/internal/mempool"
	"github.com/Pyoyeongjong/pint-chain/pkg/tx"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

// dispatch turns one decoded wire frame from peer p into the appropriate
// action: a consensus call, a pool submission, a handshake step, or a
// sync/reorg response.
func (n *Node) dispatch(p *peer, msg wireMessage) {
	switch msg.tag {
	case tagPeerConnectionTest:
		p.setAlive(true)

	case tagNewTransaction:
		n.handleInboundTransaction(p, msg.payload)

	case tagNewPayload:
		n.handleInboundBlock(msg.payload)

	case tagHello:
		n.handleHello(p, msg.payload)

	case tagHandShake:
		n.handleHandShake(p, msg.payload)

	case tagRequestData:
		n.handleRequestData(p, msg.payload)

	case tagRequestDataResponse, tagRequestDataResponseFinished:
		// Informational only in this implementation: blocks arrive as a
		// stream of NewPayload frames, which handleInboundBlock already
		// feeds to consensus one at a time.

	case tagRequestChainData:
		n.handleRequestChainData(p, msg.payload)

	case tagRespondChainDataResult:
		n.handleRespondChainData(msg.payload)
	}
}

func (n *Node) handleInboundTransaction(p *peer, payload []byte) {
	signed, err := decodeSignedTransaction(payload)
	if err != nil {
		n.log.Warn().Err(err).Msg("undecodable transaction frame")
		return
	}
	recovered, err := tx.Recover(signed)
	if err != nil {
		n.log.Warn().Err(err).Msg("unrecoverable transaction")
		return
	}
	if err := n.pool.Add(recovered); err != nil {
		// Duplicates are silent; any other rejection is logged.
		if !errors.Is(err, mempool.ErrAlreadyImported) {
			n.log.Debug().Err(err).Msg("transaction rejected")
		}
		return
	}
	n.consensus.NewTransaction(recovered)
	n.peers.broadcast(frame(tagNewTransaction, signed.Encode()), p.id)
}

func (n *Node) handleInboundBlock(payload []byte) {
	blk, err := decodeBlock(payload)
	if err != nil {
		n.log.Warn().Err(err).Msg("undecodable block frame")
		return
	}
	n.consensus.ImportBlock(blk)
}

func (n *Node) handleHello(p *peer, payload []byte) {
	_, ip, port, err := decodeHello(payload)
	if err != nil {
		n.log.Warn().Err(err).Msg("undecodable hello")
		return
	}
	p.addr = &net.TCPAddr{IP: ip, Port: int(port)}
	n.sendTo(p, frame(tagHandShake, encodeHello(n.pid, localIP(n.cfg.ListenAddr), uint16(n.cfg.Port))))
	if n.cfg.BootNode != "" {
		// Only a dialer (a non-boot node) receives Hello; the acceptor
		// already has a full chain, so the dialer syncs from here.
		n.initialSync(p)
	}
}

func (n *Node) handleHandShake(p *peer, payload []byte) {
	_, ip, port, err := decodeHello(payload)
	if err != nil {
		n.log.Warn().Err(err).Msg("undecodable handshake")
		return
	}
	p.addr = &net.TCPAddr{IP: ip, Port: int(port)}
}

func (n *Node) handleRequestData(p *peer, payload []byte) {
	from, err := decodeRequestData(payload)
	if err != nil {
		n.log.Warn().Err(err).Msg("undecodable request_data")
		return
	}
	latest, err := n.store.LatestBlockNumber()
	if err != nil {
		return
	}
	for height := from; height <= latest; height++ {
		blk, err := n.store.GetBlock(height)
		if err != nil {
			break
		}
		n.sendTo(p, frame(tagNewPayload, blk.Encode()))
	}
	n.sendTo(p, frame(tagRequestDataResponseFinished, nil))
}

func (n *Node) handleRequestChainData(p *peer, payload []byte) {
	ip, port, err := decodeIPPort(payload)
	if err != nil {
		n.log.Warn().Err(err).Msg("undecodable request_chain_data")
		return
	}
	_ = ip
	_ = port

	latest, err := n.store.LatestBlockNumber()
	if err != nil {
		return
	}
	hashes := make([]types.Hash, 0, maxAncestorHashes)
	for i := 0; i < maxAncestorHashes; i++ {
		if int64(latest)-int64(i) < 0 {
			break
		}
		header, err := n.store.GetHeader(latest - uint64(i))
		if err != nil {
			break
		}
		hashes = append(hashes, header.Hash())
	}
	n.sendTo(p, frame(tagRespondChainDataResult, encodeRespondChainData(hashes)))
}

func (n *Node) handleRespondChainData(payload []byte) {
	hashes, err := decodeRespondChainData(payload)
	if err != nil {
		n.log.Warn().Err(err).Msg("undecodable respond_chain_data")
		return
	}
	forkHeight, found := n.findForkPoint(hashes)
	if !found {
		forkHeight = 0
	}
	if err := n.store.RemoveDatas(forkHeight); err != nil {
		n.log.Error().Err(err).Msg("truncate for reorg failed")
		return
	}
	if p, ok := n.peers.random(); ok {
		n.sendTo(p, frame(tagRequestData, encodeRequestData(forkHeight+1)))
	}
}

// findForkPoint walks hashes (newest to oldest, as received) and returns
// the height of the first one present in our local chain. Each hash is
// resolved by content via GetBlockByHash rather than by assuming it sits
// at the same height locally as it did for the peer that sent it — the
// wire payload carries no height metadata, and the two chains can be at
// different heights even when they share an ancestor.
func (n *Node) findForkPoint(hashes []types.Hash) (uint64, bool) {
	for _, h := range hashes {
		blk, err := n.store.GetBlockByHash(h)
		if err != nil {
			continue
		}
		return blk.Header.Height, true
	}
	return 0, false
}
