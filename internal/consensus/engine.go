// Package consensus owns the single authoritative ordering of
// Build → Mine → Import → Prune → Broadcast: one goroutine, one fair
// select loop over external messages and the miner's and builder's
// result channels.
package consensus

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/Pyoyeongjong/pint-chain/internal/mempool"
	"github.com/Pyoyeongjong/pint-chain/internal/metrics"
	"github.com/Pyoyeongjong/pint-chain/internal/miner"
	"github.com/Pyoyeongjong/pint-chain/internal/node"
	"github.com/Pyoyeongjong/pint-chain/internal/p2p"
	"github.com/Pyoyeongjong/pint-chain/internal/payload"
	"github.com/Pyoyeongjong/pint-chain/internal/provider"
	"github.com/Pyoyeongjong/pint-chain/pkg/block"
	"github.com/Pyoyeongjong/pint-chain/pkg/tx"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

// Engine is the sole authority over block import: it is the only
// component that calls Factory.ImportNewBlock.
type Engine struct {
	pool    *mempool.Pool
	factory *provider.Factory

	builder        node.Handle[payload.Inbound]
	builderResults <-chan payload.Result

	miner        node.Handle[miner.Inbound]
	minerResults <-chan miner.Result

	network node.Handle[p2p.Inbound]

	in  chan Inbound
	log zerolog.Logger

	miningPayload *block.Payload
}

// New returns an idle Engine wired to its collaborators.
func New(
	pool *mempool.Pool,
	factory *provider.Factory,
	builder node.Handle[payload.Inbound],
	builderResults <-chan payload.Result,
	minerHandle node.Handle[miner.Inbound],
	minerResults <-chan miner.Result,
	network node.Handle[p2p.Inbound],
	log zerolog.Logger,
) *Engine {
	return &Engine{
		pool:           pool,
		factory:        factory,
		builder:        builder,
		builderResults: builderResults,
		miner:          minerHandle,
		minerResults:   minerResults,
		network:        network,
		in:             make(chan Inbound, 64),
		log:            log.With().Str("component", "consensus").Logger(),
	}
}

// Handle returns a send-only handle onto the engine's external channel.
func (e *Engine) Handle() node.Handle[Inbound] {
	return node.NewHandle[Inbound](e.in)
}

// SetNetwork binds the network handle. The network manager needs the
// engine as its ConsensusSink before it exists itself, so construction is:
// New (network left zero) → p2p.New(..., engine, ...) → SetNetwork(p2pNode.Handle()).
func (e *Engine) SetNetwork(network node.Handle[p2p.Inbound]) {
	e.network = network
}

// ImportBlock implements p2p.ConsensusSink: the network manager calls
// this directly for inbound blocks.
func (e *Engine) ImportBlock(blk *block.Block) {
	e.Handle().Send(ImportBlock{Block: blk})
}

// NewTransaction implements p2p.ConsensusSink for inbound transactions
// already accepted into the pool by the network manager.
func (e *Engine) NewTransaction(r *tx.Recovered) {
	e.Handle().Send(NewTransaction{Recovered: r})
}

// Run drives the engine. It sends the initial BuildPayload and then
// loops forever over three channels: external Inbound, miner results,
// and builder results. Go's select already picks pseudo-randomly among
// ready cases, giving the fairness the loop needs.
func (e *Engine) Run() {
	e.builder.Send(payload.BuildPayload{})

	for {
		select {
		case msg := <-e.in:
			e.handleInbound(msg)
		case res := <-e.minerResults:
			e.handleMinerResult(res)
		case res := <-e.builderResults:
			e.handleBuilderResult(res)
		}
	}
}

func (e *Engine) handleInbound(msg Inbound) {
	switch v := msg.(type) {
	case ImportBlock:
		e.importBlock(v.Block)
	case NewTransaction:
		e.builder.Send(payload.BuildPayload{})
	}
}

func (e *Engine) handleBuilderResult(res payload.Result) {
	switch v := res.(type) {
	case payload.PayloadResult:
		if len(v.Payload.Body) == 0 {
			// Remain idle; a NewTransaction message wakes the builder again.
			return
		}
		e.miningPayload = v.Payload
		e.miner.Send(miner.NewPayload{Header: v.Payload.Header})
	case payload.PoolIsEmptyResult:
		// Remain idle.
	}
}

func (e *Engine) handleMinerResult(res miner.Result) {
	switch v := res.(type) {
	case miner.MiningSuccess:
		if e.miningPayload == nil || v.Header.Timestamp != e.miningPayload.Header.Timestamp {
			e.log.Debug().Msg("discarding stale mining result")
			return
		}
		metrics.BlocksMined.Inc()
		blk := &block.Block{Header: v.Header, Body: e.miningPayload.Body}
		// Re-enter through ImportBlock so a self-mined block takes the
		// same validation path as an externally received one.
		e.importBlock(blk)
	case miner.MiningHalted:
		metrics.MiningHalts.Inc()
		e.miningPayload = nil
		e.builder.Send(payload.BuildPayload{})
	}
}

func (e *Engine) importBlock(blk *block.Block) {
	err := e.factory.ImportNewBlock(blk)
	switch {
	case err == nil:
		e.pool.Prune(txHashes(blk))
		if rerr := e.pool.Reorganize(); rerr != nil {
			e.log.Error().Err(rerr).Msg("pool reorganize failed after import")
		}
		e.miningPayload = nil
		e.miner.Send(miner.HaltMining{})
		e.network.Send(p2p.BroadcastBlock{Block: blk})
		metrics.BlocksImported.Inc()
		metrics.ChainHeight.Set(float64(blk.Header.Height))
		metrics.PoolPending.Set(float64(e.pool.PendingCount()))
		metrics.PoolParked.Set(float64(e.pool.ParkedCount()))
	case errors.Is(err, provider.ErrBlockHeight):
		// Ahead of our tip by two or more: the sync subsystem handles it.
	case errors.Is(err, provider.ErrNotChained):
		// Height matches but prev-hash does not: triggers a reorg upstream.
	case errors.Is(err, provider.ErrAlreadyImported):
		e.log.Debug().Uint64("height", blk.Header.Height).Msg("block already imported")
	default:
		e.log.Error().Err(err).Uint64("height", blk.Header.Height).Msg("block import failed")
	}
}

func txHashes(blk *block.Block) []types.Hash {
	out := make([]types.Hash, len(blk.Body))
	for i, signed := range blk.Body {
		out[i] = signed.Hash
	}
	return out
}
