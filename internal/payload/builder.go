// Package payload implements the background payload-building task: it
// consumes BuildPayload/Stop requests and emits Payload/PoolIsEmpty
// results, executing speculatively against a snapshot so the pool is never
// mutated and concurrent builds never race.
package payload

import (
	"math/big"
	"time"

	"github.com/rs/zerolog"

	"github.com/Pyoyeongjong/pint-chain/internal/executor"
	"github.com/Pyoyeongjong/pint-chain/internal/mempool"
	"github.com/Pyoyeongjong/pint-chain/internal/node"
	"github.com/Pyoyeongjong/pint-chain/internal/provider"
	"github.com/Pyoyeongjong/pint-chain/pkg/block"
	"github.com/Pyoyeongjong/pint-chain/pkg/tx"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

// DefaultMaxTransactions is the default cap on transactions per payload.
const DefaultMaxTransactions = 20

// Builder owns the background goroutine that turns pool contents into
// mineable payloads.
type Builder struct {
	address         types.Address
	provider        *provider.Provider
	factory         *provider.Factory
	pool            *mempool.Pool
	maxTransactions int
	now             func() uint64

	in  chan Inbound
	out chan Result

	log zerolog.Logger
}

// New returns a Builder. maxTransactions <= 0 uses DefaultMaxTransactions.
func New(address types.Address, p *provider.Provider, f *provider.Factory, pool *mempool.Pool, maxTransactions int, log zerolog.Logger) *Builder {
	if maxTransactions <= 0 {
		maxTransactions = DefaultMaxTransactions
	}
	return &Builder{
		address:         address,
		provider:        p,
		factory:         f,
		pool:            pool,
		maxTransactions: maxTransactions,
		now:             func() uint64 { return uint64(time.Now().Unix()) },
		in:              make(chan Inbound, 8),
		out:             make(chan Result, 8),
		log:             log.With().Str("component", "payload").Logger(),
	}
}

// Handle returns a send-only handle onto the builder's inbound channel.
func (b *Builder) Handle() node.Handle[Inbound] {
	return node.NewHandle[Inbound](b.in)
}

// Results returns the builder's outbound result channel.
func (b *Builder) Results() <-chan Result {
	return b.out
}

// Run drives the builder's message loop until Stop is received.
func (b *Builder) Run() {
	for msg := range b.in {
		switch msg.(type) {
		case BuildPayload:
			b.build()
		case Stop:
			return
		}
	}
}

func (b *Builder) build() {
	if b.pool.PendingCount() == 0 {
		b.out <- PoolIsEmptyResult{}
		return
	}

	view, err := b.provider.Latest()
	if err != nil {
		b.log.Error().Err(err).Msg("build payload: latest view")
		return
	}
	parent, err := b.provider.LatestHeader()
	if err != nil {
		b.log.Error().Err(err).Msg("build payload: latest header")
		return
	}
	nextDifficulty, err := b.factory.GetNextDifficulty()
	if err != nil {
		b.log.Error().Err(err).Msg("build payload: next difficulty")
		return
	}
	state, err := view.ExecutableState()
	if err != nil {
		b.log.Error().Err(err).Msg("build payload: executable state")
		return
	}

	ex := executor.New(state)
	it := b.pool.BestTransactions()

	body := make([]*tx.SignedTransaction, 0, b.maxTransactions)
	totalFee := big.NewInt(0)
	for len(body) < b.maxTransactions {
		r := it.Next()
		if r == nil {
			break
		}
		receipt := ex.ExecuteTransaction(r)
		if !receipt.Success {
			continue
		}
		totalFee = types.SaturatingAdd(totalFee, receipt.Fee, types.MaxUint256)
		body = append(body, r.Signed)
	}

	hashes := make([]types.Hash, len(body))
	for i, signed := range body {
		hashes[i] = signed.Hash
	}

	header := &block.PayloadHeader{
		PreviousHash: parent.Hash(),
		TxRoot:       block.CalculateTxRoot(hashes),
		StateRoot:    ex.CalculateStateRoot(),
		Proposer:     b.address,
		Difficulty:   nextDifficulty,
		Timestamp:    b.now(),
		Height:       parent.Height + 1,
		TotalFee:     totalFee,
	}
	b.out <- PayloadResult{Payload: &block.Payload{Header: header, Body: body}}
}
