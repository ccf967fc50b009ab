// Package miner implements proof-of-work block sealing: given a payload
// header, it searches nonces from zero until the mining hash has at least
// the header's difficulty worth of leading zero bits, polling a
// cancellation token every 10,000 iterations.
package miner

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/Pyoyeongjong/pint-chain/internal/node"
	"github.com/Pyoyeongjong/pint-chain/pkg/block"
	"github.com/Pyoyeongjong/pint-chain/pkg/crypto"
)

// pollInterval is how often, in nonce attempts, the worker checks for
// cancellation.
const pollInterval = 10_000

// Miner owns the mining goroutine lifecycle: at most one attempt runs at
// a time, and a fresh NewPayload silently supersedes whatever came before.
type Miner struct {
	mu     sync.Mutex
	cancel context.CancelFunc

	running       int32 // atomic: >0 while a worker goroutine is active
	haltRequested int32 // atomic bool: set by HaltMining before cancelling

	in  chan Inbound
	out chan Result

	log zerolog.Logger
}

// New returns an idle Miner.
func New(log zerolog.Logger) *Miner {
	return &Miner{
		in:  make(chan Inbound, 8),
		out: make(chan Result, 8),
		log: log.With().Str("component", "miner").Logger(),
	}
}

// Handle returns a send-only handle onto the miner's inbound channel.
func (m *Miner) Handle() node.Handle[Inbound] {
	return node.NewHandle[Inbound](m.in)
}

// Results returns the miner's outbound result channel.
func (m *Miner) Results() <-chan Result {
	return m.out
}

// Run drives the miner's message loop. It never returns on its own;
// callers close the inbound channel to stop it.
func (m *Miner) Run() {
	for msg := range m.in {
		switch v := msg.(type) {
		case NewPayload:
			m.start(v.Header)
		case HaltMining:
			m.halt()
		}
	}
}

// start cancels any in-flight attempt and launches a fresh one. The old
// worker notices ctx.Done() on its next poll and returns quietly — no
// MiningHalted is emitted for a supersede, only for an explicit halt.
func (m *Miner) start(header *block.PayloadHeader) {
	ctx, cancel := context.WithCancel(context.Background())

	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	atomic.StoreInt32(&m.haltRequested, 0)
	m.cancel = cancel
	m.mu.Unlock()

	atomic.AddInt32(&m.running, 1)
	go m.mine(ctx, header)
}

// halt cancels the in-flight attempt, if any. If no worker was running,
// MiningHalted is emitted immediately; otherwise the worker emits it once
// it notices the cancellation.
func (m *Miner) halt() {
	m.mu.Lock()
	wasRunning := atomic.LoadInt32(&m.running) > 0
	atomic.StoreInt32(&m.haltRequested, 1)
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Unlock()

	if !wasRunning {
		m.out <- MiningHalted{}
	}
}

func (m *Miner) mine(ctx context.Context, header *block.PayloadHeader) {
	defer atomic.AddInt32(&m.running, -1)

	seed := powSeed(header)
	for nonce := uint64(0); ; nonce++ {
		if nonce%pollInterval == 0 {
			select {
			case <-ctx.Done():
				if atomic.LoadInt32(&m.haltRequested) == 1 {
					m.out <- MiningHalted{}
				}
				return
			default:
			}
		}

		attempt := appendUint64(append([]byte{}, seed...), nonce)
		hash := crypto.Hash(attempt)
		if meetsDifficulty(hash, header.Difficulty) {
			m.out <- MiningSuccess{Header: header.WithNonce(nonce)}
			return
		}
	}
}
