package miner

import "github.com/Pyoyeongjong/pint-chain/pkg/block"

// Inbound is the miner's message taxonomy: NewPayload and HaltMining.
type Inbound interface {
	isInbound()
}

// NewPayload starts (or restarts) mining against header.
type NewPayload struct {
	Header *block.PayloadHeader
}

// HaltMining cancels any in-flight mining attempt.
type HaltMining struct{}

func (NewPayload) isInbound()  {}
func (HaltMining) isInbound()  {}

// Result is the miner's outbound taxonomy: MiningSuccess or MiningHalted.
type Result interface {
	isResult()
}

// MiningSuccess carries a completed header with its winning nonce.
type MiningSuccess struct {
	Header *block.Header
}

// MiningHalted confirms a HaltMining request has taken effect.
type MiningHalted struct{}

func (MiningSuccess) isResult() {}
func (MiningHalted) isResult()  {}
