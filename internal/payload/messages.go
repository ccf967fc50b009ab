package payload

import "github.com/Pyoyeongjong/pint-chain/pkg/block"

// Inbound is the payload builder's message taxonomy: BuildPayload and Stop.
type Inbound interface {
	isInbound()
}

// BuildPayload requests a fresh payload built from the current pool and tip.
type BuildPayload struct{}

// Stop terminates the builder's goroutine.
type Stop struct{}

func (BuildPayload) isInbound() {}
func (Stop) isInbound()         {}

// Result is the payload builder's outbound taxonomy: Payload or PoolIsEmpty.
type Result interface {
	isResult()
}

// PayloadResult carries a freshly built payload.
type PayloadResult struct {
	Payload *block.Payload
}

// PoolIsEmptyResult is emitted when BuildPayload finds no pending transactions.
type PoolIsEmptyResult struct{}

func (PayloadResult) isResult()    {}
func (PoolIsEmptyResult) isResult() {}
