package block

import (
	"math/big"

	"github.com/Pyoyeongjong/pint-chain/pkg/tx"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

// PayloadHeader is a Header without its nonce field: produced by the
// builder, consumed by the miner, which searches for a nonce.
type PayloadHeader struct {
	PreviousHash types.Hash
	TxRoot       types.Hash
	StateRoot    types.Hash
	Proposer     types.Address
	Difficulty   uint32
	Timestamp    uint64
	Height       uint64
	TotalFee     *big.Int
}

// WithNonce completes a PayloadHeader into a full Header once the miner has
// found a satisfying nonce.
func (p *PayloadHeader) WithNonce(nonce uint64) *Header {
	return &Header{
		PreviousHash: p.PreviousHash,
		TxRoot:       p.TxRoot,
		StateRoot:    p.StateRoot,
		Timestamp:    p.Timestamp,
		Proposer:     p.Proposer,
		Nonce:        nonce,
		Difficulty:   p.Difficulty,
		Height:       p.Height,
		TotalFee:     p.TotalFee,
	}
}

// Payload is a header-without-nonce plus the selected body, ready for mining.
type Payload struct {
	Header *PayloadHeader
	Body   []*tx.SignedTransaction
}
