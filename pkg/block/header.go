// Package block defines the block and payload types that sit above
// individual transactions: headers, bodies, and the pre-mining payload form.
package block

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/Pyoyeongjong/pint-chain/pkg/crypto"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

// HeaderSize is the canonical encoded size of a Header in bytes.
const HeaderSize = 32 + 32 + 32 + 8 + 20 + 8 + 4 + 8 + 32

// Header is a block header. Field order is fixed and governs both the wire
// encoding and the block hash.
type Header struct {
	PreviousHash types.Hash
	TxRoot       types.Hash
	StateRoot    types.Hash
	Timestamp    uint64
	Proposer     types.Address
	Nonce        uint64
	Difficulty   uint32
	Height       uint64
	TotalFee     *big.Int // u256
}

// Encode writes the canonical 176-byte encoding in field order.
func (h *Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	off := 0
	copy(buf[off:off+32], h.PreviousHash[:])
	off += 32
	copy(buf[off:off+32], h.TxRoot[:])
	off += 32
	copy(buf[off:off+32], h.StateRoot[:])
	off += 32
	binary.BigEndian.PutUint64(buf[off:off+8], h.Timestamp)
	off += 8
	copy(buf[off:off+20], h.Proposer[:])
	off += 20
	binary.BigEndian.PutUint64(buf[off:off+8], h.Nonce)
	off += 8
	binary.BigEndian.PutUint32(buf[off:off+4], h.Difficulty)
	off += 4
	binary.BigEndian.PutUint64(buf[off:off+8], h.Height)
	off += 8
	copy(buf[off:off+32], types.EncodeUint(h.TotalFee, 32))
	return buf
}

// DecodeHeader parses the canonical 176-byte encoding.
func DecodeHeader(buf []byte) (*Header, error) {
	if len(buf) != HeaderSize {
		return nil, fmt.Errorf("header: want %d bytes, got %d", HeaderSize, len(buf))
	}
	h := &Header{}
	off := 0
	copy(h.PreviousHash[:], buf[off:off+32])
	off += 32
	copy(h.TxRoot[:], buf[off:off+32])
	off += 32
	copy(h.StateRoot[:], buf[off:off+32])
	off += 32
	h.Timestamp = binary.BigEndian.Uint64(buf[off : off+8])
	off += 8
	copy(h.Proposer[:], buf[off:off+20])
	off += 20
	h.Nonce = binary.BigEndian.Uint64(buf[off : off+8])
	off += 8
	h.Difficulty = binary.BigEndian.Uint32(buf[off : off+4])
	off += 4
	h.Height = binary.BigEndian.Uint64(buf[off : off+8])
	off += 8
	h.TotalFee = types.DecodeUint(buf[off : off+32])
	return h, nil
}

// Hash computes the block hash: SHA-256 of the header's canonical encoding.
func (h *Header) Hash() types.Hash {
	return crypto.Hash(h.Encode())
}

// Equal reports field-exact equality.
func (h *Header) Equal(o *Header) bool {
	if h == nil || o == nil {
		return h == o
	}
	return h.PreviousHash == o.PreviousHash &&
		h.TxRoot == o.TxRoot &&
		h.StateRoot == o.StateRoot &&
		h.Timestamp == o.Timestamp &&
		h.Proposer == o.Proposer &&
		h.Nonce == o.Nonce &&
		h.Difficulty == o.Difficulty &&
		h.Height == o.Height &&
		h.TotalFee.Cmp(o.TotalFee) == 0
}

// GenesisHeader returns the fixed genesis header: height 0, coinbase
// proposer, difficulty 20, all hash fields zero.
func GenesisHeader() *Header {
	return &Header{
		PreviousHash: types.Hash{},
		TxRoot:       types.Hash{},
		StateRoot:    types.Hash{},
		Timestamp:    0,
		Proposer:     types.Coinbase,
		Nonce:        0,
		Difficulty:   20,
		Height:       0,
		TotalFee:     big.NewInt(0),
	}
}
