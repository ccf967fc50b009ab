package block

import (
	"fmt"

	"github.com/Pyoyeongjong/pint-chain/pkg/tx"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

// Block is a header plus an ordered list of signed transactions.
type Block struct {
	Header *Header
	Body   []*tx.SignedTransaction
}

// GenesisBlock returns the fixed height-0 block: genesis header, empty body.
func GenesisBlock() *Block {
	return &Block{Header: GenesisHeader(), Body: nil}
}

// Encode writes the canonical encoding: header || body[0] || body[1] || ...
func (b *Block) Encode() []byte {
	buf := make([]byte, 0, HeaderSize+len(b.Body)*tx.SignedTransactionSize)
	buf = append(buf, b.Header.Encode()...)
	for _, signed := range b.Body {
		buf = append(buf, signed.Encode()...)
	}
	return buf
}

// DecodeBlock parses the canonical encoding produced by Encode.
func DecodeBlock(buf []byte) (*Block, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("block: too short, got %d bytes", len(buf))
	}
	header, err := DecodeHeader(buf[:HeaderSize])
	if err != nil {
		return nil, fmt.Errorf("block header: %w", err)
	}
	rest := buf[HeaderSize:]
	if len(rest)%tx.SignedTransactionSize != 0 {
		return nil, fmt.Errorf("block body: %d bytes is not a multiple of %d", len(rest), tx.SignedTransactionSize)
	}
	n := len(rest) / tx.SignedTransactionSize
	body := make([]*tx.SignedTransaction, 0, n)
	for i := 0; i < n; i++ {
		start := i * tx.SignedTransactionSize
		signed, err := tx.DecodeSignedTransaction(rest[start : start+tx.SignedTransactionSize])
		if err != nil {
			return nil, fmt.Errorf("block body[%d]: %w", i, err)
		}
		body = append(body, signed)
	}
	return &Block{Header: header, Body: body}, nil
}

// TxHashes returns the signing hashes of the body, in order.
func (b *Block) TxHashes() []types.Hash {
	hashes := make([]types.Hash, len(b.Body))
	for i, signed := range b.Body {
		hashes[i] = signed.Hash
	}
	return hashes
}
