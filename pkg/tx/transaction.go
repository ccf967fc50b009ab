// Package tx defines the transaction types: the raw Transaction, its signed
// wire form, and a signer-recovered variant, along with their fixed-width
// codecs.
package tx

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/Pyoyeongjong/pint-chain/pkg/crypto"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

// TransactionSize is the canonical encoded size of a Transaction in bytes:
// chain_id(8) || nonce(8) || to(20) || fee(16) || value(32).
const TransactionSize = 84

// Transaction is the unsigned payload a sender commits to.
type Transaction struct {
	ChainID uint64
	Nonce   uint64
	To      types.Address
	Fee     *big.Int // u128, big-endian on the wire
	Value   *big.Int // u256, big-endian on the wire
}

// Encode writes the canonical fixed-width 84-byte encoding.
func (t *Transaction) Encode() []byte {
	buf := make([]byte, TransactionSize)
	binary.BigEndian.PutUint64(buf[0:8], t.ChainID)
	binary.BigEndian.PutUint64(buf[8:16], t.Nonce)
	copy(buf[16:36], t.To[:])
	copy(buf[36:52], types.EncodeUint(t.Fee, 16))
	copy(buf[52:84], types.EncodeUint(t.Value, 32))
	return buf
}

// DecodeTransaction parses the canonical 84-byte encoding.
func DecodeTransaction(buf []byte) (*Transaction, error) {
	if len(buf) != TransactionSize {
		return nil, fmt.Errorf("transaction: want %d bytes, got %d", TransactionSize, len(buf))
	}
	t := &Transaction{
		ChainID: binary.BigEndian.Uint64(buf[0:8]),
		Nonce:   binary.BigEndian.Uint64(buf[8:16]),
		Fee:     types.DecodeUint(buf[36:52]),
		Value:   types.DecodeUint(buf[52:84]),
	}
	copy(t.To[:], buf[16:36])
	return t, nil
}

// SigningHash is SHA-256 over the canonical encoding.
func (t *Transaction) SigningHash() types.Hash {
	return crypto.Hash(t.Encode())
}

// Equal reports field-exact equality.
func (t *Transaction) Equal(o *Transaction) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.ChainID == o.ChainID &&
		t.Nonce == o.Nonce &&
		t.To == o.To &&
		t.Fee.Cmp(o.Fee) == 0 &&
		t.Value.Cmp(o.Value) == 0
}
