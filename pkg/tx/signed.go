package tx

import (
	"fmt"

	"github.com/Pyoyeongjong/pint-chain/pkg/crypto"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

// SignedTransactionSize is the canonical encoded size: tx(84) || sig(65).
const SignedTransactionSize = TransactionSize + crypto.SignatureSize

// SignedTransaction bundles a Transaction with its signature and cached hash.
type SignedTransaction struct {
	Tx   *Transaction
	Sig  crypto.Signature
	Hash types.Hash // SigningHash of Tx, cached at construction/decode time
}

// Sign builds a SignedTransaction by signing t's signing hash with pk.
func Sign(t *Transaction, pk *crypto.PrivateKey) (*SignedTransaction, error) {
	h := t.SigningHash()
	sig, err := crypto.Sign(pk, h)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return &SignedTransaction{Tx: t, Sig: sig, Hash: h}, nil
}

// Encode writes the canonical 149-byte encoding: tx || sig.
func (s *SignedTransaction) Encode() []byte {
	buf := make([]byte, 0, SignedTransactionSize)
	buf = append(buf, s.Tx.Encode()...)
	buf = append(buf, s.Sig[:]...)
	return buf
}

// DecodeSignedTransaction parses the canonical 149-byte encoding.
func DecodeSignedTransaction(buf []byte) (*SignedTransaction, error) {
	if len(buf) != SignedTransactionSize {
		return nil, fmt.Errorf("signed transaction: want %d bytes, got %d", SignedTransactionSize, len(buf))
	}
	t, err := DecodeTransaction(buf[0:TransactionSize])
	if err != nil {
		return nil, err
	}
	var sig crypto.Signature
	copy(sig[:], buf[TransactionSize:SignedTransactionSize])
	return &SignedTransaction{Tx: t, Sig: sig, Hash: t.SigningHash()}, nil
}

// RecoverSigner recovers and returns the address that produced this
// transaction's signature.
func (s *SignedTransaction) RecoverSigner() (types.Address, error) {
	return crypto.RecoverSigner(s.Hash, s.Sig)
}

// Recovered bundles a SignedTransaction with its already-recovered signer.
type Recovered struct {
	Signed *SignedTransaction
	Signer types.Address
}

// Recover verifies recoverability and wraps s with its signer address.
func Recover(s *SignedTransaction) (*Recovered, error) {
	signer, err := s.RecoverSigner()
	if err != nil {
		return nil, err
	}
	return &Recovered{Signed: s, Signer: signer}, nil
}

// ID returns the (sender, nonce) identifier for this transaction.
func (r *Recovered) ID() ID {
	return ID{Sender: r.Signer, Nonce: r.Signed.Tx.Nonce}
}

// ID identifies a transaction by (sender, nonce), ordered lexicographically
// by sender first, then nonce.
type ID struct {
	Sender types.Address
	Nonce  uint64
}

// Less reports whether id sorts before other: sender first, then nonce.
func (id ID) Less(other ID) bool {
	if c := id.Sender.Compare(other.Sender); c != 0 {
		return c < 0
	}
	return id.Nonce < other.Nonce
}
