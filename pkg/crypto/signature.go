package crypto

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

// SignatureSize is the length of a recoverable ECDSA signature: r(32) || s(32) || parity(1).
const SignatureSize = 65

// Signature is a 65-byte recoverable ECDSA signature.
type Signature [SignatureSize]byte

// PrivateKey wraps a secp256k1 private key.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// GenerateKey creates a new random secp256k1 private key.
func GenerateKey() (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromBytes builds a PrivateKey from a 32-byte scalar.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(b))
	}
	key := secp256k1.PrivKeyFromBytes(b)
	return &PrivateKey{key: key}, nil
}

// PublicKey returns the compressed 33-byte public key.
func (pk *PrivateKey) PublicKey() []byte {
	return pk.key.PubKey().SerializeCompressed()
}

// Address derives the 20-byte address for this key: the first 20 bytes of
// SHA256(compressed pubkey).
func (pk *PrivateKey) Address() types.Address {
	return AddressFromPubKey(pk.PublicKey())
}

// AddressFromPubKey derives an address from a compressed public key.
func AddressFromPubKey(pubKey []byte) types.Address {
	h := Hash(pubKey)
	var addr types.Address
	copy(addr[:], h[:types.AddressSize])
	return addr
}

// Sign produces a recoverable ECDSA signature over a 32-byte hash, encoded
// as r(32) || s(32) || parity(1).
func Sign(pk *PrivateKey, hash types.Hash) (Signature, error) {
	compact := ecdsa.SignCompact(pk.key, hash[:], true)
	if len(compact) != 65 {
		return Signature{}, fmt.Errorf("unexpected compact signature length %d", len(compact))
	}
	// compact[0] is the recovery code: 27 + recoveryID (+4 for a
	// compressed pubkey hint). We always sign with compressed=true.
	recoveryID := (compact[0] - 27) & 0x3
	var sig Signature
	copy(sig[0:32], compact[1:33])
	copy(sig[32:64], compact[33:65])
	sig[64] = recoveryID & 1
	return sig, nil
}

// RecoverSigner recovers the address of the key that produced sig over
// hash.
func RecoverSigner(hash types.Hash, sig Signature) (types.Address, error) {
	compact := make([]byte, 65)
	compact[0] = 27 + 4 + (sig[64] & 1)
	copy(compact[1:33], sig[0:32])
	copy(compact[33:65], sig[32:64])

	pub, _, err := ecdsa.RecoverCompact(compact, hash[:])
	if err != nil {
		return types.Address{}, fmt.Errorf("recover signer: %w", err)
	}
	return AddressFromPubKey(pub.SerializeCompressed()), nil
}
