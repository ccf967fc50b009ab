// Package crypto provides the node's cryptographic primitives: SHA-256
// hashing and ECDSA signing/recovery over secp256k1.
package crypto

import (
	"crypto/sha256"

	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

// Hash computes the SHA-256 digest of data.
func Hash(data []byte) types.Hash {
	return sha256.Sum256(data)
}

// HashConcat hashes the concatenation of two hashes. Used by the merkle
// tree (both the transaction root and the state root).
func HashConcat(a, b types.Hash) types.Hash {
	var buf [64]byte
	copy(buf[:32], a[:])
	copy(buf[32:], b[:])
	return Hash(buf[:])
}

// MerkleRoot reduces a list of leaf hashes to a single root hash using a
// binary tree whose internal node is SHA256(left||right); an odd leaf on
// any level is paired with itself, including a single-leaf list, which
// reduces to SHA256(leaf||leaf) rather than the bare leaf. The root of an
// empty list is the all-zero hash.
func MerkleRoot(hashes []types.Hash) types.Hash {
	if len(hashes) == 0 {
		return types.Hash{}
	}
	level := make([]types.Hash, len(hashes))
	copy(level, hashes)
	for {
		next := make([]types.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, HashConcat(level[i], level[i+1]))
			} else {
				next = append(next, HashConcat(level[i], level[i]))
			}
		}
		level = next
		if len(level) == 1 {
			return level[0]
		}
	}
}
