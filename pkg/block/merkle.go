package block

import (
	"github.com/Pyoyeongjong/pint-chain/pkg/crypto"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

// CalculateTxRoot computes the merkle root of a list of transaction hashes.
func CalculateTxRoot(hashes []types.Hash) types.Hash {
	return crypto.MerkleRoot(hashes)
}
