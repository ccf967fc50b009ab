package storage

import (
	"encoding/binary"

	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

// Key prefixes for the five tables described in the database abstraction:
// accounts by (height, address), blocks by height, states by height,
// transactions by hash, and block-hash to height.
const (
	prefixAccount = 'A'
	prefixBlock   = 'B'
	prefixState   = 'S'
	prefixTx      = 'T'
	prefixHash    = 'H'
	keyLatest     = "latest"
)

func heightKey(prefix byte, height uint64) []byte {
	key := make([]byte, 9)
	key[0] = prefix
	binary.BigEndian.PutUint64(key[1:], height)
	return key
}

func accountKey(height uint64, addr types.Address) []byte {
	key := make([]byte, 1+8+20)
	key[0] = prefixAccount
	binary.BigEndian.PutUint64(key[1:9], height)
	copy(key[9:], addr.Bytes())
	return key
}

func accountPrefix(height uint64) []byte {
	return heightKey(prefixAccount, height)
}

func blockKey(height uint64) []byte {
	return heightKey(prefixBlock, height)
}

func stateKey(height uint64) []byte {
	return heightKey(prefixState, height)
}

func txKey(hash types.Hash) []byte {
	key := make([]byte, 1+32)
	key[0] = prefixTx
	copy(key[1:], hash.Bytes())
	return key
}

func hashKey(hash types.Hash) []byte {
	key := make([]byte, 1+32)
	key[0] = prefixHash
	copy(key[1:], hash.Bytes())
	return key
}
