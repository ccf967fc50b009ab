package miner

import (
	"encoding/binary"
	"math/bits"

	"github.com/Pyoyeongjong/pint-chain/pkg/block"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

// powSeed builds the fixed mining hash prefix: previous_hash || tx_root ||
// state_root || timestamp || proposer || difficulty || height. This is
// deliberately NOT the same encoding as Header.Hash(): it omits total_fee
// and the nonce is appended separately, last, on every attempt.
func powSeed(h *block.PayloadHeader) []byte {
	buf := make([]byte, 0, 32+32+32+8+20+4+8)
	buf = append(buf, h.PreviousHash[:]...)
	buf = append(buf, h.TxRoot[:]...)
	buf = append(buf, h.StateRoot[:]...)
	buf = appendUint64(buf, h.Timestamp)
	buf = append(buf, h.Proposer.Bytes()...)
	buf = appendUint32(buf, h.Difficulty)
	buf = appendUint64(buf, h.Height)
	return buf
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

// leadingZeroBits counts the number of leading zero bits in hash.
func leadingZeroBits(hash types.Hash) int {
	count := 0
	for _, b := range hash {
		if b == 0 {
			count += 8
			continue
		}
		count += bits.LeadingZeros8(b)
		break
	}
	return count
}

// meetsDifficulty reports whether hash has at least difficulty leading zero bits.
func meetsDifficulty(hash types.Hash, difficulty uint32) bool {
	return leadingZeroBits(hash) >= int(difficulty)
}
