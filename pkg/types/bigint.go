package types

import "math/big"

// MaxUint256 is 2^256 - 1, the saturation ceiling for account balances
// and total fees.
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// MaxUint128 is 2^128 - 1, the saturation ceiling for per-transaction fees.
var MaxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// EncodeUint writes v into a fixed-width, big-endian byte slice of the
// given size. v must be non-negative and fit within size bytes; callers
// that accept untrusted values should clamp first.
func EncodeUint(v *big.Int, size int) []byte {
	buf := make([]byte, size)
	if v == nil {
		return buf
	}
	b := v.Bytes()
	if len(b) > size {
		b = b[len(b)-size:]
	}
	copy(buf[size-len(b):], b)
	return buf
}

// DecodeUint reads a fixed-width, big-endian byte slice into a big.Int.
func DecodeUint(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// SaturatingAdd returns a+b, clamped to max.
func SaturatingAdd(a, b, max *big.Int) *big.Int {
	sum := new(big.Int).Add(a, b)
	if sum.Cmp(max) > 0 {
		return new(big.Int).Set(max)
	}
	return sum
}

// SaturatingSub returns a-b, floored at zero (never negative).
func SaturatingSub(a, b *big.Int) *big.Int {
	diff := new(big.Int).Sub(a, b)
	if diff.Sign() < 0 {
		return big.NewInt(0)
	}
	return diff
}

// CloneBig returns a copy of v, or a fresh zero if v is nil.
func CloneBig(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
