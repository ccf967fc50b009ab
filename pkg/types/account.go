package types

import "math/big"

// Account holds the on-chain state for a single address: a strictly
// increasing nonce and a saturating balance.
type Account struct {
	Nonce   uint64
	Balance *big.Int
}

// NewAccount returns a zero-value account (nonce 0, balance 0).
func NewAccount() *Account {
	return &Account{Nonce: 0, Balance: big.NewInt(0)}
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return NewAccount()
	}
	return &Account{Nonce: a.Nonce, Balance: CloneBig(a.Balance)}
}

// Credit saturating-adds amount to the account's balance.
func (a *Account) Credit(amount *big.Int) {
	a.Balance = SaturatingAdd(a.Balance, amount, MaxUint256)
}

// Debit saturating-subtracts amount from the account's balance.
func (a *Account) Debit(amount *big.Int) {
	a.Balance = SaturatingSub(a.Balance, amount)
}

// EncodeForRoot returns the leaf encoding used by the state root:
// addr_hex(40 ascii) || balance_be32 || nonce_be8, matching
// SHA256(addr_hex || balance_be32 || nonce_be8) from the state root spec.
func (a *Account) EncodeForRoot(addr Address) []byte {
	buf := make([]byte, 0, 40+32+8)
	buf = append(buf, []byte(addr.Hex())...)
	buf = append(buf, EncodeUint(a.Balance, 32)...)
	nonceBuf := EncodeUint(new(big.Int).SetUint64(a.Nonce), 8)
	buf = append(buf, nonceBuf...)
	return buf
}
