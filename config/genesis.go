package config

import (
	"math/big"

	"github.com/Pyoyeongjong/pint-chain/pkg/crypto"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

// DemoBalance is the balance credited to each demo account seeded when
// --test is set.
var DemoBalance = big.NewInt(10_000_000)

// demoAliceScalar is a fixed, publicly-known secp256k1 scalar: Alice's
// identity is reproducible across runs purely for demo-transaction
// signing, never for anything resembling a real key.
var demoAliceScalar = [32]byte{
	0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
	0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10,
	0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17, 0x18,
	0x19, 0x1a, 0x1b, 0x1c, 0x1d, 0x1e, 0x1f, 0x20,
}

// DemoAliceKey returns the fixed demo private key used to sign the
// startup demo transaction submitted under --test.
func DemoAliceKey() (*crypto.PrivateKey, error) {
	return crypto.PrivateKeyFromBytes(demoAliceScalar[:])
}

// DemoBob is the fixed demo recipient address.
var DemoBob = types.Address{0xB0, 0xb0, 0xe0}

// DemoAccounts returns the genesis endowment seeded for --test runs,
// keyed by the demo sender's derived address and the fixed recipient.
func DemoAccounts() (map[types.Address]*types.Account, error) {
	alice, err := DemoAliceKey()
	if err != nil {
		return nil, err
	}
	return map[types.Address]*types.Account{
		alice.Address(): {Nonce: 0, Balance: new(big.Int).Set(DemoBalance)},
		DemoBob:         {Nonce: 0, Balance: new(big.Int).Set(DemoBalance)},
	}, nil
}
