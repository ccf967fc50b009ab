package storage

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"sort"

	"github.com/Pyoyeongjong/pint-chain/internal/executor"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

// accountSize is the fixed-width encoding of an Account: nonce(8) || balance(32).
const accountSize = 8 + 32

func encodeAccount(a *types.Account) []byte {
	buf := make([]byte, accountSize)
	copy(buf[0:8], types.EncodeUint(new(big.Int).SetUint64(a.Nonce), 8))
	copy(buf[8:], types.EncodeUint(a.Balance, 32))
	return buf
}

func decodeAccount(buf []byte) (*types.Account, error) {
	if len(buf) != accountSize {
		return nil, fmt.Errorf("storage: bad account encoding length %d", len(buf))
	}
	nonce := types.DecodeUint(buf[0:8])
	return &types.Account{Nonce: nonce.Uint64(), Balance: types.DecodeUint(buf[8:])}, nil
}

// encodeState serializes a full account map (sorted by address for
// determinism) and its world into a single blob for the states table.
func encodeState(accounts map[types.Address]*types.Account, world *executor.World) []byte {
	// World carries no data today; its hash is recomputed on load.
	addrs := make([]types.Address, 0, len(accounts))
	for addr := range accounts {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Compare(addrs[j]) < 0 })

	buf := make([]byte, 4, 4+len(addrs)*(20+accountSize))
	binary.BigEndian.PutUint32(buf, uint32(len(addrs)))
	for _, addr := range addrs {
		buf = append(buf, addr.Bytes()...)
		buf = append(buf, encodeAccount(accounts[addr])...)
	}
	return buf
}

func decodeState(buf []byte) (map[types.Address]*types.Account, *executor.World, error) {
	if len(buf) < 4 {
		return nil, nil, fmt.Errorf("storage: state blob too short")
	}
	count := binary.BigEndian.Uint32(buf[0:4])
	buf = buf[4:]

	accounts := make(map[types.Address]*types.Account, count)
	const entrySize = 20 + accountSize
	for i := uint32(0); i < count; i++ {
		if len(buf) < entrySize {
			return nil, nil, fmt.Errorf("storage: state blob truncated")
		}
		var addr types.Address
		copy(addr[:], buf[:20])
		acct, err := decodeAccount(buf[20:entrySize])
		if err != nil {
			return nil, nil, err
		}
		accounts[addr] = acct
		buf = buf[entrySize:]
	}
	return accounts, executor.NewWorld(), nil
}
