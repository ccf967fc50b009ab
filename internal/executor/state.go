// Package executor implements the deterministic account-state transition
// function: applying transactions and blocks to an account map, and
// computing the resulting state root.
package executor

import (
	"sort"

	"github.com/Pyoyeongjong/pint-chain/pkg/crypto"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

// World is a placeholder for non-account state. It carries no data yet but
// participates in the state root so future state (e.g. contract storage)
// can be added without changing the root's shape.
type World struct{}

// NewWorld returns an empty World.
func NewWorld() *World {
	return &World{}
}

// Hash returns the world's contribution to the state root. An empty World
// hashes to the all-zero hash.
func (w *World) Hash() types.Hash {
	return types.Hash{}
}

// Clone returns a copy of the world (trivial while World carries no data).
func (w *World) Clone() *World {
	return &World{}
}

// State is a snapshot of all account state plus the world, at one height.
type State struct {
	Accounts map[types.Address]*types.Account
	World    *World
}

// NewState returns an empty state.
func NewState() *State {
	return &State{Accounts: make(map[types.Address]*types.Account), World: NewWorld()}
}

// Clone performs a copy-on-create deep copy: every account is cloned so
// mutating the result never affects the source.
func (s *State) Clone() *State {
	accounts := make(map[types.Address]*types.Account, len(s.Accounts))
	for addr, acct := range s.Accounts {
		accounts[addr] = acct.Clone()
	}
	return &State{Accounts: accounts, World: s.World.Clone()}
}

// Get returns the account at addr, or nil if it does not exist.
func (s *State) Get(addr types.Address) *types.Account {
	return s.Accounts[addr]
}

// GetOrCreate returns the account at addr, creating a zero-value account on
// first access.
func (s *State) GetOrCreate(addr types.Address) *types.Account {
	acct, ok := s.Accounts[addr]
	if !ok {
		acct = types.NewAccount()
		s.Accounts[addr] = acct
	}
	return acct
}

// CalculateStateRoot sorts accounts by address ascending, hashes each as
// SHA256(addr_hex || balance_be32 || nonce_be8), appends the world hash,
// and reduces the resulting leaf list with a merkle tree. Sorting makes the
// root independent of map iteration order.
func (s *State) CalculateStateRoot() types.Hash {
	addrs := make([]types.Address, 0, len(s.Accounts))
	for addr := range s.Accounts {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Compare(addrs[j]) < 0 })

	leaves := make([]types.Hash, 0, len(addrs)+1)
	for _, addr := range addrs {
		leaves = append(leaves, crypto.Hash(s.Accounts[addr].EncodeForRoot(addr)))
	}
	leaves = append(leaves, s.World.Hash())

	return crypto.MerkleRoot(leaves)
}
