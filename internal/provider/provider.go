// Package provider is a thin handle over the database: height-pinned
// reads through View, and a commit path (difficulty selection and block
// import) through Factory.
package provider

import (
	"github.com/Pyoyeongjong/pint-chain/internal/executor"
	"github.com/Pyoyeongjong/pint-chain/internal/storage"
	"github.com/Pyoyeongjong/pint-chain/pkg/block"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

// Provider opens views onto a store.
type Provider struct {
	store storage.Store
}

// New returns a Provider over store.
func New(store storage.Store) *Provider {
	return &Provider{store: store}
}

// Latest returns a View pinned to the current latest height.
func (p *Provider) Latest() (*View, error) {
	height, err := p.store.LatestBlockNumber()
	if err != nil {
		return nil, err
	}
	return &View{store: p.store, height: height}, nil
}

// LatestHeader returns the header of the chain's current tip.
func (p *Provider) LatestHeader() (*block.Header, error) {
	return p.store.GetLatestBlockHeader()
}

// View is a read handle pinned to a single height.
type View struct {
	store  storage.Store
	height uint64
}

// Height returns the height this view is pinned to.
func (v *View) Height() uint64 {
	return v.height
}

// BasicAccount returns the account at addr as of the latest committed
// height (the database only ever answers point lookups at its own latest).
func (v *View) BasicAccount(addr types.Address) (*types.Account, error) {
	return v.store.Basic(addr)
}

// ExecutableState loads the full account map and world at this view's
// height as an Executor-initializable snapshot.
func (v *View) ExecutableState() (*executor.State, error) {
	accounts, world, err := v.store.GetState(v.height)
	if err != nil {
		return nil, err
	}
	return &executor.State{Accounts: accounts, World: world}, nil
}
