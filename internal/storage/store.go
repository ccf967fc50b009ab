// Package storage implements the database abstraction: an immutable
// per-height snapshot of accounts and blocks, plus an append-only commit
// path. Two implementations are provided — MemoryStore and BadgerStore —
// and both must expose identical semantics.
package storage

import (
	"errors"

	"github.com/Pyoyeongjong/pint-chain/internal/executor"
	"github.com/Pyoyeongjong/pint-chain/pkg/block"
	"github.com/Pyoyeongjong/pint-chain/pkg/tx"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

var (
	ErrNotFound      = errors.New("storage: not found")
	ErrNotLatest     = errors.New("storage: height is not the latest")
	ErrEmptyChain    = errors.New("storage: chain is empty")
	ErrHeightGap     = errors.New("storage: update must append at latest+1")
)

// Store is the database abstraction every component (provider, consensus,
// rpc) depends on. Implementations must guarantee that heights form a
// contiguous range [0, latest] and that readers never observe a partial
// Update.
type Store interface {
	// LatestBlockNumber returns the height of the most recently committed
	// block, or ErrEmptyChain if nothing has been committed yet.
	LatestBlockNumber() (uint64, error)

	// Basic returns the account at addr as of the latest committed height.
	Basic(addr types.Address) (*types.Account, error)

	// GetState returns the full account map and world at height.
	GetState(height uint64) (map[types.Address]*types.Account, *executor.World, error)

	GetBlock(height uint64) (*block.Block, error)
	GetHeader(height uint64) (*block.Header, error)
	GetBlockByHash(hash types.Hash) (*block.Block, error)
	GetLatestBlockHeader() (*block.Header, error)

	// GetTransactionByHash returns the signed transaction and the height of
	// the block that included it.
	GetTransactionByHash(hash types.Hash) (*tx.SignedTransaction, uint64, error)

	// Update atomically appends newBlock, newAccounts and newWorld at
	// latest+1 (or at height 0 for the first call).
	Update(newAccounts map[types.Address]*types.Account, newWorld *executor.World, newBlock *block.Block) error

	// RemoveData truncates the single block at height, which must equal
	// the current latest height.
	RemoveData(height uint64) error

	// RemoveDatas repeatedly truncates from the tail down to from+1.
	RemoveDatas(from uint64) error

	Close() error
}
