package storage

import (
	"sync"

	"github.com/Pyoyeongjong/pint-chain/internal/executor"
	"github.com/Pyoyeongjong/pint-chain/pkg/block"
	"github.com/Pyoyeongjong/pint-chain/pkg/tx"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

type txLocation struct {
	signed *tx.SignedTransaction
	height uint64
}

// MemoryStore implements Store over per-height maps guarded by a
// single reader-writer lock: many concurrent readers, exclusive writer
// only during Update/RemoveData. The consensus engine, RPC server, and
// P2P dispatch loop all read concurrently from separate goroutines, so
// this needs real concurrency safety rather than single-goroutine-only
// access.
type MemoryStore struct {
	mu sync.RWMutex

	latest int64 // -1 means empty chain

	blocks    map[uint64]*block.Block
	accounts  map[uint64]map[types.Address]*types.Account
	worlds    map[uint64]*executor.World
	hashIndex map[types.Hash]uint64
	txIndex   map[types.Hash]txLocation
}

// NewMemory returns an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		latest:    -1,
		blocks:    make(map[uint64]*block.Block),
		accounts:  make(map[uint64]map[types.Address]*types.Account),
		worlds:    make(map[uint64]*executor.World),
		hashIndex: make(map[types.Hash]uint64),
		txIndex:   make(map[types.Hash]txLocation),
	}
}

func (m *MemoryStore) LatestBlockNumber() (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.latest < 0 {
		return 0, ErrEmptyChain
	}
	return uint64(m.latest), nil
}

func (m *MemoryStore) Basic(addr types.Address) (*types.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.latest < 0 {
		return nil, ErrEmptyChain
	}
	acct, ok := m.accounts[uint64(m.latest)][addr]
	if !ok {
		return nil, ErrNotFound
	}
	return acct.Clone(), nil
}

func (m *MemoryStore) GetState(height uint64) (map[types.Address]*types.Account, *executor.World, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	accts, ok := m.accounts[height]
	if !ok {
		return nil, nil, ErrNotFound
	}
	out := make(map[types.Address]*types.Account, len(accts))
	for addr, acct := range accts {
		out[addr] = acct.Clone()
	}
	return out, m.worlds[height].Clone(), nil
}

func (m *MemoryStore) GetBlock(height uint64) (*block.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blk, ok := m.blocks[height]
	if !ok {
		return nil, ErrNotFound
	}
	return blk, nil
}

func (m *MemoryStore) GetHeader(height uint64) (*block.Header, error) {
	blk, err := m.GetBlock(height)
	if err != nil {
		return nil, err
	}
	return blk.Header, nil
}

func (m *MemoryStore) GetBlockByHash(hash types.Hash) (*block.Block, error) {
	m.mu.RLock()
	height, ok := m.hashIndex[hash]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return m.GetBlock(height)
}

func (m *MemoryStore) GetLatestBlockHeader() (*block.Header, error) {
	m.mu.RLock()
	latest := m.latest
	m.mu.RUnlock()
	if latest < 0 {
		return nil, ErrEmptyChain
	}
	return m.GetHeader(uint64(latest))
}

func (m *MemoryStore) GetTransactionByHash(hash types.Hash) (*tx.SignedTransaction, uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	loc, ok := m.txIndex[hash]
	if !ok {
		return nil, 0, ErrNotFound
	}
	return loc.signed, loc.height, nil
}

func (m *MemoryStore) Update(newAccounts map[types.Address]*types.Account, newWorld *executor.World, newBlock *block.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	height := newBlock.Header.Height
	wantHeight := uint64(0)
	if m.latest >= 0 {
		wantHeight = uint64(m.latest) + 1
	}
	if height != wantHeight {
		return ErrHeightGap
	}

	accts := make(map[types.Address]*types.Account, len(newAccounts))
	for addr, acct := range newAccounts {
		accts[addr] = acct.Clone()
	}

	m.blocks[height] = newBlock
	m.accounts[height] = accts
	m.worlds[height] = newWorld.Clone()
	m.hashIndex[newBlock.Header.Hash()] = height
	for _, signed := range newBlock.Body {
		m.txIndex[signed.Hash] = txLocation{signed: signed, height: height}
	}
	m.latest = int64(height)
	return nil
}

func (m *MemoryStore) RemoveData(height uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latest < 0 || height != uint64(m.latest) {
		return ErrNotLatest
	}
	m.removeLocked(height)
	return nil
}

func (m *MemoryStore) RemoveDatas(from uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latest < 0 {
		return ErrEmptyChain
	}
	for uint64(m.latest) > from {
		m.removeLocked(uint64(m.latest))
	}
	return nil
}

// removeLocked deletes the block at height, which must be the current
// latest. Callers must hold m.mu for writing.
func (m *MemoryStore) removeLocked(height uint64) {
	blk := m.blocks[height]
	if blk != nil {
		delete(m.hashIndex, blk.Header.Hash())
		for _, signed := range blk.Body {
			delete(m.txIndex, signed.Hash)
		}
	}
	delete(m.blocks, height)
	delete(m.accounts, height)
	delete(m.worlds, height)
	if height == 0 {
		m.latest = -1
	} else {
		m.latest = int64(height) - 1
	}
}

func (m *MemoryStore) Close() error {
	return nil
}
