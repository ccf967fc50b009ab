// Package mempool holds validated, not-yet-included transactions in two
// subpools — pending (immediately eligible) and parked (blocked on
// balance or a nonce gap) — indexed by (sender, nonce) and by hash.
package mempool

import (
	"math/big"
	"sync"

	"github.com/Pyoyeongjong/pint-chain/internal/storage"
	"github.com/Pyoyeongjong/pint-chain/pkg/tx"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

// SubPool identifies which of the two subpools a transaction belongs to.
type SubPool int

const (
	Pending SubPool = iota
	Parked
)

// AccountLookup is the on-chain view the pool consults for per-sender
// (nonce, balance). provider.View satisfies this structurally.
type AccountLookup interface {
	BasicAccount(addr types.Address) (*types.Account, error)
}

type onChainInfo struct {
	nonce   uint64
	balance *big.Int
}

type entry struct {
	recovered    *tx.Recovered
	submissionID uint64
	subpool      SubPool
}

// classify applies the pool's eligibility rule: pending iff the sender can
// afford fee+value and the nonce has no gap, else parked.
func classify(fee, value *big.Int, nonce uint64, onChain onChainInfo) SubPool {
	cost := new(big.Int).Add(fee, value)
	hasBalance := cost.Cmp(onChain.balance) <= 0
	hasAncestor := nonce > onChain.nonce
	if hasBalance && !hasAncestor {
		return Pending
	}
	return Parked
}

// Pool holds every validated transaction awaiting inclusion, guarded by a
// single reader-writer lock.
type Pool struct {
	mu sync.RWMutex

	byID   map[tx.ID]*entry
	byHash map[types.Hash]*entry

	pending map[tx.ID]*entry
	parked  map[tx.ID]*entry

	nextSubmissionID uint64

	lookup AccountLookup
}

// New returns an empty pool that consults lookup for on-chain account state.
func New(lookup AccountLookup) *Pool {
	return &Pool{
		byID:    make(map[tx.ID]*entry),
		byHash:  make(map[types.Hash]*entry),
		pending: make(map[tx.ID]*entry),
		parked:  make(map[tx.ID]*entry),
		lookup:  lookup,
	}
}

func (p *Pool) onChainInfoFor(sender types.Address) (onChainInfo, error) {
	acct, err := p.lookup.BasicAccount(sender)
	if err == storage.ErrNotFound || err == storage.ErrEmptyChain {
		return onChainInfo{nonce: 0, balance: big.NewInt(0)}, nil
	}
	if err != nil {
		return onChainInfo{}, err
	}
	return onChainInfo{nonce: acct.Nonce, balance: acct.Balance}, nil
}

// Add validates and inserts a recovered transaction. Fee <= 0 or a nonce
// below the on-chain nonce are assertion failures the validator is
// expected to have already caught — the pool panics rather than silently
// accept an invariant violation.
func (p *Pool) Add(r *tx.Recovered) error {
	sender := r.Signer
	fee := r.Signed.Tx.Fee

	info, err := p.onChainInfoFor(sender)
	if err != nil {
		return err
	}

	if fee.Sign() <= 0 {
		panic("mempool: transaction fee must be > 0")
	}
	if r.Signed.Tx.Nonce < info.nonce {
		panic("mempool: transaction nonce below on-chain nonce")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.byHash[r.Signed.Hash]; exists {
		return ErrAlreadyImported
	}

	id := r.ID()
	if existing, ok := p.byID[id]; ok {
		if fee.Cmp(existing.recovered.Signed.Tx.Fee) <= 0 {
			return ErrReplacementUnderpriced
		}
		p.removeFromSubpoolLocked(id, existing.subpool)
		delete(p.byHash, existing.recovered.Signed.Hash)
	}

	sub := classify(fee, r.Signed.Tx.Value, r.Signed.Tx.Nonce, info)
	e := &entry{recovered: r, submissionID: p.nextSubmissionID, subpool: sub}
	p.nextSubmissionID++

	p.byID[id] = e
	p.byHash[r.Signed.Hash] = e
	p.addToSubpoolLocked(e)
	return nil
}

func (p *Pool) addToSubpoolLocked(e *entry) {
	id := e.recovered.ID()
	switch e.subpool {
	case Pending:
		p.pending[id] = e
	case Parked:
		p.parked[id] = e
	}
}

func (p *Pool) removeFromSubpoolLocked(id tx.ID, sub SubPool) {
	switch sub {
	case Pending:
		delete(p.pending, id)
	case Parked:
		delete(p.parked, id)
	}
}

// Has reports whether a transaction with the given hash is in the pool.
func (p *Pool) Has(hash types.Hash) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.byHash[hash]
	return ok
}

// Count returns the total number of pooled transactions across both subpools.
func (p *Pool) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byID)
}

// PendingCount and ParkedCount report the size of each subpool.
func (p *Pool) PendingCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.pending)
}

func (p *Pool) ParkedCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.parked)
}

// Prune removes every transaction in hashes (typically a committed
// block's bodies) from both the by-hash index and its subpool.
func (p *Pool) Prune(hashes []types.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, h := range hashes {
		e, ok := p.byHash[h]
		if !ok {
			continue
		}
		id := e.recovered.ID()
		delete(p.byHash, h)
		delete(p.byID, id)
		p.removeFromSubpoolLocked(id, e.subpool)
	}
}

// Reorganize revalidates every parked transaction against the latest
// on-chain state: transactions whose nonce has been superseded are
// dropped, the rest are reclassified (and may be promoted to pending).
func (p *Pool) Reorganize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, e := range p.parked {
		info, err := p.onChainInfoFor(e.recovered.Signer)
		if err != nil {
			return err
		}
		if e.recovered.Signed.Tx.Nonce < info.nonce {
			delete(p.parked, id)
			delete(p.byID, id)
			delete(p.byHash, e.recovered.Signed.Hash)
			continue
		}

		newSub := classify(e.recovered.Signed.Tx.Fee, e.recovered.Signed.Tx.Value, e.recovered.Signed.Tx.Nonce, info)
		if newSub != e.subpool {
			delete(p.parked, id)
			e.subpool = newSub
			p.addToSubpoolLocked(e)
		}
	}
	return nil
}
