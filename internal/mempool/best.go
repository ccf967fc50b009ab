package mempool

import (
	"sort"

	"github.com/Pyoyeongjong/pint-chain/pkg/tx"
)

// BestIterator walks the pending subpool ordered by (fee desc, submission
// id asc). It is a snapshot: draining it never mutates the pool.
type BestIterator struct {
	items []*entry
	idx   int
}

// Next returns the next-best pending transaction, or nil once exhausted.
func (it *BestIterator) Next() *tx.Recovered {
	if it.idx >= len(it.items) {
		return nil
	}
	e := it.items[it.idx]
	it.idx++
	return e.recovered
}

// BestTransactions returns an iterator over the pending subpool, ordered
// by fee descending and, for ties, submission order ascending.
func (p *Pool) BestTransactions() *BestIterator {
	p.mu.RLock()
	defer p.mu.RUnlock()

	items := make([]*entry, 0, len(p.pending))
	for _, e := range p.pending {
		items = append(items, e)
	}
	sort.Slice(items, func(i, j int) bool {
		if cmp := items[i].recovered.Signed.Tx.Fee.Cmp(items[j].recovered.Signed.Tx.Fee); cmp != 0 {
			return cmp > 0
		}
		return items[i].submissionID < items[j].submissionID
	})
	return &BestIterator{items: items}
}
