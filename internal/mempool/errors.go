package mempool

import "errors"

var (
	// ErrAlreadyImported is returned when a transaction with the same hash
	// is already present in the pool.
	ErrAlreadyImported = errors.New("mempool: transaction already imported")

	// ErrReplacementUnderpriced is returned when a transaction at an
	// already-occupied (sender, nonce) slot does not strictly beat the
	// existing entry's fee.
	ErrReplacementUnderpriced = errors.New("mempool: replacement transaction underpriced")
)
