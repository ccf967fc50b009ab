package executor

import (
	"errors"
	"fmt"
)

// Execution errors, surfaced in Receipt.Error and propagated to the
// block-level ExecutionError.
var (
	ErrSenderHasNoAccount    = errors.New("sender has no account")
	ErrInsufficientBalance   = errors.New("sender has insufficient balance")
	ErrTotalFeeMismatch      = errors.New("block total_fee does not match executed fees")
	ErrSignatureNotRecovered = errors.New("could not recover transaction signer")
)

// NonceError reports a nonce mismatch between the transaction and the
// sender's on-chain account.
type NonceError struct {
	Expected uint64
	Got      uint64
}

func (e *NonceError) Error() string {
	return fmt.Sprintf("nonce error: expected %d, got %d", e.Expected, e.Got)
}
