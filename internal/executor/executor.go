package executor

import (
	"fmt"
	"math/big"

	"github.com/Pyoyeongjong/pint-chain/pkg/block"
	"github.com/Pyoyeongjong/pint-chain/pkg/tx"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

// Receipt records the outcome of executing one transaction.
type Receipt struct {
	TxHash  types.Hash
	Fee     *big.Int
	Success bool
	Error   error
}

// Executor applies transactions against a speculative copy of account
// state. base is shared by reference and never mutated; write is a
// copy-on-create clone that absorbs every change. Callers that want to
// commit the result hand write to the database as the new canonical
// snapshot.
type Executor struct {
	base  *State
	write *State
}

// New creates an Executor over base, cloning it into a writable copy.
func New(base *State) *Executor {
	return &Executor{base: base, write: base.Clone()}
}

// State returns the executor's writable state (for inspection or commit).
func (e *Executor) State() *State {
	return e.write
}

// ExecuteTransaction applies a single recovered transaction to the
// writable state, returning a Receipt describing the outcome. A failed
// transaction consumes no state: the write set is left exactly as it was
// before the call.
func (e *Executor) ExecuteTransaction(r *tx.Recovered) *Receipt {
	t := r.Signed.Tx
	receipt := &Receipt{TxHash: r.Signed.Hash, Fee: big.NewInt(0)}

	sender := e.write.Get(r.Signer)
	if sender == nil {
		receipt.Error = ErrSenderHasNoAccount
		return receipt
	}
	if t.Nonce != sender.Nonce {
		receipt.Error = &NonceError{Expected: sender.Nonce, Got: t.Nonce}
		return receipt
	}
	cost := new(big.Int).Add(t.Fee, t.Value)
	if cost.Cmp(sender.Balance) > 0 {
		receipt.Error = ErrInsufficientBalance
		return receipt
	}

	receiver := e.write.GetOrCreate(t.To)
	sender.Debit(cost)
	receiver.Credit(t.Value)
	sender.Nonce++

	receipt.Fee = new(big.Int).Set(t.Fee)
	receipt.Success = true
	return receipt
}

// ExecuteBlock applies every transaction in blk's body in order, skipping
// failed transactions, credits the block's proposer with the sum of
// successful fees, and requires that sum to equal the header's declared
// total_fee.
func (e *Executor) ExecuteBlock(blk *block.Block) ([]*Receipt, error) {
	receipts := make([]*Receipt, 0, len(blk.Body))
	feeSum := big.NewInt(0)

	for _, signed := range blk.Body {
		recovered, err := tx.Recover(signed)
		if err != nil {
			return receipts, fmt.Errorf("%w: %v", ErrSignatureNotRecovered, err)
		}
		receipt := e.ExecuteTransaction(recovered)
		receipts = append(receipts, receipt)
		if receipt.Success {
			feeSum = types.SaturatingAdd(feeSum, receipt.Fee, types.MaxUint256)
		}
	}

	proposer := e.write.GetOrCreate(blk.Header.Proposer)
	proposer.Credit(feeSum)

	if blk.Header.TotalFee.Cmp(feeSum) != 0 {
		return receipts, ErrTotalFeeMismatch
	}
	return receipts, nil
}

// CalculateStateRoot computes the state root of the executor's writable state.
func (e *Executor) CalculateStateRoot() types.Hash {
	return e.write.CalculateStateRoot()
}
