package provider

import (
	"github.com/Pyoyeongjong/pint-chain/internal/executor"
	"github.com/Pyoyeongjong/pint-chain/internal/storage"
	"github.com/Pyoyeongjong/pint-chain/pkg/block"
)

// Factory is the write path: difficulty selection and block import.
type Factory struct {
	store storage.Store
}

// NewFactory returns a Factory over store.
func NewFactory(store storage.Store) *Factory {
	return &Factory{store: store}
}

// GetNextDifficulty computes the difficulty the next block must satisfy,
// from the timestamp delta between the latest two headers. At genesis
// (only one header exists) the genesis header's own stored difficulty is
// returned.
func (f *Factory) GetNextDifficulty() (uint32, error) {
	latestHeight, err := f.store.LatestBlockNumber()
	if err != nil {
		return 0, err
	}
	latest, err := f.store.GetHeader(latestHeight)
	if err != nil {
		return 0, err
	}
	if latestHeight == 0 {
		return latest.Difficulty, nil
	}

	prev, err := f.store.GetHeader(latestHeight - 1)
	if err != nil {
		return 0, err
	}

	delta := latest.Timestamp - prev.Timestamp
	switch {
	case delta <= 10:
		return latest.Difficulty + 1, nil
	case delta <= 15:
		return latest.Difficulty, nil
	default:
		if latest.Difficulty == 0 {
			return 0, nil
		}
		return latest.Difficulty - 1, nil
	}
}

// ImportNewBlock classifies blk against the current tip (ErrBlockHeight,
// ErrNotChained, ErrAlreadyImported), then builds an executor from the
// latest state, executes blk against it, and commits the result. A
// failure during execution is wrapped as ExecutionError; a failure
// committing to the store is wrapped as DatabaseError.
func (f *Factory) ImportNewBlock(blk *block.Block) error {
	if err := f.classify(blk); err != nil {
		return err
	}

	base, err := f.baseState()
	if err != nil {
		return &DatabaseError{Err: err}
	}

	ex := executor.New(base)
	if _, err := ex.ExecuteBlock(blk); err != nil {
		return &ExecutionError{Err: err}
	}

	state := ex.State()
	if err := f.store.Update(state.Accounts, state.World, blk); err != nil {
		return &DatabaseError{Err: err}
	}
	return nil
}

// classify compares blk's declared height and previous-hash against our
// current tip, before any execution is attempted.
func (f *Factory) classify(blk *block.Block) error {
	latestHeight, err := f.store.LatestBlockNumber()
	if err == storage.ErrEmptyChain {
		if blk.Header.Height != 0 {
			return ErrBlockHeight
		}
		return nil
	}
	if err != nil {
		return &DatabaseError{Err: err}
	}

	expected := latestHeight + 1
	switch {
	case blk.Header.Height > expected:
		return ErrBlockHeight
	case blk.Header.Height <= latestHeight:
		return ErrAlreadyImported
	}

	tip, err := f.store.GetHeader(latestHeight)
	if err != nil {
		return &DatabaseError{Err: err}
	}
	if blk.Header.PreviousHash != tip.Hash() {
		return ErrNotChained
	}
	return nil
}

func (f *Factory) baseState() (*executor.State, error) {
	latestHeight, err := f.store.LatestBlockNumber()
	if err == storage.ErrEmptyChain {
		return executor.NewState(), nil
	}
	if err != nil {
		return nil, err
	}
	accounts, world, err := f.store.GetState(latestHeight)
	if err != nil {
		return nil, err
	}
	return &executor.State{Accounts: accounts, World: world}, nil
}
