package provider

import (
	"math/big"
	"testing"

	"github.com/Pyoyeongjong/pint-chain/internal/executor"
	"github.com/Pyoyeongjong/pint-chain/internal/storage"
	"github.com/Pyoyeongjong/pint-chain/pkg/block"
	"github.com/Pyoyeongjong/pint-chain/pkg/crypto"
	"github.com/Pyoyeongjong/pint-chain/pkg/tx"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

func mustSign(t *testing.T, pk *crypto.PrivateKey, nonce uint64, to types.Address, fee, value int64) *tx.SignedTransaction {
	t.Helper()
	transaction := &tx.Transaction{ChainID: 1, Nonce: nonce, To: to, Fee: big.NewInt(fee), Value: big.NewInt(value)}
	signed, err := tx.Sign(transaction, pk)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func TestFactory_ImportNewBlock(t *testing.T) {
	store := storage.NewMemory()
	defer store.Close()

	pk, _ := crypto.GenerateKey()
	sender := pk.Address()
	var proposer types.Address
	proposer[0] = 0xCC

	genesisAccounts := map[types.Address]*types.Account{
		sender: {Nonce: 0, Balance: big.NewInt(10_000)},
	}
	genesis := &block.Block{Header: block.GenesisHeader(), Body: nil}
	if err := store.Update(genesisAccounts, executor.NewWorld(), genesis); err != nil {
		t.Fatalf("seed genesis: %v", err)
	}

	signed := mustSign(t, pk, 0, types.Address{0x01}, 5, 100)
	header := &block.Header{
		PreviousHash: genesis.Header.Hash(),
		TxRoot:       block.CalculateTxRoot([]types.Hash{signed.Hash}),
		StateRoot:    types.Hash{},
		Timestamp:    genesis.Header.Timestamp + 5,
		Proposer:     proposer,
		Nonce:        1,
		Difficulty:   20,
		Height:       1,
		TotalFee:     big.NewInt(5),
	}
	blk := &block.Block{Header: header, Body: []*tx.SignedTransaction{signed}}

	factory := NewFactory(store)
	if err := factory.ImportNewBlock(blk); err != nil {
		t.Fatalf("import: %v", err)
	}

	p := New(store)
	view, err := p.Latest()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if view.Height() != 1 {
		t.Fatalf("height = %d, want 1", view.Height())
	}

	senderAcct, err := view.BasicAccount(sender)
	if err != nil {
		t.Fatalf("basic: %v", err)
	}
	if senderAcct.Balance.Cmp(big.NewInt(10_000-105)) != 0 {
		t.Errorf("sender balance = %s, want %d", senderAcct.Balance, 10_000-105)
	}
}

func TestFactory_ImportNewBlock_TotalFeeMismatchWrapsExecutionError(t *testing.T) {
	store := storage.NewMemory()
	defer store.Close()

	pk, _ := crypto.GenerateKey()
	sender := pk.Address()
	genesisAccounts := map[types.Address]*types.Account{
		sender: {Nonce: 0, Balance: big.NewInt(10_000)},
	}
	genesis := &block.Block{Header: block.GenesisHeader()}
	if err := store.Update(genesisAccounts, executor.NewWorld(), genesis); err != nil {
		t.Fatalf("seed genesis: %v", err)
	}

	signed := mustSign(t, pk, 0, types.Address{0x01}, 5, 100)
	header := &block.Header{
		PreviousHash: genesis.Header.Hash(),
		Height:       1,
		Timestamp:    genesis.Header.Timestamp + 1,
		TotalFee:     big.NewInt(999),
	}
	blk := &block.Block{Header: header, Body: []*tx.SignedTransaction{signed}}

	factory := NewFactory(store)
	err := factory.ImportNewBlock(blk)
	if _, ok := err.(*ExecutionError); !ok {
		t.Fatalf("err = %v (%T), want *ExecutionError", err, err)
	}
}

func TestFactory_ImportNewBlock_ClassifiesRejections(t *testing.T) {
	store := storage.NewMemory()
	defer store.Close()

	genesis := &block.Block{Header: block.GenesisHeader()}
	if err := store.Update(map[types.Address]*types.Account{}, executor.NewWorld(), genesis); err != nil {
		t.Fatalf("seed genesis: %v", err)
	}
	factory := NewFactory(store)

	tooFar := &block.Block{Header: &block.Header{PreviousHash: genesis.Header.Hash(), Height: 2, TotalFee: big.NewInt(0)}}
	if err := factory.ImportNewBlock(tooFar); err != ErrBlockHeight {
		t.Fatalf("err = %v, want ErrBlockHeight", err)
	}

	stale := &block.Block{Header: &block.Header{PreviousHash: genesis.Header.Hash(), Height: 0, TotalFee: big.NewInt(0)}}
	if err := factory.ImportNewBlock(stale); err != ErrAlreadyImported {
		t.Fatalf("err = %v, want ErrAlreadyImported", err)
	}

	forked := &block.Block{Header: &block.Header{PreviousHash: types.Hash{0xDE, 0xAD}, Height: 1, TotalFee: big.NewInt(0)}}
	if err := factory.ImportNewBlock(forked); err != ErrNotChained {
		t.Fatalf("err = %v, want ErrNotChained", err)
	}
}

func TestFactory_GetNextDifficulty(t *testing.T) {
	store := storage.NewMemory()
	defer store.Close()

	genesis := &block.Block{Header: block.GenesisHeader()}
	if err := store.Update(map[types.Address]*types.Account{}, executor.NewWorld(), genesis); err != nil {
		t.Fatalf("seed genesis: %v", err)
	}

	factory := NewFactory(store)
	diff, err := factory.GetNextDifficulty()
	if err != nil {
		t.Fatalf("difficulty at genesis: %v", err)
	}
	if diff != genesis.Header.Difficulty {
		t.Errorf("genesis difficulty = %d, want %d", diff, genesis.Header.Difficulty)
	}

	block1 := &block.Block{Header: &block.Header{
		PreviousHash: genesis.Header.Hash(),
		Height:       1,
		Timestamp:    genesis.Header.Timestamp + 5,
		Difficulty:   genesis.Header.Difficulty,
		TotalFee:     big.NewInt(0),
	}}
	if err := store.Update(map[types.Address]*types.Account{}, executor.NewWorld(), block1); err != nil {
		t.Fatalf("seed block1: %v", err)
	}
	diff, err = factory.GetNextDifficulty()
	if err != nil {
		t.Fatalf("difficulty after fast block: %v", err)
	}
	if diff != block1.Header.Difficulty+1 {
		t.Errorf("fast-block difficulty = %d, want %d", diff, block1.Header.Difficulty+1)
	}
}
