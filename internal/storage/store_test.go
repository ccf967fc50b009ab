package storage

import (
	"math/big"
	"testing"

	"github.com/Pyoyeongjong/pint-chain/internal/executor"
	"github.com/Pyoyeongjong/pint-chain/pkg/block"
	"github.com/Pyoyeongjong/pint-chain/pkg/crypto"
	"github.com/Pyoyeongjong/pint-chain/pkg/tx"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

func buildBlock(t *testing.T, height uint64, prev types.Hash, proposer types.Address) *block.Block {
	t.Helper()
	pk, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	transaction := &tx.Transaction{ChainID: 1, Nonce: 0, To: types.Address{0x09}, Fee: big.NewInt(3), Value: big.NewInt(10)}
	signed, err := tx.Sign(transaction, pk)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	header := &block.Header{
		PreviousHash: prev,
		TxRoot:       block.CalculateTxRoot([]types.Hash{signed.Hash}),
		StateRoot:    types.Hash{},
		Timestamp:    1000 + height,
		Proposer:     proposer,
		Nonce:        height,
		Difficulty:   20,
		Height:       height,
		TotalFee:     big.NewInt(3),
	}
	return &block.Block{Header: header, Body: []*tx.SignedTransaction{signed}}
}

// runStoreTests exercises the common Store contract against any
// implementation, so MemoryStore and BadgerStore are held to identical
// semantics.
func runStoreTests(t *testing.T, newStore func() Store) {
	t.Run("EmptyChain", func(t *testing.T) {
		s := newStore()
		defer s.Close()
		if _, err := s.LatestBlockNumber(); err != ErrEmptyChain {
			t.Errorf("LatestBlockNumber on empty = %v, want ErrEmptyChain", err)
		}
	})

	t.Run("UpdateAndRead", func(t *testing.T) {
		s := newStore()
		defer s.Close()

		var proposer types.Address
		proposer[0] = 0xAA
		blk0 := buildBlock(t, 0, types.Hash{}, proposer)

		accounts := map[types.Address]*types.Account{
			proposer: {Nonce: 0, Balance: big.NewInt(3)},
		}
		world := executor.NewWorld()

		if err := s.Update(accounts, world, blk0); err != nil {
			t.Fatalf("update: %v", err)
		}

		latest, err := s.LatestBlockNumber()
		if err != nil || latest != 0 {
			t.Fatalf("latest = %d, %v, want 0, nil", latest, err)
		}

		acct, err := s.Basic(proposer)
		if err != nil {
			t.Fatalf("basic: %v", err)
		}
		if acct.Balance.Cmp(big.NewInt(3)) != 0 {
			t.Errorf("balance = %s, want 3", acct.Balance)
		}

		gotBlk, err := s.GetBlock(0)
		if err != nil {
			t.Fatalf("get block: %v", err)
		}
		if gotBlk.Header.Hash() != blk0.Header.Hash() {
			t.Error("block hash mismatch after store round-trip")
		}

		byHash, err := s.GetBlockByHash(blk0.Header.Hash())
		if err != nil {
			t.Fatalf("get block by hash: %v", err)
		}
		if byHash.Header.Height != 0 {
			t.Errorf("get block by hash height = %d, want 0", byHash.Header.Height)
		}

		signed, height, err := s.GetTransactionByHash(blk0.Body[0].Hash)
		if err != nil {
			t.Fatalf("get tx by hash: %v", err)
		}
		if height != 0 || signed.Hash != blk0.Body[0].Hash {
			t.Errorf("tx lookup mismatch")
		}

		gotAccounts, _, err := s.GetState(0)
		if err != nil {
			t.Fatalf("get state: %v", err)
		}
		if gotAccounts[proposer].Balance.Cmp(big.NewInt(3)) != 0 {
			t.Errorf("state balance = %s, want 3", gotAccounts[proposer].Balance)
		}

		header, err := s.GetLatestBlockHeader()
		if err != nil || header.Height != 0 {
			t.Fatalf("latest header = %+v, %v", header, err)
		}
	})

	t.Run("RejectsHeightGap", func(t *testing.T) {
		s := newStore()
		defer s.Close()
		var proposer types.Address
		blk1 := buildBlock(t, 1, types.Hash{}, proposer)
		if err := s.Update(map[types.Address]*types.Account{}, executor.NewWorld(), blk1); err != ErrHeightGap {
			t.Errorf("update at height 1 on empty chain = %v, want ErrHeightGap", err)
		}
	})

	t.Run("RemoveDataOnlyAtLatest", func(t *testing.T) {
		s := newStore()
		defer s.Close()
		var proposer types.Address
		blk0 := buildBlock(t, 0, types.Hash{}, proposer)
		blk1 := buildBlock(t, 1, blk0.Header.Hash(), proposer)

		if err := s.Update(map[types.Address]*types.Account{}, executor.NewWorld(), blk0); err != nil {
			t.Fatalf("update 0: %v", err)
		}
		if err := s.Update(map[types.Address]*types.Account{}, executor.NewWorld(), blk1); err != nil {
			t.Fatalf("update 1: %v", err)
		}

		if err := s.RemoveData(0); err != ErrNotLatest {
			t.Errorf("remove non-latest = %v, want ErrNotLatest", err)
		}
		if err := s.RemoveData(1); err != nil {
			t.Fatalf("remove latest: %v", err)
		}
		latest, err := s.LatestBlockNumber()
		if err != nil || latest != 0 {
			t.Fatalf("latest after remove = %d, %v, want 0, nil", latest, err)
		}
		if _, err := s.GetBlock(1); err != ErrNotFound {
			t.Errorf("get removed block = %v, want ErrNotFound", err)
		}
	})

	t.Run("RemoveDatasTruncatesTail", func(t *testing.T) {
		s := newStore()
		defer s.Close()
		var proposer types.Address
		prev := types.Hash{}
		for h := uint64(0); h < 4; h++ {
			blk := buildBlock(t, h, prev, proposer)
			if err := s.Update(map[types.Address]*types.Account{}, executor.NewWorld(), blk); err != nil {
				t.Fatalf("update %d: %v", h, err)
			}
			prev = blk.Header.Hash()
		}
		if err := s.RemoveDatas(1); err != nil {
			t.Fatalf("remove datas: %v", err)
		}
		latest, err := s.LatestBlockNumber()
		if err != nil || latest != 1 {
			t.Fatalf("latest after truncation = %d, %v, want 1, nil", latest, err)
		}
		if _, err := s.GetBlock(2); err != ErrNotFound {
			t.Errorf("height 2 should be gone, got %v", err)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, func() Store { return NewMemory() })
}

func TestBadgerStore(t *testing.T) {
	runStoreTests(t, func() Store {
		dir := t.TempDir()
		s, err := NewBadger(dir)
		if err != nil {
			t.Fatalf("new badger: %v", err)
		}
		return s
	})
}
