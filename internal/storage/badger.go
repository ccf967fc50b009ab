package storage

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/Pyoyeongjong/pint-chain/internal/executor"
	"github.com/Pyoyeongjong/pint-chain/pkg/block"
	"github.com/Pyoyeongjong/pint-chain/pkg/tx"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

// BadgerStore implements Store on top of badger.DB, using the five-table
// key schema from keys.go. Every Update/RemoveData runs inside a single
// badger transaction so readers never observe a partial commit.
type BadgerStore struct {
	db *badger.DB
}

// NewBadger opens (or creates) a Badger database at path.
func NewBadger(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "Cannot acquire directory lock") ||
			strings.Contains(msg, "resource temporarily unavailable") {
			return nil, fmt.Errorf("database at %s is locked by another process (is another pintnode instance running?): %w", path, err)
		}
		return nil, fmt.Errorf("open database at %s: %w", path, err)
	}
	return &BadgerStore{db: db}, nil
}

func (b *BadgerStore) LatestBlockNumber() (uint64, error) {
	var height uint64
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyLatest))
		if err == badger.ErrKeyNotFound {
			return ErrEmptyChain
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			height = binary.BigEndian.Uint64(val)
			return nil
		})
	})
	return height, err
}

func (b *BadgerStore) Basic(addr types.Address) (*types.Account, error) {
	latest, err := b.LatestBlockNumber()
	if err != nil {
		return nil, err
	}
	var acct *types.Account
	err = b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(accountKey(latest, addr))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			acct, err = decodeAccount(val)
			return err
		})
	})
	return acct, err
}

func (b *BadgerStore) GetState(height uint64) (map[types.Address]*types.Account, *executor.World, error) {
	var accounts map[types.Address]*types.Account
	var world *executor.World
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(stateKey(height))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			accounts, world, err = decodeState(val)
			return err
		})
	})
	return accounts, world, err
}

func (b *BadgerStore) GetBlock(height uint64) (*block.Block, error) {
	var blk *block.Block
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blockKey(height))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			blk, err = block.DecodeBlock(val)
			return err
		})
	})
	return blk, err
}

func (b *BadgerStore) GetHeader(height uint64) (*block.Header, error) {
	blk, err := b.GetBlock(height)
	if err != nil {
		return nil, err
	}
	return blk.Header, nil
}

func (b *BadgerStore) GetBlockByHash(hash types.Hash) (*block.Block, error) {
	var height uint64
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(hashKey(hash))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			height = binary.BigEndian.Uint64(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return b.GetBlock(height)
}

func (b *BadgerStore) GetLatestBlockHeader() (*block.Header, error) {
	latest, err := b.LatestBlockNumber()
	if err != nil {
		return nil, err
	}
	return b.GetHeader(latest)
}

func (b *BadgerStore) GetTransactionByHash(hash types.Hash) (*tx.SignedTransaction, uint64, error) {
	var signed *tx.SignedTransaction
	var height uint64
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(txKey(hash))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) < tx.SignedTransactionSize+8 {
				return fmt.Errorf("storage: tx record too short")
			}
			signed, err = tx.DecodeSignedTransaction(val[:tx.SignedTransactionSize])
			if err != nil {
				return err
			}
			height = binary.BigEndian.Uint64(val[tx.SignedTransactionSize:])
			return nil
		})
	})
	return signed, height, err
}

func (b *BadgerStore) Update(newAccounts map[types.Address]*types.Account, newWorld *executor.World, newBlock *block.Block) error {
	return b.db.Update(func(txn *badger.Txn) error {
		height := newBlock.Header.Height
		wantHeight := uint64(0)
		item, err := txn.Get([]byte(keyLatest))
		switch err {
		case nil:
			var cur uint64
			if verr := item.Value(func(val []byte) error {
				cur = binary.BigEndian.Uint64(val)
				return nil
			}); verr != nil {
				return verr
			}
			wantHeight = cur + 1
		case badger.ErrKeyNotFound:
			// empty chain, wantHeight stays 0
		default:
			return err
		}
		if height != wantHeight {
			return ErrHeightGap
		}

		if err := txn.Set(blockKey(height), newBlock.Encode()); err != nil {
			return err
		}
		if err := txn.Set(stateKey(height), encodeState(newAccounts, newWorld)); err != nil {
			return err
		}
		if err := txn.Set(hashKey(newBlock.Header.Hash()), encodeHeightValue(height)); err != nil {
			return err
		}
		for addr, acct := range newAccounts {
			if err := txn.Set(accountKey(height, addr), encodeAccount(acct)); err != nil {
				return err
			}
		}
		for _, signed := range newBlock.Body {
			val := append(append([]byte{}, signed.Encode()...), encodeHeightValue(height)...)
			if err := txn.Set(txKey(signed.Hash), val); err != nil {
				return err
			}
		}
		return txn.Set([]byte(keyLatest), encodeHeightValue(height))
	})
}

func (b *BadgerStore) RemoveData(height uint64) error {
	latest, err := b.LatestBlockNumber()
	if err != nil {
		return err
	}
	if height != latest {
		return ErrNotLatest
	}
	return b.removeOne(height)
}

func (b *BadgerStore) RemoveDatas(from uint64) error {
	latest, err := b.LatestBlockNumber()
	if err != nil {
		return err
	}
	for latest > from {
		if err := b.removeOne(latest); err != nil {
			return err
		}
		latest--
	}
	return nil
}

func (b *BadgerStore) removeOne(height uint64) error {
	return b.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(blockKey(height))
		if err != nil {
			return err
		}
		var blk *block.Block
		if err := item.Value(func(val []byte) error {
			blk, err = block.DecodeBlock(val)
			return err
		}); err != nil {
			return err
		}

		if err := txn.Delete(blockKey(height)); err != nil {
			return err
		}
		if err := txn.Delete(stateKey(height)); err != nil {
			return err
		}
		if err := txn.Delete(hashKey(blk.Header.Hash())); err != nil {
			return err
		}
		for _, signed := range blk.Body {
			if err := txn.Delete(txKey(signed.Hash)); err != nil {
				return err
			}
		}

		opts := badger.DefaultIteratorOptions
		prefix := accountPrefix(height)
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}

		if height == 0 {
			return txn.Delete([]byte(keyLatest))
		}
		return txn.Set([]byte(keyLatest), encodeHeightValue(height-1))
	})
}

func (b *BadgerStore) Close() error {
	return b.db.Close()
}

func encodeHeightValue(height uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, height)
	return buf
}
