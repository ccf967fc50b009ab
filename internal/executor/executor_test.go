package executor

import (
	"math/big"
	"testing"

	"github.com/Pyoyeongjong/pint-chain/pkg/block"
	"github.com/Pyoyeongjong/pint-chain/pkg/crypto"
	"github.com/Pyoyeongjong/pint-chain/pkg/tx"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

func newSignedTx(t *testing.T, pk *crypto.PrivateKey, chainID, nonce uint64, to types.Address, fee, value int64) *tx.SignedTransaction {
	t.Helper()
	transaction := &tx.Transaction{
		ChainID: chainID,
		Nonce:   nonce,
		To:      to,
		Fee:     big.NewInt(fee),
		Value:   big.NewInt(value),
	}
	signed, err := tx.Sign(transaction, pk)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func TestExecuteTransaction_Success(t *testing.T) {
	pk, _ := crypto.GenerateKey()
	sender := pk.Address()
	var receiver types.Address
	receiver[0] = 0xAB

	state := NewState()
	state.GetOrCreate(sender).Credit(big.NewInt(10_000))

	ex := New(state)
	signed := newSignedTx(t, pk, 1, 0, receiver, 5, 1000)
	recovered, err := tx.Recover(signed)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}

	receipt := ex.ExecuteTransaction(recovered)
	if !receipt.Success {
		t.Fatalf("expected success, got error %v", receipt.Error)
	}
	if receipt.Fee.Cmp(big.NewInt(5)) != 0 {
		t.Errorf("fee = %s, want 5", receipt.Fee)
	}

	senderAcct := ex.State().Get(sender)
	if senderAcct.Balance.Cmp(big.NewInt(10_000-1005)) != 0 {
		t.Errorf("sender balance = %s, want %d", senderAcct.Balance, 10_000-1005)
	}
	if senderAcct.Nonce != 1 {
		t.Errorf("sender nonce = %d, want 1", senderAcct.Nonce)
	}
	receiverAcct := ex.State().Get(receiver)
	if receiverAcct.Balance.Cmp(big.NewInt(1000)) != 0 {
		t.Errorf("receiver balance = %s, want 1000", receiverAcct.Balance)
	}
}

func TestExecuteTransaction_NoAccount(t *testing.T) {
	pk, _ := crypto.GenerateKey()
	state := NewState()
	ex := New(state)

	signed := newSignedTx(t, pk, 1, 0, types.Address{0x01}, 1, 1)
	recovered, _ := tx.Recover(signed)
	receipt := ex.ExecuteTransaction(recovered)
	if receipt.Success {
		t.Fatal("expected failure for missing sender account")
	}
	if receipt.Error != ErrSenderHasNoAccount {
		t.Errorf("error = %v, want ErrSenderHasNoAccount", receipt.Error)
	}
}

func TestExecuteTransaction_NonceMismatch(t *testing.T) {
	pk, _ := crypto.GenerateKey()
	sender := pk.Address()
	state := NewState()
	state.GetOrCreate(sender).Credit(big.NewInt(1000))
	ex := New(state)

	signed := newSignedTx(t, pk, 1, 5, types.Address{0x01}, 1, 1)
	recovered, _ := tx.Recover(signed)
	receipt := ex.ExecuteTransaction(recovered)
	if receipt.Success {
		t.Fatal("expected nonce failure")
	}
	nerr, ok := receipt.Error.(*NonceError)
	if !ok {
		t.Fatalf("error = %v, want *NonceError", receipt.Error)
	}
	if nerr.Expected != 0 || nerr.Got != 5 {
		t.Errorf("nonce error = %+v", nerr)
	}
}

func TestExecuteTransaction_InsufficientBalance(t *testing.T) {
	pk, _ := crypto.GenerateKey()
	sender := pk.Address()
	state := NewState()
	state.GetOrCreate(sender).Credit(big.NewInt(10))
	ex := New(state)

	signed := newSignedTx(t, pk, 1, 0, types.Address{0x01}, 5, 1000)
	recovered, _ := tx.Recover(signed)
	receipt := ex.ExecuteTransaction(recovered)
	if receipt.Success {
		t.Fatal("expected insufficient balance failure")
	}
	if receipt.Error != ErrInsufficientBalance {
		t.Errorf("error = %v, want ErrInsufficientBalance", receipt.Error)
	}
}

func TestExecuteBlock_CreditsProposerAndChecksTotalFee(t *testing.T) {
	pk, _ := crypto.GenerateKey()
	sender := pk.Address()
	var proposer, receiver types.Address
	proposer[0] = 0xFF
	receiver[0] = 0xAB

	state := NewState()
	state.GetOrCreate(sender).Credit(big.NewInt(10_000))
	ex := New(state)

	signed := newSignedTx(t, pk, 1, 0, receiver, 5, 1000)
	blk := &block.Block{
		Header: &block.Header{Proposer: proposer, TotalFee: big.NewInt(5)},
		Body:   []*tx.SignedTransaction{signed},
	}

	receipts, err := ex.ExecuteBlock(blk)
	if err != nil {
		t.Fatalf("execute block: %v", err)
	}
	if len(receipts) != 1 || !receipts[0].Success {
		t.Fatalf("receipts = %+v", receipts)
	}
	proposerAcct := ex.State().Get(proposer)
	if proposerAcct.Balance.Cmp(big.NewInt(5)) != 0 {
		t.Errorf("proposer balance = %s, want 5", proposerAcct.Balance)
	}
}

func TestExecuteBlock_TotalFeeMismatch(t *testing.T) {
	pk, _ := crypto.GenerateKey()
	sender := pk.Address()
	state := NewState()
	state.GetOrCreate(sender).Credit(big.NewInt(10_000))
	ex := New(state)

	signed := newSignedTx(t, pk, 1, 0, types.Address{0x01}, 5, 1000)
	blk := &block.Block{
		Header: &block.Header{TotalFee: big.NewInt(999)},
		Body:   []*tx.SignedTransaction{signed},
	}

	_, err := ex.ExecuteBlock(blk)
	if err != ErrTotalFeeMismatch {
		t.Fatalf("err = %v, want ErrTotalFeeMismatch", err)
	}
}

func TestCalculateStateRoot_OrderIndependent(t *testing.T) {
	var a, b types.Address
	a[0], b[0] = 0x01, 0x02

	s1 := NewState()
	s1.GetOrCreate(a).Credit(big.NewInt(10))
	s1.GetOrCreate(b).Credit(big.NewInt(20))

	s2 := NewState()
	s2.GetOrCreate(b).Credit(big.NewInt(20))
	s2.GetOrCreate(a).Credit(big.NewInt(10))

	if s1.CalculateStateRoot() != s2.CalculateStateRoot() {
		t.Error("state root depends on insertion order")
	}
}
