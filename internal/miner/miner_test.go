package miner

import (
	"math/big"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Pyoyeongjong/pint-chain/pkg/block"
	"github.com/Pyoyeongjong/pint-chain/pkg/crypto"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

func testHeader(difficulty uint32) *block.PayloadHeader {
	return &block.PayloadHeader{
		PreviousHash: types.Hash{0x01},
		TxRoot:       types.Hash{0x02},
		StateRoot:    types.Hash{0x03},
		Proposer:     types.Address{0xAA},
		Difficulty:   difficulty,
		Timestamp:    1000,
		Height:       1,
		TotalFee:     big.NewInt(0),
	}
}

func TestMiner_FindsLowDifficultyNonce(t *testing.T) {
	m := New(zerolog.Nop())
	go m.Run()
	defer close(m.in)

	m.Handle().Send(NewPayload{Header: testHeader(1)})

	select {
	case res := <-m.Results():
		success, ok := res.(MiningSuccess)
		if !ok {
			t.Fatalf("result = %T, want MiningSuccess", res)
		}
		header := testHeader(1)
		attempt := appendUint64(append([]byte{}, powSeed(header)...), success.Header.Nonce)
		hash := crypto.Hash(attempt)
		if !meetsDifficulty(hash, 1) {
			t.Error("mined header does not meet difficulty")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for mining success")
	}
}

func TestMiner_HaltWithNoWorkerEmitsImmediately(t *testing.T) {
	m := New(zerolog.Nop())
	go m.Run()
	defer close(m.in)

	m.Handle().Send(HaltMining{})

	select {
	case res := <-m.Results():
		if _, ok := res.(MiningHalted); !ok {
			t.Fatalf("result = %T, want MiningHalted", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for MiningHalted")
	}
}

func TestMiner_HaltStopsInFlightMining(t *testing.T) {
	m := New(zerolog.Nop())
	go m.Run()
	defer close(m.in)

	// An unreachable difficulty keeps the worker running until halted.
	m.Handle().Send(NewPayload{Header: testHeader(255)})
	m.Handle().Send(HaltMining{})

	select {
	case res := <-m.Results():
		if _, ok := res.(MiningHalted); !ok {
			t.Fatalf("result = %T, want MiningHalted", res)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for MiningHalted")
	}
}

func TestMiner_NewPayloadSupersedesPreviousSilently(t *testing.T) {
	m := New(zerolog.Nop())
	go m.Run()
	defer close(m.in)

	m.Handle().Send(NewPayload{Header: testHeader(255)})
	m.Handle().Send(NewPayload{Header: testHeader(1)})

	select {
	case res := <-m.Results():
		if _, ok := res.(MiningSuccess); !ok {
			t.Fatalf("result = %T, want MiningSuccess from the second payload", res)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for mining success")
	}
}
