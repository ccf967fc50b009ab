package p2p

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/Pyoyeongjong/pint-chain/internal/executor"
	"github.com/Pyoyeongjong/pint-chain/internal/storage"
	"github.com/Pyoyeongjong/pint-chain/pkg/block"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

func TestFrame_RoundTrip(t *testing.T) {
	payload := []byte("hello")
	data := frame(tagNewTransaction, payload)

	msgs, consumed := decodeFrames(data)
	if consumed != len(data) {
		t.Fatalf("consumed = %d, want %d", consumed, len(data))
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].tag != tagNewTransaction || !bytes.Equal(msgs[0].payload, payload) {
		t.Fatalf("decoded = %+v", msgs[0])
	}
}

func TestDecodeFrames_PartialTrailingFrameIsKept(t *testing.T) {
	full := frame(tagRequestData, encodeRequestData(5))
	partial := full[:len(full)-2]

	msgs, consumed := decodeFrames(partial)
	if len(msgs) != 0 {
		t.Fatalf("got %d messages from a partial frame, want 0", len(msgs))
	}
	if consumed != 0 {
		t.Fatalf("consumed = %d, want 0", consumed)
	}
}

func TestDecodeFrames_MultipleMessagesInOneRead(t *testing.T) {
	buf := append(frame(tagHello, encodeHello(1, nil, 100)), frame(tagRequestData, encodeRequestData(1))...)

	msgs, consumed := decodeFrames(buf)
	if consumed != len(buf) {
		t.Fatalf("consumed = %d, want %d", consumed, len(buf))
	}
	if len(msgs) != 2 || msgs[0].tag != tagHello || msgs[1].tag != tagRequestData {
		t.Fatalf("msgs = %+v", msgs)
	}
}

func TestRequestData_RoundTrip(t *testing.T) {
	encoded := encodeRequestData(42)
	got, err := decodeRequestData(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != 42 {
		t.Fatalf("from = %d, want 42", got)
	}
}

func TestRespondChainData_RoundTrip(t *testing.T) {
	hashes := []types.Hash{{0x01}, {0x02}, {0x03}}
	encoded := encodeRespondChainData(hashes)
	got, err := decodeRespondChainData(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != len(hashes) {
		t.Fatalf("got %d hashes, want %d", len(got), len(hashes))
	}
	for i := range hashes {
		if got[i] != hashes[i] {
			t.Errorf("hash[%d] = %x, want %x", i, got[i], hashes[i])
		}
	}
}

func TestFindForkPoint_WalksNewestToOldest(t *testing.T) {
	store := storage.NewMemory()
	defer store.Close()

	var prev types.Hash
	for height := uint64(0); height < 3; height++ {
		h := &block.Header{PreviousHash: prev, Height: height, TotalFee: big.NewInt(0)}
		blk := &block.Block{Header: h}
		if err := store.Update(map[types.Address]*types.Account{}, executor.NewWorld(), blk); err != nil {
			t.Fatalf("seed height %d: %v", height, err)
		}
		prev = h.Hash()
	}

	n := &Node{store: store}
	tipHeader, err := store.GetHeader(1)
	if err != nil {
		t.Fatalf("get header: %v", err)
	}

	// Remote chain agrees up to height 1, then diverges.
	remote := []types.Hash{{0xDE, 0xAD}, tipHeader.Hash(), {}}
	height, found := n.findForkPoint(remote)
	if !found || height != 1 {
		t.Fatalf("fork point = (%d, %v), want (1, true)", height, found)
	}
}
