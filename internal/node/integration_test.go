package node_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Pyoyeongjong/pint-chain/internal/consensus"
	"github.com/Pyoyeongjong/pint-chain/internal/executor"
	"github.com/Pyoyeongjong/pint-chain/internal/mempool"
	"github.com/Pyoyeongjong/pint-chain/internal/miner"
	"github.com/Pyoyeongjong/pint-chain/internal/node"
	"github.com/Pyoyeongjong/pint-chain/internal/p2p"
	"github.com/Pyoyeongjong/pint-chain/internal/payload"
	"github.com/Pyoyeongjong/pint-chain/internal/provider"
	"github.com/Pyoyeongjong/pint-chain/internal/storage"
	"github.com/Pyoyeongjong/pint-chain/pkg/block"
	"github.com/Pyoyeongjong/pint-chain/pkg/crypto"
	"github.com/Pyoyeongjong/pint-chain/pkg/tx"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

// harness bundles one fully-wired node minus the RPC surface, which these
// gossip/reorg scenarios never need.
type harness struct {
	store   *storage.MemoryStore
	pool    *mempool.Pool
	factory *provider.Factory
	engine  *consensus.Engine
	net     *p2p.Node
}

// startNode builds and starts a node listening on port, optionally
// dialing boot at startup. Both nodes in a scenario must be given the
// same accounts map so their genesis states (and therefore hashes)
// match.
func startNode(t *testing.T, port int, boot string, accounts map[types.Address]*types.Account) *harness {
	t.Helper()
	store := storage.NewMemory()

	genesisHeader := block.GenesisHeader()
	genesisHeader.Difficulty = 1 // keep mining fast in tests
	genesis := &block.Block{Header: genesisHeader}
	if err := store.Update(accounts, executor.NewWorld(), genesis); err != nil {
		t.Fatalf("seed genesis: %v", err)
	}

	p := provider.New(store)
	factory := provider.NewFactory(store)
	view, err := p.Latest()
	if err != nil {
		t.Fatalf("latest view: %v", err)
	}
	pool := mempool.New(view)

	builder := payload.New(types.Address{0xFE}, p, factory, pool, 0, zerolog.Nop())
	pow := miner.New(zerolog.Nop())

	var zeroNetwork node.Handle[p2p.Inbound]
	engine := consensus.New(pool, factory, builder.Handle(), builder.Results(), pow.Handle(), pow.Results(), zeroNetwork, zerolog.Nop())

	netCfg := p2p.Config{ListenAddr: "127.0.0.1", Port: port, BootNode: boot}
	network := p2p.New(netCfg, engine, pool, store, zerolog.Nop())
	engine.SetNetwork(network.Handle())

	go builder.Run()
	go pow.Run()
	go engine.Run()
	go network.Run()

	if err := network.Start(); err != nil {
		t.Fatalf("start network on port %d: %v", port, err)
	}

	return &harness{store: store, pool: pool, factory: factory, engine: engine, net: network}
}

func sharedGenesisAccounts(keys ...*crypto.PrivateKey) map[types.Address]*types.Account {
	accounts := make(map[types.Address]*types.Account, len(keys))
	for _, k := range keys {
		accounts[k.Address()] = &types.Account{Nonce: 0, Balance: big.NewInt(1_000_000)}
	}
	return accounts
}

func waitFor(t *testing.T, timeout time.Duration, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}

// TestIntegration_TransactionGossipsToPeerMempool drives two in-process
// nodes over loopback TCP: a transaction submitted locally on A must
// reach B's mempool without B ever being told about it directly.
func TestIntegration_TransactionGossipsToPeerMempool(t *testing.T) {
	alice, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	accounts := sharedGenesisAccounts(alice)

	a := startNode(t, 19001, "", accounts)
	b := startNode(t, 19002, "127.0.0.1:19001", accounts)

	// Let the handshake complete before submitting anything.
	time.Sleep(200 * time.Millisecond)

	transaction := &tx.Transaction{ChainID: 1, Nonce: 0, To: types.Address{0x02}, Fee: big.NewInt(5), Value: big.NewInt(1000)}
	signed, err := tx.Sign(transaction, alice)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	recovered, err := tx.Recover(signed)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if err := a.pool.Add(recovered); err != nil {
		t.Fatalf("pool add on A: %v", err)
	}
	a.engine.NewTransaction(recovered)
	a.net.Handle().Send(p2p.BroadcastTransaction{Signed: signed, Except: 0})

	waitFor(t, 5*time.Second, "B's mempool to see the gossiped transaction", func() bool {
		return b.pool.PendingCount() == 1
	})
}

// TestIntegration_MinedBlockPropagatesAndBothNodesConverge covers S1/S2:
// a block mined locally on A is gossiped to B, which imports it too, so
// both nodes' stores converge on the same height and tip hash.
func TestIntegration_MinedBlockPropagatesAndBothNodesConverge(t *testing.T) {
	alice, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	accounts := sharedGenesisAccounts(alice)

	a := startNode(t, 19011, "", accounts)
	b := startNode(t, 19012, "127.0.0.1:19011", accounts)

	time.Sleep(200 * time.Millisecond)

	transaction := &tx.Transaction{ChainID: 1, Nonce: 0, To: types.Address{0x03}, Fee: big.NewInt(5), Value: big.NewInt(500)}
	signed, err := tx.Sign(transaction, alice)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	recovered, err := tx.Recover(signed)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if err := a.pool.Add(recovered); err != nil {
		t.Fatalf("pool add on A: %v", err)
	}
	// Waking A's own engine is enough: it builds a payload, mines it
	// (difficulty 1), imports it, and broadcasts it to B on success.
	a.engine.NewTransaction(recovered)

	waitFor(t, 10*time.Second, "A to mine and import height 1", func() bool {
		h, err := a.store.LatestBlockNumber()
		return err == nil && h == 1
	})
	waitFor(t, 10*time.Second, "B to import the gossiped block", func() bool {
		h, err := b.store.LatestBlockNumber()
		return err == nil && h == 1
	})

	aHeader, err := a.store.GetHeader(1)
	if err != nil {
		t.Fatalf("A header: %v", err)
	}
	bHeader, err := b.store.GetHeader(1)
	if err != nil {
		t.Fatalf("B header: %v", err)
	}
	if aHeader.Hash() != bHeader.Hash() {
		t.Fatalf("A and B diverged at height 1: %s vs %s", aHeader.Hash(), bHeader.Hash())
	}
}
