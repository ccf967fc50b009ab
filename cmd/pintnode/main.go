// Command pintnode runs a single proof-of-work chain node: storage,
// mempool, payload builder, miner, consensus engine, P2P gossip, and the
// JSON-RPC surface, wired together and run until an interrupt signal.
package main

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Pyoyeongjong/pint-chain/config"
	"github.com/Pyoyeongjong/pint-chain/internal/consensus"
	"github.com/Pyoyeongjong/pint-chain/internal/executor"
	klog "github.com/Pyoyeongjong/pint-chain/internal/log"
	"github.com/Pyoyeongjong/pint-chain/internal/mempool"
	"github.com/Pyoyeongjong/pint-chain/internal/miner"
	"github.com/Pyoyeongjong/pint-chain/internal/node"
	"github.com/Pyoyeongjong/pint-chain/internal/p2p"
	"github.com/Pyoyeongjong/pint-chain/internal/payload"
	"github.com/Pyoyeongjong/pint-chain/internal/provider"
	"github.com/Pyoyeongjong/pint-chain/internal/rpc"
	"github.com/Pyoyeongjong/pint-chain/internal/storage"
	"github.com/Pyoyeongjong/pint-chain/pkg/block"
	"github.com/Pyoyeongjong/pint-chain/pkg/tx"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

func main() {
	flags := config.ParseFlags()
	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pintnode: %v\n", err)
		os.Exit(1)
	}

	if err := klog.Init("info", false, ""); err != nil {
		fmt.Fprintf(os.Stderr, "pintnode: init logger: %v\n", err)
		os.Exit(1)
	}
	logger := klog.WithComponent(cfg.Name)

	store, err := openStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer store.Close()

	if err := seedGenesis(store, cfg); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed genesis")
	}

	p := provider.New(store)
	factory := provider.NewFactory(store)
	view, err := p.Latest()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open latest view")
	}
	pool := mempool.New(view)

	builder := payload.New(cfg.MinerAddress, p, factory, pool, 0, klog.Logger)
	pow := miner.New(klog.Logger)

	// The engine needs a network handle before the network manager exists,
	// and the network manager needs the engine as its ConsensusSink before
	// the engine's own handle can be wired into anything: construct the
	// engine with a zero network handle, build the network manager around
	// it, then bind the real handle back onto the engine.
	var zeroNetwork node.Handle[p2p.Inbound]
	engine := consensus.New(pool, factory, builder.Handle(), builder.Results(), pow.Handle(), pow.Results(), zeroNetwork, klog.Logger)

	netCfg := p2p.Config{ListenAddr: cfg.Address, Port: cfg.Port, BootNode: cfg.BootNode}
	network := p2p.New(netCfg, engine, pool, store, klog.Logger)
	engine.SetNetwork(network.Handle())

	rpcServer := rpc.New(cfg.Name, p, store, pool, engine, network.Handle(), klog.Logger)

	go builder.Run()
	go pow.Run()
	go engine.Run()
	go network.Run()
	if err := network.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start network listener")
	}
	if err := rpcServer.Start(fmt.Sprintf("%s:%d", cfg.Address, cfg.RPCPort)); err != nil {
		logger.Fatal().Err(err).Msg("failed to start rpc listener")
	}

	logger.Info().
		Str("address", cfg.Address).
		Int("port", cfg.Port).
		Int("rpc_port", cfg.RPCPort).
		Msg("node started")

	if cfg.Test {
		go submitDemoTransaction(pool, engine, network.Handle(), logger)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")

	if err := rpcServer.Stop(); err != nil {
		logger.Error().Err(err).Msg("rpc shutdown error")
	}
	// Background tasks are left to drain; no hard join per the exit
	// behavior contract.
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.InMemoryDB {
		return storage.NewMemory(), nil
	}
	if cfg.RemoveData {
		if err := os.RemoveAll(cfg.DataDir); err != nil {
			return nil, fmt.Errorf("remove-data: %w", err)
		}
	}
	return storage.NewBadger(cfg.DataDir)
}

func seedGenesis(store storage.Store, cfg *config.Config) error {
	_, err := store.LatestBlockNumber()
	if err == nil {
		return nil // already seeded from a prior run
	}
	if !errors.Is(err, storage.ErrEmptyChain) {
		return err
	}

	accounts := map[types.Address]*types.Account{}
	if cfg.Test {
		demo, err := config.DemoAccounts()
		if err != nil {
			return err
		}
		for addr, acct := range demo {
			accounts[addr] = acct
		}
	}
	genesis := &block.Block{Header: block.GenesisHeader()}
	return store.Update(accounts, executor.NewWorld(), genesis)
}

// submitDemoTransaction waits for the network listener to settle, then
// signs and submits one demo transfer from the fixed demo sender to the
// fixed demo recipient, exercising the same path a local RPC caller would.
func submitDemoTransaction(pool *mempool.Pool, engine *consensus.Engine, network node.Handle[p2p.Inbound], logger zerolog.Logger) {
	time.Sleep(2 * time.Second)

	alice, err := config.DemoAliceKey()
	if err != nil {
		logger.Error().Err(err).Msg("demo transaction: derive key")
		return
	}

	transaction := &tx.Transaction{
		ChainID: 1,
		Nonce:   0,
		To:      config.DemoBob,
		Fee:     big.NewInt(5),
		Value:   big.NewInt(1000),
	}
	signed, err := tx.Sign(transaction, alice)
	if err != nil {
		logger.Error().Err(err).Msg("demo transaction: sign")
		return
	}
	recovered, err := tx.Recover(signed)
	if err != nil {
		logger.Error().Err(err).Msg("demo transaction: recover")
		return
	}

	if err := pool.Add(recovered); err != nil {
		logger.Error().Err(err).Msg("demo transaction: pool add")
		return
	}
	engine.NewTransaction(recovered)
	network.Send(p2p.BroadcastTransaction{Signed: signed, Except: 0})
	logger.Info().Str("hash", signed.Hash.String()).Msg("demo transaction submitted")
}
