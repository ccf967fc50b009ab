// Package metrics exposes Prometheus instrumentation for the node: pool
// size, chain height, peer count, and mining attempts.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PoolPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pint_mempool_pending_transactions",
		Help: "Number of transactions in the pending subpool.",
	})
	PoolParked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pint_mempool_parked_transactions",
		Help: "Number of transactions in the parked subpool.",
	})
	ChainHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pint_chain_height",
		Help: "Height of the locally committed chain tip.",
	})
	PeerCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pint_network_peer_count",
		Help: "Number of currently connected peers.",
	})
	BlocksMined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pint_miner_blocks_mined_total",
		Help: "Number of blocks this node has successfully mined.",
	})
	MiningHalts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pint_miner_halts_total",
		Help: "Number of MiningHalted results received, including those that follow a block import.",
	})
	BlocksImported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pint_consensus_blocks_imported_total",
		Help: "Number of blocks successfully imported, local or remote.",
	})
)

// Handler returns the HTTP handler serving the Prometheus exposition
// format, meant to be mounted at /metrics alongside the RPC mux.
func Handler() http.Handler {
	return promhttp.Handler()
}
