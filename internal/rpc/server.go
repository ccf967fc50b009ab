// Package rpc exposes the node's JSON-RPC 2.0 surface over plain net/http:
// chain_name, local_transaction, account, blockchain_height, transaction,
// and block_by_number.
package rpc

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Pyoyeongjong/pint-chain/internal/consensus"
	"github.com/Pyoyeongjong/pint-chain/internal/mempool"
	"github.com/Pyoyeongjong/pint-chain/internal/metrics"
	"github.com/Pyoyeongjong/pint-chain/internal/node"
	"github.com/Pyoyeongjong/pint-chain/internal/p2p"
	"github.com/Pyoyeongjong/pint-chain/internal/provider"
	"github.com/Pyoyeongjong/pint-chain/internal/storage"
)

const maxBodySize = 1 << 20

// Server serves the JSON-RPC surface over HTTP.
type Server struct {
	chainName string
	provider  *provider.Provider
	store     storage.Store
	pool      *mempool.Pool
	consensus *consensus.Engine
	network   node.Handle[p2p.Inbound]

	ln     net.Listener
	server *http.Server
	log    zerolog.Logger
}

// New returns a Server. chainName is echoed verbatim by chain_name.
func New(
	chainName string,
	p *provider.Provider,
	store storage.Store,
	pool *mempool.Pool,
	consensusEngine *consensus.Engine,
	network node.Handle[p2p.Inbound],
	log zerolog.Logger,
) *Server {
	return &Server{
		chainName: chainName,
		provider:  p,
		store:     store,
		pool:      pool,
		consensus: consensusEngine,
		network:   network,
		log:       log.With().Str("component", "rpc").Logger(),
	}
}

// Start binds addr and begins serving in the background.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.ln = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)
	mux.Handle("/metrics", metrics.Handler())
	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error().Err(err).Msg("rpc server stopped")
		}
	}()
	return nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Stop closes the listener and any open connections immediately; in-flight
// requests are not waited for.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	return s.server.Close()
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeJSON(w, fail(nil, CodeInvalidRequest, "POST required"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, fail(nil, CodeParseError, "invalid json"))
		return
	}
	if req.JSONRPC != "2.0" {
		writeJSON(w, fail(req.ID, CodeInvalidRequest, "jsonrpc must be \"2.0\""))
		return
	}

	writeJSON(w, s.dispatch(&req))
}

func writeJSON(w http.ResponseWriter, resp Response) {
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) dispatch(req *Request) Response {
	switch req.Method {
	case "chain_name":
		return s.handleChainName(req)
	case "local_transaction":
		return s.handleLocalTransaction(req)
	case "account":
		return s.handleAccount(req)
	case "blockchain_height":
		return s.handleBlockchainHeight(req)
	case "transaction":
		return s.handleTransaction(req)
	case "block_by_number":
		return s.handleBlockByNumber(req)
	default:
		return fail(req.ID, CodeMethodNotFound, "method not found: "+req.Method)
	}
}
