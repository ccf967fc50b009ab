// Package p2p implements peer-to-peer networking over raw TCP: a
// length-prefixed binary wire protocol, peer admission with redirect,
// handshake, liveness probing, transaction/block gossip, and a
// reorg probe used to resync a forked chain.
package p2p

import (
	"bufio"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/Pyoyeongjong/pint-chain/internal/metrics"
	"github.com/Pyoyeongjong/pint-chain/internal/node"
	"github.com/Pyoyeongjong/pint-chain/internal/storage"
	"github.com/Pyoyeongjong/pint-chain/pkg/block"
	"github.com/Pyoyeongjong/pint-chain/pkg/tx"
)

const (
	livenessInterval    = 30 * time.Second
	unresponsiveTimeout = 10 * time.Second
	dialRetries         = 5
)

// ConsensusSink is the subset of the consensus engine the network manager
// drives: inbound blocks and transactions re-enter through these calls.
type ConsensusSink interface {
	ImportBlock(blk *block.Block)
	NewTransaction(r *tx.Recovered)
}

// Pool is the subset of the mempool the network manager needs to
// validate and gossip inbound transactions.
type Pool interface {
	Add(r *tx.Recovered) error
	PendingCount() int
}

// Config configures a Node.
type Config struct {
	ListenAddr string
	Port       int
	BootNode   string // "" for the first node in a network
	MaxPeers   int
}

// Node is the network manager: one listener, a peer table, and a
// dispatch loop that turns wire frames into calls against the consensus
// engine and the pool, or internal commands into outbound frames.
type Node struct {
	cfg Config
	pid uint64

	listener net.Listener
	peers    *table

	consensus ConsensusSink
	pool      Pool
	store     storage.Store

	in  chan Inbound
	log zerolog.Logger
}

// New returns a Node. Call Start to begin listening and Run to drive the
// internal command loop; both should run as long-lived goroutines.
func New(cfg Config, consensus ConsensusSink, pool Pool, store storage.Store, log zerolog.Logger) *Node {
	if cfg.MaxPeers <= 0 {
		cfg.MaxPeers = 32
	}
	return &Node{
		cfg:       cfg,
		pid:       randomPID(),
		peers:     newTable(cfg.MaxPeers),
		consensus: consensus,
		pool:      pool,
		store:     store,
		in:        make(chan Inbound, 64),
		log:       log.With().Str("component", "p2p").Logger(),
	}
}

// Handle returns a send-only handle onto the node's internal command
// channel.
func (n *Node) Handle() node.Handle[Inbound] {
	return node.NewHandle[Inbound](n.in)
}

func randomPID() uint64 {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	return binary.BigEndian.Uint64(buf[:])
}

// Start binds the listener and, for a non-boot node, dials the boot
// address. It returns once the listener is bound; connection handling
// runs in background goroutines.
func (n *Node) Start() error {
	addr := net.JoinHostPort(n.cfg.ListenAddr, strconv.Itoa(n.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("p2p: listen %s: %w", addr, err)
	}
	n.listener = ln
	go n.acceptLoop()
	go n.livenessLoop()

	if n.cfg.BootNode != "" {
		go n.bootstrap(n.cfg.BootNode)
	}
	return nil
}

func (n *Node) acceptLoop() {
	for {
		conn, err := n.listener.Accept()
		if err != nil {
			return
		}
		go n.admit(conn)
	}
}

// admit implements connection admission: redirect when at capacity,
// otherwise reply "Ok", register the peer and greet it with Hello.
func (n *Node) admit(conn net.Conn) {
	if n.peers.atCapacity() {
		if other, ok := n.peers.random(); ok && other.addr != nil {
			_, _ = conn.Write([]byte(other.addr.String()))
		}
		conn.Close()
		return
	}
	if _, err := conn.Write([]byte("Ok")); err != nil {
		conn.Close()
		return
	}

	p := n.peers.add(conn)
	metrics.PeerCount.Set(float64(n.peers.len()))
	go n.writerLoop(p)
	n.sendTo(p, frame(tagHello, encodeHello(n.pid, localIP(n.cfg.ListenAddr), uint16(n.cfg.Port))))
	n.readerLoop(p)
}

// bootstrap dials addr; on a non-"Ok" response it parses the reply as a
// redirect address and retries, up to dialRetries times.
func (n *Node) bootstrap(addr string) {
	for attempt := 0; attempt < dialRetries; attempt++ {
		next, admitted := n.dial(addr)
		if admitted {
			return
		}
		if next == "" {
			return
		}
		addr = next
	}
	n.log.Error().Str("addr", addr).Msg("exhausted dial retries")
}

func (n *Node) dial(addr string) (redirect string, admitted bool) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		n.log.Warn().Err(err).Str("addr", addr).Msg("dial failed")
		return "", false
	}

	reply := make([]byte, 256)
	count, err := conn.Read(reply)
	if err != nil {
		conn.Close()
		return "", false
	}
	text := string(reply[:count])
	if text != "Ok" {
		conn.Close()
		return text, false
	}

	p := n.peers.add(conn)
	metrics.PeerCount.Set(float64(n.peers.len()))
	go n.writerLoop(p)
	go n.readerLoop(p)
	return "", true
}

func (n *Node) readerLoop(p *peer) {
	defer n.dropPeer(p)
	r := bufio.NewReader(p.conn)
	var buf []byte
	chunk := make([]byte, 4096)
	for {
		count, err := r.Read(chunk)
		if err != nil {
			return
		}
		buf = append(buf, chunk[:count]...)
		msgs, consumed := decodeFrames(buf)
		buf = buf[consumed:]
		for _, m := range msgs {
			n.dispatch(p, m)
		}
	}
}

func (n *Node) writerLoop(p *peer) {
	for data := range p.out {
		if _, err := p.conn.Write(data); err != nil {
			return
		}
	}
}

func (n *Node) sendTo(p *peer, data []byte) {
	p.send(data)
}

func (n *Node) dropPeer(p *peer) {
	n.peers.remove(p.id)
	p.close()
	metrics.PeerCount.Set(float64(n.peers.len()))
}

func localIP(listenAddr string) net.IP {
	if ip := net.ParseIP(listenAddr); ip != nil {
		return ip
	}
	return net.IPv4zero
}

// initialSync requests the full chain from the first admitted peer,
// starting at height 1 (the genesis block is assumed identical).
func (n *Node) initialSync(p *peer) {
	n.sendTo(p, frame(tagRequestData, encodeRequestData(1)))
}
