package p2p

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/Pyoyeongjong/pint-chain/pkg/block"
	"github.com/Pyoyeongjong/pint-chain/pkg/tx"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

// protocolVersion is the only wire version this node speaks. Frames with
// a higher version are ignored rather than rejected, matching the
// teacher's forward-tolerant framing.
const protocolVersion byte = 0

// Wire message tags. BroadcastBlock, BroadcastTransaction, RemovePeer,
// RemoveUnresponsivePeer and ReorgChainData are internal-only and never
// cross the wire.
const (
	tagPeerConnectionTest         byte = 0x00
	tagNewTransaction             byte = 0x01
	tagNewPayload                 byte = 0x02
	tagRequestDataResponse        byte = 0x04
	tagRequestData                byte = 0x05
	tagRequestDataResponseFinished byte = 0x06
	tagHandShake                  byte = 0x07
	tagHello                      byte = 0x08
	tagRequestChainData           byte = 0x12
	tagRespondChainDataResult     byte = 0x13
)

// maxAncestorHashes bounds RespondChainDataResult per the reorg probe.
const maxAncestorHashes = 16

// frame serializes a single wire message: msg_type || protocol_version ||
// payload_length(8 BE) || payload.
func frame(msgType byte, payload []byte) []byte {
	buf := make([]byte, 0, 10+len(payload))
	buf = append(buf, msgType, protocolVersion)
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(payload)))
	buf = append(buf, length[:]...)
	buf = append(buf, payload...)
	return buf
}

// wireMessage is a decoded frame ready for dispatch.
type wireMessage struct {
	tag     byte
	payload []byte
}

// frameHeaderSize is the fixed header every frame carries ahead of its
// payload: msg_type(1) + protocol_version(1) + payload_length(8).
const frameHeaderSize = 10

// decodeFrames extracts every complete frame from buf, returning the
// messages found and the number of bytes consumed. A caller that gets a
// partial trailing frame keeps the unconsumed remainder for the next read.
func decodeFrames(buf []byte) ([]wireMessage, int) {
	var msgs []wireMessage
	consumed := 0
	for {
		rest := buf[consumed:]
		if len(rest) < frameHeaderSize {
			return msgs, consumed
		}
		version := rest[1]
		length := binary.BigEndian.Uint64(rest[2:10])
		if uint64(len(rest)) < frameHeaderSize+length {
			return msgs, consumed
		}
		if version == protocolVersion {
			msgs = append(msgs, wireMessage{tag: rest[0], payload: append([]byte{}, rest[frameHeaderSize:frameHeaderSize+length]...)})
		}
		consumed += frameHeaderSize + int(length)
	}
}

func encodeIPPort(ip net.IP, port uint16) []byte {
	v4 := ip.To4()
	if v4 == nil {
		v4 = net.IPv4zero.To4()
	}
	buf := make([]byte, 6)
	copy(buf[0:4], v4)
	binary.BigEndian.PutUint16(buf[4:6], port)
	return buf
}

func decodeIPPort(payload []byte) (net.IP, uint16, error) {
	if len(payload) < 6 {
		return nil, 0, fmt.Errorf("p2p: ip/port payload too short")
	}
	ip := net.IPv4(payload[0], payload[1], payload[2], payload[3])
	port := binary.BigEndian.Uint16(payload[4:6])
	return ip, port, nil
}

func encodeHello(pid uint64, ip net.IP, port uint16) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, pid)
	return append(buf, encodeIPPort(ip, port)...)
}

func decodeHello(payload []byte) (pid uint64, ip net.IP, port uint16, err error) {
	if len(payload) < 14 {
		return 0, nil, 0, fmt.Errorf("p2p: hello payload too short")
	}
	pid = binary.BigEndian.Uint64(payload[0:8])
	ip, port, err = decodeIPPort(payload[8:14])
	return pid, ip, port, err
}

func encodeRequestData(from uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, from)
	return buf
}

func decodeRequestData(payload []byte) (uint64, error) {
	if len(payload) < 8 {
		return 0, fmt.Errorf("p2p: request_data payload too short")
	}
	return binary.BigEndian.Uint64(payload), nil
}

func encodeRespondChainData(hashes []types.Hash) []byte {
	if len(hashes) > maxAncestorHashes {
		hashes = hashes[:maxAncestorHashes]
	}
	buf := make([]byte, 8, 8+len(hashes)*types.HashSize)
	binary.BigEndian.PutUint64(buf, uint64(len(hashes)))
	for _, h := range hashes {
		buf = append(buf, h[:]...)
	}
	return buf
}

func decodeRespondChainData(payload []byte) ([]types.Hash, error) {
	if len(payload) < 8 {
		return nil, fmt.Errorf("p2p: respond_chain_data payload too short")
	}
	count := binary.BigEndian.Uint64(payload[0:8])
	rest := payload[8:]
	if uint64(len(rest)) < count*uint64(types.HashSize) {
		return nil, fmt.Errorf("p2p: respond_chain_data payload truncated")
	}
	hashes := make([]types.Hash, count)
	for i := range hashes {
		copy(hashes[i][:], rest[i*types.HashSize:(i+1)*types.HashSize])
	}
	return hashes, nil
}

func decodeBlock(payload []byte) (*block.Block, error) {
	return block.DecodeBlock(payload)
}

func decodeSignedTransaction(payload []byte) (*tx.SignedTransaction, error) {
	return tx.DecodeSignedTransaction(payload)
}
