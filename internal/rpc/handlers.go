package rpc

import (
	"encoding/hex"
	"errors"

	"github.com/Pyoyeongjong/pint-chain/internal/mempool"
	"github.com/Pyoyeongjong/pint-chain/internal/p2p"
	"github.com/Pyoyeongjong/pint-chain/internal/storage"
	"github.com/Pyoyeongjong/pint-chain/pkg/tx"
	"github.com/Pyoyeongjong/pint-chain/pkg/types"
)

func (s *Server) handleChainName(req *Request) Response {
	return ok(req.ID, s.chainName)
}

type localTransactionParams struct {
	Hex string `json:"hex"`
}

// handleLocalTransaction decodes a signed transaction, recovers its
// sender, adds it to the pool, wakes
// the consensus engine so a fresh payload picks it up, and asks the
// network manager to gossip it to every peer.
func (s *Server) handleLocalTransaction(req *Request) Response {
	var params localTransactionParams
	if perr := parseParams(req, &params); perr != nil {
		return fail(req.ID, perr.Code, perr.Message)
	}

	raw, err := hex.DecodeString(params.Hex)
	if err != nil {
		return fail(req.ID, CodeInvalidParams, "hex: "+err.Error())
	}
	signed, err := tx.DecodeSignedTransaction(raw)
	if err != nil {
		return fail(req.ID, CodeInvalidParams, "decode transaction: "+err.Error())
	}
	recovered, err := tx.Recover(signed)
	if err != nil {
		return fail(req.ID, CodeInvalidParams, "recover signer: "+err.Error())
	}

	if err := s.pool.Add(recovered); err != nil {
		if errors.Is(err, mempool.ErrAlreadyImported) {
			return fail(req.ID, CodeInvalidParams, "transaction already known")
		}
		return fail(req.ID, CodeInvalidParams, err.Error())
	}

	s.consensus.NewTransaction(recovered)
	s.network.Send(p2p.BroadcastTransaction{Signed: signed, Except: 0})

	return ok(req.ID, recovered.Signed.Hash.String())
}

type addressParams struct {
	AddrHex string `json:"addr_hex"`
}

type accountResult struct {
	Nonce   uint64 `json:"nonce"`
	Balance string `json:"balance"`
}

func (s *Server) handleAccount(req *Request) Response {
	var params addressParams
	if perr := parseParams(req, &params); perr != nil {
		return fail(req.ID, perr.Code, perr.Message)
	}
	addr, err := types.ParseAddress(params.AddrHex)
	if err != nil {
		return fail(req.ID, CodeInvalidParams, "addr_hex: "+err.Error())
	}

	view, err := s.provider.Latest()
	if err != nil {
		return fail(req.ID, CodeInternalError, err.Error())
	}
	account, err := view.BasicAccount(addr)
	if errors.Is(err, storage.ErrNotFound) {
		account, err = types.NewAccount(), nil
	}
	if err != nil {
		return fail(req.ID, CodeInternalError, err.Error())
	}
	return ok(req.ID, accountResult{Nonce: account.Nonce, Balance: account.Balance.String()})
}

func (s *Server) handleBlockchainHeight(req *Request) Response {
	header, err := s.provider.LatestHeader()
	if errors.Is(err, storage.ErrEmptyChain) {
		return ok(req.ID, uint64(0))
	}
	if err != nil {
		return fail(req.ID, CodeInternalError, err.Error())
	}
	return ok(req.ID, header.Height)
}

type hashParams struct {
	HashHex string `json:"hash_hex"`
}

type transactionResult struct {
	Height uint64 `json:"height"`
	Hex    string `json:"hex"`
}

func (s *Server) handleTransaction(req *Request) Response {
	var params hashParams
	if perr := parseParams(req, &params); perr != nil {
		return fail(req.ID, perr.Code, perr.Message)
	}
	hash, err := types.HexToHash(params.HashHex)
	if err != nil {
		return fail(req.ID, CodeInvalidParams, "hash_hex: "+err.Error())
	}

	signed, height, err := s.store.GetTransactionByHash(hash)
	if errors.Is(err, storage.ErrNotFound) {
		return fail(req.ID, CodeNotFound, "transaction not found")
	}
	if err != nil {
		return fail(req.ID, CodeInternalError, err.Error())
	}
	return ok(req.ID, transactionResult{Height: height, Hex: hex.EncodeToString(signed.Encode())})
}

type heightParams struct {
	Number uint64 `json:"number"`
}

type blockResult struct {
	Height       uint64   `json:"height"`
	Hash         string   `json:"hash"`
	PreviousHash string   `json:"previous_hash"`
	Timestamp    uint64   `json:"timestamp"`
	Proposer     string   `json:"proposer"`
	Difficulty   uint32   `json:"difficulty"`
	TotalFee     string   `json:"total_fee"`
	Transactions []string `json:"transactions"`
}

func (s *Server) handleBlockByNumber(req *Request) Response {
	var params heightParams
	if perr := parseParams(req, &params); perr != nil {
		return fail(req.ID, perr.Code, perr.Message)
	}

	blk, err := s.store.GetBlock(params.Number)
	if errors.Is(err, storage.ErrNotFound) {
		return fail(req.ID, CodeNotFound, "block not found")
	}
	if err != nil {
		return fail(req.ID, CodeInternalError, err.Error())
	}

	hashes := make([]string, len(blk.Body))
	for i, signed := range blk.Body {
		hashes[i] = signed.Hash.String()
	}
	h := blk.Header
	return ok(req.ID, blockResult{
		Height:       h.Height,
		Hash:         h.Hash().String(),
		PreviousHash: h.PreviousHash.String(),
		Timestamp:    h.Timestamp,
		Proposer:     h.Proposer.String(),
		Difficulty:   h.Difficulty,
		TotalFee:     h.TotalFee.String(),
		Transactions: hashes,
	})
}
