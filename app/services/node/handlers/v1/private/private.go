// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"errors"
	"net/http"

	v1 "github.com/cypherchain/cypher/business/web/v1"
	"github.com/cypherchain/cypher/foundation/blockchain/state"
	"github.com/cypherchain/cypher/foundation/nameservice"
	"github.com/cypherchain/cypher/foundation/web"
	"go.uber.org/zap"
)

// errNoTransactions is reported when mining is requested with an empty
// mempool.
var errNoTransactions = errors.New("no transactions in mempool")

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	latestBlock := h.State.RetrieveLatestBlock()

	status := struct {
		Host            string   `json:"host"`
		Miner           string   `json:"miner"`
		LatestBlockHash string   `json:"latest_block_hash"`
		LatestBlockNum  uint64   `json:"latest_block_number"`
		Uncommitted     int      `json:"uncommitted"`
		KnownPeers      []string `json:"known_peers"`
	}{
		Host:            h.State.Host(),
		Miner:           string(h.State.MinerAccountID()),
		LatestBlockHash: latestBlock.Hash(),
		LatestBlockNum:  latestBlock.Index,
		Uncommitted:     h.State.MempoolCount(),
	}

	for _, pr := range h.State.RetrieveKnownPeers() {
		status.KnownPeers = append(status.KnownPeers, pr.URL)
	}

	return web.Respond(ctx, w, status, http.StatusOK)
}

// Mine signals the background worker to mine the pending transactions into
// a new block.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.State.MempoolCount() == 0 {
		return v1.NewRequestError(errNoTransactions, http.StatusConflict)
	}

	h.State.Worker.SignalStartMining()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining signaled",
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}

// AddPeer registers a new peer with the node.
func (h Handlers) AddPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Address string `json:"address"`
	}
	if err := web.Decode(r, &req); err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	added, err := h.State.RegisterPeer(req.Address)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	resp := struct {
		Address string `json:"address"`
		Added   bool   `json:"added"`
	}{
		Address: req.Address,
		Added:   added,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Resolve runs one longest-chain conflict resolution pass against the known
// peers and reports whether the local chain was replaced.
func (h Handlers) Resolve(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	replaced, err := h.State.Resolve(ctx)
	if err != nil {
		return err
	}

	if replaced {
		h.State.Worker.SignalCancelMining()
	}

	resp := struct {
		Replaced bool `json:"replaced"`
		Length   int  `json:"length"`
	}{
		Replaced: replaced,
		Length:   int(h.State.RetrieveLatestBlock().Index) + 1,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
