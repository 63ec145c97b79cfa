// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"net/http"
	"time"

	v1 "github.com/cypherchain/cypher/business/web/v1"
	"github.com/cypherchain/cypher/foundation/blockchain/database"
	"github.com/cypherchain/cypher/foundation/blockchain/state"
	"github.com/cypherchain/cypher/foundation/events"
	"github.com/cypherchain/cypher/foundation/nameservice"
	"github.com/cypherchain/cypher/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of public endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitTransaction adds a new signed transaction to the mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var txData database.TxData
	if err := web.Decode(r, &txData); err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	if err := v1.Check(txData); err != nil {
		return err
	}

	tx, err := database.ToTx(txData)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	h.Log.Infow("submit tran", "traceid", v.TraceID, "sender:nonce", tx, "recipient", tx.Recipient, "amount", tx.Amount)
	if err := h.State.SubmitTransaction(tx); err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transaction added to mempool",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Chain returns the full chain in the document form peers consume during
// conflict resolution.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks := h.State.RetrieveChain()

	chain := make([]database.BlockData, len(blocks))
	for i, block := range blocks {
		chain[i] = database.NewBlockData(block)
	}

	ci := chainInfo{
		Length: len(chain),
		Chain:  chain,
	}

	return web.Respond(ctx, w, ci, http.StatusOK)
}

// Balance returns the ledger view of the specified account.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accountID, err := database.ToAccountID(web.Param(r, "address"))
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	ledger := h.State.RetrieveLedger()

	act := info{
		Account:   accountID,
		Name:      h.NS.Lookup(accountID),
		Balance:   ledger.Balance(accountID),
		NextNonce: ledger.NextNonce(accountID),
	}

	return web.Respond(ctx, w, act, http.StatusOK)
}

// Balances returns the current ledger for all accounts.
func (h Handlers) Balances(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	ledger := h.State.RetrieveLedger()
	balances := ledger.Balances()

	acts := make([]info, 0, len(balances))
	for accountID, balance := range balances {
		act := info{
			Account:   accountID,
			Name:      h.NS.Lookup(accountID),
			Balance:   balance,
			NextNonce: ledger.NextNonce(accountID),
		}
		acts = append(acts, act)
	}

	ai := actInfo{
		LatestBlock: h.State.RetrieveLatestBlock().Hash(),
		Uncommitted: h.State.MempoolCount(),
		Accounts:    acts,
	}

	return web.Respond(ctx, w, ai, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	mempool := h.State.RetrieveMempool()

	trans := make([]tx, len(mempool))
	for i, tran := range mempool {
		trans[i] = tx{
			Sender:        tran.Sender,
			SenderName:    h.NS.Lookup(tran.Sender),
			Recipient:     tran.Recipient,
			RecipientName: h.NS.Lookup(tran.Recipient),
			Amount:        tran.Amount,
			Nonce:         tran.Nonce,
			Signature:     tran.Signature,
		}
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}
