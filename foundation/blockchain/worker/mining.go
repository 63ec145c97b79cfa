package worker

import (
	"context"
	"errors"

	"github.com/cypherchain/cypher/foundation/blockchain/state"
)

// miningOperations handles mining.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for {
		select {
		case <-w.startMining:
			if !w.isShutdown() {
				w.runMiningOperation()
			}
		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}
	}
}

// runMiningOperation mines the pending transactions into a new block.
func (w *Worker) runMiningOperation() {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	// Make sure there are transactions in the mempool.
	length := w.state.MempoolCount()
	if length == 0 {
		w.evHandler("worker: runMiningOperation: MINING: no transactions to mine: Txs[%d]", length)
		return
	}

	// After running a mining operation, check if a new operation should
	// be signaled again.
	defer func() {
		if length := w.state.MempoolCount(); length > 0 {
			w.evHandler("worker: runMiningOperation: MINING: signal new mining operation: Txs[%d]", length)
			w.SignalStartMining()
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w.muCancel.Lock()
	w.cancelMining = cancel
	w.muCancel.Unlock()

	defer func() {
		w.muCancel.Lock()
		w.cancelMining = nil
		w.muCancel.Unlock()
	}()

	block, err := w.state.MineNewBlock(ctx, w.state.MinerAccountID())
	if err != nil {
		switch {
		case errors.Is(err, state.ErrStaleBase):
			w.evHandler("worker: runMiningOperation: MINING: WARNING: stale base, block abandoned")
		case ctx.Err() != nil:
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: complete")
		case errors.Is(err, state.ErrInvariant):
			w.evHandler("worker: runMiningOperation: MINING: FATAL: %s", err)
		default:
			w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
		}
		return
	}

	w.evHandler("worker: runMiningOperation: MINING: mined blk[%d]: hash[%s]", block.Index, block.Hash())
}
