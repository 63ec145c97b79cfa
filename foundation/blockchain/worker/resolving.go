package worker

import (
	"context"
	"time"
)

// resolveTimeout bounds one full resolution pass across all peers.
const resolveTimeout = 30 * time.Second

// resolveOperations handles the periodic longest-chain conflict resolution
// against the known peers.
func (w *Worker) resolveOperations() {
	w.evHandler("worker: resolveOperations: G started")
	defer w.evHandler("worker: resolveOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.runResolveOperation()
			}
		case <-w.shut:
			w.evHandler("worker: resolveOperations: received shut signal")
			return
		}
	}
}

// runResolveOperation performs one conflict resolution pass.
func (w *Worker) runResolveOperation() {
	w.evHandler("worker: runResolveOperation: started")
	defer w.evHandler("worker: runResolveOperation: completed")

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	replaced, err := w.state.Resolve(ctx)
	if err != nil {
		w.evHandler("worker: runResolveOperation: ERROR: %s", err)
		return
	}

	// An adopted chain makes any in-flight mining operation stale.
	if replaced {
		w.evHandler("worker: runResolveOperation: chain replaced")
		w.SignalCancelMining()
	}
}
