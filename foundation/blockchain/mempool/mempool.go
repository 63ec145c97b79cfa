// Package mempool maintains the pool of pending transactions waiting to be
// mined into a block.
package mempool

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cypherchain/cypher/foundation/blockchain/database"
)

// Mempool represents a cache of pending transactions organized by a
// sender:nonce key. Resubmitting the same sender and nonce replaces the
// previous transaction instead of queueing a duplicate.
type Mempool struct {
	mu   sync.RWMutex
	pool map[string]database.Tx
}

// New constructs a new mempool for pending transactions.
func New() *Mempool {
	return &Mempool{
		pool: make(map[string]database.Tx),
	}
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds or replaces a transaction in the mempool.
func (mp *Mempool) Upsert(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool[mapKey(tx)] = tx

	return len(mp.pool)
}

// Delete removes a transaction from the mempool.
func (mp *Mempool) Delete(tx database.Tx) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	delete(mp.pool, mapKey(tx))
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]database.Tx)
}

// PickAll returns every pending transaction ordered by sender and then by
// nonce, so block assembly is deterministic and a sender's transactions keep
// their nonce order within a block.
func (mp *Mempool) PickAll() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	txs := make([]database.Tx, 0, len(mp.pool))
	for _, tx := range mp.pool {
		txs = append(txs, tx)
	}

	sort.Slice(txs, func(i, j int) bool {
		if txs[i].Sender != txs[j].Sender {
			return txs[i].Sender < txs[j].Sender
		}
		return txs[i].Nonce < txs[j].Nonce
	})

	return txs
}

// =============================================================================

// mapKey is used to generate the map key.
func mapKey(tx database.Tx) string {
	return fmt.Sprintf("%s:%d", tx.Sender, tx.Nonce)
}
