package state

import (
	"fmt"

	"github.com/cypherchain/cypher/foundation/blockchain/database"
)

// SubmitTransaction accepts a signed transaction from a client for
// inclusion in a future block. The transaction validates against the
// ledger projected from the current chain; acceptance does not guarantee
// inclusion until a block is mined.
func (s *State) SubmitTransaction(tx database.Tx) error {

	// Issuance transactions are produced only by the miner and the genesis
	// loader. The validator cannot distinguish the source, so the boundary
	// enforces it.
	if tx.IsIssuance() {
		return fmt.Errorf("issuance transactions are not accepted from clients")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := database.Project(s.chain)
	if err := tx.Validate(ledger); err != nil {
		s.evHandler("state: SubmitTransaction: tx[%s] rejected: %s", tx, err)
		return err
	}

	count := s.mempool.Upsert(tx)
	s.evHandler("state: SubmitTransaction: tx[%s] accepted: pool[%d]", tx, count)

	if s.Worker != nil {
		s.Worker.SignalStartMining()
	}

	return nil
}

// pruneMempool drops every pending transaction the current chain no longer
// accepts and reports how many were dropped. An adopted chain can consume a
// pending sender's nonce or balance; left in the pool such a transaction
// rejects every block assembled from it. Callers must hold the mutation
// lock. Transactions check in pick order against a sequentially updated
// ledger so a sender's still-valid nonce run survives intact.
func (s *State) pruneMempool() int {
	ledger := database.Project(s.chain)

	var dropped int
	for _, tx := range s.mempool.PickAll() {
		if err := tx.Validate(ledger); err != nil {
			s.mempool.Delete(tx)
			s.evHandler("state: pruneMempool: tx[%s] dropped: %s", tx, err)
			dropped++
			continue
		}
		ledger.ApplyTx(tx)
	}

	return dropped
}
