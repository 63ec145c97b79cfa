package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/cypherchain/cypher/foundation/blockchain/database"
)

// ErrStaleBase is returned when the chain head moved while the proof of
// work search was running, typically because a peer's chain was adopted.
// The mined block is abandoned instead of appending onto an outdated
// parent.
var ErrStaleBase = errors.New("chain head moved during mining")

// ErrInvariant is returned when the miner produces a block its own
// validator rejects. This indicates a bug in the miner or the validator,
// not bad input, and is not recoverable.
var ErrInvariant = errors.New("mined block failed self validation")

// MineNewBlock assembles a candidate block from a coinbase reward plus the
// pending pool, performs the proof of work search and appends the block
// atomically. The search itself runs outside the mutation lock so reads
// keep serving for its duration.
func (s *State) MineNewBlock(ctx context.Context, miner database.AccountID) (database.Block, error) {
	if !miner.IsAccountID() || miner.IsIssuance() {
		return database.Block{}, fmt.Errorf("invalid miner address %q", miner)
	}

	// Snapshot the chain head and the pending pool under the lock.
	s.mu.Lock()
	prevBlock := s.chain[len(s.chain)-1]
	trans := append([]database.Tx{database.NewCoinbaseTx(miner, s.genesis.BlockReward)}, s.mempool.PickAll()...)
	s.mu.Unlock()

	nb := database.Block{
		Index:         prevBlock.Index + 1,
		TimeStamp:     now(),
		Trans:         trans,
		PrevBlockHash: prevBlock.Hash(),
		Difficulty:    prevBlock.NextDifficulty(),
	}

	nonce, err := database.POW(ctx, nb, s.evHandler)
	if err != nil {
		return database.Block{}, err
	}
	nb.Nonce = nonce

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The head may have moved while the search ran.
	head := s.chain[len(s.chain)-1]
	if head.Hash() != nb.PrevBlockHash {
		s.evHandler("state: MineNewBlock: MINING: stale base: head[%d] moved", head.Index)
		return database.Block{}, ErrStaleBase
	}

	// Re-validate against the current chain before committing. A failure
	// here means the miner produced something its own rules reject.
	ledger := database.Project(s.chain)
	if err := nb.ValidateBlock(&head, ledger, s.evHandler); err != nil {
		return database.Block{}, fmt.Errorf("%w: %v", ErrInvariant, err)
	}

	newChain := make([]database.Block, len(s.chain), len(s.chain)+1)
	copy(newChain, s.chain)
	newChain = append(newChain, nb)

	// Persist first so an I/O failure never leaves memory and disk
	// disagreeing about the head.
	if err := s.storage.Save(newChain); err != nil {
		return database.Block{}, fmt.Errorf("persisting chain: %w", err)
	}
	s.chain = newChain

	for _, tx := range nb.Trans {
		s.mempool.Delete(tx)
	}

	s.evHandler("state: MineNewBlock: MINING: blk[%d] committed: hash[%s]: txs[%d]", nb.Index, nb.Hash(), len(nb.Trans))

	return nb, nil
}
