package database

import (
	"context"
	"fmt"

	"github.com/cypherchain/cypher/foundation/blockchain/codec"
)

// ZeroPrevHash is the previous hash value carried by the genesis block.
const ZeroPrevHash = codec.ZeroHash

// MaxDifficulty caps the crude difficulty adjustment. There is no
// target-time retargeting.
const MaxDifficulty = 5

// Block represents a group of transactions batched together. Blocks are
// immutable once appended to the chain.
type Block struct {
	Index         uint64  `json:"index"`
	TimeStamp     float64 `json:"timestamp"`
	Trans         []Tx    `json:"transactions"`
	PrevBlockHash string  `json:"previous_hash"`
	Nonce         uint64  `json:"nonce"`
	Difficulty    uint    `json:"difficulty"`
}

// Hash returns the unique hash for the block. The hash is taken over the
// entire block record, so any field change invalidates the link held by the
// next block.
func (b Block) Hash() string {
	return codec.Hash(b)
}

// NextDifficulty computes the difficulty for the block that follows this
// one: every 10th block index bumps the difficulty by one, capped at
// MaxDifficulty.
func (b Block) NextDifficulty() uint {
	difficulty := b.Difficulty
	if b.Index != 0 && b.Index%10 == 0 {
		difficulty++
	}
	if difficulty > MaxDifficulty {
		difficulty = MaxDifficulty
	}

	return difficulty
}

// POW performs the proof of work search for the specified block, returning
// the nonce that makes the block's hash satisfy the difficulty target. The
// search is the reference sequential scan from zero, so the returned nonce
// is always the smallest solution. The search has no built-in timeout;
// cancel through the context.
func POW(ctx context.Context, b Block, ev func(v string, args ...any)) (uint64, error) {
	ev("database: POW: MINING: started: blk[%d]: difficulty[%d]", b.Index, b.Difficulty)
	defer ev("database: POW: MINING: completed: blk[%d]", b.Index)

	for nonce := uint64(0); ; nonce++ {
		if nonce%1_000_000 == 0 && nonce != 0 {
			ev("database: POW: MINING: attempts[%d]", nonce)
		}

		if ctx.Err() != nil {
			ev("database: POW: MINING: CANCELLED")
			return 0, ctx.Err()
		}

		b.Nonce = nonce
		if isHashSolved(b.Difficulty, b.Hash()) {
			ev("database: POW: MINING: SOLVED: nonce[%d]", nonce)
			return nonce, nil
		}
	}
}

// ValidateBlock takes a block and validates it to be included into the
// blockchain after the specified previous block. The ledger must hold the
// state accumulated through the end of the previous block; the block's own
// transactions validate against a sequentially updated copy so a sender may
// appear multiple times in one block with consecutive nonces. A nil
// previous block marks this block as genesis, which skips the linkage and
// proof of work checks but still validates its transactions.
func (b Block) ValidateBlock(prevBlock *Block, ledger *Ledger, evHandler func(v string, args ...any)) error {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	if prevBlock != nil {
		ev("database: ValidateBlock: validate: blk[%d]: check: linkage to parent", b.Index)

		if b.PrevBlockHash != prevBlock.Hash() {
			return fmt.Errorf("%w: parent hash got %s, exp %s", ErrBadLinkage, b.PrevBlockHash, prevBlock.Hash())
		}
		if b.Index != prevBlock.Index+1 {
			return fmt.Errorf("%w: index got %d, exp %d", ErrBadLinkage, b.Index, prevBlock.Index+1)
		}

		ev("database: ValidateBlock: validate: blk[%d]: check: block hash has been solved", b.Index)

		if !isHashSolved(b.Difficulty, b.Hash()) {
			return fmt.Errorf("%w: hash %s, difficulty %d", ErrInvalidPOW, b.Hash(), b.Difficulty)
		}
	}

	ev("database: ValidateBlock: validate: blk[%d]: check: transactions", b.Index)

	// Acceptance is atomic: one bad transaction rejects the whole block.
	running := ledger.Clone()
	for i, tx := range b.Trans {
		if err := tx.Validate(running); err != nil {
			return fmt.Errorf("blk[%d] tx[%d] %s: %w", b.Index, i, tx, err)
		}
		running.ApplyTx(tx)
	}

	return nil
}

// =============================================================================

// isHashSolved checks the hash complies with the POW rules: it must lead
// with difficulty hexadecimal zero characters.
func isHashSolved(difficulty uint, hash string) bool {
	const match = "00000000"

	if len(hash) != 64 || difficulty > uint(len(match)) {
		return false
	}

	return hash[:difficulty] == match[:difficulty]
}
