package database

import (
	"errors"
	"fmt"
)

// ValidateChain walks a whole candidate chain from genesis, validating each
// block against its predecessor and the ledger state accumulated so far.
// The walk short-circuits on the first failure. A single-block chain is
// trivially valid when its genesis validates.
func ValidateChain(chain []Block, evHandler func(v string, args ...any)) error {
	if len(chain) == 0 {
		return errors.New("empty chain")
	}

	// The genesis block anchors the walk. A chain whose first block claims
	// a nonzero index or a parent hash is a mid-chain fragment, not a chain.
	if chain[0].Index != 0 {
		return fmt.Errorf("chain invalid at block 0: %w: genesis index got %d, exp 0", ErrBadLinkage, chain[0].Index)
	}
	if chain[0].PrevBlockHash != ZeroPrevHash {
		return fmt.Errorf("chain invalid at block 0: %w: genesis parent hash got %s, exp %s", ErrBadLinkage, chain[0].PrevBlockHash, ZeroPrevHash)
	}

	ledger := NewLedger()

	for i := range chain {
		var prevBlock *Block
		if i > 0 {
			prevBlock = &chain[i-1]
		}

		if err := chain[i].ValidateBlock(prevBlock, ledger, evHandler); err != nil {
			return fmt.Errorf("chain invalid at block %d: %w", i, err)
		}

		for _, tx := range chain[i].Trans {
			ledger.ApplyTx(tx)
		}
	}

	return nil
}
