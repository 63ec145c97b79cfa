package database

// Ledger holds the account state derived by replaying a chain: the balance
// and the expected next nonce for every account that has transacted. A
// ledger is never stored, it is a pure function of the chain and gets
// recomputed or incrementally projected whenever needed.
type Ledger struct {
	balances map[AccountID]int64
	nonces   map[AccountID]uint64
}

// NewLedger constructs an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		balances: make(map[AccountID]int64),
		nonces:   make(map[AccountID]uint64),
	}
}

// Project replays the chain from genesis and returns the resulting ledger.
// Blocks apply in index order and transactions in list order within each
// block.
func Project(chain []Block) *Ledger {
	ledger := NewLedger()

	for _, block := range chain {
		for _, tx := range block.Trans {
			ledger.ApplyTx(tx)
		}
	}

	return ledger
}

// ApplyTx applies a single transaction to the ledger. Issuance senders are
// never debited; every recipient is always credited.
func (l *Ledger) ApplyTx(tx Tx) {
	if !tx.IsIssuance() {
		l.balances[tx.Sender] -= tx.Amount
		if next := tx.Nonce + 1; next > l.nonces[tx.Sender] {
			l.nonces[tx.Sender] = next
		}
	}

	l.balances[tx.Recipient] += tx.Amount
}

// Balance returns the balance for the specified account. Accounts that have
// never transacted hold a zero balance.
func (l *Ledger) Balance(account AccountID) int64 {
	return l.balances[account]
}

// NextNonce returns the nonce the specified account's next transaction must
// carry.
func (l *Ledger) NextNonce(account AccountID) uint64 {
	return l.nonces[account]
}

// Balances returns a copy of all account balances.
func (l *Ledger) Balances() map[AccountID]int64 {
	balances := make(map[AccountID]int64, len(l.balances))
	for account, balance := range l.balances {
		balances[account] = balance
	}
	return balances
}

// Nonces returns a copy of all expected next nonces.
func (l *Ledger) Nonces() map[AccountID]uint64 {
	nonces := make(map[AccountID]uint64, len(l.nonces))
	for account, nonce := range l.nonces {
		nonces[account] = nonce
	}
	return nonces
}

// Clone makes an independent copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	clone := NewLedger()
	for account, balance := range l.balances {
		clone.balances[account] = balance
	}
	for account, nonce := range l.nonces {
		clone.nonces[account] = nonce
	}
	return clone
}
