package public

import (
	"github.com/cypherchain/cypher/foundation/blockchain/database"
)

// tx represents a pending or committed transaction with name resolution
// applied to both parties.
type tx struct {
	Sender        database.AccountID `json:"sender"`
	SenderName    string             `json:"sender_name"`
	Recipient     database.AccountID `json:"recipient"`
	RecipientName string             `json:"recipient_name"`
	Amount        int64              `json:"amount"`
	Nonce         uint64             `json:"nonce"`
	Signature     string             `json:"signature,omitempty"`
}

// info represents the ledger view of a single account.
type info struct {
	Account   database.AccountID `json:"account"`
	Name      string             `json:"name"`
	Balance   int64              `json:"balance"`
	NextNonce uint64             `json:"next_nonce"`
}

// actInfo is the ledger summary served by the balances endpoint.
type actInfo struct {
	LatestBlock string `json:"latest_block"`
	Uncommitted int    `json:"uncommitted"`
	Accounts    []info `json:"accounts"`
}

// chainInfo is the full chain document peers consume during conflict
// resolution. The field names are part of the node to node protocol.
type chainInfo struct {
	Length int                  `json:"length"`
	Chain  []database.BlockData `json:"chain"`
}
