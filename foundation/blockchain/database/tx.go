package database

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"

	"github.com/cypherchain/cypher/foundation/blockchain/signature"
)

// Tx is the transactional information between two parties. A transaction
// from an issuance sender carries no key material; every other transaction
// must be signed by the sender.
type Tx struct {
	Sender    AccountID `json:"sender"`
	Recipient AccountID `json:"recipient"`
	Amount    int64     `json:"amount"`
	Nonce     uint64    `json:"nonce"`
	PubKey    string    `json:"pubkey"`
	Signature string    `json:"signature"`
}

// MarshalJSON implements the json.Marshaler interface. Absent key material
// encodes as an explicit null: the canonical record of an issuance
// transaction carries all six fields, so its hash never depends on which
// fields happen to be set.
func (tx Tx) MarshalJSON() ([]byte, error) {
	record := struct {
		Sender    AccountID `json:"sender"`
		Recipient AccountID `json:"recipient"`
		Amount    int64     `json:"amount"`
		Nonce     uint64    `json:"nonce"`
		PubKey    *string   `json:"pubkey"`
		Signature *string   `json:"signature"`
	}{
		Sender:    tx.Sender,
		Recipient: tx.Recipient,
		Amount:    tx.Amount,
		Nonce:     tx.Nonce,
	}

	if tx.PubKey != "" {
		record.PubKey = &tx.PubKey
	}
	if tx.Signature != "" {
		record.Signature = &tx.Signature
	}

	return json.Marshal(record)
}

// NewTx constructs an unsigned transaction between two accounts.
func NewTx(sender AccountID, recipient AccountID, amount int64, nonce uint64) (Tx, error) {
	if !sender.IsAccountID() {
		return Tx{}, fmt.Errorf("sender account is not properly formatted")
	}
	if !recipient.IsAccountID() {
		return Tx{}, fmt.Errorf("recipient account is not properly formatted")
	}

	tx := Tx{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
		Nonce:     nonce,
	}

	return tx, nil
}

// NewCoinbaseTx constructs the reward transaction a miner places at the head
// of every mined block.
func NewCoinbaseTx(miner AccountID, reward int64) Tx {
	return Tx{
		Sender:    SenderCoinbase,
		Recipient: miner,
		Amount:    reward,
		Nonce:     0,
	}
}

// NewFaucetTx constructs a genesis premine transaction.
func NewFaucetTx(recipient AccountID, amount int64, nonce uint64) Tx {
	return Tx{
		Sender:    SenderGenesisFaucet,
		Recipient: recipient,
		Amount:    amount,
		Nonce:     nonce,
	}
}

// IsIssuance reports whether the transaction mints new supply and therefore
// bypasses signature and balance checks.
func (tx Tx) IsIssuance() bool {
	return tx.Sender.IsIssuance()
}

// Sign uses the specified private key to sign the transaction payload. The
// sender must be the address derived from the key's public key.
func (tx Tx) Sign(privateKey *ecdsa.PrivateKey) (Tx, error) {
	if tx.IsIssuance() {
		return Tx{}, fmt.Errorf("issuance transactions are never signed")
	}

	address := signature.AddressFromPublicKey(&privateKey.PublicKey)
	if tx.Sender != AccountID(address) {
		return Tx{}, fmt.Errorf("sender %s is not the key's address %s", tx.Sender, address)
	}

	pubKey, sig, err := signature.Sign(privateKey, string(tx.Sender), string(tx.Recipient), tx.Amount, tx.Nonce)
	if err != nil {
		return Tx{}, err
	}

	signedTx := tx
	signedTx.PubKey = pubKey
	signedTx.Signature = sig

	return signedTx, nil
}

// Validate checks the transaction against the specified ledger state. An
// issuance transaction is trusted by construction and always passes; the
// miner and the genesis loader are the only producers of such transactions,
// an invariant the API layer enforces.
func (tx Tx) Validate(ledger *Ledger) error {
	if tx.IsIssuance() {
		return nil
	}

	if tx.PubKey == "" || tx.Signature == "" {
		return ErrMissingSignature
	}

	if !signature.Verify(tx.PubKey, tx.Signature, string(tx.Sender), string(tx.Recipient), tx.Amount, tx.Nonce) {
		return ErrInvalidSignature
	}

	address, err := signature.Address(tx.PubKey)
	if err != nil || AccountID(address) != tx.Sender {
		return ErrAddressMismatch
	}

	if tx.Amount <= 0 {
		return ErrInvalidAmount
	}

	if balance := ledger.Balance(tx.Sender); balance < tx.Amount {
		return fmt.Errorf("%w: balance %d, needed %d", ErrInsufficientFunds, balance, tx.Amount)
	}

	// Strict equality guarantees a total order of a sender's transactions
	// and blocks replay attacks.
	if expected := ledger.NextNonce(tx.Sender); tx.Nonce != expected {
		return fmt.Errorf("%w: got %d, exp %d", ErrNonceMismatch, tx.Nonce, expected)
	}

	return nil
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:%d", tx.Sender, tx.Nonce)
}
