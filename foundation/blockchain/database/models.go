package database

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate checks re-hydrated records before they become core types.
// Construct once since validators cache struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// TxData is the wire and disk representation of a transaction. Untrusted
// documents re-hydrate through this type so field presence and shape get
// checked before a Tx exists.
type TxData struct {
	Sender    string `json:"sender" validate:"required"`
	Recipient string `json:"recipient" validate:"required"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	Nonce     uint64 `json:"nonce"`
	PubKey    string `json:"pubkey,omitempty"`
	Signature string `json:"signature,omitempty" validate:"omitempty,hexadecimal"`
}

// BlockData is the wire and disk representation of a block.
type BlockData struct {
	Index         uint64   `json:"index"`
	TimeStamp     float64  `json:"timestamp" validate:"required"`
	Trans         []TxData `json:"transactions" validate:"dive"`
	PrevBlockHash string   `json:"previous_hash" validate:"required,len=64,hexadecimal"`
	Nonce         uint64   `json:"nonce"`
	Difficulty    uint     `json:"difficulty" validate:"required"`
}

// =============================================================================

// NewTxData constructs the value to serialize for a transaction.
func NewTxData(tx Tx) TxData {
	return TxData{
		Sender:    string(tx.Sender),
		Recipient: string(tx.Recipient),
		Amount:    tx.Amount,
		Nonce:     tx.Nonce,
		PubKey:    tx.PubKey,
		Signature: tx.Signature,
	}
}

// ToTx converts a re-hydrated transaction document into a Tx, rejecting
// malformed documents with a structured error.
func ToTx(data TxData) (Tx, error) {
	if err := validate.Struct(data); err != nil {
		return Tx{}, fmt.Errorf("invalid transaction record: %w", err)
	}

	sender, err := ToAccountID(data.Sender)
	if err != nil {
		return Tx{}, fmt.Errorf("invalid transaction sender %q: %w", data.Sender, err)
	}
	recipient, err := ToAccountID(data.Recipient)
	if err != nil {
		return Tx{}, fmt.Errorf("invalid transaction recipient %q: %w", data.Recipient, err)
	}

	tx := Tx{
		Sender:    sender,
		Recipient: recipient,
		Amount:    data.Amount,
		Nonce:     data.Nonce,
		PubKey:    data.PubKey,
		Signature: data.Signature,
	}

	return tx, nil
}

// NewBlockData constructs the value to serialize for a block.
func NewBlockData(block Block) BlockData {
	trans := make([]TxData, len(block.Trans))
	for i, tx := range block.Trans {
		trans[i] = NewTxData(tx)
	}

	return BlockData{
		Index:         block.Index,
		TimeStamp:     block.TimeStamp,
		Trans:         trans,
		PrevBlockHash: block.PrevBlockHash,
		Nonce:         block.Nonce,
		Difficulty:    block.Difficulty,
	}
}

// ToBlock converts a re-hydrated block document into a Block, rejecting
// malformed documents with a structured error.
func ToBlock(data BlockData) (Block, error) {
	if err := validate.Struct(data); err != nil {
		return Block{}, fmt.Errorf("invalid block record: %w", err)
	}

	trans := make([]Tx, len(data.Trans))
	for i, txData := range data.Trans {
		tx, err := ToTx(txData)
		if err != nil {
			return Block{}, fmt.Errorf("block %d: %w", data.Index, err)
		}
		trans[i] = tx
	}

	block := Block{
		Index:         data.Index,
		TimeStamp:     data.TimeStamp,
		Trans:         trans,
		PrevBlockHash: data.PrevBlockHash,
		Nonce:         data.Nonce,
		Difficulty:    data.Difficulty,
	}

	return block, nil
}
