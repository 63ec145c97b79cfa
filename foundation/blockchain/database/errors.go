package database

import "errors"

// Set of errors the transaction and block validation rules can return.
// Callers match with errors.Is since failures carry extra context.
var (
	ErrMissingSignature  = errors.New("transaction missing pubkey or signature")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrAddressMismatch   = errors.New("pubkey does not derive the sender address")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrNonceMismatch     = errors.New("nonce does not match the expected next nonce")

	ErrBadLinkage = errors.New("block does not link to the previous block")
	ErrInvalidPOW = errors.New("block hash does not satisfy the difficulty target")
)
