package database

import "errors"

// Special senders that represent newly issued supply. Transactions from
// these senders bypass signature and balance checks entirely.
const (
	SenderCoinbase      AccountID = "COINBASE"
	SenderGenesisFaucet AccountID = "GENESIS_FAUCET"
)

// AccountID represents an account address that can send or receive funds on
// the blockchain, or one of the special issuance senders.
type AccountID string

// ToAccountID converts a string to an AccountID and validates it is either a
// properly formatted address or a special issuance sender.
func ToAccountID(s string) (AccountID, error) {
	a := AccountID(s)
	if !a.IsAccountID() {
		return "", errors.New("invalid account format")
	}

	return a, nil
}

// IsAccountID verifies whether the underlying data represents a valid
// account, which is either an issuance sender or a 40 character lowercase
// hex address.
func (a AccountID) IsAccountID() bool {
	if a.IsIssuance() {
		return true
	}

	const addressLength = 40

	return len(a) == addressLength && isHex(string(a))
}

// IsIssuance reports whether the account is one of the special senders that
// mint new supply.
func (a AccountID) IsIssuance() bool {
	return a == SenderCoinbase || a == SenderGenesisFaucet
}

// =============================================================================

// isHex validates whether each byte is a valid lowercase hex character.
func isHex(s string) bool {
	for _, c := range []byte(s) {
		if !isHexCharacter(c) {
			return false
		}
	}

	return true
}

// isHexCharacter returns bool of c being a valid lowercase hexadecimal.
func isHexCharacter(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f')
}
