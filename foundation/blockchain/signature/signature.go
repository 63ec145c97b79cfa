// Package signature provides helper functions for handling the blockchain
// key, address and signature needs.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/cypherchain/cypher/foundation/blockchain/codec"
	"github.com/ethereum/go-ethereum/crypto"
)

// AddressVersion documents the address derivation scheme in use. An address
// is the last AddressLength hex characters of the sha256 hash over the
// uncompressed public key bytes.
const AddressVersion = "sha256-last40-v1"

// AddressLength is the number of hex characters in an address.
const AddressLength = 40

// payload is the exact portion of a transaction that is covered by a
// signature. The canonical encoding of this value is what gets signed.
type payload struct {
	Amount    int64  `json:"amount"`
	Nonce     uint64 `json:"nonce"`
	Recipient string `json:"recipient"`
	Sender    string `json:"sender"`
}

// PublicKeyHex returns the hex encoding of the uncompressed public key bytes.
func PublicKeyHex(publicKey *ecdsa.PublicKey) string {
	return hex.EncodeToString(crypto.FromECDSAPub(publicKey))
}

// Address derives the account address for the specified hex encoded public
// key. See AddressVersion for the derivation rule.
func Address(pubKeyHex string) (string, error) {
	pub, err := hex.DecodeString(pubKeyHex)
	if err != nil {
		return "", fmt.Errorf("decode public key: %w", err)
	}

	hash := sha256.Sum256(pub)
	hexHash := hex.EncodeToString(hash[:])

	return hexHash[len(hexHash)-AddressLength:], nil
}

// AddressFromPublicKey derives the account address directly from a key pair's
// public key.
func AddressFromPublicKey(publicKey *ecdsa.PublicKey) string {
	address, _ := Address(PublicKeyHex(publicKey))
	return address
}

// Sign signs the transaction payload with the specified private key. The
// underlying scheme produces deterministic nonces so signing the identical
// payload twice yields the identical signature.
func Sign(privateKey *ecdsa.PrivateKey, sender string, recipient string, amount int64, nonce uint64) (pubKeyHex string, sigHex string, err error) {
	digest, err := digest(sender, recipient, amount, nonce)
	if err != nil {
		return "", "", err
	}

	sig, err := crypto.Sign(digest, privateKey)
	if err != nil {
		return "", "", fmt.Errorf("signing payload: %w", err)
	}

	return PublicKeyHex(&privateKey.PublicKey), hex.EncodeToString(sig), nil
}

// Verify reports whether the signature covers the specified payload under the
// specified public key. Verify fails closed: malformed hex, an invalid curve
// point or a signature mismatch all report false and never an error.
func Verify(pubKeyHex string, sigHex string, sender string, recipient string, amount int64, nonce uint64) bool {
	pub, err := hex.DecodeString(pubKeyHex)
	if err != nil {
		return false
	}

	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return false
	}

	// Accept the 65 byte form that carries a recovery id. Only the R and S
	// components take part in verification.
	switch len(sig) {
	case 64:
	case 65:
		sig = sig[:64]
	default:
		return false
	}

	digest, err := digest(sender, recipient, amount, nonce)
	if err != nil {
		return false
	}

	return crypto.VerifySignature(pub, digest, sig)
}

// =============================================================================

// digest returns the 32 byte hash over the canonical encoding of the
// transaction payload.
func digest(sender string, recipient string, amount int64, nonce uint64) ([]byte, error) {
	p := payload{
		Amount:    amount,
		Nonce:     nonce,
		Recipient: recipient,
		Sender:    sender,
	}

	data, err := codec.Encode(p)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	hash := sha256.Sum256(data)
	return hash[:], nil
}
