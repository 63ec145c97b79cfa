package database_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cypherchain/cypher/foundation/blockchain/codec"
	"github.com/cypherchain/cypher/foundation/blockchain/database"
	"github.com/cypherchain/cypher/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// The private key for the account funded in these tests.
const pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"

// A recipient that only ever receives, so no key material is needed.
const recipient = database.AccountID("0f8af24e2d79d6817d22e358e26d7f2d5f574142")

// A miner account for coinbase rewards.
const miner = database.AccountID("ffff0000ffff0000ffff0000ffff0000ffff0000")

// =============================================================================

func noEvents(v string, args ...any) {}

// genesisChain returns a single-block chain that premines the specified
// amount to the account behind pkHexKey.
func genesisChain(t *testing.T, premine int64) ([]database.Block, database.AccountID) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the private key: %v", failed, err)
	}
	funded := database.AccountID(signature.AddressFromPublicKey(&pk.PublicKey))

	genesisBlock := database.Block{
		Index:         0,
		TimeStamp:     1,
		Trans:         []database.Tx{database.NewFaucetTx(funded, premine, 0)},
		PrevBlockHash: database.ZeroPrevHash,
		Difficulty:    1,
	}

	return []database.Block{genesisBlock}, funded
}

// signTx builds and signs a transaction from the funded test account.
func signTx(t *testing.T, to database.AccountID, amount int64, nonce uint64) database.Tx {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the private key: %v", failed, err)
	}
	sender := database.AccountID(signature.AddressFromPublicKey(&pk.PublicKey))

	tx, err := database.NewTx(sender, to, amount, nonce)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct a transaction: %v", failed, err)
	}

	signedTx, err := tx.Sign(pk)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to sign a transaction: %v", failed, err)
	}

	return signedTx
}

// mineBlock solves the proof of work for a block extending prev.
func mineBlock(t *testing.T, prev database.Block, trans []database.Tx) database.Block {
	nb := database.Block{
		Index:         prev.Index + 1,
		TimeStamp:     prev.TimeStamp + 1,
		Trans:         trans,
		PrevBlockHash: prev.Hash(),
		Difficulty:    prev.NextDifficulty(),
	}

	nonce, err := database.POW(context.Background(), nb, noEvents)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to solve the proof of work: %v", failed, err)
	}
	nb.Nonce = nonce

	return nb
}

// =============================================================================

func Test_ProjectChain(t *testing.T) {
	t.Log("Given the need to project a chain into a ledger.")
	{
		t.Logf("\tTest 0:\tWhen replaying a premine, a payment, and a reward.")
		{
			chain, funded := genesisChain(t, 1000)

			trans := []database.Tx{
				database.NewCoinbaseTx(miner, 50),
				signTx(t, recipient, 100, 0),
			}
			chain = append(chain, mineBlock(t, chain[0], trans))

			if err := database.ValidateChain(chain, nil); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to validate the chain: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to validate the chain.", success)

			ledger := database.Project(chain)

			if got := ledger.Balance(funded); got != 900 {
				t.Fatalf("\t%s\tTest 0:\tShould have 900 for the funded account, got %d.", failed, got)
			}
			if got := ledger.Balance(recipient); got != 100 {
				t.Fatalf("\t%s\tTest 0:\tShould have 100 for the recipient, got %d.", failed, got)
			}
			if got := ledger.Balance(miner); got != 50 {
				t.Fatalf("\t%s\tTest 0:\tShould have 50 for the miner, got %d.", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould project the expected balances.", success)

			if got := ledger.NextNonce(funded); got != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould expect nonce 1 next for the funded account, got %d.", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould advance the sender's nonce.", success)
		}
	}
}

func Test_TransactionValidation(t *testing.T) {
	t.Log("Given the need to validate transactions against the ledger.")
	{
		chain, funded := genesisChain(t, 1000)
		ledger := database.Project(chain)

		t.Logf("\tTest 0:\tWhen the transaction carries no signature.")
		{
			tx, err := database.NewTx(funded, recipient, 100, 0)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct a transaction: %v", failed, err)
			}

			if err := tx.Validate(ledger); !errors.Is(err, database.ErrMissingSignature) {
				t.Fatalf("\t%s\tTest 0:\tShould reject an unsigned transaction, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject an unsigned transaction.", success)
		}

		t.Logf("\tTest 1:\tWhen the payload was tampered with after signing.")
		{
			tx := signTx(t, recipient, 100, 0)
			tx.Amount = 999

			if err := tx.Validate(ledger); !errors.Is(err, database.ErrInvalidSignature) {
				t.Fatalf("\t%s\tTest 1:\tShould reject a tampered transaction, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould reject a tampered transaction.", success)
		}

		t.Logf("\tTest 2:\tWhen the sender cannot cover the amount.")
		{
			tx := signTx(t, recipient, 2000, 0)

			if err := tx.Validate(ledger); !errors.Is(err, database.ErrInsufficientFunds) {
				t.Fatalf("\t%s\tTest 2:\tShould reject an overdraft, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould reject an overdraft.", success)
		}

		t.Logf("\tTest 3:\tWhen the nonce is not the one the ledger expects.")
		{
			tx := signTx(t, recipient, 100, 5)

			if err := tx.Validate(ledger); !errors.Is(err, database.ErrNonceMismatch) {
				t.Fatalf("\t%s\tTest 3:\tShould reject a gapped nonce, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 3:\tShould reject a gapped nonce.", success)
		}

		t.Logf("\tTest 4:\tWhen the nonce was already used.")
		{
			trans := []database.Tx{signTx(t, recipient, 100, 0)}
			chain = append(chain, mineBlock(t, chain[0], trans))
			ledger := database.Project(chain)

			if err := trans[0].Validate(ledger); !errors.Is(err, database.ErrNonceMismatch) {
				t.Fatalf("\t%s\tTest 4:\tShould reject a replayed transaction, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 4:\tShould reject a replayed transaction.", success)
		}
	}
}

func Test_CanonicalTxRecord(t *testing.T) {
	t.Log("Given the need to encode transactions into their canonical record.")
	{
		t.Logf("\tTest 0:\tWhen the transaction carries no key material.")
		{
			data, err := codec.Encode(database.NewFaucetTx(recipient, 100000, 0))
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to encode the transaction: %v", failed, err)
			}

			exp := `{"amount":100000,"nonce":0,"pubkey":null,"recipient":"0f8af24e2d79d6817d22e358e26d7f2d5f574142","sender":"GENESIS_FAUCET","signature":null}`
			if got := string(data); got != exp {
				t.Fatalf("\t%s\tTest 0:\tShould encode absent key material as null.\n\t\tGot: %s\n\t\tExp: %s", failed, got, exp)
			}
			t.Logf("\t%s\tTest 0:\tShould encode absent key material as null.", success)
		}

		t.Logf("\tTest 1:\tWhen the transaction is signed.")
		{
			data, err := codec.Encode(signTx(t, recipient, 100, 0))
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to encode the transaction: %v", failed, err)
			}

			got := string(data)
			if strings.Contains(got, `"pubkey":null`) || strings.Contains(got, `"signature":null`) {
				t.Fatalf("\t%s\tTest 1:\tShould carry the key material, got %s.", failed, got)
			}
			if !strings.Contains(got, `"pubkey":"`) || !strings.Contains(got, `"signature":"`) {
				t.Fatalf("\t%s\tTest 1:\tShould encode the key material as hex strings, got %s.", failed, got)
			}
			t.Logf("\t%s\tTest 1:\tShould encode the key material as hex strings.", success)
		}
	}
}

func Test_BlockValidation(t *testing.T) {
	t.Log("Given the need to validate candidate blocks.")
	{
		t.Logf("\tTest 0:\tWhen one sender appears twice with consecutive nonces.")
		{
			chain, _ := genesisChain(t, 1000)
			ledger := database.Project(chain)

			trans := []database.Tx{
				signTx(t, recipient, 100, 0),
				signTx(t, recipient, 100, 1),
			}
			block := mineBlock(t, chain[0], trans)

			if err := block.ValidateBlock(&chain[0], ledger, nil); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept consecutive nonces in one block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould accept consecutive nonces in one block.", success)
		}

		t.Logf("\tTest 1:\tWhen one sender repeats a nonce inside a block.")
		{
			chain, _ := genesisChain(t, 1000)
			ledger := database.Project(chain)

			trans := []database.Tx{
				signTx(t, recipient, 100, 0),
				signTx(t, recipient, 100, 0),
			}
			block := mineBlock(t, chain[0], trans)

			if err := block.ValidateBlock(&chain[0], ledger, nil); !errors.Is(err, database.ErrNonceMismatch) {
				t.Fatalf("\t%s\tTest 1:\tShould reject a repeated nonce, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould reject a repeated nonce.", success)
		}

		t.Logf("\tTest 2:\tWhen the block does not link to its parent.")
		{
			chain, _ := genesisChain(t, 1000)
			ledger := database.Project(chain)

			block := mineBlock(t, chain[0], []database.Tx{database.NewCoinbaseTx(miner, 50)})
			block.PrevBlockHash = database.ZeroPrevHash

			if err := block.ValidateBlock(&chain[0], ledger, nil); !errors.Is(err, database.ErrBadLinkage) {
				t.Fatalf("\t%s\tTest 2:\tShould reject broken linkage, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould reject broken linkage.", success)
		}

		t.Logf("\tTest 3:\tWhen the proof of work was not solved.")
		{
			chain, _ := genesisChain(t, 1000)
			ledger := database.Project(chain)

			block := mineBlock(t, chain[0], []database.Tx{database.NewCoinbaseTx(miner, 50)})

			// Walk the nonce off the solution until the hash misses the target.
			for {
				block.Nonce++
				if block.Hash()[0] != '0' {
					break
				}
			}

			if err := block.ValidateBlock(&chain[0], ledger, nil); !errors.Is(err, database.ErrInvalidPOW) {
				t.Fatalf("\t%s\tTest 3:\tShould reject an unsolved block, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 3:\tShould reject an unsolved block.", success)
		}
	}
}

func Test_ChainTamper(t *testing.T) {
	t.Log("Given the need to detect a tampered block in the middle of a chain.")
	{
		t.Logf("\tTest 0:\tWhen an amount changes after the chain was extended.")
		{
			chain, _ := genesisChain(t, 1000)
			chain = append(chain, mineBlock(t, chain[0], []database.Tx{signTx(t, recipient, 100, 0)}))
			chain = append(chain, mineBlock(t, chain[1], []database.Tx{signTx(t, recipient, 100, 1)}))

			if err := database.ValidateChain(chain, nil); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to validate the untampered chain: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to validate the untampered chain.", success)

			chain[1].Trans[0].Amount = 900

			if err := database.ValidateChain(chain, nil); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject the tampered chain.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject the tampered chain.", success)
		}
	}
}

func Test_ChainGenesisShape(t *testing.T) {
	t.Log("Given the need to anchor chain validation at a genesis block.")
	{
		t.Logf("\tTest 0:\tWhen the first block claims a nonzero index.")
		{
			chain, _ := genesisChain(t, 1000)
			chain[0].Index = 3

			if err := database.ValidateChain(chain, nil); !errors.Is(err, database.ErrBadLinkage) {
				t.Fatalf("\t%s\tTest 0:\tShould reject a chain starting past genesis, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a chain starting past genesis.", success)
		}

		t.Logf("\tTest 1:\tWhen the first block claims a parent hash.")
		{
			chain, _ := genesisChain(t, 1000)
			chain[0].PrevBlockHash = strings.Repeat("ab", 32)

			if err := database.ValidateChain(chain, nil); !errors.Is(err, database.ErrBadLinkage) {
				t.Fatalf("\t%s\tTest 1:\tShould reject a genesis with a parent hash, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould reject a genesis with a parent hash.", success)
		}
	}
}

func Test_Difficulty(t *testing.T) {
	t.Log("Given the need to adjust difficulty on a fixed schedule.")
	{
		t.Logf("\tTest 0:\tWhen walking block indexes across the bump boundary.")
		{
			b := database.Block{Index: 9, Difficulty: 1}
			if got := b.NextDifficulty(); got != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould hold difficulty at 1 after block 9, got %d.", failed, got)
			}

			b = database.Block{Index: 10, Difficulty: 1}
			if got := b.NextDifficulty(); got != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould bump difficulty to 2 after block 10, got %d.", failed, got)
			}

			b = database.Block{Index: 0, Difficulty: 1}
			if got := b.NextDifficulty(); got != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould never bump off the genesis block, got %d.", failed, got)
			}

			b = database.Block{Index: 50, Difficulty: database.MaxDifficulty}
			if got := b.NextDifficulty(); got != database.MaxDifficulty {
				t.Fatalf("\t%s\tTest 0:\tShould cap difficulty at %d, got %d.", failed, database.MaxDifficulty, got)
			}
			t.Logf("\t%s\tTest 0:\tShould follow the difficulty schedule.", success)
		}
	}
}
