package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cypherchain/cypher/foundation/blockchain/genesis"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_Load(t *testing.T) {
	t.Log("Given the need to consume a genesis file.")
	{
		t.Logf("\tTest 0:\tWhen the file uses the address alias for a premine.")
		{
			doc := `{
				"chain_id": "cypher-main",
				"genesis_time": "2023-01-01T00:00:00Z",
				"initial_difficulty": 2,
				"block_reward": 50,
				"premine": [
					{"address": "0f8af24e2d79d6817d22e358e26d7f2d5f574142", "amount": 1000}
				]
			}`
			path := filepath.Join(t.TempDir(), "genesis.json")
			if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to write the file: %v", failed, err)
			}

			gen, err := genesis.Load(path)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to load the file: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to load the file.", success)

			if gen.ChainID != "cypher-main" || gen.InitialDifficulty != 2 || gen.BlockReward != 50 {
				t.Fatalf("\t%s\tTest 0:\tShould carry the document fields, got %+v.", failed, gen)
			}
			if len(gen.Premine) != 1 || gen.Premine[0].Recipient != "0f8af24e2d79d6817d22e358e26d7f2d5f574142" {
				t.Fatalf("\t%s\tTest 0:\tShould resolve the address alias, got %+v.", failed, gen.Premine)
			}
			t.Logf("\t%s\tTest 0:\tShould resolve the address alias into the recipient.", success)
		}

		t.Logf("\tTest 1:\tWhen the difficulty is outside the supported range.")
		{
			doc := `{"chain_id": "cypher-main", "initial_difficulty": 9, "block_reward": 50}`
			path := filepath.Join(t.TempDir(), "genesis.json")
			if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to write the file: %v", failed, err)
			}

			if _, err := genesis.Load(path); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould reject an out of range difficulty.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould reject an out of range difficulty.", success)
		}

		t.Logf("\tTest 2:\tWhen a premine has no amount.")
		{
			doc := `{
				"chain_id": "cypher-main",
				"initial_difficulty": 1,
				"block_reward": 50,
				"premine": [{"recipient": "0f8af24e2d79d6817d22e358e26d7f2d5f574142"}]
			}`
			path := filepath.Join(t.TempDir(), "genesis.json")
			if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to write the file: %v", failed, err)
			}

			if _, err := genesis.Load(path); err == nil {
				t.Fatalf("\t%s\tTest 2:\tShould reject a premine without an amount.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould reject a premine without an amount.", success)
		}

		t.Logf("\tTest 3:\tWhen saving and reloading a document.")
		{
			path := filepath.Join(t.TempDir(), "genesis.json")

			gen := genesis.Genesis{
				ChainID:           "cypher-test",
				InitialDifficulty: 1,
				BlockReward:       25,
			}
			if err := genesis.Save(path, gen); err != nil {
				t.Fatalf("\t%s\tTest 3:\tShould be able to save the document: %v", failed, err)
			}

			loaded, err := genesis.Load(path)
			if err != nil {
				t.Fatalf("\t%s\tTest 3:\tShould be able to reload the document: %v", failed, err)
			}
			if loaded.ChainID != gen.ChainID || loaded.BlockReward != gen.BlockReward {
				t.Fatalf("\t%s\tTest 3:\tShould reload identical fields, got %+v.", failed, loaded)
			}
			t.Logf("\t%s\tTest 3:\tShould round trip through disk.", success)
		}
	}
}
