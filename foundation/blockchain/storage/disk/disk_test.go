package disk_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cypherchain/cypher/foundation/blockchain/database"
	"github.com/cypherchain/cypher/foundation/blockchain/storage/disk"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func testChain() []database.Block {
	genesisBlock := database.Block{
		Index:         0,
		TimeStamp:     1,
		Trans:         []database.Tx{database.NewFaucetTx("0f8af24e2d79d6817d22e358e26d7f2d5f574142", 1000, 0)},
		PrevBlockHash: database.ZeroPrevHash,
		Difficulty:    1,
	}

	return []database.Block{genesisBlock}
}

func Test_SaveLoad(t *testing.T) {
	t.Log("Given the need to persist the chain as a single document.")
	{
		t.Logf("\tTest 0:\tWhen saving and reloading a chain.")
		{
			path := filepath.Join(t.TempDir(), "zblock", "chain.db")

			d, err := disk.New(path)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct storage: %v", failed, err)
			}

			chain := testChain()
			if err := d.Save(chain); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to save the chain: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to save the chain.", success)

			loaded, err := d.Load()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to load the chain: %v", failed, err)
			}
			if len(loaded) != len(chain) {
				t.Fatalf("\t%s\tTest 0:\tShould load %d blocks, got %d.", failed, len(chain), len(loaded))
			}
			if loaded[0].Hash() != chain[0].Hash() {
				t.Fatalf("\t%s\tTest 0:\tShould load an identical genesis block.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould load the identical chain back.", success)
		}

		t.Logf("\tTest 1:\tWhen the chain file does not exist yet.")
		{
			d, err := disk.New(filepath.Join(t.TempDir(), "chain.db"))
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to construct storage: %v", failed, err)
			}

			chain, err := d.Load()
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould not fail on a missing file: %v", failed, err)
			}
			if chain != nil {
				t.Fatalf("\t%s\tTest 1:\tShould report an empty chain, got %d blocks.", failed, len(chain))
			}
			t.Logf("\t%s\tTest 1:\tShould report an empty chain for a fresh node.", success)
		}

		t.Logf("\tTest 2:\tWhen the document holds a malformed block.")
		{
			path := filepath.Join(t.TempDir(), "chain.db")

			d, err := disk.New(path)
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to construct storage: %v", failed, err)
			}

			doc := `[{"index":0,"timestamp":1,"transactions":[],"previous_hash":"oops","nonce":0,"difficulty":1}]`
			if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to write the document: %v", failed, err)
			}

			if _, err := d.Load(); err == nil || !strings.Contains(err.Error(), "block 0") {
				t.Fatalf("\t%s\tTest 2:\tShould reject the malformed document, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould reject a malformed document as a whole.", success)
		}
	}
}
