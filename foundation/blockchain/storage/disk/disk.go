// Package disk implements chain persistence as a single JSON document on
// disk. The chain replaces wholesale when a peer's chain gets adopted, so
// the whole document is rewritten through a temp file and an atomic rename.
package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cypherchain/cypher/foundation/blockchain/database"
)

// Disk represents the storage implementation for reading and saving the
// chain to a JSON file on disk. This implements the state.Storage interface.
type Disk struct {
	path string
}

// New constructs a Disk value for use, creating the parent directory if
// needed.
func New(path string) (*Disk, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	return &Disk{path: path}, nil
}

// Save writes the whole chain to disk. The document lands in a temp file
// first and moves into place with a rename, so a crash mid-write never
// leaves a truncated chain behind.
func (d *Disk) Save(chain []database.Block) error {
	blockData := make([]database.BlockData, len(chain))
	for i, block := range chain {
		blockData[i] = database.NewBlockData(block)
	}

	data, err := json.MarshalIndent(blockData, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal chain: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.path), "chain-*.json")
	if err != nil {
		return fmt.Errorf("creating temp chain file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp chain file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp chain file: %w", err)
	}

	if err := os.Rename(tmp.Name(), d.path); err != nil {
		return fmt.Errorf("replacing chain file: %w", err)
	}

	return nil
}

// Load reads the whole chain from disk. A missing file returns an empty
// chain so a fresh node can bootstrap from genesis. Loading is all or
// nothing: any malformed block rejects the whole document and the in-memory
// state of the caller stays untouched.
func (d *Disk) Load() ([]database.Block, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading chain file: %w", err)
	}

	var blockData []database.BlockData
	if err := json.Unmarshal(data, &blockData); err != nil {
		return nil, fmt.Errorf("unmarshal chain file: %w", err)
	}

	chain := make([]database.Block, len(blockData))
	for i, bd := range blockData {
		block, err := database.ToBlock(bd)
		if err != nil {
			return nil, fmt.Errorf("chain file block %d: %w", i, err)
		}
		chain[i] = block
	}

	return chain, nil
}
