// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
)

// validate is used to check a genesis document after re-hydration. Construct
// once since validators cache struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Premine represents a single supply issuance in the genesis block. The
// original file format allowed "address" as an alias for "recipient" and
// that alias is still honored on load.
type Premine struct {
	Recipient string `json:"recipient"`
	Address   string `json:"address,omitempty"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	Nonce     uint64 `json:"nonce"`
}

// Genesis represents the genesis file.
type Genesis struct {
	ChainID           string    `json:"chain_id" validate:"required"`
	Date              time.Time `json:"genesis_time"`
	InitialDifficulty uint      `json:"initial_difficulty" validate:"required,gte=1,lte=5"`
	BlockReward       int64     `json:"block_reward" validate:"required,gt=0"`
	Premine           []Premine `json:"premine" validate:"dive"`
}

// =============================================================================

// Load opens and consumes the genesis file at the specified path. The
// document is validated field by field and a malformed file is rejected
// as a whole.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, fmt.Errorf("reading genesis file: %w", err)
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("unmarshal genesis file: %w", err)
	}

	// Resolve the recipient alias before validating.
	for i, pm := range genesis.Premine {
		if pm.Recipient == "" {
			genesis.Premine[i].Recipient = pm.Address
		}
	}

	if err := validate.Struct(genesis); err != nil {
		return Genesis{}, fmt.Errorf("invalid genesis file: %w", err)
	}

	return genesis, nil
}

// Save writes the genesis document to the specified path.
func Save(path string, genesis Genesis) error {
	data, err := json.MarshalIndent(genesis, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal genesis: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing genesis file: %w", err)
	}

	return nil
}
