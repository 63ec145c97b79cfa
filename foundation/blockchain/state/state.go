// Package state is the core API for the blockchain node and implements all
// the business rules and processing.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/cypherchain/cypher/foundation/blockchain/database"
	"github.com/cypherchain/cypher/foundation/blockchain/genesis"
	"github.com/cypherchain/cypher/foundation/blockchain/mempool"
	"github.com/cypherchain/cypher/foundation/blockchain/peer"
	"github.com/go-resty/resty/v2"
)

// defaultFetchTimeout bounds a single peer chain fetch during conflict
// resolution.
const defaultFetchTimeout = 4 * time.Second

// EventHandler defines a function that is called when events occur in the
// processing of the blockchain.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by
// any package providing support for background mining and conflict
// resolution.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
}

// Storage interface represents the behavior required to be implemented by
// any package providing support for persisting the chain.
type Storage interface {
	Save(chain []database.Block) error
	Load() ([]database.Block, error)
}

// =============================================================================

// Config represents the configuration required to start the blockchain
// node. Paths and peers arrive explicitly; the core never consults the
// environment.
type Config struct {
	MinerAccountID database.AccountID
	Host           string
	Genesis        genesis.Genesis
	Storage        Storage
	KnownPeers     *peer.PeerSet
	EvHandler      EventHandler
	FetchTimeout   time.Duration
}

// State manages the blockchain node. The state value exclusively owns the
// chain and the pending pool; one mutex guards every chain-mutating
// operation while reads serve concurrently against copies.
type State struct {
	mu sync.Mutex

	minerAccountID database.AccountID
	host           string
	genesis        genesis.Genesis
	chain          []database.Block
	mempool        *mempool.Mempool
	knownPeers     *peer.PeerSet
	storage        Storage
	client         *resty.Client
	evHandler      EventHandler

	Worker Worker
}

// New constructs a new blockchain node state. An existing chain loads from
// storage and is fully validated before use; a fresh node bootstraps the
// genesis block from the genesis configuration and persists it.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	chain, err := cfg.Storage.Load()
	if err != nil {
		return nil, fmt.Errorf("loading chain: %w", err)
	}

	switch len(chain) {
	case 0:
		block, err := genesisBlock(cfg.Genesis)
		if err != nil {
			return nil, err
		}
		chain = []database.Block{block}

		if err := cfg.Storage.Save(chain); err != nil {
			return nil, fmt.Errorf("persisting genesis block: %w", err)
		}
		ev("state: New: genesis block created: hash[%s]", block.Hash())

	default:
		if err := database.ValidateChain(chain, ev); err != nil {
			return nil, fmt.Errorf("stored chain rejected: %w", err)
		}
		ev("state: New: chain loaded: blocks[%d]", len(chain))
	}

	timeout := cfg.FetchTimeout
	if timeout == 0 {
		timeout = defaultFetchTimeout
	}

	state := State{
		minerAccountID: cfg.MinerAccountID,
		host:           cfg.Host,
		genesis:        cfg.Genesis,
		chain:          chain,
		mempool:        mempool.New(),
		knownPeers:     cfg.KnownPeers,
		storage:        cfg.Storage,
		client:         resty.New().SetTimeout(timeout),
		evHandler:      ev,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start the background processing.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// =============================================================================

// genesisBlock constructs the first block of a fresh chain from the genesis
// configuration. Premine entries become faucet issuance transactions.
func genesisBlock(g genesis.Genesis) (database.Block, error) {
	trans := make([]database.Tx, 0, len(g.Premine))
	for _, pm := range g.Premine {
		recipient, err := database.ToAccountID(pm.Recipient)
		if err != nil {
			return database.Block{}, fmt.Errorf("premine recipient %q: %w", pm.Recipient, err)
		}
		trans = append(trans, database.NewFaucetTx(recipient, pm.Amount, pm.Nonce))
	}

	timeStamp := now()
	if !g.Date.IsZero() {
		timeStamp = float64(g.Date.UTC().UnixNano()) / float64(time.Second)
	}

	block := database.Block{
		Index:         0,
		TimeStamp:     timeStamp,
		Trans:         trans,
		PrevBlockHash: database.ZeroPrevHash,
		Nonce:         0,
		Difficulty:    g.InitialDifficulty,
	}

	return block, nil
}

// now returns the current time as seconds since the epoch with fractional
// precision, the timestamp form blocks carry.
func now() float64 {
	return float64(time.Now().UTC().UnixNano()) / float64(time.Second)
}
