package state

import (
	"github.com/cypherchain/cypher/foundation/blockchain/database"
	"github.com/cypherchain/cypher/foundation/blockchain/genesis"
	"github.com/cypherchain/cypher/foundation/blockchain/peer"
)

// MinerAccountID returns the account configured to collect this node's
// mining rewards.
func (s *State) MinerAccountID() database.AccountID {
	return s.minerAccountID
}

// Host returns this node's own address.
func (s *State) Host() string {
	return s.host
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveChain returns a copy of the current chain.
func (s *State) RetrieveChain() []database.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	chain := make([]database.Block, len(s.chain))
	copy(chain, s.chain)

	return chain
}

// RetrieveLatestBlock returns a copy of the current chain head.
func (s *State) RetrieveLatestBlock() database.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain[len(s.chain)-1]
}

// RetrieveLedger projects the current chain into a ledger of balances and
// expected next nonces.
func (s *State) RetrieveLedger() *database.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()

	return database.Project(s.chain)
}

// RetrieveBalance returns the balance for the specified account derived
// from the current chain.
func (s *State) RetrieveBalance(account database.AccountID) int64 {
	return s.RetrieveLedger().Balance(account)
}

// RetrieveMempool returns a copy of the pending transactions in pick order.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.PickAll()
}

// MempoolCount returns the current number of pending transactions.
func (s *State) MempoolCount() int {
	return s.mempool.Count()
}

// RetrieveKnownPeers returns the list of known peers, excluding this node.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(peer.Peer{URL: s.host})
}

// RegisterPeer validates and adds a peer to the known peer set, reporting
// whether the peer was unknown so far.
func (s *State) RegisterPeer(address string) (bool, error) {
	pr, err := peer.New(address)
	if err != nil {
		return false, err
	}

	if pr.URL == s.host {
		return false, nil
	}

	added := s.knownPeers.Add(pr)
	if added {
		s.evHandler("state: RegisterPeer: added peer[%s]", pr)
	}

	return added, nil
}
