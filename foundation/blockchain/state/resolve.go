package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/cypherchain/cypher/foundation/blockchain/database"
	"github.com/cypherchain/cypher/foundation/blockchain/peer"
)

// FetchStatus classifies the outcome of a single peer chain fetch.
type FetchStatus string

// Set of outcomes a peer chain fetch can have. Anything but FetchOK drops
// the peer's candidate from consideration without failing resolution.
const (
	FetchOK          FetchStatus = "ok"
	FetchTimeout     FetchStatus = "timeout"
	FetchUnreachable FetchStatus = "unreachable"
	FetchInvalid     FetchStatus = "invalid"
)

// ChainFetch is the explicit per-peer result aggregated during conflict
// resolution.
type ChainFetch struct {
	Peer   peer.Peer
	Status FetchStatus
	Chain  []database.Block
	Err    error
}

// chainResponse matches the public /v1/chain payload peers serve.
type chainResponse struct {
	Length int                  `json:"length"`
	Chain  []database.BlockData `json:"chain"`
}

// =============================================================================

// Resolve implements the longest valid chain consensus rule. Every known
// peer's chain is fetched concurrently with a bounded timeout; among the
// candidates that fully validate, the longest one strictly longer than the
// local chain is adopted wholesale under the mutation lock. Fork choice is
// by length alone, with no cumulative difficulty weighting: a longer chain
// mined at a lower difficulty wins. That is an accepted limitation of the
// protocol.
func (s *State) Resolve(ctx context.Context) (bool, error) {
	self := peer.Peer{URL: s.host}
	peers := s.knownPeers.Copy(self)
	if len(peers) == 0 {
		return false, nil
	}

	s.evHandler("state: Resolve: started: peers[%d]", len(peers))
	defer s.evHandler("state: Resolve: completed")

	var longest []database.Block
	for _, fetch := range s.fetchPeerChains(ctx, peers) {
		switch fetch.Status {
		case FetchOK:
			s.evHandler("state: Resolve: peer[%s]: candidate blocks[%d]", fetch.Peer, len(fetch.Chain))
			if len(fetch.Chain) > len(longest) {
				longest = fetch.Chain
			}

		default:
			s.evHandler("state: Resolve: peer[%s]: dropped: %s: %v", fetch.Peer, fetch.Status, fetch.Err)
		}
	}

	if longest == nil {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(longest) <= len(s.chain) {
		return false, nil
	}

	if err := s.storage.Save(longest); err != nil {
		return false, fmt.Errorf("persisting adopted chain: %w", err)
	}

	// Adoption is wholesale: local blocks not present in the winning chain
	// are discarded, as are any claims their transactions had on the ledger.
	s.chain = longest
	s.evHandler("state: Resolve: chain replaced: blocks[%d]", len(longest))

	// The adopted chain may have consumed nonces or balances that pending
	// transactions still count on.
	if dropped := s.pruneMempool(); dropped > 0 {
		s.evHandler("state: Resolve: mempool pruned: dropped[%d]", dropped)
	}

	return true, nil
}

// =============================================================================

// fetchPeerChains queries every peer concurrently and aggregates the
// per-peer results before any replacement decision is made.
func (s *State) fetchPeerChains(ctx context.Context, peers []peer.Peer) []ChainFetch {
	fetches := make([]ChainFetch, len(peers))

	var wg sync.WaitGroup
	wg.Add(len(peers))

	for i, pr := range peers {
		go func(i int, pr peer.Peer) {
			defer wg.Done()
			fetches[i] = s.fetchChain(ctx, pr)
		}(i, pr)
	}
	wg.Wait()

	return fetches
}

// fetchChain retrieves and validates a single peer's chain, classifying
// every failure mode explicitly.
func (s *State) fetchChain(ctx context.Context, pr peer.Peer) ChainFetch {
	resp, err := s.client.R().SetContext(ctx).Get(pr.URL + "/v1/chain")
	if err != nil {
		status := FetchUnreachable
		var nerr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
			status = FetchTimeout
		}
		return ChainFetch{Peer: pr, Status: status, Err: err}
	}

	if resp.IsError() {
		return ChainFetch{Peer: pr, Status: FetchUnreachable, Err: fmt.Errorf("unexpected status %s", resp.Status())}
	}

	var body chainResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return ChainFetch{Peer: pr, Status: FetchInvalid, Err: fmt.Errorf("malformed payload: %w", err)}
	}

	chain := make([]database.Block, len(body.Chain))
	for i, bd := range body.Chain {
		block, err := database.ToBlock(bd)
		if err != nil {
			return ChainFetch{Peer: pr, Status: FetchInvalid, Err: err}
		}
		chain[i] = block
	}

	if err := database.ValidateChain(chain, nil); err != nil {
		return ChainFetch{Peer: pr, Status: FetchInvalid, Err: err}
	}

	return ChainFetch{Peer: pr, Status: FetchOK, Chain: chain}
}
