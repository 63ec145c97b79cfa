// Package peer maintains the set of known peer nodes this node can ask for
// their chains during conflict resolution.
package peer

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Peer represents information about a node in the network.
type Peer struct {
	URL string
}

// New validates the address and constructs a new peer value. Peers register
// with a base URL like http://host:port.
func New(address string) (Peer, error) {
	address = strings.TrimRight(strings.TrimSpace(address), "/")
	if address == "" {
		return Peer{}, fmt.Errorf("empty peer address")
	}

	u, err := url.Parse(address)
	if err != nil {
		return Peer{}, fmt.Errorf("parsing peer address: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Peer{}, fmt.Errorf("peer address %q must use http or https", address)
	}
	if u.Host == "" {
		return Peer{}, fmt.Errorf("peer address %q missing host", address)
	}

	return Peer{URL: address}, nil
}

// Match validates if the specified peer matches this peer.
func (p Peer) Match(peer Peer) bool {
	return p.URL == peer.URL
}

// String implements the fmt.Stringer interface.
func (p Peer) String() string {
	return p.URL
}

// =============================================================================

// PeerSet represents the data representation to maintain a set of known
// peers.
type PeerSet struct {
	mu  sync.RWMutex
	set map[Peer]struct{}
}

// NewPeerSet constructs a new set to manage node peer information.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		set: make(map[Peer]struct{}),
	}
}

// Add adds a new peer to the set, reporting whether it was unknown so far.
func (ps *PeerSet) Add(peer Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.set[peer]; !exists {
		ps.set[peer] = struct{}{}
		return true
	}

	return false
}

// Remove removes a peer from the set.
func (ps *PeerSet) Remove(peer Peer) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.set, peer)
}

// Count returns the number of known peers.
func (ps *PeerSet) Count() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.set)
}

// Copy returns a list of the known peers, excluding the specified self
// address if present.
func (ps *PeerSet) Copy(self Peer) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	var peers []Peer
	for peer := range ps.set {
		if !peer.Match(self) {
			peers = append(peers, peer)
		}
	}

	return peers
}
