package peer_test

import (
	"testing"

	"github.com/cypherchain/cypher/foundation/blockchain/peer"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_New(t *testing.T) {
	t.Log("Given the need to validate peer addresses.")
	{
		t.Logf("\tTest 0:\tWhen handling well formed and malformed addresses.")
		{
			pr, err := peer.New("http://localhost:8080/")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept a http address: %v", failed, err)
			}
			if pr.URL != "http://localhost:8080" {
				t.Fatalf("\t%s\tTest 0:\tShould trim the trailing slash, got %q.", failed, pr.URL)
			}
			t.Logf("\t%s\tTest 0:\tShould accept and normalize a http address.", success)

			if _, err := peer.New("localhost:8080"); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject an address without a scheme.", failed)
			}
			if _, err := peer.New("ftp://localhost:8080"); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject a non http scheme.", failed)
			}
			if _, err := peer.New("  "); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject an empty address.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject malformed addresses.", success)
		}
	}
}

func Test_PeerSet(t *testing.T) {
	t.Log("Given the need to maintain a set of known peers.")
	{
		t.Logf("\tTest 0:\tWhen adding, copying, and removing peers.")
		{
			ps := peer.NewPeerSet()

			one, _ := peer.New("http://localhost:8080")
			two, _ := peer.New("http://localhost:8180")

			if !ps.Add(one) {
				t.Fatalf("\t%s\tTest 0:\tShould report an unknown peer as added.", failed)
			}
			if ps.Add(one) {
				t.Fatalf("\t%s\tTest 0:\tShould not report a known peer as added.", failed)
			}
			ps.Add(two)

			if got := ps.Count(); got != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould have 2 known peers, got %d.", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould add peers exactly once.", success)

			peers := ps.Copy(one)
			if len(peers) != 1 || !peers[0].Match(two) {
				t.Fatalf("\t%s\tTest 0:\tShould exclude self from the copy, got %v.", failed, peers)
			}
			t.Logf("\t%s\tTest 0:\tShould exclude self from the copy.", success)

			ps.Remove(two)
			if got := ps.Count(); got != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould have 1 known peer after remove, got %d.", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould remove peers.", success)
		}
	}
}
