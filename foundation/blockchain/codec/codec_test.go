package codec_test

import (
	"testing"

	"github.com/cypherchain/cypher/foundation/blockchain/codec"
)

func Test_Encode(t *testing.T) {
	value := struct {
		Sender    string `json:"sender"`
		Recipient string `json:"recipient"`
		Amount    int64  `json:"amount"`
		Nonce     uint64 `json:"nonce"`
	}{
		Sender:    "a1",
		Recipient: "b2",
		Amount:    100,
		Nonce:     0,
	}
	exp := `{"amount":100,"nonce":0,"recipient":"b2","sender":"a1"}`

	data, err := codec.Encode(value)
	if err != nil {
		t.Fatalf("Should be able to encode the value: %s", err)
	}

	if string(data) != exp {
		t.Logf("got: %s", data)
		t.Logf("exp: %s", exp)
		t.Fatalf("Should produce keys in sorted order with compact separators.")
	}
}

func Test_EncodeStructurallyEqual(t *testing.T) {

	// Two representations of the same record that a serialization library
	// could produce with different defaults. Both must encode identically.
	valueA := struct {
		Index     uint64  `json:"index"`
		TimeStamp float64 `json:"timestamp"`
	}{
		Index:     3,
		TimeStamp: 1755388800.25,
	}
	valueB := map[string]any{
		"timestamp": 1755388800.25,
		"index":     3,
	}

	dataA, err := codec.Encode(valueA)
	if err != nil {
		t.Fatalf("Should be able to encode the struct form: %s", err)
	}
	dataB, err := codec.Encode(valueB)
	if err != nil {
		t.Fatalf("Should be able to encode the map form: %s", err)
	}

	if string(dataA) != string(dataB) {
		t.Logf("got: %s", dataA)
		t.Logf("exp: %s", dataB)
		t.Fatalf("Should encode structurally equal records identically.")
	}
}

func Test_Hash(t *testing.T) {
	value := map[string]any{
		"index":         1,
		"previous_hash": codec.ZeroHash,
	}

	h1 := codec.Hash(value)
	h2 := codec.Hash(value)

	if h1 != h2 {
		t.Logf("got: %s", h2)
		t.Logf("exp: %s", h1)
		t.Fatalf("Should get back the same hash twice.")
	}

	if len(h1) != 64 {
		t.Fatalf("Should produce a 64 hex character hash, got %d.", len(h1))
	}

	if h1 == codec.ZeroHash {
		t.Fatalf("Should not produce the zero hash for a valid value.")
	}
}

func Test_HashNested(t *testing.T) {
	value := map[string]any{
		"transactions": []any{
			map[string]any{"sender": "COINBASE", "amount": 50},
		},
		"difficulty": 2,
	}

	h := codec.Hash(value)

	changed := map[string]any{
		"transactions": []any{
			map[string]any{"sender": "COINBASE", "amount": 51},
		},
		"difficulty": 2,
	}

	if codec.Hash(changed) == h {
		t.Fatalf("Should produce a different hash when a nested field changes.")
	}
}
