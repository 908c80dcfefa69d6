package consensus

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/meridian-dag/consensus/hash"
)

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	original := &Block{
		Header: BlockHeader{
			SelectedParent: hash.Hash{1, 2, 3},
			MergeParents:   []Hash{{4, 5, 6}, {7, 8, 9}},
			Height:         42,
			Timestamp:      1_700_000_000,
			Proposer:       PublicKey{0xAA, 0xBB},
			VRFProof:       []byte("proof-bytes"),
			StateRoot:      hash.Hash{10},
			TxRoot:         hash.Hash{11},
			ReceiptRoot:    hash.Hash{12},
			Signature:      []byte("signature-bytes"),
		},
		Transactions: [][]byte{[]byte("tx1"), []byte("tx2"), {}},
	}
	original.Header.Hash, _ = RecomputeHash(&original.Header, hash.DefaultHasher)

	data, err := Serialize(original)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	decoded, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	if !reflect.DeepEqual(decoded.Header, original.Header) {
		t.Errorf("Deserialize: header round-trip mismatch - got %s, want %s",
			spew.Sdump(decoded.Header), spew.Sdump(original.Header))
	}

	if decoded.Header.Hash != original.Header.Hash {
		t.Fatalf("hash mismatch: got %s, want %s", decoded.Header.Hash, original.Header.Hash)
	}
	if decoded.Header.SelectedParent != original.Header.SelectedParent {
		t.Fatalf("selected parent mismatch")
	}
	if len(decoded.Header.MergeParents) != len(original.Header.MergeParents) {
		t.Fatalf("merge parent count mismatch: got %d, want %d",
			len(decoded.Header.MergeParents), len(original.Header.MergeParents))
	}
	for i := range original.Header.MergeParents {
		if decoded.Header.MergeParents[i] != original.Header.MergeParents[i] {
			t.Fatalf("merge parent %d mismatch", i)
		}
	}
	if decoded.Header.Height != original.Header.Height {
		t.Fatalf("height mismatch: got %d, want %d", decoded.Header.Height, original.Header.Height)
	}
	if !bytes.Equal(decoded.Header.Proposer, original.Header.Proposer) {
		t.Fatalf("proposer mismatch")
	}
	if !bytes.Equal(decoded.Header.Signature, original.Header.Signature) {
		t.Fatalf("signature mismatch")
	}
	if len(decoded.Transactions) != len(original.Transactions) {
		t.Fatalf("transaction count mismatch")
	}
	for i := range original.Transactions {
		if !bytes.Equal(decoded.Transactions[i], original.Transactions[i]) {
			t.Fatalf("transaction %d mismatch", i)
		}
	}
}

func TestRecomputeHashDetectsTampering(t *testing.T) {
	header := BlockHeader{
		SelectedParent: hash.Hash{1},
		Height:         1,
		Timestamp:      1,
	}
	h, err := RecomputeHash(&header, hash.DefaultHasher)
	if err != nil {
		t.Fatalf("RecomputeHash: %v", err)
	}
	header.Hash = h

	tampered := header
	tampered.Timestamp = 2
	recomputed, err := RecomputeHash(&tampered, hash.DefaultHasher)
	if err != nil {
		t.Fatalf("RecomputeHash: %v", err)
	}
	if recomputed == header.Hash {
		t.Fatalf("tampered header recomputed to the same hash")
	}
}
