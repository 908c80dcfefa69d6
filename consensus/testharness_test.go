package consensus

import (
	"context"
	"testing"

	"github.com/meridian-dag/consensus/dagparams"
	"github.com/meridian-dag/consensus/hash"
)

// newTestEngine builds an Engine over params with no repository and no
// crypto collaborator wired in, mirroring the teacher's DAGSetup but
// simplified since this package's Engine needs no on-disk database to run
// (blockdag/test_utils.go).
func newTestEngine(params dagparams.GhostDagParams) *Engine {
	return NewEngine(Config{Params: params})
}

// seedBlock builds a structurally valid, correctly-hashed block. seed
// distinguishes otherwise-identical blocks (same parents/height) so their
// hashes differ, standing in for the teacher's per-test coinbase/nonce
// variation.
func seedBlock(t *testing.T, selectedParent Hash, mergeParents []Hash, height uint64, seed byte) *Block {
	t.Helper()
	return seedBlockWithTimestamp(t, selectedParent, mergeParents, height, seed, uint64(height)*10+uint64(seed))
}

// seedBlockWithTimestamp is seedBlock with an explicit timestamp, for tests
// that exercise delayed-block admission against a controlled clock.
func seedBlockWithTimestamp(t *testing.T, selectedParent Hash, mergeParents []Hash, height uint64, seed byte, timestamp uint64) *Block {
	t.Helper()

	header := BlockHeader{
		SelectedParent: selectedParent,
		MergeParents:   mergeParents,
		Height:         height,
		Timestamp:      timestamp,
	}
	header.StateRoot[0] = seed

	h, err := RecomputeHash(&header, hash.DefaultHasher)
	if err != nil {
		t.Fatalf("RecomputeHash: %v", err)
	}
	header.Hash = h

	return &Block{Header: header}
}

func genesisBlock(t *testing.T) *Block {
	t.Helper()
	return seedBlock(t, Hash{}, nil, 0, 0)
}

func mustIngest(t *testing.T, e *Engine, block *Block) *IngestResult {
	t.Helper()
	result, err := e.Ingest(context.Background(), block)
	if err != nil {
		t.Fatalf("Ingest(%s): unexpected error: %v", block.Header.Hash, err)
	}
	return result
}
