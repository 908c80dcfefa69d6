package consensus

import (
	"context"
	"testing"

	"github.com/meridian-dag/consensus/dagparams"
)

// TestFinalityViolationRejectsDivergentFork covers spec §4.4/§4.5/§7: once a
// block has finalized, a competing branch that diverges below the
// finalized head must be rejected with ErrFinalityViolation, and the head
// must not move.
func TestFinalityViolationRejectsDivergentFork(t *testing.T) {
	e := newTestEngine(dagparams.Simnet) // FinalityDepth = 3

	genesis := genesisBlock(t)
	mustIngest(t, e, genesis)

	prev := genesis.Header.Hash
	var chain []*Block
	for height := uint64(1); height <= 4; height++ {
		block := seedBlock(t, prev, nil, height, byte(height))
		mustIngest(t, e, block)
		chain = append(chain, block)
		prev = block.Header.Hash
	}

	// blue-score equals height on a pure linear chain (TestLinearChainBlueScore),
	// so by the time the head reaches height 4 (blue-score 4), the block at
	// height 1 (blue-score 1) satisfies 1 + FinalityDepth(3) <= 4 and finalizes.
	h1 := chain[0]
	if e.FinalizedHead() != h1.Header.Hash {
		t.Fatalf("finalized head = %s, want height-1 block %s", e.FinalizedHead(), h1.Header.Hash)
	}

	headBeforeViolation := e.Head()

	// A fork from genesis bypasses the finalized height-1 block entirely.
	divergent := seedBlock(t, genesis.Header.Hash, nil, 1, 100)
	_, err := e.Ingest(context.Background(), divergent)
	if err == nil {
		t.Fatalf("expected ErrFinalityViolation, got no error")
	}
	code, ok := CodeOf(err)
	if !ok || code != ErrFinalityViolation {
		t.Fatalf("error = %v, want ErrFinalityViolation", err)
	}

	if e.Head() != headBeforeViolation {
		t.Fatalf("head changed after rejected block: got %s, want %s", e.Head(), headBeforeViolation)
	}
}
