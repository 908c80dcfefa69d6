package consensus

import (
	"testing"

	"github.com/meridian-dag/consensus/dagparams"
)

// TestForkAndMergeClassifiesSiblingBlue covers a fork that later merges: a
// merge parent whose blue anticone size is within K is classified blue and
// contributes to its child's blue-score (spec §4.2.1/§4.2.2).
func TestForkAndMergeClassifiesSiblingBlue(t *testing.T) {
	e := newTestEngine(dagparams.Simnet) // K = 1

	genesis := genesisBlock(t)
	mustIngest(t, e, genesis)

	a := seedBlock(t, genesis.Header.Hash, nil, 1, 1)
	mustIngest(t, e, a)

	b := seedBlock(t, genesis.Header.Hash, nil, 1, 2)
	mustIngest(t, e, b)

	merged := seedBlock(t, a.Header.Hash, []Hash{b.Header.Hash}, 2, 3)
	mustIngest(t, e, merged)

	node, ok := e.store.getNode(merged.Header.Hash)
	if !ok {
		t.Fatalf("merged block not found in store")
	}
	if !node.blueSet.IsBlue(b.Header.Hash) {
		t.Fatalf("merge parent %s should classify blue under K=1", b.Header.Hash)
	}
	if !node.blueSet.IsBlue(a.Header.Hash) {
		t.Fatalf("selected parent %s must always be blue", a.Header.Hash)
	}

	// blue = {genesis, a, b}; parent a had blue = {genesis}, so the merge
	// contributes two new blue blocks on top of a's blue-score of 1.
	score, ok := e.BlueScore(merged.Header.Hash)
	if !ok {
		t.Fatalf("merged block not classified")
	}
	if score != 3 {
		t.Fatalf("merged blue-score = %d, want 3", score)
	}
}

// TestTipSelectorPicksHigherBlueScore checks that TipSelector prefers the
// tip with the larger blue-score as the selected parent (spec §4.3).
func TestTipSelectorPicksHigherBlueScore(t *testing.T) {
	e := newTestEngine(dagparams.Simnet)

	genesis := genesisBlock(t)
	mustIngest(t, e, genesis)

	a := seedBlock(t, genesis.Header.Hash, nil, 1, 1)
	mustIngest(t, e, a)

	aa := seedBlock(t, a.Header.Hash, nil, 2, 2)
	mustIngest(t, e, aa)

	b := seedBlock(t, genesis.Header.Hash, nil, 1, 3)
	mustIngest(t, e, b)

	selected, merge, err := e.SelectParents(10)
	if err != nil {
		t.Fatalf("SelectParents: %v", err)
	}
	if selected != aa.Header.Hash {
		t.Fatalf("selected parent = %s, want %s (higher blue-score)", selected, aa.Header.Hash)
	}

	found := false
	for _, m := range merge {
		if m == b.Header.Hash {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected merge parents %v to include sibling tip %s", merge, b.Header.Hash)
	}
}
