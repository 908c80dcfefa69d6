package consensus

import (
	"testing"

	"github.com/meridian-dag/consensus/dagparams"
)

// TestReorgOnHigherBlueScoreBranch covers spec §4.4: a competing branch
// that eventually overtakes the current head's blue-score triggers a
// reorg, with ReorgResult naming the common ancestor and the revert/apply
// lists in the correct height order. The overtaking branch ends in a merge
// block so its final blue-score strictly exceeds the incumbent head's,
// avoiding a blue-score tie whose hash-order tie-break this test has no way
// to predict in advance.
func TestReorgOnHigherBlueScoreBranch(t *testing.T) {
	e := newTestEngine(dagparams.Simnet) // K = 1

	genesis := genesisBlock(t)
	mustIngest(t, e, genesis)

	a1 := seedBlock(t, genesis.Header.Hash, nil, 1, 1)
	mustIngest(t, e, a1)
	a2 := seedBlock(t, a1.Header.Hash, nil, 2, 2)
	resultA2 := mustIngest(t, e, a2)
	if resultA2.Head != a2.Header.Hash {
		t.Fatalf("head after a2 = %s, want %s", resultA2.Head, a2.Header.Hash)
	}

	b1 := seedBlock(t, genesis.Header.Hash, nil, 1, 3)
	mustIngest(t, e, b1)
	c1 := seedBlock(t, genesis.Header.Hash, nil, 1, 4)
	mustIngest(t, e, c1)

	// bMerge's blue-score is 3 (genesis, b1, c1), strictly above a2's 2.
	bMerge := seedBlock(t, b1.Header.Hash, []Hash{c1.Header.Hash}, 2, 5)
	resultMerge := mustIngest(t, e, bMerge)

	if resultMerge.Head != bMerge.Header.Hash {
		t.Fatalf("head after bMerge = %s, want %s", resultMerge.Head, bMerge.Header.Hash)
	}
	if resultMerge.Reorg == nil {
		t.Fatalf("expected a reorg result when bMerge overtakes the head")
	}
	if resultMerge.Reorg.CommonAncestor != genesis.Header.Hash {
		t.Fatalf("common ancestor = %s, want genesis %s", resultMerge.Reorg.CommonAncestor, genesis.Header.Hash)
	}

	wantRevert := map[Hash]bool{a1.Header.Hash: true, a2.Header.Hash: true}
	if len(resultMerge.Reorg.Revert) != len(wantRevert) {
		t.Fatalf("revert list = %v, want exactly %v", resultMerge.Reorg.Revert, wantRevert)
	}
	for _, reverted := range resultMerge.Reorg.Revert {
		if !wantRevert[reverted] {
			t.Fatalf("unexpected reverted block %s", reverted)
		}
	}

	wantApply := map[Hash]bool{b1.Header.Hash: true, bMerge.Header.Hash: true}
	if len(resultMerge.Reorg.Apply) != len(wantApply) {
		t.Fatalf("apply list = %v, want exactly %v", resultMerge.Reorg.Apply, wantApply)
	}
	for _, applied := range resultMerge.Reorg.Apply {
		if !wantApply[applied] {
			t.Fatalf("unexpected applied block %s", applied)
		}
	}
}

// TestIsAncestorGenesisAndChild checks that IsAncestor reports genesis as
// an ancestor of its child, and not the other way round.
func TestIsAncestorGenesisAndChild(t *testing.T) {
	e := newTestEngine(dagparams.Simnet)

	genesis := genesisBlock(t)
	mustIngest(t, e, genesis)

	a := seedBlock(t, genesis.Header.Hash, nil, 1, 1)
	mustIngest(t, e, a)

	isAncestor, err := e.IsAncestor(genesis.Header.Hash, a.Header.Hash)
	if err != nil {
		t.Fatalf("IsAncestor: %v", err)
	}
	if !isAncestor {
		t.Fatalf("genesis should be an ancestor of a")
	}

	isAncestor, err = e.IsAncestor(a.Header.Hash, genesis.Header.Hash)
	if err != nil {
		t.Fatalf("IsAncestor: %v", err)
	}
	if isAncestor {
		t.Fatalf("a should not be an ancestor of genesis")
	}
}
