package consensus

import (
	"github.com/meridian-dag/consensus/dagparams"
	"github.com/meridian-dag/consensus/hash"
)

// GhostDagScorer computes each block's blue-set and blue-score, enforcing
// the k-cluster rule (spec §4.2). Adapted from the teacher's
// blockdag/ghostdag.go — the actual GHOSTDAG reference algorithm
// (selectedParentAnticone / blueAnticoneSize / ghostdag), generalized from
// the teacher's single global phantomK to the spec's per-engine
// GhostDagParams and re-expressed over the spec's BlueSet type instead of
// the teacher's node.blues slice.
type GhostDagScorer struct {
	store  *DagStore
	params dagparams.GhostDagParams
}

// NewGhostDagScorer constructs a scorer bound to store and params.
func NewGhostDagScorer(store *DagStore, params dagparams.GhostDagParams) *GhostDagScorer {
	return &GhostDagScorer{store: store, params: params}
}

// Classify computes node's BlueSet and blue-score from its parents'
// already-classified state and structural ancestry (spec §4.2.1, §4.2.2).
// It never mutates an already-classified node (write-once cache, §4.2.3).
func (g *GhostDagScorer) Classify(node *blockNode) error {
	if node.classified {
		return nil
	}

	if node.isGenesis() {
		node.blueSet = newBlueSet()
		node.blueScore = 0
		node.classified = true
		return nil
	}

	parent := node.selectedParent
	if !parent.classified {
		return newErrorf(ErrMissingAncestor, "selected parent %s not yet classified", parent.hash)
	}

	blue := make(map[Hash]struct{}, len(parent.blueSet.Blue)+1)
	for h := range parent.blueSet.Blue {
		blue[h] = struct{}{}
	}
	blue[parent.hash] = struct{}{}
	red := make(map[Hash]struct{}, len(parent.blueSet.Red))
	for h := range parent.blueSet.Red {
		red[h] = struct{}{}
	}

	parentPast, err := g.store.pastCone(parent.hash, 0)
	if err != nil {
		return err
	}

	candidates, err := g.candidateSet(node, parent, blue, red, parentPast)
	if err != nil {
		return err
	}

	for _, c := range candidates {
		anticoneBlueSize, err := g.blueAnticoneSize(c, blue)
		if err != nil {
			return err
		}
		if anticoneBlueSize <= g.params.K {
			blue[c.hash] = struct{}{}
		} else {
			red[c.hash] = struct{}{}
		}
	}

	node.blueSet = BlueSet{Blue: blue, Red: red}
	node.blueScore = parent.blueScore + uint64(len(blue)-len(parent.blueSet.Blue))
	node.classified = true
	return nil
}

// candidateSet builds C: the union of past-cones of each merge parent,
// restricted to blocks not already in blue ∪ red ∪ past-cone(selected
// parent), ordered topologically (ancestors first, by height) with a
// lexicographic hash tie-break for determinism (spec §4.2.1 step 2).
func (g *GhostDagScorer) candidateSet(node, parent *blockNode, blue, red map[Hash]struct{}, parentPast map[Hash]struct{}) ([]*blockNode, error) {
	seen := newSet()
	var candidates []*blockNode

	for mergeParent := range node.parents {
		if mergeParent == parent {
			continue
		}
		mpPast, err := g.store.pastCone(mergeParent.hash, 0)
		if err != nil {
			return nil, err
		}
		mpPast[mergeParent.hash] = struct{}{}

		for h := range mpPast {
			if _, isBlue := blue[h]; isBlue {
				continue
			}
			if _, isRed := red[h]; isRed {
				continue
			}
			if _, inParentPast := parentPast[h]; inParentPast {
				continue
			}
			candNode, ok := g.store.getNode(h)
			if !ok {
				return nil, newErrorf(ErrMissingAncestor, "candidate %s not found", h)
			}
			if seen.containsHash(h) {
				continue
			}
			seen.add(candNode)
			candidates = append(candidates, candNode)
		}
	}

	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidateLess(candidates[j], candidates[j-1]); j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}
	return candidates, nil
}

func candidateLess(a, b *blockNode) bool {
	if a.height != b.height {
		return a.height < b.height
	}
	return hash.Less(a.hash, b.hash)
}

// blueAnticoneSize computes |{x ∈ blue : x ∉ past-cone(c) ∧ x ∉
// future-cone(c)}| for candidate c, short-circuiting once the running
// count exceeds K (spec §4.2.1 step 3, §9 caching notes).
func (g *GhostDagScorer) blueAnticoneSize(c *blockNode, blue map[Hash]struct{}) (uint32, error) {
	cPast, err := g.store.pastCone(c.hash, 0)
	if err != nil {
		return 0, err
	}
	cFuture, err := g.store.futureCone(c.hash)
	if err != nil {
		return 0, err
	}

	var count uint32
	for h := range blue {
		if _, inPast := cPast[h]; inPast {
			continue
		}
		if _, inFuture := cFuture[h]; inFuture {
			continue
		}
		count++
		if count > g.params.K {
			return count, nil
		}
	}
	return count, nil
}

// BlueScore returns node's cached blue-score, if classified.
func (g *GhostDagScorer) BlueScore(node *blockNode) (uint64, bool) {
	if !node.classified {
		return 0, false
	}
	return node.blueScore, true
}
