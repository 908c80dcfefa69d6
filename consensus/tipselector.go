package consensus

// TipSelector chooses the selected parent and merge parents for a block
// about to be produced (spec §4.3). Generalized from the teacher's
// bluest-parent selection (blockdag/blues.go) and VirtualBlock's tip
// bookkeeping (virtualblock.go).
type TipSelector struct {
	store *DagStore
}

// NewTipSelector constructs a selector bound to store.
func NewTipSelector(store *DagStore) *TipSelector {
	return &TipSelector{store: store}
}

// Select returns exactly one selected parent (the tip with the maximum
// blue-score, ties broken by the lexicographically smaller hash) and up to
// maxMerge additional tips in descending blue-score order, excluding any
// tip that is already an ancestor of the selected parent (spec §4.3).
func (t *TipSelector) Select(maxMerge uint32) (Hash, []Hash, error) {
	tipHashes := t.store.tips()
	if len(tipHashes) == 0 {
		return Hash{}, nil, newError(ErrInvalidStructure, "no tips: DAG is empty")
	}

	tipNodes := make([]*blockNode, 0, len(tipHashes))
	for _, h := range tipHashes {
		node, ok := t.store.getNode(h)
		if !ok {
			return Hash{}, nil, newErrorf(ErrMissingAncestor, "tip %s vanished", h)
		}
		tipNodes = append(tipNodes, node)
	}

	ordered := make([]*blockNode, len(tipNodes))
	copy(ordered, tipNodes)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && byBlueScoreThenHash(ordered[j], ordered[j-1]); j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}

	selected := ordered[0]

	var merge []Hash
	for _, candidate := range ordered[1:] {
		if uint32(len(merge)) >= maxMerge {
			break
		}
		isAncestor, err := t.store.isAncestorOf(candidate.hash, selected.hash)
		if err != nil {
			return Hash{}, nil, err
		}
		if isAncestor {
			continue
		}
		merge = append(merge, candidate.hash)
	}

	return selected.hash, merge, nil
}
