package consensus

import "github.com/meridian-dag/consensus/dagparams"

// Checkpoint is the external commitment emitted periodically along the
// finalized chain (spec §4.5). The gadget only constructs these from
// immutable chain facts — it never signs or gossips them.
type Checkpoint struct {
	Height    uint64
	Hash      Hash
	BlueScore uint64
}

// FinalityGadget decides when blocks become permanently committed and
// publishes the pruning horizon (spec §4.5). Modeled on the teacher's
// lastFinalityPoint/checkpointNode/nextCheckpoint fields and
// FinalityInterval constant (blockdag/dag.go).
type FinalityGadget struct {
	store         *DagStore
	scorer        *GhostDagScorer
	params        dagparams.GhostDagParams
	finalizedHead *blockNode

	// lastCheckpointHeight tracks the height of the most recently emitted
	// checkpoint so Advance only emits a new one every CheckpointInterval.
	lastCheckpointHeight uint64
}

// NewFinalityGadget constructs a gadget bound to store/scorer/params.
func NewFinalityGadget(store *DagStore, scorer *GhostDagScorer, params dagparams.GhostDagParams) *FinalityGadget {
	return &FinalityGadget{store: store, scorer: scorer, params: params}
}

// FinalizedHead returns the current finalized head, or the zero hash if
// nothing has finalized yet.
func (f *FinalityGadget) FinalizedHead() Hash {
	if f.finalizedHead == nil {
		return Hash{}
	}
	return f.finalizedHead.hash
}

// CheckViolation reports whether adopting newHead would produce a
// selected-parent chain whose common ancestor with the finalized head is
// strictly below the finalized head's height — a finality violation (spec
// §4.4 edge case, §4.5, §7 FinalityViolation).
//
// This must walk newHead's own selected-parent chain, not general DAG
// ancestry: a block can merge-parent-in the finalized head transitively
// through some other branch while its own selected-parent chain forks off
// before it, which is exactly the forbidden reorg §4.4 describes. Using
// isAncestorOf (BFS over both parent kinds) would wrongly treat that case
// as non-violating.
func (f *FinalityGadget) CheckViolation(chainSelector *ChainSelector, newHead Hash) (bool, error) {
	if f.finalizedHead == nil {
		return false, nil
	}
	if f.finalizedHead.hash == newHead {
		return false, nil
	}
	chain, err := chainSelector.selectedParentChain(newHead)
	if err != nil {
		return false, err
	}
	for _, n := range chain {
		if n.hash == f.finalizedHead.hash {
			return false, nil
		}
	}
	return true, nil
}

// Advance re-evaluates finalization and the pruning horizon after head has
// changed, returning any newly finalized checkpoint and/or a pruning
// bound. Finalization only ever moves forward along the selected-parent
// chain (spec §4.5 monotonicity).
func (f *FinalityGadget) Advance(head Hash) (*Checkpoint, *uint64, error) {
	headNode, ok := f.store.getNode(head)
	if !ok {
		return nil, nil, newErrorf(ErrMissingAncestor, "unknown head %s", head)
	}

	candidate := headNode
	for candidate != nil {
		if candidate.blueScore+f.params.FinalityDepth <= headNode.blueScore {
			break
		}
		candidate = candidate.selectedParent
	}
	if candidate == nil {
		return nil, nil, nil
	}
	if f.finalizedHead != nil && candidate.blueScore <= f.finalizedHead.blueScore {
		return nil, nil, nil
	}

	f.finalizedHead = candidate
	candidate.finalized = true

	var checkpoint *Checkpoint
	if f.params.CheckpointInterval > 0 &&
		candidate.height >= f.lastCheckpointHeight+f.params.CheckpointInterval {
		checkpoint = &Checkpoint{
			Height:    candidate.height,
			Hash:      candidate.hash,
			BlueScore: candidate.blueScore,
		}
		f.lastCheckpointHeight = candidate.height
	}

	var pruneBound *uint64
	if candidate.height >= f.params.PruningWindow {
		bound := candidate.height - f.params.PruningWindow
		pruneBound = &bound
	} else {
		zero := uint64(0)
		pruneBound = &zero
	}

	return checkpoint, pruneBound, nil
}
