package consensus

import (
	"github.com/pkg/errors"
)

// DagStore maintains the block set and its incremental relations: parents,
// children, tips, and the height index (spec §4.1). It is purely
// structural — it never scores blocks. Modeled on the structural half of
// the teacher's BlockDAG (index/virtual/tips fields in blockdag/dag.go and
// VirtualBlock.tips/addTip/setTips in virtualblock.go), minus locking: per
// spec §9 ("Global mutable state... passed explicitly, not ambient
// statics") and §5 (single exclusive lock owned by the engine), DagStore
// itself holds no lock — callers serialize access.
type DagStore struct {
	byHash      map[Hash]*blockNode
	tipSet      blockSet
	heightIndex map[uint64]blockSet
	genesis     *blockNode
}

// NewDagStore returns an empty store.
func NewDagStore() *DagStore {
	return &DagStore{
		byHash:      make(map[Hash]*blockNode),
		tipSet:      newSet(),
		heightIndex: make(map[uint64]blockSet),
	}
}

// insert validates structural rules and, on success, adds the block and
// updates children/tips/height-index atomically (spec §4.1).
func (s *DagStore) insert(block *Block) (*blockNode, error) {
	h := block.Header.Hash

	if _, exists := s.byHash[h]; exists {
		return nil, newErrorf(ErrDuplicateBlock, "block %s already stored", h)
	}

	if block.Header.IsGenesis() {
		if s.genesis != nil {
			return nil, newError(ErrInvalidStructure, "a genesis block is already stored")
		}
		if block.Header.Height != 0 {
			return nil, newError(ErrInvalidStructure, "genesis height must be 0")
		}
		node := newBlockNode(&block.Header)
		s.byHash[h] = node
		s.genesis = node
		s.tipSet.add(node)
		s.addToHeightIndex(node)
		return node, nil
	}

	parentHashes := block.Header.Parents()
	if len(parentHashes) == 0 {
		return nil, newError(ErrInvalidStructure, "non-genesis block has no parents")
	}

	seen := make(map[Hash]struct{}, len(parentHashes))
	for _, ph := range parentHashes {
		if ph == h {
			return nil, newError(ErrInvalidStructure, "block cannot be its own parent")
		}
		if _, dup := seen[ph]; dup {
			return nil, newErrorf(ErrInvalidStructure, "duplicate parent %s", ph)
		}
		seen[ph] = struct{}{}
	}
	for _, mp := range block.Header.MergeParents {
		if mp == block.Header.SelectedParent {
			return nil, newError(ErrInvalidStructure, "selected parent must not appear in merge parents")
		}
	}

	parentNodes := make([]*blockNode, 0, len(parentHashes))
	var maxParentHeight uint64
	for _, ph := range parentHashes {
		pn, ok := s.byHash[ph]
		if !ok {
			return nil, newErrorf(ErrMissingParents, "parent %s not found", ph)
		}
		parentNodes = append(parentNodes, pn)
		if pn.height > maxParentHeight {
			maxParentHeight = pn.height
		}
	}

	if block.Header.Height != maxParentHeight+1 {
		return nil, newErrorf(ErrInvalidStructure,
			"height mismatch: got %d, want %d", block.Header.Height, maxParentHeight+1)
	}

	selectedParentNode, ok := s.byHash[block.Header.SelectedParent]
	if !ok {
		return nil, newErrorf(ErrMissingParents, "selected parent %s not found", block.Header.SelectedParent)
	}

	node := newBlockNode(&block.Header)
	node.selectedParent = selectedParentNode
	for _, pn := range parentNodes {
		node.parents.add(pn)
	}

	// Commit: update children, tips, and the height index together so the
	// insert is all-or-nothing from the caller's point of view.
	s.byHash[h] = node
	for _, pn := range parentNodes {
		pn.children.add(node)
		s.tipSet.remove(pn)
	}
	s.tipSet.add(node)
	s.addToHeightIndex(node)

	return node, nil
}

// rollbackInsert undoes a just-completed insert of a leaf node (no
// children yet), restoring each parent's tip status. Used only by the
// engine to back out a block that failed a post-insert check — such as a
// finality violation — that insert itself cannot detect, since it needs
// the node already linked in to evaluate (spec §4.4/§7: "Reject, retain
// prior head" implies the rejected block leaves no trace in the store).
func (s *DagStore) rollbackInsert(node *blockNode) {
	if len(node.children) != 0 {
		return
	}
	for parent := range node.parents {
		delete(parent.children, node.hash)
		if len(parent.children) == 0 {
			s.tipSet.add(parent)
		}
	}
	s.tipSet.remove(node)
	delete(s.byHash, node.hash)
	if set, ok := s.heightIndex[node.height]; ok {
		set.remove(node)
		if len(set) == 0 {
			delete(s.heightIndex, node.height)
		}
	}
	if s.genesis == node {
		s.genesis = nil
	}
}

func (s *DagStore) addToHeightIndex(node *blockNode) {
	set, ok := s.heightIndex[node.height]
	if !ok {
		set = newSet()
		s.heightIndex[node.height] = set
	}
	set.add(node)
}

// get returns the stored block for hash, if any.
func (s *DagStore) get(h Hash) (*Block, bool) {
	node, ok := s.byHash[h]
	if !ok {
		return nil, false
	}
	return nodeToBlock(node), true
}

func nodeToBlock(node *blockNode) *Block {
	return &Block{Header: *node.header}
}

func (s *DagStore) getNode(h Hash) (*blockNode, bool) {
	n, ok := s.byHash[h]
	return n, ok
}

// parents returns the direct parents of hash, if known.
func (s *DagStore) parents(h Hash) ([]Hash, bool) {
	node, ok := s.byHash[h]
	if !ok {
		return nil, false
	}
	out := make([]Hash, 0, len(node.parents))
	for ph := range node.parents {
		out = append(out, ph)
	}
	return out, true
}

// children returns the direct children of hash, if known.
func (s *DagStore) children(h Hash) ([]Hash, bool) {
	node, ok := s.byHash[h]
	if !ok {
		return nil, false
	}
	out := make([]Hash, 0, len(node.children))
	for ch := range node.children {
		out = append(out, ch)
	}
	return out, true
}

// tips returns every stored block with no children.
func (s *DagStore) tips() []Hash {
	out := make([]Hash, 0, len(s.tipSet))
	for h := range s.tipSet {
		out = append(out, h)
	}
	return out
}

// atHeight returns every stored block at the given height.
func (s *DagStore) atHeight(height uint64) []Hash {
	set, ok := s.heightIndex[height]
	if !ok {
		return nil
	}
	out := make([]Hash, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	return out
}

// isAncestorOf answers whether a directed path exists from a to b via the
// parents relation, walking backward from b (spec §4.1). Implemented as a
// BFS over b's past-cone, short-circuited by height since ancestors always
// have strictly lower height than their descendants.
func (s *DagStore) isAncestorOf(a, b Hash) (bool, error) {
	if a == b {
		return false, nil
	}
	bNode, ok := s.byHash[b]
	if !ok {
		return false, newErrorf(ErrMissingAncestor, "unknown block %s", b)
	}
	aNode, ok := s.byHash[a]
	if !ok {
		return false, newErrorf(ErrMissingAncestor, "unknown block %s", a)
	}

	visited := newSet()
	queue := []*blockNode{bNode}
	for len(queue) > 0 {
		var current *blockNode
		current, queue = queue[0], queue[1:]
		for _, parent := range current.parents {
			if parent.height < aNode.height {
				continue
			}
			if parent == aNode {
				return true, nil
			}
			if visited.contains(parent) {
				continue
			}
			visited.add(parent)
			queue = append(queue, parent)
		}
	}
	return false, nil
}

// pastCone returns h's reachable ancestors, optionally bounded to at most
// limit entries (0 means unbounded). Spec §4.1.
func (s *DagStore) pastCone(h Hash, limit int) (map[Hash]struct{}, error) {
	node, ok := s.byHash[h]
	if !ok {
		return nil, newErrorf(ErrMissingAncestor, "unknown block %s", h)
	}
	out := make(map[Hash]struct{})
	visited := newSet()
	queue := []*blockNode{node}
	for len(queue) > 0 {
		var current *blockNode
		current, queue = queue[0], queue[1:]
		for _, parent := range current.parents {
			if visited.contains(parent) {
				continue
			}
			visited.add(parent)
			out[parent.hash] = struct{}{}
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
			queue = append(queue, parent)
		}
	}
	return out, nil
}

// futureCone returns h's reachable descendants, by symmetry with pastCone.
func (s *DagStore) futureCone(h Hash) (map[Hash]struct{}, error) {
	node, ok := s.byHash[h]
	if !ok {
		return nil, newErrorf(ErrMissingAncestor, "unknown block %s", h)
	}
	out := make(map[Hash]struct{})
	visited := newSet()
	queue := []*blockNode{node}
	for len(queue) > 0 {
		var current *blockNode
		current, queue = queue[0], queue[1:]
		for _, child := range current.children {
			if visited.contains(child) {
				continue
			}
			visited.add(child)
			out[child.hash] = struct{}{}
			queue = append(queue, child)
		}
	}
	return out, nil
}

// anticone returns blocks neither in past-cone(h) nor future-cone(h),
// restricted to the currently stored (i.e. non-pruned) window for
// tractability, per spec §4.1.
func (s *DagStore) anticone(h Hash) (map[Hash]struct{}, error) {
	if _, ok := s.byHash[h]; !ok {
		return nil, newErrorf(ErrMissingAncestor, "unknown block %s", h)
	}
	past, err := s.pastCone(h, 0)
	if err != nil {
		return nil, err
	}
	future, err := s.futureCone(h)
	if err != nil {
		return nil, err
	}
	out := make(map[Hash]struct{})
	for candidate := range s.byHash {
		if candidate == h {
			continue
		}
		if _, inPast := past[candidate]; inPast {
			continue
		}
		if _, inFuture := future[candidate]; inFuture {
			continue
		}
		out[candidate] = struct{}{}
	}
	return out, nil
}

// pruneBelow drops blocks strictly below heightBound, updating every
// index. Spec §4.1 reserves this to FinalityGadget; DagStore itself does
// not enforce that restriction (it is an engine-level wiring contract).
//
// A stale fork tip that never got superseded can sit at a height below
// heightBound while the canonical chain races ahead by more than the
// pruning window. Pruning must not destroy that tip's ancestry out from
// under it (spec §4.5: "must not remove ... any ancestor of a
// non-finalized tip within the window") — checking tipSet membership on
// the node being deleted only catches the tip itself, not its parents. So
// this first walks the past cone of every current tip (protecting all of
// them is always safe; finalized and non-finalized alike) and excludes
// those ancestors from the prune set, refusing outright only when a tip
// itself would fall below heightBound.
func (s *DagStore) pruneBelow(heightBound uint64) ([]Hash, error) {
	protected := newSet()
	for _, tip := range s.tipSet {
		if tip.height < heightBound {
			return nil, errors.Errorf(
				"refusing to prune: tip %s at height %d is within the pruning window (bound %d)",
				tip.hash, tip.height, heightBound)
		}
		ancestors, err := s.pastCone(tip.hash, 0)
		if err != nil {
			return nil, err
		}
		for h := range ancestors {
			protected.add(s.byHash[h])
		}
	}

	var removed []Hash
	for height, set := range s.heightIndex {
		if height >= heightBound {
			continue
		}
		for h, node := range set {
			if protected.containsHash(h) {
				continue
			}
			for _, child := range node.children {
				delete(child.parents, h)
			}
			delete(s.byHash, h)
			delete(set, h)
			removed = append(removed, h)
		}
		if len(set) == 0 {
			delete(s.heightIndex, height)
		}
	}
	return removed, nil
}
