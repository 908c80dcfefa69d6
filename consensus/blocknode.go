package consensus

// blockNode is the in-memory DAG node: the header plus every piece of
// derived state the engine maintains about it. Shape rebuilt from the
// teacher's blockNode field accesses across ghostdag.go/blues.go/
// virtualblock.go (.selectedParent, .parents, .children, .blues,
// .blueScore, .bluesAnticoneSizes, .hash) — the backing blocknode.go file
// was not part of the retrieval pack.
type blockNode struct {
	hash   Hash
	header *BlockHeader

	selectedParent *blockNode
	parents        blockSet
	children       blockSet

	height uint64

	// blueSet is the cached, write-once classification of this node's
	// past-cone relative to the k-cluster rule (spec §4.2.1, §4.2.3).
	blueSet   BlueSet
	blueScore uint64
	classified bool

	finalized bool
}

func newBlockNode(header *BlockHeader) *blockNode {
	return &blockNode{
		hash:     header.Hash,
		header:   header,
		parents:  newSet(),
		children: newSet(),
		height:   header.Height,
		blueSet:  newBlueSet(),
	}
}

func (n *blockNode) isGenesis() bool {
	return n.selectedParent == nil && len(n.parents) == 0
}
