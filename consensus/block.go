package consensus

import "github.com/meridian-dag/consensus/hash"

// PublicKey is the opaque proposer key carried by a header. The engine
// never inspects its bytes directly — it only ever passes them to the
// Crypto collaborator (spec §2 Non-goals: "does not prescribe the
// signature scheme").
type PublicKey []byte

// BlockHeader is the consensus-relevant portion of a block (spec §3).
// Fields that only matter to the external executor (state/tx/receipt
// roots) are carried as opaque hashes so the core never needs to
// understand them.
type BlockHeader struct {
	Hash Hash

	// SelectedParent is the unique selected parent. It is the zero hash
	// only for genesis.
	SelectedParent Hash

	// MergeParents is the unordered set of additional parents. It never
	// contains SelectedParent and never contains duplicates.
	MergeParents []Hash

	// Height is 1 + max(parent.height); zero for genesis.
	Height uint64

	Timestamp uint64

	Proposer  PublicKey
	VRFProof  []byte
	Signature []byte

	StateRoot   Hash
	TxRoot      Hash
	ReceiptRoot Hash
}

// Hash is a local alias so the rest of the package can refer to hash.Hash
// as simply Hash, matching the flat, unqualified style of the teacher's
// own daghash usage.
type Hash = hash.Hash

// Parents returns {SelectedParent} ∪ MergeParents, per spec §3's DAG
// relations definition. For genesis, SelectedParent is the zero hash and
// is not included.
func (h *BlockHeader) Parents() []Hash {
	if h.IsGenesis() {
		return nil
	}
	parents := make([]Hash, 0, 1+len(h.MergeParents))
	parents = append(parents, h.SelectedParent)
	parents = append(parents, h.MergeParents...)
	return parents
}

// IsGenesis reports whether this header has no parents at all.
func (h *BlockHeader) IsGenesis() bool {
	return h.SelectedParent.IsZero() && len(h.MergeParents) == 0
}

// Block pairs a header with its (consensus-opaque) transaction list, per
// spec §3: "The consensus core treats transactions as opaque bytes
// affecting only execution and thus external."
type Block struct {
	Header       BlockHeader
	Transactions [][]byte
}
