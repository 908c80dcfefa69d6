package consensus

import "github.com/meridian-dag/consensus/hash"

// blockSet is a set of *blockNode keyed by hash. It is the in-memory
// relation type used for parents, children, tips, and the various
// traversal frontiers throughout the package. Rebuilt from the teacher's
// call-site usage (newSet, .add, .remove, .contains, .toSlice, .bluest) —
// the backing blockdag/blockset.go file was not part of the retrieval pack.
type blockSet map[Hash]*blockNode

func newSet() blockSet {
	return make(blockSet)
}

func setFrom(nodes ...*blockNode) blockSet {
	s := newSet()
	for _, n := range nodes {
		s.add(n)
	}
	return s
}

func (s blockSet) add(node *blockNode) {
	s[node.hash] = node
}

func (s blockSet) remove(node *blockNode) {
	delete(s, node.hash)
}

func (s blockSet) contains(node *blockNode) bool {
	_, ok := s[node.hash]
	return ok
}

func (s blockSet) containsHash(h Hash) bool {
	_, ok := s[h]
	return ok
}

func (s blockSet) clone() blockSet {
	out := make(blockSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// toSlice returns the set's members. When sorted is true the result is
// ordered by hash ascending, the deterministic tie-break used throughout
// the package (spec §4.2.1, §4.3).
func (s blockSet) toSlice(sorted bool) []*blockNode {
	out := make([]*blockNode, 0, len(s))
	for _, n := range s {
		out = append(out, n)
	}
	if sorted {
		for i := 1; i < len(out); i++ {
			for j := i; j > 0 && hash.Less(out[j].hash, out[j-1].hash); j-- {
				out[j], out[j-1] = out[j-1], out[j]
			}
		}
	}
	return out
}

// bluest returns the member with the highest blueScore, breaking ties by
// the lexicographically smaller hash (spec §4.3 selected-parent rule).
func (s blockSet) bluest() *blockNode {
	var best *blockNode
	for _, n := range s {
		if best == nil || byBlueScoreThenHash(n, best) {
			best = n
		}
	}
	return best
}

// byBlueScoreThenHash reports whether a outranks b under the selected-
// parent / merge-parent ordering rule: higher blueScore wins, ties broken
// by the lexicographically smaller hash (spec §4.3, §4.2.1).
func byBlueScoreThenHash(a, b *blockNode) bool {
	if a.blueScore != b.blueScore {
		return a.blueScore > b.blueScore
	}
	return hash.Less(a.hash, b.hash)
}
