package consensus

// orphanEntry is a block held until its missing parents arrive.
type orphanEntry struct {
	block   *Block
	missing map[Hash]struct{}
}

// orphanBuffer holds blocks with unresolved parents, bounded to maxOrphans
// with oldest-first eviction (spec §7). Modeled on the teacher's
// BlockDAG.orphans/prevOrphans/newestOrphan trio (blockdag/dag.go) and
// addOrphanBlock/removeOrphanBlock/processOrphans (dag.go/process.go),
// generalized from a single-parent chain to the DAG's multi-parent shape.
type orphanBuffer struct {
	maxOrphans int

	byHash          map[Hash]*orphanEntry
	byMissingParent map[Hash][]Hash
	order           []Hash // oldest-first insertion order, for eviction
}

func newOrphanBuffer(maxOrphans int) *orphanBuffer {
	return &orphanBuffer{
		maxOrphans:      maxOrphans,
		byHash:          make(map[Hash]*orphanEntry),
		byMissingParent: make(map[Hash][]Hash),
	}
}

func (o *orphanBuffer) contains(h Hash) bool {
	_, ok := o.byHash[h]
	return ok
}

// add stores block as an orphan awaiting missing. It returns the hash of
// an evicted orphan, if the buffer was at capacity, as an OrphanEvicted
// event candidate.
func (o *orphanBuffer) add(block *Block, missing []Hash) *Hash {
	h := block.Header.Hash
	entry := &orphanEntry{block: block, missing: make(map[Hash]struct{}, len(missing))}
	for _, m := range missing {
		entry.missing[m] = struct{}{}
		o.byMissingParent[m] = append(o.byMissingParent[m], h)
	}
	o.byHash[h] = entry
	o.order = append(o.order, h)

	if len(o.byHash) <= o.maxOrphans {
		return nil
	}

	oldest := o.order[0]
	o.order = o.order[1:]
	o.removeEntry(oldest)
	return &oldest
}

func (o *orphanBuffer) removeEntry(h Hash) {
	entry, ok := o.byHash[h]
	if !ok {
		return
	}
	for m := range entry.missing {
		waiters := o.byMissingParent[m]
		for i, waiter := range waiters {
			if waiter == h {
				o.byMissingParent[m] = append(waiters[:i], waiters[i+1:]...)
				break
			}
		}
		if len(o.byMissingParent[m]) == 0 {
			delete(o.byMissingParent, m)
		}
	}
	delete(o.byHash, h)
}

// resolve marks parent as no longer missing and returns every orphan that
// is now fully resolved (no missing parents left), in the order they
// became ready.
func (o *orphanBuffer) resolve(parent Hash) []*Block {
	waiters, ok := o.byMissingParent[parent]
	if !ok {
		return nil
	}
	delete(o.byMissingParent, parent)

	var ready []*Block
	for _, h := range waiters {
		entry, ok := o.byHash[h]
		if !ok {
			continue
		}
		delete(entry.missing, parent)
		if len(entry.missing) == 0 {
			ready = append(ready, entry.block)
			o.removeFromOrder(h)
			delete(o.byHash, h)
		}
	}
	return ready
}

func (o *orphanBuffer) removeFromOrder(h Hash) {
	for i, oh := range o.order {
		if oh == h {
			o.order = append(o.order[:i], o.order[i+1:]...)
			return
		}
	}
}
