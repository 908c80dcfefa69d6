package consensus

import "time"

// delayedEntry is a structurally valid block parked because its claimed
// timestamp is too far in the future, or because one of its parents is
// itself currently parked. Modeled on the teacher's addDelayedBlock /
// maxDelayOfParents contract (blockdag/process.go) — the backing
// process_delayed.go-style file wasn't part of the retrieval pack, so this
// buffer is rebuilt from process.go's call sites rather than copied.
type delayedEntry struct {
	block   *Block
	readyAt time.Time
}

// delayedBuffer holds future-timestamped blocks until the local clock
// catches up, bounded to maxDelayed with oldest-first eviction — the same
// shape as orphanBuffer, parameterized by a ready time instead of a
// missing-parent set. This is a pre-lock admission concern only (spec §6:
// Clock is "never used for consensus decisions"); it never touches
// DagStore.
type delayedBuffer struct {
	maxDelayed int

	byHash map[Hash]*delayedEntry
	order  []Hash // oldest-first insertion order, for eviction
}

func newDelayedBuffer(maxDelayed int) *delayedBuffer {
	return &delayedBuffer{
		maxDelayed: maxDelayed,
		byHash:     make(map[Hash]*delayedEntry),
	}
}

func (d *delayedBuffer) contains(h Hash) bool {
	_, ok := d.byHash[h]
	return ok
}

// add parks block until readyAt. If the buffer is already holding block's
// hash (resubmission while still parked) it is a no-op; the original
// readyAt stands. Evicts the oldest parked block if this insert pushes
// the buffer past capacity.
func (d *delayedBuffer) add(block *Block, readyAt time.Time) {
	h := block.Header.Hash
	if _, exists := d.byHash[h]; exists {
		return
	}
	d.byHash[h] = &delayedEntry{block: block, readyAt: readyAt}
	d.order = append(d.order, h)

	if len(d.byHash) <= d.maxDelayed {
		return
	}
	oldest := d.order[0]
	d.order = d.order[1:]
	delete(d.byHash, oldest)
}

// ready removes and returns every parked block whose readyAt has passed,
// oldest-first, mirroring the teacher's processDelayedBlocks.
func (d *delayedBuffer) ready(now time.Time) []*Block {
	var out []*Block
	var remaining []Hash
	for _, h := range d.order {
		entry := d.byHash[h]
		if now.Before(entry.readyAt) {
			remaining = append(remaining, h)
			continue
		}
		out = append(out, entry.block)
		delete(d.byHash, h)
	}
	d.order = remaining
	return out
}

// pendingDelay reports the longest remaining delay among parents that are
// currently parked, and whether any parent is parked at all. Mirrors the
// teacher's maxDelayOfParents: a block pointing at a still-delayed parent
// must itself wait rather than being mistaken for a missing-parent orphan.
func (d *delayedBuffer) pendingDelay(now time.Time, parents []Hash) (time.Duration, bool) {
	var max time.Duration
	found := false
	for _, p := range parents {
		entry, ok := d.byHash[p]
		if !ok {
			continue
		}
		found = true
		if remaining := entry.readyAt.Sub(now); remaining > max {
			max = remaining
		}
	}
	return max, found
}
