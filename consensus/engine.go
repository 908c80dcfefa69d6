package consensus

import (
	"context"
	"sync"
	"time"

	"github.com/meridian-dag/consensus/dagparams"
	"github.com/meridian-dag/consensus/hash"
)

const defaultMaxOrphans = 100
const defaultMaxDelayed = 100

// Config bundles everything Engine needs at construction time.
type Config struct {
	Params dagparams.GhostDagParams

	Repository BlockRepository
	Crypto     Crypto
	Clock      Clock
	Hasher     hash.Hasher

	MaxOrphans int
}

// IngestResult is returned by Engine.Ingest on success (spec §4.6 step 8).
type IngestResult struct {
	Head         Hash
	Reorg        *ReorgResult
	NewFinalized *Checkpoint
	IsOrphan     bool

	// IsDelayed reports that the block's timestamp claims to be too far
	// ahead of the local clock (or one of its parents is itself parked)
	// and it has been held rather than admitted; it will be replayed
	// automatically once the delay elapses.
	IsDelayed bool
}

// Engine is the ConsensusEngine facade (spec §4.6): the single ingest path
// that coordinates DagStore, GhostDagScorer, TipSelector, ChainSelector,
// and FinalityGadget under one exclusive lock. Modeled on the teacher's
// BlockDAG struct, which plays the same coordinating role over its own
// index/virtual/ghostdag/orphan fields (blockdag/dag.go, process.go).
type Engine struct {
	// dagLock is the single-writer, many-reader lock of spec §5: ingest,
	// prune, and finality-advance serialize through it exclusively; read
	// queries take it for reading only.
	dagLock sync.RWMutex

	params dagparams.GhostDagParams

	store         *DagStore
	scorer        *GhostDagScorer
	tipSelector   *TipSelector
	chainSelector *ChainSelector
	finality      *FinalityGadget

	orphans *orphanBuffer
	delayed *delayedBuffer

	repo   BlockRepository
	crypto Crypto
	clock  Clock
	hasher hash.Hasher

	head Hash

	notifier notifier

	// ingestTimestamps is a bounded ring used by IngestRate, mirroring the
	// teacher's sync_rate.go addBlockProcessingTimestamp bookkeeping — an
	// observability diagnostic, never a consensus input (spec §6 Clock).
	ingestTimestamps []time.Time
}

// NewEngine constructs an Engine with an empty DagStore.
func NewEngine(cfg Config) *Engine {
	store := NewDagStore()
	scorer := NewGhostDagScorer(store, cfg.Params)

	maxOrphans := cfg.MaxOrphans
	if maxOrphans <= 0 {
		maxOrphans = defaultMaxOrphans
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = hash.DefaultHasher
	}
	clock := cfg.Clock
	if clock == nil {
		clock = systemClock{}
	}

	return &Engine{
		params:        cfg.Params,
		store:         store,
		scorer:        scorer,
		tipSelector:   NewTipSelector(store),
		chainSelector: NewChainSelector(store),
		finality:      NewFinalityGadget(store, scorer, cfg.Params),
		orphans:       newOrphanBuffer(maxOrphans),
		delayed:       newDelayedBuffer(defaultMaxDelayed),
		repo:          cfg.Repository,
		crypto:        cfg.Crypto,
		clock:         clock,
		hasher:        hasher,
	}
}

// Subscribe registers l to receive every event the engine emits.
func (e *Engine) Subscribe(l EventListener) {
	e.notifier.subscribe(l)
}

// Ingest is the single ingest path of spec §4.6.
func (e *Engine) Ingest(ctx context.Context, block *Block) (*IngestResult, error) {
	// Step 1: structural validation that doesn't need the exclusive lock,
	// plus crypto verification (an I/O-bound collaborator invoked before
	// the lock per spec §5).
	if err := e.validateStructure(block); err != nil {
		return nil, err
	}
	if err := e.verifyCrypto(block); err != nil {
		return nil, err
	}

	if e.delayed.contains(block.Header.Hash) {
		return nil, newErrorf(ErrDuplicateBlock, "block %s already held as delayed", block.Header.Hash)
	}

	// A future-timestamped block, or one whose parent is itself still
	// parked, is held rather than admitted (teacher: checkBlockSanity's
	// time-offset check plus maxDelayOfParents in process.go). This stays
	// strictly pre-lock: the Clock never feeds a consensus decision.
	if delay, shouldDelay := e.checkDelay(block); shouldDelay {
		e.delayed.add(block, e.clock.Now().Add(delay))
		return &IngestResult{IsDelayed: true}, nil
	}

	result, err := e.acceptBlock(ctx, block)
	if err != nil {
		return nil, err
	}

	e.replayDelayed(ctx)

	return result, nil
}

// acceptBlock runs the exclusive-locked ingest pipeline and then persists
// and emits events for the result, only after the lock releases (spec §5).
func (e *Engine) acceptBlock(ctx context.Context, block *Block) (*IngestResult, error) {
	result, events, err := e.ingestLocked(block)
	if err != nil {
		return nil, err
	}

	if e.repo != nil && !result.IsOrphan {
		if err := e.repo.Put(ctx, block); err != nil {
			log.WithError(err).WithField("hash", block.Header.Hash).Warn("failed to persist accepted block")
		}
	}
	for _, ev := range events {
		e.notifier.emit(ev)
	}

	return result, nil
}

// checkDelay reports whether block should be parked instead of admitted:
// its timestamp claims to be further ahead of the local clock than
// MaxFutureDrift allows, or one of its parents is itself still parked.
func (e *Engine) checkDelay(block *Block) (time.Duration, bool) {
	now := e.clock.Now()
	var delay time.Duration

	if e.params.MaxFutureDrift > 0 {
		blockTime := time.Unix(int64(block.Header.Timestamp), 0)
		maxAllowed := now.Add(e.params.MaxFutureDrift)
		if blockTime.After(maxAllowed) {
			delay = blockTime.Sub(maxAllowed)
		}
	}

	if parentDelay, parentIsDelayed := e.delayed.pendingDelay(now, block.Header.Parents()); parentIsDelayed {
		// Add a millisecond so the parent is guaranteed to have been
		// replayed before this block is retried.
		if candidate := parentDelay + time.Millisecond; candidate > delay {
			delay = candidate
		}
	}

	return delay, delay > 0
}

// replayDelayed admits every parked block whose delay has elapsed,
// mirroring the teacher's processDelayedBlocks. Run after each successful
// non-delayed ingest, the same way orphan replay runs after acceptance.
func (e *Engine) replayDelayed(ctx context.Context) {
	for _, block := range e.delayed.ready(e.clock.Now()) {
		if _, err := e.acceptBlock(ctx, block); err != nil {
			log.WithError(err).WithField("hash", block.Header.Hash).Debug("delayed block rejected on replay")
		}
	}
}

func (e *Engine) validateStructure(block *Block) error {
	recomputed, err := RecomputeHash(&block.Header, e.hasher)
	if err != nil {
		return err
	}
	if recomputed != block.Header.Hash {
		return newErrorf(ErrInvalidStructure, "hash mismatch: header claims %s, computed %s",
			block.Header.Hash, recomputed)
	}

	if len(block.Header.MergeParents) > 0 {
		seen := make(map[Hash]struct{}, len(block.Header.MergeParents))
		for _, mp := range block.Header.MergeParents {
			if mp == block.Header.SelectedParent {
				return newError(ErrInvalidStructure, "selected parent duplicated in merge parents")
			}
			if _, dup := seen[mp]; dup {
				return newErrorf(ErrInvalidStructure, "duplicate merge parent %s", mp)
			}
			seen[mp] = struct{}{}
		}
	}

	return nil
}

func (e *Engine) verifyCrypto(block *Block) error {
	if e.crypto == nil {
		return nil
	}
	if !e.crypto.VerifySignature(block.Header.Proposer, block.Header.Hash[:], block.Header.Signature) {
		return newError(ErrInvalidCrypto, "signature verification failed")
	}
	if len(block.Header.VRFProof) > 0 {
		if _, ok := e.crypto.VerifyVRF(block.Header.Proposer, block.Header.Hash[:], block.Header.VRFProof); !ok {
			return newError(ErrInvalidCrypto, "VRF proof verification failed")
		}
	}
	return nil
}

// ingestLocked runs steps 2-7 of spec §4.6 under the exclusive lock and
// returns the events to emit after release.
func (e *Engine) ingestLocked(block *Block) (*IngestResult, []Event, error) {
	e.dagLock.Lock()
	defer e.dagLock.Unlock()

	h := block.Header.Hash

	if e.orphans.contains(h) {
		return nil, nil, newErrorf(ErrDuplicateBlock, "block %s already held as orphan", h)
	}

	node, err := e.store.insert(block)
	if err != nil {
		var missing []Hash
		if code, ok := CodeOf(err); ok && code == ErrMissingParents {
			for _, p := range block.Header.Parents() {
				if _, ok := e.store.getNode(p); !ok {
					missing = append(missing, p)
				}
			}
			evicted := e.orphans.add(block, missing)
			e.addIngestTimestamp()
			var events []Event
			if evicted != nil {
				events = append(events, Event{Kind: EventOrphanEvicted, Hash: *evicted})
			}
			return &IngestResult{IsOrphan: true}, events, nil
		}
		return nil, nil, err
	}

	events := []Event{{Kind: EventBlockAccepted, Hash: h}}

	moreEvents, err := e.classifyAndAdvance(node)
	if err != nil {
		// Any failure past this point (chiefly ErrFinalityViolation) means
		// the block is rejected outright; it must leave no trace in the
		// store, or a later tip selection could still pick it up.
		e.store.rollbackInsert(node)
		return nil, nil, err
	}
	events = append(events, moreEvents...)

	// Replay any orphans unblocked by this acceptance, and in turn any
	// orphans unblocked by a replayed orphan's acceptance.
	ready := e.orphans.resolve(h)
	result := &IngestResult{Head: e.head}
	for i := 0; i < len(ready); i++ {
		orphanBlock := ready[i]
		orphanNode, err := e.store.insert(orphanBlock)
		if err != nil {
			continue
		}
		moreEvents, err := e.classifyAndAdvance(orphanNode)
		if err != nil {
			e.store.rollbackInsert(orphanNode)
			continue
		}
		events = append(events, Event{Kind: EventBlockAccepted, Hash: orphanNode.hash})
		events = append(events, moreEvents...)
		ready = append(ready, e.orphans.resolve(orphanNode.hash)...)
	}

	result.Head = e.head
	for _, ev := range events {
		switch ev.Kind {
		case EventReorg:
			result.Reorg = &ReorgResult{
				CommonAncestor: ev.CommonAncestor,
				Revert:         ev.Reverted,
				Apply:          ev.Applied,
			}
		case EventFinalized:
			result.NewFinalized = &Checkpoint{
				Height:    ev.FinalizedHeight,
				Hash:      ev.FinalizedHash,
				BlueScore: ev.FinalizedBlueScore,
			}
		}
	}

	e.addIngestTimestamp()
	return result, events, nil
}

// classifyAndAdvance runs steps 3-7 for a single newly-inserted node:
// GhostDAG classification, finality-violation check, re-selection of the
// best tip, reorg if needed, and finality advance.
func (e *Engine) classifyAndAdvance(node *blockNode) ([]Event, error) {
	if err := e.scorer.Classify(node); err != nil {
		return nil, err
	}

	violates, err := e.finality.CheckViolation(e.chainSelector, node.hash)
	if err != nil {
		return nil, err
	}
	if violates {
		return nil, newErrorf(ErrFinalityViolation,
			"block %s would diverge below the finalized head %s", node.hash, e.finality.FinalizedHead())
	}

	bestTip, _, err := e.tipSelector.Select(e.params.MaxMergeParents)
	if err != nil {
		return nil, err
	}

	var events []Event
	if bestTip != e.head {
		reorg, err := e.chainSelector.Reorg(e.head, bestTip)
		if err != nil {
			return nil, err
		}
		oldHead := e.head
		e.head = bestTip
		events = append(events, Event{Kind: EventHeadChanged, OldHead: oldHead, NewHead: bestTip})
		if len(reorg.Revert) > 0 || len(reorg.Apply) > 0 {
			events = append(events, Event{
				Kind:           EventReorg,
				CommonAncestor: reorg.CommonAncestor,
				Reverted:       reorg.Revert,
				Applied:        reorg.Apply,
			})
		}
	}

	checkpoint, pruneBound, err := e.finality.Advance(e.head)
	if err != nil {
		return nil, err
	}
	if checkpoint != nil {
		events = append(events, Event{
			Kind:               EventFinalized,
			FinalizedHash:      checkpoint.Hash,
			FinalizedHeight:    checkpoint.Height,
			FinalizedBlueScore: checkpoint.BlueScore,
		})
	}
	if pruneBound != nil && *pruneBound > 0 {
		removed, err := e.store.pruneBelow(*pruneBound)
		if err != nil {
			log.WithError(err).Debug("prune skipped")
		} else if len(removed) > 0 {
			events = append(events, Event{Kind: EventPruned, PrunedUpToHeight: *pruneBound})
		}
	}

	return events, nil
}

func (e *Engine) addIngestTimestamp() {
	now := e.clock.Now()
	e.ingestTimestamps = append(e.ingestTimestamps, now)
	if len(e.ingestTimestamps) > 64 {
		e.ingestTimestamps = e.ingestTimestamps[len(e.ingestTimestamps)-64:]
	}
}

// --- Read-only query surface (spec §6 Engine API); each takes the shared
// lock only, per spec §5. ---

// Head returns the current canonical head.
func (e *Engine) Head() Hash {
	e.dagLock.RLock()
	defer e.dagLock.RUnlock()
	return e.head
}

// FinalizedHead returns the current finalized head.
func (e *Engine) FinalizedHead() Hash {
	e.dagLock.RLock()
	defer e.dagLock.RUnlock()
	return e.finality.FinalizedHead()
}

// Block returns the stored block for hash, if any.
func (e *Engine) Block(h Hash) (*Block, bool) {
	e.dagLock.RLock()
	defer e.dagLock.RUnlock()
	return e.store.get(h)
}

// BlueScore returns hash's cached blue-score, if classified.
func (e *Engine) BlueScore(h Hash) (uint64, bool) {
	e.dagLock.RLock()
	defer e.dagLock.RUnlock()
	node, ok := e.store.getNode(h)
	if !ok {
		return 0, false
	}
	return e.scorer.BlueScore(node)
}

// Tips returns the current DAG tips.
func (e *Engine) Tips() []Hash {
	e.dagLock.RLock()
	defer e.dagLock.RUnlock()
	return e.store.tips()
}

// SelectParents runs TipSelector for the local proposer (spec §6).
func (e *Engine) SelectParents(maxMerge uint32) (Hash, []Hash, error) {
	e.dagLock.RLock()
	defer e.dagLock.RUnlock()
	return e.tipSelector.Select(maxMerge)
}

// IsAncestor answers whether a is an ancestor of b.
func (e *Engine) IsAncestor(a, b Hash) (bool, error) {
	e.dagLock.RLock()
	defer e.dagLock.RUnlock()
	return e.store.isAncestorOf(a, b)
}

// Locator returns head's selected-parent-chain hashes in the doubling-step
// pattern of the teacher's BlockLocator (blockdag/dag.go), useful to an
// external sync layer (spec §1 Non-goals: P2P gossip is out of scope, but
// DagStore's read surface already supports building this cheaply).
func (e *Engine) Locator(head Hash) ([]Hash, error) {
	e.dagLock.RLock()
	defer e.dagLock.RUnlock()

	node, ok := e.store.getNode(head)
	if !ok {
		return nil, newErrorf(ErrMissingAncestor, "unknown block %s", head)
	}

	var locator []Hash
	step := uint64(1)
	count := uint64(0)
	for n := node; n != nil; {
		locator = append(locator, n.hash)
		if n.selectedParent == nil {
			break
		}
		count++
		for i := uint64(0); i < step && n.selectedParent != nil; i++ {
			n = n.selectedParent
		}
		if count >= 12 {
			step *= 2
		}
	}
	return locator, nil
}

// IngestRate returns blocks ingested per second over the recent window,
// mirroring the teacher's sync_rate.go diagnostic. Purely observational;
// never used as a consensus input (spec §6 Clock, §9).
func (e *Engine) IngestRate() float64 {
	e.dagLock.RLock()
	defer e.dagLock.RUnlock()

	if len(e.ingestTimestamps) < 2 {
		return 0
	}
	first := e.ingestTimestamps[0]
	last := e.ingestTimestamps[len(e.ingestTimestamps)-1]
	elapsed := last.Sub(first).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(len(e.ingestTimestamps)-1) / elapsed
}

// Recover re-ingests every block from repo in height order, as required
// after a restart (spec §5: "recovery on restart re-ingests in height
// order").
func (e *Engine) Recover(ctx context.Context) error {
	if e.repo == nil {
		return nil
	}
	blocks, err := e.repo.IterByHeight(ctx)
	if err != nil {
		return err
	}
	for block := range blocks {
		if _, err := e.Ingest(ctx, block); err != nil {
			if code, ok := CodeOf(err); ok && code == ErrDuplicateBlock {
				continue
			}
			return err
		}
	}
	return nil
}
