package consensus

import (
	"context"
	"testing"

	"github.com/meridian-dag/consensus/dagparams"
)

// TestOrphanHeldThenResolvedOnParentArrival covers spec §7's
// MissingParents contract: a block whose parent is unknown is held rather
// than rejected, and is automatically ingested once the parent arrives.
func TestOrphanHeldThenResolvedOnParentArrival(t *testing.T) {
	e := newTestEngine(dagparams.Simnet)

	genesis := genesisBlock(t)
	mustIngest(t, e, genesis)

	parent := seedBlock(t, genesis.Header.Hash, nil, 1, 1)
	child := seedBlock(t, parent.Header.Hash, nil, 2, 2)

	result, err := e.Ingest(context.Background(), child)
	if err != nil {
		t.Fatalf("ingesting an orphan should not error: %v", err)
	}
	if !result.IsOrphan {
		t.Fatalf("expected child to be held as an orphan")
	}
	if _, ok := e.Block(child.Header.Hash); ok {
		t.Fatalf("orphaned block must not be visible in the store yet")
	}

	result, err = e.Ingest(context.Background(), parent)
	if err != nil {
		t.Fatalf("ingesting the missing parent: %v", err)
	}
	if result.IsOrphan {
		t.Fatalf("parent itself should not be treated as an orphan")
	}

	if result.Head != child.Header.Hash {
		t.Fatalf("head after parent arrival = %s, want replayed child %s", result.Head, child.Header.Hash)
	}
	if _, ok := e.Block(child.Header.Hash); !ok {
		t.Fatalf("child should be stored after its parent resolved it")
	}
}

// TestDuplicateOrphanRejected covers the ErrDuplicateBlock edge case for a
// block already held in the orphan buffer.
func TestDuplicateOrphanRejected(t *testing.T) {
	e := newTestEngine(dagparams.Simnet)

	genesis := genesisBlock(t)
	mustIngest(t, e, genesis)

	unknownParent := seedBlock(t, genesis.Header.Hash, nil, 1, 1)
	orphanChild := seedBlock(t, unknownParent.Header.Hash, nil, 2, 2)
	// Never ingest unknownParent, so orphanChild stays an orphan.

	result, err := e.Ingest(context.Background(), orphanChild)
	if err != nil {
		t.Fatalf("first ingest of orphan: %v", err)
	}
	if !result.IsOrphan {
		t.Fatalf("expected orphan on first ingest")
	}

	_, err = e.Ingest(context.Background(), orphanChild)
	if err == nil {
		t.Fatalf("expected ErrDuplicateBlock on re-ingesting a held orphan")
	}
	code, ok := CodeOf(err)
	if !ok || code != ErrDuplicateBlock {
		t.Fatalf("error = %v, want ErrDuplicateBlock", err)
	}
}
