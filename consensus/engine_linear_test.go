package consensus

import (
	"testing"

	"github.com/meridian-dag/consensus/dagparams"
)

// TestLinearChainBlueScore covers a linear chain: every block's blue-score
// increases by exactly one over its sole parent, and the head tracks the
// chain tip at every step.
func TestLinearChainBlueScore(t *testing.T) {
	e := newTestEngine(dagparams.Simnet)

	genesis := genesisBlock(t)
	mustIngest(t, e, genesis)

	prev := genesis.Header.Hash
	for height := uint64(1); height <= 3; height++ {
		block := seedBlock(t, prev, nil, height, byte(height))
		result := mustIngest(t, e, block)

		if result.Head != block.Header.Hash {
			t.Fatalf("height %d: head = %s, want %s", height, result.Head, block.Header.Hash)
		}

		score, ok := e.BlueScore(block.Header.Hash)
		if !ok {
			t.Fatalf("height %d: block not classified", height)
		}
		if score != height {
			t.Fatalf("height %d: blue-score = %d, want %d", height, score, height)
		}

		prev = block.Header.Hash
	}

	if e.Head() != prev {
		t.Fatalf("final head = %s, want %s", e.Head(), prev)
	}
}

// TestGenesisHasZeroBlueScore checks the base case directly.
func TestGenesisHasZeroBlueScore(t *testing.T) {
	e := newTestEngine(dagparams.Simnet)
	genesis := genesisBlock(t)
	mustIngest(t, e, genesis)

	score, ok := e.BlueScore(genesis.Header.Hash)
	if !ok || score != 0 {
		t.Fatalf("genesis blue-score = %d, ok = %v, want 0, true", score, ok)
	}
	if e.Head() != genesis.Header.Hash {
		t.Fatalf("head after genesis = %s, want %s", e.Head(), genesis.Header.Hash)
	}
}
