// Package dagparams holds the per-network GhostDAG parameters. Mirroring
// dagconfig.Params in the teacher, this keeps protocol parameters
// (K, finality depth, pruning window, merge cap, checkpoint interval) as a
// simple value type the consensus engine is parametric over, rather than as
// package-level constants.
package dagparams

import "time"

// GhostDagParams bundles the tunables referenced throughout the consensus
// core (spec §3 GhostDagParams, §6 Parameters).
type GhostDagParams struct {
	// Name identifies the network this preset belongs to.
	Name string

	// K is the maximum permitted blue anticone size (the k-cluster rule).
	K uint32

	// PruningWindow is how many heights below the finalized head are kept:
	// blocks below the finalized head's height minus PruningWindow may be
	// pruned.
	PruningWindow uint64

	// FinalityDepth is the blue-score distance at which a block on the
	// selected-parent chain of the head becomes finalized.
	FinalityDepth uint64

	// MaxMergeParents bounds how many non-selected tips TipSelector will
	// attach to a newly produced block.
	MaxMergeParents uint32

	// CheckpointInterval is how often, in blocks along the finalized
	// chain, FinalityGadget emits a Checkpoint.
	CheckpointInterval uint64

	// MaxFutureDrift bounds how far ahead of the local clock a block's
	// timestamp may claim to be before ingestion parks it instead of
	// admitting it, mirroring the teacher's MaxTimeOffsetSeconds
	// (dagconfig). This is a pre-lock admission concern only — it never
	// affects blue-set or blue-score determinism (spec §6: Clock "never
	// used for consensus decisions").
	MaxFutureDrift time.Duration
}

// Mainnet is the production preset: K=18, as referenced by the teacher's
// dagconfig.MainNetParams.
var Mainnet = GhostDagParams{
	Name:               "mainnet",
	K:                  18,
	PruningWindow:      10_000,
	FinalityDepth:      100,
	MaxMergeParents:    10,
	CheckpointInterval: 100,
	MaxFutureDrift:     2 * time.Hour,
}

// Testnet uses a smaller K, as referenced by the teacher's
// dagconfig.TestNetParams; spec §9 treats the K choice as a per-network
// launch-time configuration concern, not a protocol one.
var Testnet = GhostDagParams{
	Name:               "testnet",
	K:                  8,
	PruningWindow:      10_000,
	FinalityDepth:      100,
	MaxMergeParents:    10,
	CheckpointInterval: 100,
	MaxFutureDrift:     2 * time.Hour,
}

// Simnet is a low-K, shallow-finality preset intended for deterministic
// unit and integration tests, mirroring the teacher's dagconfig.SimNetParams.
var Simnet = GhostDagParams{
	Name:               "simnet",
	K:                  1,
	PruningWindow:      1_000,
	FinalityDepth:      3,
	MaxMergeParents:    10,
	CheckpointInterval: 10,
	MaxFutureDrift:     2 * time.Hour,
}
