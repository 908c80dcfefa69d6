package consensus

import (
	"context"
	"time"
)

// BlockRepository persists and retrieves raw blocks and metadata. It is an
// external collaborator (spec §1, §6) — the consensus core never embeds a
// storage engine directly. See consensus/blockrepo/leveldbrepo for a
// reference implementation.
type BlockRepository interface {
	Put(ctx context.Context, block *Block) error
	Get(ctx context.Context, h Hash) (*Block, bool, error)

	// IterByHeight streams stored blocks in ascending height order, used
	// by Engine.Recover to re-ingest after a restart (spec §5).
	IterByHeight(ctx context.Context) (<-chan *Block, error)
}

// Crypto verifies proposer signatures and VRF proofs. The core is
// parametric over the signature/VRF suite (spec §2 Non-goals). See
// consensus/cryptosecp256k1 for a reference implementation.
type Crypto interface {
	VerifySignature(pk PublicKey, msg, sig []byte) bool
	VerifyVRF(pk PublicKey, input, proof []byte) (output []byte, ok bool)
}

// Clock supplies monotonic time for checkpoint cadence and delayed-block
// admission only — never for consensus decisions (spec §6, §9).
type Clock interface {
	Now() time.Time
}

// systemClock is the default Clock, backed by the wall clock.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
