package hash

import "golang.org/x/crypto/blake2b"

// Hasher computes the opaque block hash over a header's remaining fields.
// The consensus core never assumes a particular hash primitive (see the
// BlockHeader contract in consensus/block.go) — Hasher is the default,
// swappable implementation.
type Hasher interface {
	Sum(data []byte) Hash
}

// Blake2bHasher is the default Hasher, backed by BLAKE2b-256.
type Blake2bHasher struct{}

// Sum implements Hasher.
func (Blake2bHasher) Sum(data []byte) Hash {
	return blake2b.Sum256(data)
}

// DefaultHasher is the Hasher used when no collaborator override is
// supplied to the engine.
var DefaultHasher Hasher = Blake2bHasher{}
