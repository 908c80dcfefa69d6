// Package hash defines the opaque 32-byte block identifier used throughout
// the consensus engine. The engine never interprets the bytes of a Hash; it
// only compares, orders, and uses them as map keys.
package hash

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// Size is the number of bytes in a Hash.
const Size = 32

// Hash is an opaque, fixed-size block identifier.
type Hash [Size]byte

// Zero is the sentinel used only as the conceptual parent of genesis.
var Zero = Hash{}

// String returns the hex encoding of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the zero sentinel.
func (h Hash) IsZero() bool {
	return h == Zero
}

// Equal reports whether h and other identify the same block.
func (h Hash) Equal(other Hash) bool {
	return h == other
}

// Less imposes the lexicographic order used to break blue-score and
// blue-set ties deterministically across honest nodes.
func Less(a, b Hash) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

// FromSlice copies b into a Hash. It returns an error if b is not exactly
// Size bytes long.
func FromSlice(b []byte) (Hash, error) {
	var h Hash
	if len(b) != Size {
		return h, fmt.Errorf("hash: invalid length %d, want %d", len(b), Size)
	}
	copy(h[:], b)
	return h, nil
}

// Sorted returns a copy of hs sorted by Less, used wherever the spec
// requires a deterministic lexicographic tie-break over a hash set.
func Sorted(hs []Hash) []Hash {
	out := make([]Hash, len(hs))
	copy(out, hs)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && Less(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
