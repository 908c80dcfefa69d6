package consensus

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCode enumerates the five error kinds of spec §7, plus the two
// auxiliary outcomes (DuplicateBlock, Timeout) called out in §7/§5 that
// the taxonomy table leaves implicit.
type ErrorCode int

const (
	// ErrInvalidStructure: header self-inconsistent; duplicate/self-
	// parent; height mismatch; genesis rules violated. Reject, do not
	// retry.
	ErrInvalidStructure ErrorCode = iota

	// ErrMissingParents: one or more parents unknown to DagStore. Hold in
	// the orphan buffer; retry when any parent arrives.
	ErrMissingParents

	// ErrInvalidCrypto: signature or VRF proof verification fails.
	// Reject, do not retry.
	ErrInvalidCrypto

	// ErrFinalityViolation: would produce a head whose selected-parent
	// chain diverges below finalized_head. Reject, retain prior head,
	// surface alert.
	ErrFinalityViolation

	// ErrMissingAncestor: ancestor required for blue-set computation was
	// pruned. Reject; peer is outside the retention window.
	ErrMissingAncestor

	// ErrDuplicateBlock: the block (or its hash) is already known: stored,
	// orphaned, or parked as delayed.
	ErrDuplicateBlock

	// ErrTimeout: an external collaborator (BlockRepository, Crypto)
	// failed to respond within the caller's deadline.
	ErrTimeout
)

func (c ErrorCode) String() string {
	switch c {
	case ErrInvalidStructure:
		return "InvalidStructure"
	case ErrMissingParents:
		return "MissingParents"
	case ErrInvalidCrypto:
		return "InvalidCrypto"
	case ErrFinalityViolation:
		return "FinalityViolation"
	case ErrMissingAncestor:
		return "MissingAncestor"
	case ErrDuplicateBlock:
		return "DuplicateBlock"
	case ErrTimeout:
		return "Timeout"
	default:
		return "Unknown"
	}
}

// ConsensusError is the single error type returned across the engine's
// public surface, mirroring the teacher's RuleError (blockdag/error_test.go)
// but generalized to the full taxonomy of spec §7.
type ConsensusError struct {
	Code        ErrorCode
	Description string
}

func (e ConsensusError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func newError(code ErrorCode, description string) error {
	return errors.WithStack(ConsensusError{Code: code, Description: description})
}

func newErrorf(code ErrorCode, format string, args ...interface{}) error {
	return newError(code, fmt.Sprintf(format, args...))
}

// CodeOf extracts the ErrorCode from err, if err wraps a ConsensusError.
// Callers can also use errors.As directly; the target must be a
// ConsensusError value, not a *ConsensusError, since that is what the
// engine wraps.
func CodeOf(err error) (ErrorCode, bool) {
	var ce ConsensusError
	if errors.As(err, &ce) {
		return ce.Code, true
	}
	return 0, false
}
