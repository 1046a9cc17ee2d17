package gracejoin

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrMaxPassesExceeded means a bucket pair was still too large to build
	// from after the maximum number of partitioning passes.
	ErrMaxPassesExceeded = errors.New("reached the max number of passes")
	// ErrNeitherFits is raised, as an assertion failure, when build and probe
	// is asked to join a bucket pair where neither side fits in memory.
	ErrNeitherFits = errors.New("neither the left nor the right records in this partition fit in B-2 pages of memory")

	ErrIteratorExhausted = errors.New("no more records")
	ErrClosed            = errors.New("grace hash join is closed")
	ErrInvalidOptions    = errors.New("invalid grace hash join options")

	ErrColumnNotFound = func(name string) error { return errors.Newf("column %q not found in schema", name) }
	ErrArityMismatch  = func(want, got int) error {
		return errors.Newf("record has %d values, schema has %d columns", got, want)
	}
	ErrTypeMismatch = func(col string, want, got Type) error {
		return errors.Newf("column %q expects %s, got %s", col, want, got)
	}
	ErrStringTooLong = func(col string, size, got int) error {
		return errors.Newf("column %q holds at most %d bytes, got %d", col, size, got)
	}
	ErrJoinTypeMismatch = func(leftCol string, leftType Type, rightCol string, rightType Type) error {
		return errors.Newf("cannot join %q (%s) with %q (%s)", leftCol, leftType, rightCol, rightType)
	}
	ErrUnknownType  = func(t Type) error { return errors.Newf("unknown value type %d", int(t)) }
	ErrMissingEntry = func(seq uint64) error { return errors.Newf("run has no record at position %d", seq) }
)
