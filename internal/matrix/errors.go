package matrix

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers match them with errors.Is; operations wrap them
// with the operation name and the offending shapes.
var (
	// ErrDimensionMismatch is returned when operand shapes violate an
	// operation's contract. It is always detected before any write.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrInvalidDimensions is returned when a requested shape has a
	// non-positive row or column count.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrAllocationFailed is returned when a buffer of the requested size
	// cannot be obtained.
	ErrAllocationFailed = errors.New("matrix: allocation failed")

	// ErrOutOfRange is returned by At and Set for indices outside the matrix.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrAliasedOperand is returned when the destination of an operation
	// that reads its inputs more than once is also one of those inputs.
	ErrAliasedOperand = errors.New("matrix: destination aliases an operand")

	// ErrNilMatrix is returned when a nil *Matrix is passed to an operation.
	ErrNilMatrix = errors.New("matrix: nil matrix")
)

// mismatch wraps ErrDimensionMismatch with operation context.
func mismatch(op string, shapes ...Shape) error {
	return fmt.Errorf("%s %v: %w", op, shapes, ErrDimensionMismatch)
}

// notNil reports ErrNilMatrix for the first nil operand.
func notNil(op string, ms ...*Matrix) error {
	for _, m := range ms {
		if m == nil {
			return fmt.Errorf("%s: %w", op, ErrNilMatrix)
		}
	}
	return nil
}
