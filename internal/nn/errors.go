package nn

import (
	"errors"

	"github.com/adampy/neuralnet/internal/matrix"
)

// Errors returned by network operations.
var (
	// ErrInvalidConfiguration is returned for an unusable architecture,
	// learning rate or training configuration.
	ErrInvalidConfiguration = errors.New("nn: invalid configuration")

	// ErrReleased is returned by every operation on a released network.
	ErrReleased = errors.New("nn: network released")

	// ErrDimensionMismatch is matrix.ErrDimensionMismatch, re-exported so
	// callers of this package need not import matrix to match it.
	ErrDimensionMismatch = matrix.ErrDimensionMismatch

	// ErrAllocationFailed is matrix.ErrAllocationFailed.
	ErrAllocationFailed = matrix.ErrAllocationFailed
)
