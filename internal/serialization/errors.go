package serialization

import (
	"errors"
	"fmt"
)

// Errors returned while reading or writing .nnet files.
var (
	ErrChecksumMismatch   = errors.New("nnet: payload checksum mismatch")
	ErrInvalidMagic       = errors.New("nnet: not a .nnet file")
	ErrUnsupportedVersion = errors.New("nnet: unsupported format version")
	ErrHeaderTooLarge     = errors.New("nnet: header too large")
	ErrPayloadTooLarge    = errors.New("nnet: payload too large")
	ErrTensorNotFound     = errors.New("nnet: tensor not found")

	// ErrInvalidHeader matches every *ValidationError with errors.Is.
	ErrInvalidHeader = errors.New("nnet: invalid header")
)

// Kind classifies a ValidationError.
type Kind string

// Validation failure kinds.
const (
	KindTooManyTensors   Kind = "too_many_tensors"
	KindNegativeOffset   Kind = "negative_offset"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindOffsetOverlap    Kind = "offset_overlap"
	KindInvalidName      Kind = "invalid_name"
	KindNameTooLong      Kind = "name_too_long"
	KindDuplicateName    Kind = "duplicate_name"
	KindUnsupportedDType Kind = "unsupported_dtype"
	KindInvalidShape     Kind = "invalid_shape"
	KindSizeMismatch     Kind = "size_mismatch"
	KindShapeMismatch    Kind = "shape_mismatch"
)

// ValidationError describes a tensor table entry that failed validation.
type ValidationError struct {
	Type    Kind
	Tensor  string // offending tensor, if any
	Tensor2 string // the other tensor of an overlap or duplicate
	Details string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Tensor2 != "":
		return fmt.Sprintf("%s: tensors %q and %q: %s", e.Type, e.Tensor, e.Tensor2, e.Details)
	case e.Tensor != "":
		return fmt.Sprintf("%s: tensor %q: %s", e.Type, e.Tensor, e.Details)
	default:
		return fmt.Sprintf("%s: %s", e.Type, e.Details)
	}
}

// Is reports whether target is ErrInvalidHeader.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidHeader
}
