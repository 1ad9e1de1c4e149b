package serialization

import (
	"fmt"
	"strings"
)

// Limits applied to untrusted files.
const (
	MaxHeaderSize    = 16 << 20 // JSON header bytes
	MaxPayloadSize   = 4 << 30  // payload bytes
	MaxTensorCount   = 10_000
	MaxTensorNameLen = 256
)

// ValidationLevel controls how much of a header Read checks.
type ValidationLevel int

const (
	// ValidationStrict checks names, layouts and payload offsets. Default.
	ValidationStrict ValidationLevel = iota
	// ValidationNormal checks names and layouts but not offsets.
	ValidationNormal
	// ValidationNone trusts the header.
	ValidationNone
)

func tooMany(n int) error {
	return &ValidationError{
		Type:    KindTooManyTensors,
		Details: fmt.Sprintf("got %d, max %d", n, MaxTensorCount),
	}
}

// ValidateTensorOffsets checks that every tensor region lies inside a
// payload of dataSize bytes. Regions must appear in payload order and may
// not overlap, which is how Write lays them out.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	if len(tensors) > MaxTensorCount {
		return tooMany(len(tensors))
	}
	var prev *TensorMeta
	for i := range tensors {
		t := &tensors[i]
		if t.Offset < 0 || t.Size < 0 {
			return &ValidationError{
				Type:    KindNegativeOffset,
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d", t.Offset, t.Size),
			}
		}
		end := t.Offset + t.Size
		if end > dataSize {
			return &ValidationError{
				Type:    KindOutOfBounds,
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", t.Offset, t.Size, dataSize),
			}
		}
		if prev != nil && t.Offset < prev.Offset+prev.Size {
			return &ValidationError{
				Type:    KindOffsetOverlap,
				Tensor:  prev.Name,
				Tensor2: t.Name,
				Details: fmt.Sprintf("[%d-%d] then [%d-%d]",
					prev.Offset, prev.Offset+prev.Size, t.Offset, end),
			}
		}
		prev = t
	}
	return nil
}

// ValidateTensorName rejects empty, oversized and path-like names.
func ValidateTensorName(name string) error {
	switch {
	case name == "":
		return &ValidationError{Type: KindInvalidName, Details: "empty tensor name"}
	case len(name) > MaxTensorNameLen:
		return &ValidationError{
			Type:    KindNameTooLong,
			Tensor:  name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
		}
	case strings.Contains(name, ".."):
		return &ValidationError{Type: KindInvalidName, Tensor: name, Details: "contains '..'"}
	case strings.ContainsAny(name, "/\\\x00"):
		return &ValidationError{Type: KindInvalidName, Tensor: name, Details: "contains a path separator or NUL"}
	}
	return nil
}

// ValidateTensorLayout checks that a tensor is a positive 2D float64 matrix
// whose byte size matches its shape.
func ValidateTensorLayout(t TensorMeta) error {
	if t.DType != DTypeFloat64 {
		return &ValidationError{
			Type:    KindUnsupportedDType,
			Tensor:  t.Name,
			Details: fmt.Sprintf("dtype %q, want %q", t.DType, DTypeFloat64),
		}
	}
	if len(t.Shape) != 2 || t.Shape[0] <= 0 || t.Shape[1] <= 0 {
		return &ValidationError{
			Type:    KindInvalidShape,
			Tensor:  t.Name,
			Details: fmt.Sprintf("shape %v is not a positive 2D shape", t.Shape),
		}
	}
	if want := int64(numElements(t.Shape) * ElementSize); t.Size != want {
		return &ValidationError{
			Type:    KindSizeMismatch,
			Tensor:  t.Name,
			Details: fmt.Sprintf("shape %v needs %d bytes, header says %d", t.Shape, want, t.Size),
		}
	}
	return nil
}

// ValidateHeader checks h's tensor table against a payload of dataSize
// bytes at the given level.
func ValidateHeader(h *Header, dataSize int64, level ValidationLevel) error {
	if level == ValidationNone {
		return nil
	}
	if len(h.Tensors) > MaxTensorCount {
		return tooMany(len(h.Tensors))
	}

	seen := make(map[string]struct{}, len(h.Tensors))
	for _, t := range h.Tensors {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
		if _, dup := seen[t.Name]; dup {
			return &ValidationError{Type: KindDuplicateName, Tensor: t.Name, Tensor2: t.Name, Details: "listed twice"}
		}
		seen[t.Name] = struct{}{}
		if err := ValidateTensorLayout(t); err != nil {
			return err
		}
	}

	if err := ValidatePayloadSize(h.Tensors, dataSize); err != nil {
		return err
	}
	if level == ValidationStrict {
		return ValidateTensorOffsets(h.Tensors, dataSize)
	}
	return nil
}

// ValidatePayloadSize checks that the tensor table accounts for exactly
// dataSize payload bytes, so a header cannot claim a payload larger than
// its tensors need.
func ValidatePayloadSize(tensors []TensorMeta, dataSize int64) error {
	var total int64
	for _, t := range tensors {
		if t.Size < 0 || t.Size > dataSize-total {
			return &ValidationError{
				Type:    KindSizeMismatch,
				Tensor:  t.Name,
				Details: fmt.Sprintf("tensor sizes exceed data_size %d", dataSize),
			}
		}
		total += t.Size
	}
	if total != dataSize {
		return &ValidationError{
			Type:    KindSizeMismatch,
			Details: fmt.Sprintf("tensors hold %d bytes, data_size is %d", total, dataSize),
		}
	}
	return nil
}
