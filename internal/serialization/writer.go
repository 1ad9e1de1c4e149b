package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"
)

// Write encodes header and tensors to w.
//
// The tensor table, format version, creator and creation time of header are
// filled in by Write; every other field is written as given. Tensors are laid
// out in the payload in slice order.
func Write(w io.Writer, header Header, tensors []Tensor) error {
	header.FormatVersion = FormatVersion
	header.Creator = Creator
	if header.ModelType == "" {
		header.ModelType = ModelFeedforward
	}
	if header.CreatedAt.IsZero() {
		header.CreatedAt = time.Now().UTC()
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	// Lay out tensors and encode the payload.
	var offset int64
	header.Tensors = make([]TensorMeta, 0, len(tensors))
	for _, t := range tensors {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
		if len(t.Data) != numElements(t.Shape) {
			return &ValidationError{
				Type:    KindShapeMismatch,
				Tensor:  t.Name,
				Details: fmt.Sprintf("shape %v holds %d values, got %d", t.Shape, numElements(t.Shape), len(t.Data)),
			}
		}
		size := int64(len(t.Data) * ElementSize)
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   t.Name,
			DType:  DTypeFloat64,
			Shape:  append([]int(nil), t.Shape...),
			Offset: offset,
			Size:   size,
		})
		offset += size
	}

	payload := make([]byte, offset)
	pos := 0
	for _, t := range tensors {
		for _, v := range t.Data {
			binary.LittleEndian.PutUint64(payload[pos:], math.Float64bits(v))
			pos += ElementSize
		}
	}
	checksum := ComputeChecksum(payload)

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	headerSize := uint64(len(headerJSON))
	if headerSize > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], uint32(FormatVersion))

	flags := uint32(0)
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	if header.Checkpoint != nil {
		flags |= FlagHasCheckpoint
	}
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	// 0x0C-0x0F reserved.
	binary.LittleEndian.PutUint64(fixed[16:24], headerSize)
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(payload)))
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := w.Write(fixed); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header JSON: %w", err)
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	padding := paddedHeaderEnd(int64(headerSize)) - int64(FixedHeaderSize) - int64(headerSize)
	if padding > 0 {
		if _, err := w.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}
	return nil
}

// WriteFile writes header and tensors to the file at path, replacing it.
//
// The file is written to a temporary sibling and renamed into place, so an
// interrupted write never leaves a truncated model behind.
func WriteFile(path string, header Header, tensors []Tensor) (err error) {
	tmp := path + ".tmp"
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if err := Write(file, header, tensors); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
