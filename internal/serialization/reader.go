package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
)

// ReaderOptions configures Read.
type ReaderOptions struct {
	SkipChecksumValidation bool            // Skip checksum validation (faster but less safe)
	ValidationLevel        ValidationLevel // Validation strictness level
}

// Read decodes a .nnet stream.
//
// Tensors are returned in payload order. The header is validated at
// opts.ValidationLevel and the payload checksum is verified unless
// opts.SkipChecksumValidation is set.
//
//nolint:gocyclo,cyclop // Linear parse of a binary format
func Read(r io.Reader, opts ReaderOptions) (Header, []Tensor, error) {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return Header{}, nil, fmt.Errorf("failed to read fixed header: %w", err)
	}
	if string(fixed[0:4]) != MagicBytes {
		return Header{}, nil, ErrInvalidMagic
	}
	version := binary.LittleEndian.Uint32(fixed[4:8])
	if version != FormatVersion {
		return Header{}, nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}
	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	var stored [ChecksumSize]byte
	copy(stored[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	if headerSize > MaxHeaderSize {
		return Header{}, nil, ErrHeaderTooLarge
	}
	if dataSize > MaxPayloadSize {
		return Header{}, nil, ErrPayloadTooLarge
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return Header{}, nil, fmt.Errorf("failed to read header JSON: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return Header{}, nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	padding := paddedHeaderEnd(int64(headerSize)) - int64(FixedHeaderSize) - int64(headerSize)
	if _, err := io.CopyN(io.Discard, r, padding); err != nil {
		return Header{}, nil, fmt.Errorf("failed to read padding: %w", err)
	}

	//nolint:gosec // G115: dataSize is bounded by MaxPayloadSize
	if err := ValidateHeader(&header, int64(dataSize), opts.ValidationLevel); err != nil {
		return Header{}, nil, fmt.Errorf("validation failed: %w", err)
	}

	// The buffer grows with the bytes actually present, never with the
	// size the fixed header claims.
	//nolint:gosec // G115: dataSize is bounded by MaxPayloadSize
	payload, err := io.ReadAll(io.LimitReader(r, int64(dataSize)))
	if err != nil {
		return Header{}, nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	if uint64(len(payload)) != dataSize {
		return Header{}, nil, fmt.Errorf("failed to read tensor data: %w (got %d of %d bytes)",
			io.ErrUnexpectedEOF, len(payload), dataSize)
	}
	if !opts.SkipChecksumValidation && ComputeChecksum(payload) != stored {
		return Header{}, nil, ErrChecksumMismatch
	}

	tensors := make([]Tensor, 0, len(header.Tensors))
	for _, meta := range header.Tensors {
		if meta.Offset < 0 || meta.Size < 0 || meta.Offset+meta.Size > int64(len(payload)) {
			return Header{}, nil, &ValidationError{
				Type:    KindOutOfBounds,
				Tensor:  meta.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", meta.Offset, meta.Size, len(payload)),
			}
		}
		raw := payload[meta.Offset : meta.Offset+meta.Size]
		data := make([]float64, len(raw)/ElementSize)
		for i := range data {
			data[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*ElementSize:]))
		}
		tensors = append(tensors, Tensor{
			Name:  meta.Name,
			Shape: append([]int(nil), meta.Shape...),
			Data:  data,
		})
	}
	return header, tensors, nil
}

// ReadFile decodes the .nnet file at path.
func ReadFile(path string, opts ReaderOptions) (Header, []Tensor, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return Header{}, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Read(bufio.NewReader(file), opts)
}
