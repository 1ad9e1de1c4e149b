package serialization

import (
	"bytes"
	"encoding/binary"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTensors() []Tensor {
	return []Tensor{
		{Name: "layer.0.weight", Shape: []int{3, 2}, Data: []float64{1, -2, 3.5, 0, 1e-300, -7}},
		{Name: "layer.0.bias", Shape: []int{3, 1}, Data: []float64{0.25, 0.5, 0.75}},
	}
}

func sampleHeader() Header {
	return Header{
		RunID:        "6f1c5f0e-2d0b-4b43-9f0e-0d6b8c1d2e3f",
		HiddenLayers: 0,
		Neurons:      []int{2, 3},
		LearningRate: 3,
		Metadata:     map[string]string{"dataset": "mnist"},
		Checkpoint:   &CheckpointMeta{Epoch: 4, Accuracy: 0.95, Cost: 0.01},
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleHeader(), sampleTensors()))

	header, tensors, err := Read(&buf, ReaderOptions{})
	require.NoError(t, err)

	assert.Equal(t, FormatVersion, header.FormatVersion)
	assert.Equal(t, Creator, header.Creator)
	assert.Equal(t, ModelFeedforward, header.ModelType)
	assert.Equal(t, []int{2, 3}, header.Neurons)
	assert.InDelta(t, 3.0, header.LearningRate, 0)
	assert.Equal(t, "mnist", header.Metadata["dataset"])
	require.NotNil(t, header.Checkpoint)
	assert.Equal(t, 4, header.Checkpoint.Epoch)
	assert.False(t, header.CreatedAt.IsZero())

	require.Len(t, tensors, 2)
	for i, want := range sampleTensors() {
		assert.Equal(t, want.Name, tensors[i].Name)
		assert.Equal(t, want.Shape, tensors[i].Shape)
		assert.Equal(t, want.Data, tensors[i].Data)
	}
}

func TestWrite_Layout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleHeader(), sampleTensors()))
	raw := buf.Bytes()

	assert.Equal(t, MagicBytes, string(raw[0:4]))
	assert.Equal(t, uint32(FormatVersion), binary.LittleEndian.Uint32(raw[4:8]))
	flags := binary.LittleEndian.Uint32(raw[8:12])
	assert.Equal(t, FlagHasMetadata|FlagHasCheckpoint, flags)

	headerSize := int64(binary.LittleEndian.Uint64(raw[16:24]))
	dataSize := int64(binary.LittleEndian.Uint64(raw[24:32]))
	assert.Equal(t, int64(9*ElementSize), dataSize)

	start := paddedHeaderEnd(headerSize)
	assert.Zero(t, start%HeaderAlignment)
	assert.Equal(t, start+dataSize, int64(len(raw)))

	sum := ComputeChecksum(raw[start:])
	assert.Equal(t, sum[:], raw[ChecksumOffset:ChecksumOffset+ChecksumSize])
}

func TestRead_DetectsCorruption(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleHeader(), sampleTensors()))
	raw := buf.Bytes()
	raw[len(raw)-1] ^= 0xFF

	_, _, err := Read(bytes.NewReader(raw), ReaderOptions{})
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	_, tensors, err := Read(bytes.NewReader(raw), ReaderOptions{SkipChecksumValidation: true})
	require.NoError(t, err)
	assert.Len(t, tensors, 2)
}

func TestRead_RejectsBadPreamble(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleHeader(), sampleTensors()))

	badMagic := append([]byte(nil), buf.Bytes()...)
	copy(badMagic, "GGUF")
	_, _, err := Read(bytes.NewReader(badMagic), ReaderOptions{})
	assert.ErrorIs(t, err, ErrInvalidMagic)

	badVersion := append([]byte(nil), buf.Bytes()...)
	binary.LittleEndian.PutUint32(badVersion[4:8], 99)
	_, _, err = Read(bytes.NewReader(badVersion), ReaderOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, _, err = Read(bytes.NewReader(buf.Bytes()[:20]), ReaderOptions{})
	assert.Error(t, err)
}

func TestRead_RejectsInflatedDataSize(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleHeader(), sampleTensors()))

	inflated := append([]byte(nil), buf.Bytes()...)
	binary.LittleEndian.PutUint64(inflated[24:32], MaxPayloadSize)
	_, _, err := Read(bytes.NewReader(inflated), ReaderOptions{})
	assert.ErrorIs(t, err, ErrInvalidHeader)
	assert.Equal(t, "size_mismatch", validationType(t, err))

	// Without validation the short stream is reported, not allocated.
	_, _, err = Read(bytes.NewReader(inflated), ReaderOptions{ValidationLevel: ValidationNone})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestWrite_RejectsInconsistentTensor(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, sampleHeader(), []Tensor{{Name: "w", Shape: []int{2, 2}, Data: []float64{1}}})
	assert.Equal(t, "shape_mismatch", validationType(t, err))
	assert.Zero(t, buf.Len())
}

func TestWriteFile_ReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.nnet")
	require.NoError(t, WriteFile(path, sampleHeader(), sampleTensors()))

	_, tensors, err := ReadFile(path, ReaderOptions{})
	require.NoError(t, err)

	bias, ok := FindTensor(tensors, "layer.0.bias")
	require.True(t, ok)
	assert.Equal(t, []float64{0.25, 0.5, 0.75}, bias.Data)

	_, ok = FindTensor(tensors, "layer.9.bias")
	assert.False(t, ok)

	assert.NoFileExists(t, path+".tmp")
}
