package serialization

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validationType(t *testing.T, err error) string {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	return string(ve.Type)
}

func TestValidateTensorOffsets(t *testing.T) {
	tests := []struct {
		name     string
		tensors  []TensorMeta
		dataSize int64
		wantType string
	}{
		{
			name: "adjacent regions",
			tensors: []TensorMeta{
				{Name: "a", Offset: 0, Size: 100},
				{Name: "b", Offset: 100, Size: 200},
			},
			dataSize: 300,
		},
		{
			name: "overlap by one byte",
			tensors: []TensorMeta{
				{Name: "a", Offset: 0, Size: 100},
				{Name: "b", Offset: 99, Size: 100},
			},
			dataSize: 200,
			wantType: "offset_overlap",
		},
		{
			name: "past the payload",
			tensors: []TensorMeta{
				{Name: "a", Offset: 100, Size: 200},
			},
			dataSize: 250,
			wantType: "out_of_bounds",
		},
		{
			name: "negative offset",
			tensors: []TensorMeta{
				{Name: "a", Offset: -8, Size: 8},
			},
			dataSize: 100,
			wantType: "negative_offset",
		},
		{
			name: "negative size",
			tensors: []TensorMeta{
				{Name: "a", Offset: 0, Size: -8},
			},
			dataSize: 100,
			wantType: "negative_offset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTensorOffsets(tt.tensors, tt.dataSize)
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantType, validationType(t, err))
		})
	}
}

func TestValidateTensorOffsets_TooManyTensors(t *testing.T) {
	tensors := make([]TensorMeta, MaxTensorCount+1)
	for i := range tensors {
		tensors[i] = TensorMeta{Name: "t", Offset: int64(i * 8), Size: 8}
	}

	err := ValidateTensorOffsets(tensors, int64(len(tensors)*8))
	assert.Equal(t, "too_many_tensors", validationType(t, err))
}

func TestValidateTensorName(t *testing.T) {
	for _, name := range []string{"layer.0.weight", "layer.12.bias", "output:logits", "with_numbers_123"} {
		assert.NoError(t, ValidateTensorName(name), name)
	}

	bad := []string{
		"",
		"../../../etc/passwd",
		"..\\..\\windows",
		"layer/0/weight",
		"tensor\x00hidden",
		strings.Repeat("a", MaxTensorNameLen+1),
	}
	for _, name := range bad {
		err := ValidateTensorName(name)
		typ := validationType(t, err)
		assert.Contains(t, []string{"invalid_name", "name_too_long"}, typ)
	}
}

func TestValidateTensorLayout(t *testing.T) {
	ok := TensorMeta{Name: "w", DType: DTypeFloat64, Shape: []int{3, 2}, Size: 48}
	assert.NoError(t, ValidateTensorLayout(ok))

	wrongType := ok
	wrongType.DType = "float32"
	assert.Equal(t, "unsupported_dtype", validationType(t, ValidateTensorLayout(wrongType)))

	wrongRank := ok
	wrongRank.Shape = []int{6}
	assert.Equal(t, "invalid_shape", validationType(t, ValidateTensorLayout(wrongRank)))

	wrongSize := ok
	wrongSize.Size = 40
	assert.Equal(t, "size_mismatch", validationType(t, ValidateTensorLayout(wrongSize)))
}

func TestValidateHeader_Levels(t *testing.T) {
	overlapping := Header{
		Tensors: []TensorMeta{
			{Name: "a", DType: DTypeFloat64, Shape: []int{1, 2}, Offset: 0, Size: 16},
			{Name: "b", DType: DTypeFloat64, Shape: []int{1, 2}, Offset: 8, Size: 16},
		},
	}

	assert.Error(t, ValidateHeader(&overlapping, 32, ValidationStrict))
	assert.NoError(t, ValidateHeader(&overlapping, 32, ValidationNormal))

	garbage := Header{
		Tensors: []TensorMeta{{Name: "../x", Offset: -1, Size: -1}},
	}
	assert.NoError(t, ValidateHeader(&garbage, 0, ValidationNone))
	assert.Error(t, ValidateHeader(&garbage, 0, ValidationNormal))
}

func TestValidationError_Error(t *testing.T) {
	assert.Equal(t,
		`out_of_bounds: tensor "layer.1.weight": offset 100 + size 200 > data_size 250`,
		(&ValidationError{Type: "out_of_bounds", Tensor: "layer.1.weight", Details: "offset 100 + size 200 > data_size 250"}).Error())
	assert.Equal(t,
		`offset_overlap: tensors "a" and "b": regions [0-100] and [50-150] overlap`,
		(&ValidationError{Type: "offset_overlap", Tensor: "a", Tensor2: "b", Details: "regions [0-100] and [50-150] overlap"}).Error())
	assert.Equal(t,
		"too_many_tensors: got 10001, max 10000",
		(&ValidationError{Type: "too_many_tensors", Details: "got 10001, max 10000"}).Error())
}

func TestValidateHeader_DuplicateNames(t *testing.T) {
	h := Header{
		Tensors: []TensorMeta{
			{Name: "layer.0.bias", DType: DTypeFloat64, Shape: []int{2, 1}, Offset: 0, Size: 16},
			{Name: "layer.0.bias", DType: DTypeFloat64, Shape: []int{2, 1}, Offset: 16, Size: 16},
		},
	}
	err := ValidateHeader(&h, 32, ValidationNormal)
	assert.Equal(t, "duplicate_name", validationType(t, err))
}

func TestValidateTensorOffsets_PayloadOrder(t *testing.T) {
	reversed := []TensorMeta{
		{Name: "b", Offset: 100, Size: 100},
		{Name: "a", Offset: 0, Size: 100},
	}
	assert.Equal(t, "offset_overlap", validationType(t, ValidateTensorOffsets(reversed, 200)))
}

func TestValidationError_IsInvalidHeader(t *testing.T) {
	err := ValidateTensorName("")
	assert.ErrorIs(t, err, ErrInvalidHeader)
	assert.NotErrorIs(t, err, ErrChecksumMismatch)
}

func TestValidatePayloadSize(t *testing.T) {
	tensors := []TensorMeta{{Name: "a", Size: 16}, {Name: "b", Size: 8}}
	assert.NoError(t, ValidatePayloadSize(tensors, 24))
	assert.Equal(t, "size_mismatch", validationType(t, ValidatePayloadSize(tensors, 32)))
	assert.Equal(t, "size_mismatch", validationType(t, ValidatePayloadSize(tensors, 16)))
	assert.NoError(t, ValidatePayloadSize(nil, 0))
}

// FuzzValidateTensorName ensures name validation never panics on random input.
func FuzzValidateTensorName(f *testing.F) {
	f.Add("layer.0.weight")
	f.Add("../etc/passwd")
	f.Add("")
	f.Fuzz(func(_ *testing.T, name string) {
		_ = ValidateTensorName(name)
	})
}
