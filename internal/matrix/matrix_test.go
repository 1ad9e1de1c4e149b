package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFromSlice(t *testing.T, rows, cols int, data []float64) *Matrix {
	t.Helper()
	m, err := FromSlice(rows, cols, data)
	require.NoError(t, err)
	return m
}

func TestNew_ZeroFilled(t *testing.T) {
	m, err := New(3, 4)
	require.NoError(t, err)

	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, 4, m.Columns())
	assert.Len(t, m.Data(), 12)
	for _, v := range m.Data() {
		assert.Zero(t, v)
	}
}

func TestNew_InvalidDimensions(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
	}{
		{"zero rows", 0, 3},
		{"zero cols", 3, 0},
		{"negative", -1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.rows, tt.cols)
			assert.ErrorIs(t, err, ErrInvalidDimensions)
		})
	}
}

func TestNew_AllocationFailed(t *testing.T) {
	_, err := New(MaxElements, 2)
	assert.ErrorIs(t, err, ErrAllocationFailed)
}

func TestFromSlice_RowMajor(t *testing.T) {
	m := mustFromSlice(t, 2, 3, []float64{1, 2, 3, 4, 5, 6})

	v, err := m.At(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)

	v, err = m.At(0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

func TestFromSlice_LengthMismatch(t *testing.T) {
	_, err := FromSlice(2, 2, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestFromSlice_Copies(t *testing.T) {
	src := []float64{1, 2}
	m := mustFromSlice(t, 2, 1, src)
	src[0] = 99
	assert.Equal(t, 1.0, m.Data()[0])
}

func TestAtSet_OutOfRange(t *testing.T) {
	m, err := New(2, 2)
	require.NoError(t, err)

	_, err = m.At(2, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.ErrorIs(t, m.Set(0, -1, 1), ErrOutOfRange)

	require.NoError(t, m.Set(1, 1, 7))
	assert.Equal(t, []float64{0, 0, 0, 7}, m.Data())
}

func TestClone_Independent(t *testing.T) {
	m := mustFromSlice(t, 1, 2, []float64{1, 2})
	c := m.Clone()
	c.Data()[0] = 5

	assert.Equal(t, 1.0, m.Data()[0])
	assert.True(t, m.SameShape(c))
}

func TestCopyInto(t *testing.T) {
	src := mustFromSlice(t, 2, 1, []float64{3, 4})
	dst, err := New(2, 1)
	require.NoError(t, err)

	require.NoError(t, CopyInto(src, dst))
	assert.Equal(t, []float64{3, 4}, dst.Data())

	wrong, err := New(1, 2)
	require.NoError(t, err)
	assert.ErrorIs(t, CopyInto(src, wrong), ErrDimensionMismatch)
}

func TestFilledAndColumn(t *testing.T) {
	m, err := Filled(2, 2, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5, 0.5, 0.5}, m.Data())

	c, err := Column(1, 2, 3)
	require.NoError(t, err)
	assert.True(t, c.IsColumn())
	assert.Equal(t, Shape{Rows: 3, Columns: 1}, c.Shape())
}

func TestString(t *testing.T) {
	m := mustFromSlice(t, 2, 2, []float64{1, 2, 3, 4})
	assert.Equal(t, "1.000\t2.000\n3.000\t4.000\n", m.String())
	assert.Equal(t, "2x2", m.Shape().String())
}

func TestEqual(t *testing.T) {
	a := mustFromSlice(t, 1, 2, []float64{1, 2})
	b := mustFromSlice(t, 1, 2, []float64{1, 2 + 1e-12})
	c := mustFromSlice(t, 2, 1, []float64{1, 2})

	assert.True(t, Equal(a, b, 1e-9))
	assert.False(t, Equal(a, b, 0))
	assert.False(t, Equal(a, c, 1))
	assert.False(t, Equal(a, nil, 1))
}
