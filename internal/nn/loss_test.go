package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adampy/neuralnet/internal/matrix"
	"github.com/adampy/neuralnet/internal/nn"
)

func TestOneHot(t *testing.T) {
	m, err := nn.OneHot(0, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 0}, m.Data())

	require.NoError(t, nn.OneHotInto(2, m))
	assert.Equal(t, []float64{0, 0, 1}, m.Data())

	_, err = nn.OneHot(3, 3)
	assert.ErrorIs(t, err, nn.ErrDimensionMismatch)

	row, err := matrix.New(1, 3)
	require.NoError(t, err)
	assert.ErrorIs(t, nn.OneHotInto(0, row), nn.ErrDimensionMismatch)
}

func TestMSECost(t *testing.T) {
	out, err := matrix.Column(0.5, 0.25, 1)
	require.NoError(t, err)

	c, err := nn.MSECost(out, 2)
	require.NoError(t, err)
	// ½(0.25 + 0.0625 + 0)
	assert.InDelta(t, 0.15625, c, 1e-15)
	assert.Equal(t, []float64{0.5, 0.25, 1}, out.Data())

	_, err = nn.MSECost(out, 5)
	assert.ErrorIs(t, err, nn.ErrDimensionMismatch)
}

func TestCostDerivativeInto(t *testing.T) {
	out, err := matrix.Column(0.5, 0.25)
	require.NoError(t, err)
	dst, err := matrix.New(2, 1)
	require.NoError(t, err)

	require.NoError(t, nn.CostDerivativeInto(out, 1, dst))
	assert.Equal(t, []float64{0.5, -0.75}, dst.Data())
	assert.Equal(t, []float64{0.5, 0.25}, out.Data())

	bad, err := matrix.New(3, 1)
	require.NoError(t, err)
	assert.ErrorIs(t, nn.CostDerivativeInto(out, 0, bad), nn.ErrDimensionMismatch)
}
