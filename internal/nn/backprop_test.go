package nn_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/adampy/neuralnet/internal/matrix"
	"github.com/adampy/neuralnet/internal/nn"
)

func dense(m *matrix.Matrix) *mat.Dense {
	return mat.NewDense(m.Rows(), m.Columns(), append([]float64(nil), m.Data()...))
}

func sigmoidDense(dst, src *mat.Dense, prime bool) {
	dst.Apply(func(_, _ int, v float64) float64 {
		s := 1 / (1 + math.Exp(-v))
		if prime {
			return s * (1 - s)
		}
		return s
	}, src)
}

// referenceGradients recomputes backprop with gonum/mat.
func referenceGradients(net *nn.Network, x []float64, label int) (gw, gb []*mat.Dense) {
	layers := net.Layers()
	as := make([]*mat.Dense, layers+1)
	zs := make([]*mat.Dense, layers+1)
	as[0] = mat.NewDense(len(x), 1, append([]float64(nil), x...))
	zs[0] = as[0]
	for l := 0; l < layers; l++ {
		var z mat.Dense
		z.Mul(dense(net.Weights(l)), as[l])
		z.Add(&z, dense(net.Biases(l)))
		var a mat.Dense
		sigmoidDense(&a, &z, false)
		zs[l+1], as[l+1] = &z, &a
	}

	outputs := net.Outputs()
	y := mat.NewDense(outputs, 1, nil)
	y.Set(label, 0, 1)

	gw = make([]*mat.Dense, layers)
	gb = make([]*mat.Dense, layers)

	var delta, sp mat.Dense
	delta.Sub(as[layers], y)
	sigmoidDense(&sp, zs[layers], true)
	delta.MulElem(&delta, &sp)

	for l := layers - 1; l >= 0; l-- {
		gb[l] = mat.DenseCopyOf(&delta)
		var w mat.Dense
		w.Mul(&delta, as[l].T())
		gw[l] = &w
		if l == 0 {
			break
		}
		var next, p mat.Dense
		next.Mul(dense(net.Weights(l)).T(), &delta)
		sigmoidDense(&p, zs[l], true)
		next.MulElem(&next, &p)
		delta = next
	}
	return gw, gb
}

func TestBackprop_MatchesGonumReference(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 11))
	net, err := nn.New(2, []int{5, 4, 3, 3}, 1, nn.WithRand(rng))
	require.NoError(t, err)

	x := []float64{0.1, 0.9, 0.3, 0, 0.5}
	input, err := matrix.FromSlice(5, 1, x)
	require.NoError(t, err)

	g, err := nn.NewGradients(net)
	require.NoError(t, err)
	require.NoError(t, net.Forward(input))
	require.NoError(t, net.Backprop(2, g))

	gw, gb := referenceGradients(net, x, 2)
	for l := 0; l < net.Layers(); l++ {
		assert.InDeltaSlice(t, gw[l].RawMatrix().Data, g.W[l].Data(), 1e-9, "layer %d weights", l)
		assert.InDeltaSlice(t, gb[l].RawMatrix().Data, g.B[l].Data(), 1e-9, "layer %d biases", l)
	}
}

func TestBackprop_FiniteDifferences(t *testing.T) {
	net, err := nn.New(1, []int{3, 4, 2}, 1, nn.WithRand(rand.New(rand.NewPCG(3, 3))))
	require.NoError(t, err)
	input, err := matrix.Column(0.2, -0.4, 0.7)
	require.NoError(t, err)
	const label = 1

	cost := func() float64 {
		require.NoError(t, net.Forward(input))
		c, err := nn.MSECost(net.Output(), label)
		require.NoError(t, err)
		return c
	}

	g, err := nn.NewGradients(net)
	require.NoError(t, err)
	require.NoError(t, net.Forward(input))
	require.NoError(t, net.Backprop(label, g))

	const h = 1e-6
	for l := 0; l < net.Layers(); l++ {
		params := [][]float64{net.Weights(l).Data(), net.Biases(l).Data()}
		grads := [][]float64{g.W[l].Data(), g.B[l].Data()}
		for k, p := range params {
			for i := range p {
				orig := p[i]
				p[i] = orig + h
				up := cost()
				p[i] = orig - h
				down := cost()
				p[i] = orig
				assert.InDelta(t, (up-down)/(2*h), grads[k][i], 1e-7, "layer %d param %d[%d]", l, k, i)
			}
		}
	}
}

func TestBackprop_Accumulates(t *testing.T) {
	net, err := nn.New(1, []int{2, 2, 2}, 1)
	require.NoError(t, err)
	input, err := matrix.Column(1, 0)
	require.NoError(t, err)

	once, err := nn.NewGradients(net)
	require.NoError(t, err)
	twice, err := nn.NewGradients(net)
	require.NoError(t, err)

	require.NoError(t, net.Forward(input))
	require.NoError(t, net.Backprop(0, once))
	require.NoError(t, net.Backprop(0, twice))
	require.NoError(t, net.Backprop(0, twice))

	doubled, err := matrix.Scale(once.W[0], 2)
	require.NoError(t, err)
	assert.True(t, matrix.Equal(doubled, twice.W[0], 1e-15))

	require.NoError(t, once.Add(once))
	assert.True(t, matrix.Equal(once.B[1], twice.B[1], 1e-15))

	twice.Zero()
	for _, v := range twice.W[1].Data() {
		assert.Zero(t, v)
	}
}

func TestBackprop_Errors(t *testing.T) {
	net, err := nn.New(0, []int{2, 3}, 1)
	require.NoError(t, err)
	g, err := nn.NewGradients(net)
	require.NoError(t, err)

	input, err := matrix.Column(1, 1)
	require.NoError(t, err)
	require.NoError(t, net.Forward(input))

	assert.ErrorIs(t, net.Backprop(3, g), nn.ErrDimensionMismatch)
	assert.ErrorIs(t, net.Backprop(-1, g), nn.ErrDimensionMismatch)
	for _, v := range g.W[0].Data() {
		assert.Zero(t, v)
	}

	other, err := nn.New(0, []int{2, 4}, 1)
	require.NoError(t, err)
	wrong, err := nn.NewGradients(other)
	require.NoError(t, err)
	assert.ErrorIs(t, net.Backprop(0, wrong), nn.ErrDimensionMismatch)
	assert.ErrorIs(t, net.Backprop(0, nil), nn.ErrDimensionMismatch)
	assert.ErrorIs(t, g.Add(wrong), nn.ErrDimensionMismatch)
}
