package nn

import (
	"math/rand/v2"

	"github.com/adampy/neuralnet/internal/matrix"
)

// DefaultSeed seeds the initializer of networks created without WithRand or
// WithInitializer.
const DefaultSeed = 1

// Initializer fills a freshly allocated weight or bias matrix.
type Initializer func(m *matrix.Matrix)

// GaussianInit draws every element from a standard normal distribution.
//
// Weights and biases are filled in layer order, weights before biases, so a
// network built from the same source state is always identical.
func GaussianInit(g *matrix.Gaussian) Initializer {
	return func(m *matrix.Matrix) {
		matrix.RandomizeGaussian(m, g)
	}
}

// ConstantInit sets every element to v.
func ConstantInit(v float64) Initializer {
	return func(m *matrix.Matrix) {
		matrix.Fill(m, v)
	}
}

// Option configures New.
type Option func(*options)

type options struct {
	init Initializer
}

// WithRand draws initial parameters from r.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.init = GaussianInit(matrix.NewGaussian(r))
	}
}

// WithInitializer sets the parameter initializer.
func WithInitializer(init Initializer) Option {
	return func(o *options) {
		o.init = init
	}
}
