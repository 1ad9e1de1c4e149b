package matrix

import (
	"math"
	"math/rand/v2"
)

// Gaussian draws standard-normal samples with the Marsaglia polar method.
//
// Each accepted (u, v) pair yields two independent samples. The second one
// is cached and returned by the next call, so a Gaussian consumes uniform
// values from its source at half the rate of a discard-the-spare sampler.
// Two Gaussians seeded identically produce identical streams.
//
// A Gaussian is not safe for concurrent use.
type Gaussian struct {
	src      *rand.Rand
	spare    float64
	hasSpare bool
}

// NewGaussian returns a sampler drawing uniform values from src.
func NewGaussian(src *rand.Rand) *Gaussian {
	return &Gaussian{src: src}
}

// NewSeededGaussian returns a sampler over a PCG source seeded with seed.
func NewSeededGaussian(seed uint64) *Gaussian {
	return NewGaussian(rand.New(rand.NewPCG(seed, seed)))
}

// Sample returns the next N(0, 1) value.
func (g *Gaussian) Sample() float64 {
	if g.hasSpare {
		g.hasSpare = false
		return g.spare
	}
	var u, v, s float64
	for {
		u = g.src.Float64()*2 - 1
		v = g.src.Float64()*2 - 1
		s = u*u + v*v
		if s > 0 && s < 1 {
			break
		}
	}
	scale := math.Sqrt(-2 * math.Log(s) / s)
	g.spare = v * scale
	g.hasSpare = true
	return u * scale
}

// RandomizeGaussian fills m with independent standard-normal samples from g.
func RandomizeGaussian(m *Matrix, g *Gaussian) {
	for i := range m.data {
		m.data[i] = g.Sample()
	}
}
