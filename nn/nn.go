// Copyright 2025 The neuralnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"io"
	"math/rand/v2"

	"github.com/adampy/neuralnet/internal/matrix"
	"github.com/adampy/neuralnet/internal/nn"
	"github.com/adampy/neuralnet/internal/serialization"
)

// Errors returned by network operations.
var (
	ErrInvalidConfiguration = nn.ErrInvalidConfiguration
	ErrReleased             = nn.ErrReleased
	ErrDimensionMismatch    = nn.ErrDimensionMismatch
	ErrAllocationFailed     = nn.ErrAllocationFailed
)

// DefaultSeed seeds the Gaussian initializer when no option supplies one.
const DefaultSeed = nn.DefaultSeed

// Network

// Network is a feedforward sigmoid network.
type Network = nn.Network

// Option configures New.
type Option = nn.Option

// Initializer fills a freshly allocated weight or bias matrix.
type Initializer = nn.Initializer

// New creates a network with hiddenLayers hidden layers. neurons lists the
// layer sizes from input to output and must have hiddenLayers+2 entries.
//
// Example:
//
//	net, err := nn.New(1, []int{784, 30, 10}, 3.0, nn.WithRand(r))
func New(hiddenLayers int, neurons []int, learningRate float64, opts ...Option) (*Network, error) {
	return nn.New(hiddenLayers, neurons, learningRate, opts...)
}

// WithRand draws the initial weights and biases from r.
func WithRand(r *rand.Rand) Option { return nn.WithRand(r) }

// WithInitializer replaces the Gaussian initializer.
func WithInitializer(init Initializer) Option { return nn.WithInitializer(init) }

// GaussianInit fills parameters with standard normal samples from g.
func GaussianInit(g *matrix.Gaussian) Initializer { return nn.GaussianInit(g) }

// ConstantInit sets every parameter to v.
func ConstantInit(v float64) Initializer { return nn.ConstantInit(v) }

// Gradients

// Gradients accumulates weight and bias gradients for one mini-batch.
type Gradients = nn.Gradients

// NewGradients allocates zeroed gradients shaped like n's parameters.
func NewGradients(n *Network) (*Gradients, error) { return nn.NewGradients(n) }

// Activations

// Sigmoid returns 1/(1+e^-x), kept strictly inside (0, 1).
func Sigmoid(x float64) float64 { return nn.Sigmoid(x) }

// SigmoidPrime returns σ(x)(1-σ(x)).
func SigmoidPrime(x float64) float64 { return nn.SigmoidPrime(x) }

// ReLU returns max(0, x).
func ReLU(x float64) float64 { return nn.ReLU(x) }

// ReLUPrime returns 1 for x > 0 and 0 otherwise.
func ReLUPrime(x float64) float64 { return nn.ReLUPrime(x) }

// SigmoidInto applies Sigmoid element-wise from src into dst.
func SigmoidInto(src, dst *matrix.Matrix) error { return nn.SigmoidInto(src, dst) }

// SigmoidPrimeInto applies SigmoidPrime element-wise from src into dst.
func SigmoidPrimeInto(src, dst *matrix.Matrix) error { return nn.SigmoidPrimeInto(src, dst) }

// ReLUInto applies ReLU element-wise from src into dst.
func ReLUInto(src, dst *matrix.Matrix) error { return nn.ReLUInto(src, dst) }

// ReLUPrimeInto applies ReLUPrime element-wise from src into dst.
func ReLUPrimeInto(src, dst *matrix.Matrix) error { return nn.ReLUPrimeInto(src, dst) }

// Loss

// OneHot returns a size x 1 column with a 1 in row label.
func OneHot(label, size int) (*matrix.Matrix, error) { return nn.OneHot(label, size) }

// MSECost returns ½Σ(output - onehot(label))² without modifying output.
func MSECost(output *matrix.Matrix, label int) (float64, error) { return nn.MSECost(output, label) }

// Persistence

// SaveOptions carries the optional parts of a saved model.
type SaveOptions = nn.SaveOptions

// Header describes a saved model.
type Header = serialization.Header

// CheckpointMeta records training progress in a checkpoint.
type CheckpointMeta = serialization.CheckpointMeta

// Save writes n to path in the .nnet format. The file is replaced atomically.
func Save(path string, n *Network, opts SaveOptions) error { return nn.Save(path, n, opts) }

// Load reads a network saved with Save.
func Load(path string) (*Network, Header, error) { return nn.Load(path) }

// Write encodes n to w in the .nnet format.
func Write(w io.Writer, n *Network, opts SaveOptions) error { return nn.Write(w, n, opts) }

// Read decodes a network from a .nnet stream.
func Read(r io.Reader) (*Network, Header, error) { return nn.Read(r) }
