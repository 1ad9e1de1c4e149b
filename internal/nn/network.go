// Package nn implements a fully connected feedforward network with sigmoid
// activations, trained by backpropagation of the mean squared error.
package nn

import (
	"fmt"
	"math"
	"strings"

	"github.com/adampy/neuralnet/internal/matrix"
	"github.com/adampy/neuralnet/internal/mnist"
)

// Network is a dense sigmoid network of L = hiddenLayers+1 layers.
//
// Layer i maps neurons[i] inputs to neurons[i+1] outputs through
// weights[i] (neurons[i+1]×neurons[i]) and biases[i] (neurons[i+1]×1).
// Forward caches the pre-activations z[0..L] and activations a[0..L]; the
// caches are overwritten in place by every pass and read by Backprop.
//
// A Network runs one forward or backward pass at a time. Use Clone to give
// each goroutine its own replica.
//
// Example:
//
//	net, err := nn.New(1, []int{784, 30, 10}, 3.0, nn.WithRand(rng))
//	if err != nil {
//	    return err
//	}
//	defer net.Release()
//	if err := net.Forward(input); err != nil {
//	    return err
//	}
//	digit, _ := net.Predict()
type Network struct {
	hiddenLayers int
	neurons      []int
	learningRate float64

	weights []*matrix.Matrix
	biases  []*matrix.Matrix
	z       []*matrix.Matrix
	a       []*matrix.Matrix

	// Backprop scratch, indexed by layer.
	delta  []*matrix.Matrix // neurons[l+1]×1
	prime  []*matrix.Matrix // neurons[l+1]×1
	wT     []*matrix.Matrix // neurons[l]×neurons[l+1], transposed weights[l]
	aT     []*matrix.Matrix // 1×neurons[l]
	outer  []*matrix.Matrix // neurons[l+1]×neurons[l]
	target *matrix.Matrix   // neurons[L]×1

	released bool
}

// New creates a network with hiddenLayers hidden layers.
//
// neurons must hold hiddenLayers+2 positive counts: the input size, each
// hidden layer's size and the output size. Parameters are drawn from a
// standard normal distribution seeded with DefaultSeed unless an Option
// supplies another source or initializer.
func New(hiddenLayers int, neurons []int, learningRate float64, opts ...Option) (*Network, error) {
	if err := validateArchitecture(hiddenLayers, neurons, learningRate); err != nil {
		return nil, err
	}

	o := options{init: GaussianInit(matrix.NewSeededGaussian(DefaultSeed))}
	for _, opt := range opts {
		opt(&o)
	}

	n, err := allocate(hiddenLayers, neurons, learningRate)
	if err != nil {
		return nil, err
	}
	for i := range n.weights {
		o.init(n.weights[i])
		o.init(n.biases[i])
	}
	return n, nil
}

func validateArchitecture(hiddenLayers int, neurons []int, learningRate float64) error {
	if hiddenLayers < 0 {
		return fmt.Errorf("%w: hidden layers %d < 0", ErrInvalidConfiguration, hiddenLayers)
	}
	if len(neurons) != hiddenLayers+2 {
		return fmt.Errorf("%w: %d neuron counts for %d hidden layers, want %d",
			ErrInvalidConfiguration, len(neurons), hiddenLayers, hiddenLayers+2)
	}
	for i, n := range neurons {
		if n <= 0 {
			return fmt.Errorf("%w: layer %d has %d neurons", ErrInvalidConfiguration, i, n)
		}
	}
	if !(learningRate > 0) || math.IsInf(learningRate, 0) {
		return fmt.Errorf("%w: learning rate %v", ErrInvalidConfiguration, learningRate)
	}
	return nil
}

// allocate builds a zero network with every cache and scratch buffer.
func allocate(hiddenLayers int, neurons []int, learningRate float64) (*Network, error) {
	layers := hiddenLayers + 1
	n := &Network{
		hiddenLayers: hiddenLayers,
		neurons:      append([]int(nil), neurons...),
		learningRate: learningRate,
		weights:      make([]*matrix.Matrix, layers),
		biases:       make([]*matrix.Matrix, layers),
		z:            make([]*matrix.Matrix, layers+1),
		a:            make([]*matrix.Matrix, layers+1),
		delta:        make([]*matrix.Matrix, layers),
		prime:        make([]*matrix.Matrix, layers),
		wT:           make([]*matrix.Matrix, layers),
		aT:           make([]*matrix.Matrix, layers),
		outer:        make([]*matrix.Matrix, layers),
	}

	var err error
	alloc := func(rows, cols int) *matrix.Matrix {
		if err != nil {
			return nil
		}
		var m *matrix.Matrix
		m, err = matrix.New(rows, cols)
		return m
	}

	for i := 0; i <= layers; i++ {
		n.z[i] = alloc(neurons[i], 1)
		n.a[i] = alloc(neurons[i], 1)
	}
	for i := 0; i < layers; i++ {
		in, out := neurons[i], neurons[i+1]
		n.weights[i] = alloc(out, in)
		n.biases[i] = alloc(out, 1)
		n.delta[i] = alloc(out, 1)
		n.prime[i] = alloc(out, 1)
		n.wT[i] = alloc(in, out)
		n.aT[i] = alloc(1, in)
		n.outer[i] = alloc(out, in)
	}
	n.target = alloc(neurons[layers], 1)

	if err != nil {
		return nil, fmt.Errorf("allocate network %v: %w", neurons, err)
	}
	return n, nil
}

func (n *Network) live() error {
	if n == nil || n.released {
		return ErrReleased
	}
	return nil
}

// HiddenLayers returns the number of hidden layers.
func (n *Network) HiddenLayers() int { return n.hiddenLayers }

// Layers returns the number of weight layers, HiddenLayers()+1.
func (n *Network) Layers() int { return n.hiddenLayers + 1 }

// Neurons returns a copy of the per-layer neuron counts, input first.
func (n *Network) Neurons() []int { return append([]int(nil), n.neurons...) }

// Inputs returns the input size.
func (n *Network) Inputs() int { return n.neurons[0] }

// Outputs returns the output size.
func (n *Network) Outputs() int { return n.neurons[len(n.neurons)-1] }

// LearningRate returns the SGD learning rate.
func (n *Network) LearningRate() float64 { return n.learningRate }

// SetLearningRate changes the SGD learning rate.
func (n *Network) SetLearningRate(lr float64) error {
	if !(lr > 0) || math.IsInf(lr, 0) {
		return fmt.Errorf("%w: learning rate %v", ErrInvalidConfiguration, lr)
	}
	n.learningRate = lr
	return nil
}

// Weights returns layer i's weight matrix. The matrix is owned by the network.
// It returns nil for a released network or a layer outside [0, Layers()).
func (n *Network) Weights(i int) *matrix.Matrix { return layerAt(n, n.weights, i) }

// Biases returns layer i's bias vector. The matrix is owned by the network.
// It returns nil for a released network or a layer outside [0, Layers()).
func (n *Network) Biases(i int) *matrix.Matrix { return layerAt(n, n.biases, i) }

func layerAt(n *Network, ms []*matrix.Matrix, i int) *matrix.Matrix {
	if n == nil || n.released || i < 0 || i >= len(ms) {
		return nil
	}
	return ms[i]
}

// Forward runs input (neurons[0]×1) through the network.
func (n *Network) Forward(input *matrix.Matrix) error {
	if err := n.live(); err != nil {
		return err
	}
	if input == nil {
		return fmt.Errorf("forward: %w", matrix.ErrNilMatrix)
	}
	if !input.SameShape(n.a[0]) {
		return fmt.Errorf("forward: input %v, want %v: %w", input.Shape(), n.a[0].Shape(), ErrDimensionMismatch)
	}
	if err := matrix.CopyInto(input, n.a[0]); err != nil {
		return err
	}
	if err := matrix.CopyInto(input, n.z[0]); err != nil {
		return err
	}
	return n.propagate()
}

// ForwardImage runs img through the network with pixels scaled into [0, 1].
func (n *Network) ForwardImage(img *mnist.Image) error {
	if err := n.live(); err != nil {
		return err
	}
	if img.Size() != n.neurons[0] || len(img.Pixels) != n.neurons[0] {
		return fmt.Errorf("forward: image %dx%d, want %d inputs: %w",
			img.Rows, img.Columns, n.neurons[0], ErrDimensionMismatch)
	}
	a, z := n.a[0].Data(), n.z[0].Data()
	for i := range a {
		a[i] = img.Normalized(i)
		z[i] = a[i]
	}
	return n.propagate()
}

// propagate computes z = W·a + b and a = sigmoid(z) for every layer.
func (n *Network) propagate() error {
	for l := range n.weights {
		if err := matrix.MultiplyInto(n.weights[l], n.a[l], n.z[l+1]); err != nil {
			return fmt.Errorf("forward layer %d: %w", l, err)
		}
		if err := matrix.AddInto(n.z[l+1], n.biases[l], n.z[l+1]); err != nil {
			return fmt.Errorf("forward layer %d: %w", l, err)
		}
		if err := SigmoidInto(n.z[l+1], n.a[l+1]); err != nil {
			return fmt.Errorf("forward layer %d: %w", l, err)
		}
	}
	return nil
}

// Output returns the activations of the last forward pass. The matrix is
// overwritten by the next pass. A released network has no output and
// returns nil.
func (n *Network) Output() *matrix.Matrix {
	if n == nil || n.released {
		return nil
	}
	return n.a[len(n.a)-1]
}

// Predict returns the index of the largest output of the last forward pass.
func (n *Network) Predict() (int, error) {
	if err := n.live(); err != nil {
		return 0, err
	}
	return matrix.IndexOfMax(n.Output())
}

// Clone returns an independent network with the same architecture and
// parameters. Caches are not copied.
func (n *Network) Clone() (*Network, error) {
	if err := n.live(); err != nil {
		return nil, err
	}
	c, err := allocate(n.hiddenLayers, n.neurons, n.learningRate)
	if err != nil {
		return nil, err
	}
	if err := c.CopyParametersFrom(n); err != nil {
		return nil, err
	}
	return c, nil
}

// CopyParametersFrom overwrites n's weights and biases with src's.
func (n *Network) CopyParametersFrom(src *Network) error {
	if err := n.live(); err != nil {
		return err
	}
	if err := src.live(); err != nil {
		return err
	}
	if !sameArchitecture(n.neurons, src.neurons) {
		return fmt.Errorf("copy parameters %v into %v: %w", src.neurons, n.neurons, ErrDimensionMismatch)
	}
	for i := range n.weights {
		if err := matrix.CopyInto(src.weights[i], n.weights[i]); err != nil {
			return err
		}
		if err := matrix.CopyInto(src.biases[i], n.biases[i]); err != nil {
			return err
		}
	}
	return nil
}

func sameArchitecture(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String lists each layer's weight and bias dimensions.
func (n *Network) String() string {
	if n == nil || n.released {
		return "network (released)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "network %v, learning rate %g\n", n.neurons, n.learningRate)
	for i := range n.weights {
		fmt.Fprintf(&b, "w_%d: %v, b_%d: %v\n", i, n.weights[i].Shape(), i, n.biases[i].Shape())
	}
	return b.String()
}

// Release drops every buffer held by the network. Later operations return
// ErrReleased. Release is idempotent.
func (n *Network) Release() {
	if n == nil || n.released {
		return
	}
	n.weights, n.biases, n.z, n.a = nil, nil, nil, nil
	n.delta, n.prime, n.wT, n.aT, n.outer = nil, nil, nil, nil, nil
	n.target = nil
	n.released = true
}

// Released reports whether Release has been called.
func (n *Network) Released() bool { return n.released }
