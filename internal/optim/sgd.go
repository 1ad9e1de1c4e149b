package optim

import (
	"fmt"
	"math"

	"github.com/adampy/neuralnet/internal/matrix"
	"github.com/adampy/neuralnet/internal/nn"
)

// SGD implements plain mini-batch stochastic gradient descent.
//
// Update rule, applied to layers 0..L-1 in order:
//
//	W[l] = W[l] - (lr / m) * nablaW[l]
//	b[l] = b[l] - (lr / m) * nablaB[l]
//
// where m is the mini-batch size and nabla the gradients summed over it.
//
// Example:
//
//	sgd := optim.NewSGD(optim.SGDConfig{})      // uses the network's learning rate
//	sgd := optim.NewSGD(optim.SGDConfig{LR: 3}) // fixed learning rate
type SGD struct {
	lr float64
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR float64 // Learning rate (default: 0, use the network's)
}

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	return &SGD{lr: config.LR}
}

// Step performs a single optimization step.
func (s *SGD) Step(net *nn.Network, grads *nn.Gradients, batchSize int) error {
	if net == nil || net.Released() {
		return nn.ErrReleased
	}
	if batchSize <= 0 {
		return fmt.Errorf("%w: batch size %d", nn.ErrInvalidConfiguration, batchSize)
	}
	if !grads.Fits(net) {
		return fmt.Errorf("sgd step: gradients do not match network %v: %w", net.Neurons(), nn.ErrDimensionMismatch)
	}

	scale := -s.GetLR(net) / float64(batchSize)
	if math.IsNaN(scale) || math.IsInf(scale, 0) {
		return fmt.Errorf("%w: step scale %v", nn.ErrInvalidConfiguration, scale)
	}
	for l := 0; l < net.Layers(); l++ {
		w, b := net.Weights(l), net.Biases(l)
		if err := matrix.AddScaledInto(w, scale, grads.W[l], w); err != nil {
			return fmt.Errorf("sgd step layer %d: %w", l, err)
		}
		if err := matrix.AddScaledInto(b, scale, grads.B[l], b); err != nil {
			return fmt.Errorf("sgd step layer %d: %w", l, err)
		}
	}
	return nil
}

// GetLR returns the configured learning rate, or net's when none is set.
func (s *SGD) GetLR(net *nn.Network) float64 {
	if s.lr > 0 {
		return s.lr
	}
	return net.LearningRate()
}

// SetLR updates the learning rate. Zero reverts to the network's.
//
// Useful for learning rate scheduling during training.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}

var _ Optimizer = (*SGD)(nil)
