// Package optim implements the parameter update applied after each
// mini-batch.
//
// Example usage:
//
//	sgd := optim.NewSGD(optim.SGDConfig{})
//
//	for _, batch := range batches {
//	    grads.Zero()
//	    for _, img := range batch {
//	        net.ForwardImage(&img)
//	        net.Backprop(img.Label, grads)
//	    }
//	    if err := sgd.Step(net, grads, len(batch)); err != nil {
//	        return err
//	    }
//	}
package optim

import (
	"github.com/adampy/neuralnet/internal/nn"
)

// Optimizer updates a network's parameters from accumulated gradients.
type Optimizer interface {
	// Step applies the gradients summed over batchSize examples to net.
	//
	// Either every parameter is updated or, on error, none is.
	Step(net *nn.Network, grads *nn.Gradients, batchSize int) error

	// GetLR returns the learning rate used for net.
	GetLR(net *nn.Network) float64
}
