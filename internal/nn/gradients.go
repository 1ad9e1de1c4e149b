package nn

import (
	"fmt"

	"github.com/adampy/neuralnet/internal/matrix"
)

// Gradients accumulates ∂C/∂W and ∂C/∂b over the examples of a mini-batch.
// W[i] and B[i] have the shapes of the network's weights[i] and biases[i].
type Gradients struct {
	W []*matrix.Matrix
	B []*matrix.Matrix
}

// NewGradients allocates zero gradients shaped like n's parameters.
func NewGradients(n *Network) (*Gradients, error) {
	if err := n.live(); err != nil {
		return nil, err
	}
	g := &Gradients{
		W: make([]*matrix.Matrix, len(n.weights)),
		B: make([]*matrix.Matrix, len(n.biases)),
	}
	for i := range n.weights {
		var err error
		if g.W[i], err = matrix.New(n.weights[i].Rows(), n.weights[i].Columns()); err != nil {
			return nil, fmt.Errorf("allocate gradients: %w", err)
		}
		if g.B[i], err = matrix.New(n.biases[i].Rows(), n.biases[i].Columns()); err != nil {
			return nil, fmt.Errorf("allocate gradients: %w", err)
		}
	}
	return g, nil
}

// Zero resets every gradient to 0.
func (g *Gradients) Zero() {
	for i := range g.W {
		matrix.Zero(g.W[i])
		matrix.Zero(g.B[i])
	}
}

// Add accumulates o into g.
func (g *Gradients) Add(o *Gradients) error {
	if len(g.W) != len(o.W) || len(g.B) != len(o.B) {
		return fmt.Errorf("add gradients: %d layers and %d layers: %w", len(g.W), len(o.W), ErrDimensionMismatch)
	}
	for i := range g.W {
		if !g.W[i].SameShape(o.W[i]) || !g.B[i].SameShape(o.B[i]) {
			return fmt.Errorf("add gradients: layer %d: %w", i, ErrDimensionMismatch)
		}
	}
	for i := range g.W {
		if err := matrix.AddInto(g.W[i], o.W[i], g.W[i]); err != nil {
			return err
		}
		if err := matrix.AddInto(g.B[i], o.B[i], g.B[i]); err != nil {
			return err
		}
	}
	return nil
}

// Fits reports whether g has the shape of n's parameters.
func (g *Gradients) Fits(n *Network) bool {
	if g == nil || len(g.W) != len(n.weights) || len(g.B) != len(n.biases) {
		return false
	}
	for i := range n.weights {
		if g.W[i] == nil || g.B[i] == nil ||
			!g.W[i].SameShape(n.weights[i]) || !g.B[i].SameShape(n.biases[i]) {
			return false
		}
	}
	return true
}
