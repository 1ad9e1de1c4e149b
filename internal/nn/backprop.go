package nn

import (
	"fmt"

	"github.com/adampy/neuralnet/internal/matrix"
)

// Backprop adds the MSE gradients of the last forward pass, taken against
// the one-hot target for label, into g.
//
// With L layers:
//
//	delta[L-1] = (a[L] - y) ⊙ σ'(z[L])
//	delta[l]   = (W[l+1]ᵀ · delta[l+1]) ⊙ σ'(z[l+1])   for l = L-2 … 0
//	g.B[l]    += delta[l]
//	g.W[l]    += delta[l] · a[l]ᵀ
//
// label and g are validated before g is touched.
func (n *Network) Backprop(label int, g *Gradients) error {
	if err := n.live(); err != nil {
		return err
	}
	if label < 0 || label >= n.Outputs() {
		return fmt.Errorf("backprop: label %d outside [0, %d): %w", label, n.Outputs(), ErrDimensionMismatch)
	}
	if !g.Fits(n) {
		return fmt.Errorf("backprop: gradients do not match network %v: %w", n.neurons, ErrDimensionMismatch)
	}

	last := len(n.weights) - 1

	// Output layer.
	if err := CostDerivativeInto(n.a[last+1], label, n.delta[last]); err != nil {
		return err
	}
	if err := SigmoidPrimeInto(n.z[last+1], n.prime[last]); err != nil {
		return err
	}
	if err := matrix.HadamardInto(n.delta[last], n.prime[last], n.delta[last]); err != nil {
		return err
	}

	// Hidden layers, back to front.
	for l := last - 1; l >= 0; l-- {
		if err := matrix.TransposeInto(n.weights[l+1], n.wT[l+1]); err != nil {
			return err
		}
		if err := matrix.MultiplyInto(n.wT[l+1], n.delta[l+1], n.delta[l]); err != nil {
			return err
		}
		if err := SigmoidPrimeInto(n.z[l+1], n.prime[l]); err != nil {
			return err
		}
		if err := matrix.HadamardInto(n.delta[l], n.prime[l], n.delta[l]); err != nil {
			return err
		}
	}

	for l := 0; l <= last; l++ {
		if err := matrix.AddInto(g.B[l], n.delta[l], g.B[l]); err != nil {
			return err
		}
		if err := matrix.TransposeInto(n.a[l], n.aT[l]); err != nil {
			return err
		}
		if err := matrix.MultiplyInto(n.delta[l], n.aT[l], n.outer[l]); err != nil {
			return err
		}
		if err := matrix.AddInto(g.W[l], n.outer[l], g.W[l]); err != nil {
			return err
		}
	}
	return nil
}
