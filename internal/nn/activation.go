package nn

import (
	"fmt"
	"math"

	"github.com/adampy/neuralnet/internal/matrix"
)

// Sigmoid output bounds. Results are clamped into the open interval (0, 1)
// so that s(1-s) never collapses to exactly zero.
const (
	sigmoidLow  = math.SmallestNonzeroFloat64
	sigmoidHigh = 1 - 0x1p-53 // largest float64 below 1
)

// Sigmoid computes 1 / (1 + e^-x) without overflow for large |x|.
func Sigmoid(x float64) float64 {
	var s float64
	if x >= 0 {
		s = 1 / (1 + math.Exp(-x))
	} else {
		e := math.Exp(x)
		s = e / (1 + e)
	}
	return min(max(s, sigmoidLow), sigmoidHigh)
}

// SigmoidPrime computes s(x)(1 - s(x)) from the pre-activation x.
func SigmoidPrime(x float64) float64 {
	s := Sigmoid(x)
	return s * (1 - s)
}

// ReLU computes max(0, x).
func ReLU(x float64) float64 {
	return max(0, x)
}

// ReLUPrime is 1 for x > 0 and 0 otherwise.
func ReLUPrime(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}

// apply writes f(src) into dst element-wise. dst may alias src.
func apply(op string, f func(float64) float64, src, dst *matrix.Matrix) error {
	if src == nil || dst == nil {
		return fmt.Errorf("%s: %w", op, matrix.ErrNilMatrix)
	}
	if !src.SameShape(dst) {
		return fmt.Errorf("%s %v %v: %w", op, src.Shape(), dst.Shape(), ErrDimensionMismatch)
	}
	in, out := src.Data(), dst.Data()
	for i, x := range in {
		out[i] = f(x)
	}
	return nil
}

// SigmoidInto writes sigmoid(src) into dst. dst may alias src.
func SigmoidInto(src, dst *matrix.Matrix) error {
	return apply("sigmoid", Sigmoid, src, dst)
}

// SigmoidPrimeInto writes sigmoid'(src) into dst, where src holds
// pre-activations. dst may alias src.
func SigmoidPrimeInto(src, dst *matrix.Matrix) error {
	return apply("sigmoid prime", SigmoidPrime, src, dst)
}

// ReLUInto writes max(0, src) into dst. dst may alias src.
func ReLUInto(src, dst *matrix.Matrix) error {
	return apply("relu", ReLU, src, dst)
}

// ReLUPrimeInto writes the ReLU derivative of src into dst. dst may alias src.
func ReLUPrimeInto(src, dst *matrix.Matrix) error {
	return apply("relu prime", ReLUPrime, src, dst)
}
