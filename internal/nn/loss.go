package nn

import (
	"fmt"

	"github.com/adampy/neuralnet/internal/matrix"
)

// OneHotInto writes the one-hot encoding of label into the column vector dst.
func OneHotInto(label int, dst *matrix.Matrix) error {
	if dst == nil {
		return fmt.Errorf("one hot: %w", matrix.ErrNilMatrix)
	}
	if !dst.IsColumn() || label < 0 || label >= dst.Rows() {
		return fmt.Errorf("one hot: label %d for %v: %w", label, dst.Shape(), ErrDimensionMismatch)
	}
	matrix.Zero(dst)
	dst.Data()[label] = 1
	return nil
}

// OneHot returns the size×1 one-hot encoding of label.
func OneHot(label, size int) (*matrix.Matrix, error) {
	m, err := matrix.New(size, 1)
	if err != nil {
		return nil, err
	}
	if err := OneHotInto(label, m); err != nil {
		return nil, err
	}
	return m, nil
}

// MSECost returns ½Σ(output - onehot(label))² without modifying output.
func MSECost(output *matrix.Matrix, label int) (float64, error) {
	if output == nil {
		return 0, fmt.Errorf("mse: %w", matrix.ErrNilMatrix)
	}
	if !output.IsColumn() || label < 0 || label >= output.Rows() {
		return 0, fmt.Errorf("mse: label %d for %v: %w", label, output.Shape(), ErrDimensionMismatch)
	}
	var sum float64
	for i, v := range output.Data() {
		if i == label {
			v--
		}
		sum += v * v
	}
	return sum / 2, nil
}

// CostDerivativeInto writes ∂C/∂a = output - onehot(label) into dst.
// dst may alias output.
func CostDerivativeInto(output *matrix.Matrix, label int, dst *matrix.Matrix) error {
	if output == nil || dst == nil {
		return fmt.Errorf("mse derivative: %w", matrix.ErrNilMatrix)
	}
	if !output.IsColumn() || !output.SameShape(dst) || label < 0 || label >= output.Rows() {
		return fmt.Errorf("mse derivative: label %d for %v into %v: %w",
			label, output.Shape(), dst.Shape(), ErrDimensionMismatch)
	}
	if err := matrix.CopyInto(output, dst); err != nil {
		return err
	}
	dst.Data()[label]--
	return nil
}
