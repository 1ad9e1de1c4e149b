package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// checkElementwise validates that every operand has the shape of the first.
func checkElementwise(op string, ms ...*Matrix) error {
	if err := notNil(op, ms...); err != nil {
		return err
	}
	for _, m := range ms[1:] {
		if !m.SameShape(ms[0]) {
			shapes := make([]Shape, len(ms))
			for i, x := range ms {
				shapes[i] = x.Shape()
			}
			return mismatch(op, shapes...)
		}
	}
	return nil
}

// AddInto computes dst = a + b element-wise. dst may alias a or b.
func AddInto(a, b, dst *Matrix) error {
	if err := checkElementwise("add", a, b, dst); err != nil {
		return err
	}
	floats.AddTo(dst.data, a.data, b.data)
	return nil
}

// SubInto computes dst = a - b element-wise. dst may alias a or b.
func SubInto(a, b, dst *Matrix) error {
	if err := checkElementwise("sub", a, b, dst); err != nil {
		return err
	}
	floats.SubTo(dst.data, a.data, b.data)
	return nil
}

// AddScaledInto computes dst = a + alpha*b element-wise. dst may alias a or b.
func AddScaledInto(a *Matrix, alpha float64, b, dst *Matrix) error {
	if err := checkElementwise("add scaled", a, b, dst); err != nil {
		return err
	}
	floats.AddScaledTo(dst.data, a.data, alpha, b.data)
	return nil
}

// ScalarMultiplyInto computes dst = scalar * a. dst may alias a.
func ScalarMultiplyInto(a *Matrix, scalar float64, dst *Matrix) error {
	if err := checkElementwise("scale", a, dst); err != nil {
		return err
	}
	floats.ScaleTo(dst.data, scalar, a.data)
	return nil
}

// HadamardInto computes the element-wise product dst = a ⊙ b. dst may alias
// a or b.
func HadamardInto(a, b, dst *Matrix) error {
	if err := checkElementwise("hadamard", a, b, dst); err != nil {
		return err
	}
	floats.MulTo(dst.data, a.data, b.data)
	return nil
}

// MultiplyInto computes the matrix product dst = a · b.
//
// Requires a.columns == b.rows and dst to be a.rows × b.columns. dst must not
// alias a or b.
func MultiplyInto(a, b, dst *Matrix) error {
	if err := notNil("multiply", a, b, dst); err != nil {
		return err
	}
	if a.columns != b.rows || dst.rows != a.rows || dst.columns != b.columns {
		return mismatch("multiply", a.Shape(), b.Shape(), dst.Shape())
	}
	if dst == a || dst == b {
		return fmt.Errorf("multiply: %w", ErrAliasedOperand)
	}
	multiply(dst.data, a.data, b.data, a.rows, a.columns, b.columns)
	return nil
}

// multiply is the naive O(m·k·n) product C[i,j] = Σ_k A[i,k]·B[k,j].
func multiply(c, a, b []float64, m, k, n int) {
	for i := 0; i < m; i++ {
		row := a[i*k : (i+1)*k]
		for j := 0; j < n; j++ {
			sum := 0.0
			for kIdx, av := range row {
				sum += av * b[kIdx*n+j]
			}
			c[i*n+j] = sum
		}
	}
}

// TransposeInto writes aᵗ into dst, which must be a.columns × a.rows and
// must not alias a.
func TransposeInto(a, dst *Matrix) error {
	if err := notNil("transpose", a, dst); err != nil {
		return err
	}
	if dst.rows != a.columns || dst.columns != a.rows {
		return mismatch("transpose", a.Shape(), dst.Shape())
	}
	if dst == a {
		return fmt.Errorf("transpose: %w", ErrAliasedOperand)
	}
	for r := 0; r < a.rows; r++ {
		for c := 0; c < a.columns; c++ {
			dst.data[c*a.rows+r] = a.data[r*a.columns+c]
		}
	}
	return nil
}

// Zero sets every element of m to 0.
func Zero(m *Matrix) {
	clear(m.data)
}

// Negate flips the sign of every element of m.
func Negate(m *Matrix) {
	floats.Scale(-1, m.data)
}

// Fill sets every element of m to v.
func Fill(m *Matrix, v float64) {
	for i := range m.data {
		m.data[i] = v
	}
}

// IndexOfMax returns the row of the largest value of a column vector. The
// first occurrence wins on ties.
func IndexOfMax(m *Matrix) (int, error) {
	if err := notNil("index of max", m); err != nil {
		return 0, err
	}
	if m.columns != 1 {
		return 0, mismatch("index of max", m.Shape())
	}
	return floats.MaxIdx(m.data), nil
}

// Allocating variants.

// Add returns a + b.
func Add(a, b *Matrix) (*Matrix, error) {
	if err := checkElementwise("add", a, b); err != nil {
		return nil, err
	}
	dst, err := New(a.rows, a.columns)
	if err != nil {
		return nil, err
	}
	floats.AddTo(dst.data, a.data, b.data)
	return dst, nil
}

// Hadamard returns a ⊙ b.
func Hadamard(a, b *Matrix) (*Matrix, error) {
	if err := checkElementwise("hadamard", a, b); err != nil {
		return nil, err
	}
	dst, err := New(a.rows, a.columns)
	if err != nil {
		return nil, err
	}
	floats.MulTo(dst.data, a.data, b.data)
	return dst, nil
}

// Scale returns scalar * a.
func Scale(a *Matrix, scalar float64) (*Matrix, error) {
	if err := notNil("scale", a); err != nil {
		return nil, err
	}
	dst, err := New(a.rows, a.columns)
	if err != nil {
		return nil, err
	}
	floats.ScaleTo(dst.data, scalar, a.data)
	return dst, nil
}

// Multiply returns a · b.
func Multiply(a, b *Matrix) (*Matrix, error) {
	if err := notNil("multiply", a, b); err != nil {
		return nil, err
	}
	if a.columns != b.rows {
		return nil, mismatch("multiply", a.Shape(), b.Shape())
	}
	dst, err := New(a.rows, b.columns)
	if err != nil {
		return nil, err
	}
	multiply(dst.data, a.data, b.data, a.rows, a.columns, b.columns)
	return dst, nil
}

// Transpose returns a new matrix holding aᵗ: element (r,c) of a becomes
// element (c,r) of the result.
func Transpose(a *Matrix) (*Matrix, error) {
	if err := notNil("transpose", a); err != nil {
		return nil, err
	}
	dst, err := New(a.columns, a.rows)
	if err != nil {
		return nil, err
	}
	if err := TransposeInto(a, dst); err != nil {
		return nil, err
	}
	return dst, nil
}
