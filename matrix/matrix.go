// Copyright 2025 The neuralnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package matrix

import (
	"math/rand/v2"

	"github.com/adampy/neuralnet/internal/matrix"
)

// MaxElements is the largest number of elements a matrix may hold.
const MaxElements = matrix.MaxElements

// Errors returned by matrix operations.
var (
	ErrDimensionMismatch = matrix.ErrDimensionMismatch
	ErrInvalidDimensions = matrix.ErrInvalidDimensions
	ErrAllocationFailed  = matrix.ErrAllocationFailed
	ErrOutOfRange        = matrix.ErrOutOfRange
	ErrAliasedOperand    = matrix.ErrAliasedOperand
	ErrNilMatrix         = matrix.ErrNilMatrix
)

// Matrix is a dense row-major float64 matrix.
type Matrix = matrix.Matrix

// Shape is a rows x columns pair.
type Shape = matrix.Shape

// Gaussian is a standard normal sample source.
type Gaussian = matrix.Gaussian

// Construction

// New creates a zero-filled rows x columns matrix.
func New(rows, columns int) (*Matrix, error) { return matrix.New(rows, columns) }

// FromSlice creates a matrix that copies data in row-major order.
func FromSlice(rows, columns int, data []float64) (*Matrix, error) {
	return matrix.FromSlice(rows, columns, data)
}

// Filled creates a matrix with every element set to v.
func Filled(rows, columns int, v float64) (*Matrix, error) { return matrix.Filled(rows, columns, v) }

// Column creates a column vector holding values.
func Column(values ...float64) (*Matrix, error) { return matrix.Column(values...) }

// CopyInto copies src into dst, which must have the same shape.
func CopyInto(src, dst *Matrix) error { return matrix.CopyInto(src, dst) }

// Equal reports whether a and b have the same shape and every element
// differs by at most tol.
func Equal(a, b *Matrix, tol float64) bool { return matrix.Equal(a, b, tol) }

// In-place operations

// AddInto sets dst = a + b.
func AddInto(a, b, dst *Matrix) error { return matrix.AddInto(a, b, dst) }

// SubInto sets dst = a - b.
func SubInto(a, b, dst *Matrix) error { return matrix.SubInto(a, b, dst) }

// AddScaledInto sets dst = a + alpha*b.
func AddScaledInto(a *Matrix, alpha float64, b, dst *Matrix) error {
	return matrix.AddScaledInto(a, alpha, b, dst)
}

// ScalarMultiplyInto sets dst = scalar*a.
func ScalarMultiplyInto(a *Matrix, scalar float64, dst *Matrix) error {
	return matrix.ScalarMultiplyInto(a, scalar, dst)
}

// HadamardInto sets dst to the element-wise product of a and b.
func HadamardInto(a, b, dst *Matrix) error { return matrix.HadamardInto(a, b, dst) }

// MultiplyInto sets dst = a·b. dst must not be a or b.
func MultiplyInto(a, b, dst *Matrix) error { return matrix.MultiplyInto(a, b, dst) }

// TransposeInto sets dst = aᵀ. dst must not be a.
func TransposeInto(a, dst *Matrix) error { return matrix.TransposeInto(a, dst) }

// Zero sets every element of m to 0.
func Zero(m *Matrix) { matrix.Zero(m) }

// Negate flips the sign of every element of m.
func Negate(m *Matrix) { matrix.Negate(m) }

// Fill sets every element of m to v.
func Fill(m *Matrix, v float64) { matrix.Fill(m, v) }

// IndexOfMax returns the row of the largest element of a column vector.
// The first maximum wins.
func IndexOfMax(m *Matrix) (int, error) { return matrix.IndexOfMax(m) }

// Allocating operations

// Add returns a + b.
func Add(a, b *Matrix) (*Matrix, error) { return matrix.Add(a, b) }

// Hadamard returns the element-wise product of a and b.
func Hadamard(a, b *Matrix) (*Matrix, error) { return matrix.Hadamard(a, b) }

// Scale returns scalar*a.
func Scale(a *Matrix, scalar float64) (*Matrix, error) { return matrix.Scale(a, scalar) }

// Multiply returns a·b.
func Multiply(a, b *Matrix) (*Matrix, error) { return matrix.Multiply(a, b) }

// Transpose returns aᵀ.
func Transpose(a *Matrix) (*Matrix, error) { return matrix.Transpose(a) }

// Random initialization

// NewGaussian creates a Gaussian drawing uniforms from src.
func NewGaussian(src *rand.Rand) *Gaussian { return matrix.NewGaussian(src) }

// NewSeededGaussian creates a Gaussian backed by a PCG source seeded with seed.
func NewSeededGaussian(seed uint64) *Gaussian { return matrix.NewSeededGaussian(seed) }

// RandomizeGaussian fills m with standard normal samples from g.
func RandomizeGaussian(m *Matrix, g *Gaussian) { matrix.RandomizeGaussian(m, g) }
