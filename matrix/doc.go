// Copyright 2025 The neuralnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package matrix provides dense float64 matrices stored row-major.
//
// # Overview
//
// Every operation comes in two forms:
//   - Allocating: Add, Hadamard, Scale, Multiply, Transpose return a new matrix
//   - In place: AddInto, SubInto, HadamardInto, ScalarMultiplyInto,
//     MultiplyInto, TransposeInto write into a caller-owned destination
//
// Shape violations are reported before anything is written and wrap
// ErrDimensionMismatch.
//
// # Basic Usage
//
//	a, _ := matrix.FromSlice(2, 2, []float64{1, 2, 3, 4})
//	b, _ := matrix.Column(1, 1)
//	c, err := matrix.Multiply(a, b) // 2x1: [3 7]
//
// # Random Initialization
//
// Gaussian draws standard normal samples with the Marsaglia polar method from
// an explicit math/rand/v2 source:
//
//	g := matrix.NewSeededGaussian(42)
//	matrix.RandomizeGaussian(w, g)
package matrix
