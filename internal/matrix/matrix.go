// Package matrix implements the dense float64 matrix used by the network.
//
// A Matrix stores rows×columns values in a flat row-major buffer: element
// (r, c) lives at index r*columns+c. Operations come in two families:
//
//   - allocating variants (Add, Multiply, Transpose, ...) return a new,
//     caller-owned matrix;
//   - in-place variants (AddInto, MultiplyInto, ...) write into a
//     caller-owned destination and never allocate.
//
// Every operation validates shapes before writing, so a matrix is never left
// partially updated by a failed call.
package matrix

import (
	"fmt"
	"strings"
)

// MaxElements bounds the size of a single buffer (2 GiB of float64s).
const MaxElements = 1 << 28

// Shape is a (rows, columns) pair.
type Shape struct {
	Rows    int
	Columns int
}

// String renders the shape as RxC.
func (s Shape) String() string {
	return fmt.Sprintf("%dx%d", s.Rows, s.Columns)
}

// Matrix is a dense row-major matrix of float64 values.
//
// Invariant: len(data) == rows*columns.
type Matrix struct {
	rows    int
	columns int
	data    []float64
}

// New allocates a zero-filled rows×columns matrix.
func New(rows, columns int) (*Matrix, error) {
	if rows <= 0 || columns <= 0 {
		return nil, fmt.Errorf("new %dx%d: %w", rows, columns, ErrInvalidDimensions)
	}
	if rows > MaxElements/columns {
		return nil, fmt.Errorf("new %dx%d: %w", rows, columns, ErrAllocationFailed)
	}
	return &Matrix{
		rows:    rows,
		columns: columns,
		data:    make([]float64, rows*columns),
	}, nil
}

// FromSlice allocates a rows×columns matrix holding a copy of data,
// interpreted in row-major order.
func FromSlice(rows, columns int, data []float64) (*Matrix, error) {
	m, err := New(rows, columns)
	if err != nil {
		return nil, err
	}
	if len(data) != len(m.data) {
		return nil, fmt.Errorf("from slice: %d values for %v: %w", len(data), m.Shape(), ErrDimensionMismatch)
	}
	copy(m.data, data)
	return m, nil
}

// Filled allocates a rows×columns matrix with every element set to v.
func Filled(rows, columns int, v float64) (*Matrix, error) {
	m, err := New(rows, columns)
	if err != nil {
		return nil, err
	}
	Fill(m, v)
	return m, nil
}

// Column allocates a len(values)×1 column vector.
func Column(values ...float64) (*Matrix, error) {
	return FromSlice(len(values), 1, values)
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Columns returns the number of columns.
func (m *Matrix) Columns() int { return m.columns }

// Shape returns the matrix dimensions.
func (m *Matrix) Shape() Shape { return Shape{Rows: m.rows, Columns: m.columns} }

// Len returns rows*columns.
func (m *Matrix) Len() int { return len(m.data) }

// Data exposes the row-major backing buffer. Writes through it are visible
// to the matrix.
func (m *Matrix) Data() []float64 { return m.data }

// SameShape reports whether m and o have identical dimensions.
func (m *Matrix) SameShape(o *Matrix) bool {
	return m.rows == o.rows && m.columns == o.columns
}

// IsColumn reports whether m is a column vector.
func (m *Matrix) IsColumn() bool { return m.columns == 1 }

// At returns element (r, c).
func (m *Matrix) At(r, c int) (float64, error) {
	idx, err := m.index("at", r, c)
	if err != nil {
		return 0, err
	}
	return m.data[idx], nil
}

// Set assigns element (r, c).
func (m *Matrix) Set(r, c int, v float64) error {
	idx, err := m.index("set", r, c)
	if err != nil {
		return err
	}
	m.data[idx] = v
	return nil
}

func (m *Matrix) index(op string, r, c int) (int, error) {
	if r < 0 || r >= m.rows || c < 0 || c >= m.columns {
		return 0, fmt.Errorf("%s(%d,%d) on %v: %w", op, r, c, m.Shape(), ErrOutOfRange)
	}
	return r*m.columns + c, nil
}

// Clone returns a deep copy of m.
func (m *Matrix) Clone() *Matrix {
	data := make([]float64, len(m.data))
	copy(data, m.data)
	return &Matrix{rows: m.rows, columns: m.columns, data: data}
}

// CopyInto copies src into dst. Shapes must match.
func CopyInto(src, dst *Matrix) error {
	if err := notNil("copy", src, dst); err != nil {
		return err
	}
	if !src.SameShape(dst) {
		return mismatch("copy", src.Shape(), dst.Shape())
	}
	copy(dst.data, src.data)
	return nil
}

// Equal reports whether a and b have the same shape and every pair of
// elements differs by at most tol.
func Equal(a, b *Matrix, tol float64) bool {
	if a == nil || b == nil || !a.SameShape(b) {
		return false
	}
	for i, v := range a.data {
		d := v - b.data[i]
		if d > tol || d < -tol {
			return false
		}
	}
	return true
}

// String renders the matrix one row per line with three decimals.
func (m *Matrix) String() string {
	var sb strings.Builder
	for r := 0; r < m.rows; r++ {
		row := m.data[r*m.columns : (r+1)*m.columns]
		for c, v := range row {
			if c > 0 {
				sb.WriteByte('\t')
			}
			fmt.Fprintf(&sb, "%.3f", v)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
