// Package mask provides boolean cell masks with an explicit shape.
//
// Every predicate produces a [Mask] for a known region of the table: all score
// cells, the identifier column, or the whole table. A mask never broadcasts
// implicitly; callers compare shapes with [Check] before using one.
package mask

import (
	"errors"
	"fmt"
	"strings"
)

// ErrShapeMismatch is matched by [ShapeMismatchError].
var ErrShapeMismatch = errors.New("mask shape mismatch")

// Shape is a rows × columns extent.
type Shape struct {
	Rows int `json:"rows" yaml:"rows"`
	Cols int `json:"cols" yaml:"cols"`
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%d", s.Rows, s.Cols)
}

// Cells returns the number of cells in the shape.
func (s Shape) Cells() int {
	return s.Rows * s.Cols
}

// ShapeMismatchError is returned when a mask does not have the shape its
// consumer expects.
type ShapeMismatchError struct {
	Rule string
	Want Shape
	Got  Shape
}

func (e *ShapeMismatchError) Error() string {
	if e.Rule == "" {
		return fmt.Sprintf("%v: want %s, got %s", ErrShapeMismatch, e.Want, e.Got)
	}

	return fmt.Sprintf("%v: rule %q: want %s, got %s", ErrShapeMismatch, e.Rule, e.Want, e.Got)
}

func (e *ShapeMismatchError) Unwrap() error {
	return ErrShapeMismatch
}

// Mask is a dense boolean matrix.
type Mask struct {
	cells []bool
	shape Shape
}

// New returns an all-false mask of the given shape. Negative extents are
// treated as zero.
func New(shape Shape) *Mask {
	shape.Rows = max(shape.Rows, 0)
	shape.Cols = max(shape.Cols, 0)

	return &Mask{
		shape: shape,
		cells: make([]bool, shape.Cells()),
	}
}

// FromRows builds a mask from a rectangular [][]bool. Ragged input is a
// [ShapeMismatchError].
func FromRows(rows [][]bool) (*Mask, error) {
	shape := Shape{Rows: len(rows)}
	if len(rows) > 0 {
		shape.Cols = len(rows[0])
	}

	m := New(shape)

	for i, row := range rows {
		if len(row) != shape.Cols {
			return nil, &ShapeMismatchError{
				Want: Shape{Rows: 1, Cols: shape.Cols},
				Got:  Shape{Rows: 1, Cols: len(row)},
			}
		}

		copy(m.cells[i*shape.Cols:], row)
	}

	return m, nil
}

// Shape returns the mask's extent.
func (m *Mask) Shape() Shape {
	return m.shape
}

// At reports whether cell (row, col) is set.
func (m *Mask) At(row, col int) bool {
	return m.cells[m.offset(row, col)]
}

// Set sets cell (row, col) to v.
func (m *Mask) Set(row, col int, v bool) {
	m.cells[m.offset(row, col)] = v
}

// Count returns the number of set cells.
func (m *Mask) Count() int {
	n := 0

	for _, v := range m.cells {
		if v {
			n++
		}
	}

	return n
}

// Rows returns the mask as a [][]bool.
func (m *Mask) Rows() [][]bool {
	out := make([][]bool, m.shape.Rows)
	for i := range out {
		out[i] = append([]bool(nil), m.cells[i*m.shape.Cols:(i+1)*m.shape.Cols]...)
	}

	return out
}

// Or returns the union of m and other, which must share a shape.
func (m *Mask) Or(other *Mask) (*Mask, error) {
	if other.shape != m.shape {
		return nil, &ShapeMismatchError{Want: m.shape, Got: other.shape}
	}

	out := New(m.shape)
	for i := range m.cells {
		out.cells[i] = m.cells[i] || other.cells[i]
	}

	return out, nil
}

func (m *Mask) String() string {
	var b strings.Builder

	for i := range m.shape.Rows {
		for j := range m.shape.Cols {
			if m.At(i, j) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}

		b.WriteByte('\n')
	}

	return b.String()
}

func (m *Mask) offset(row, col int) int {
	if row < 0 || row >= m.shape.Rows || col < 0 || col >= m.shape.Cols {
		panic(fmt.Sprintf("mask: cell (%d, %d) out of range for %s", row, col, m.shape))
	}

	return row*m.shape.Cols + col
}

// Check returns a [ShapeMismatchError] naming rule if m does not have shape
// want. A nil mask has shape 0x0.
func Check(rule string, want Shape, m *Mask) error {
	var got Shape
	if m != nil {
		got = m.shape
	}

	if got != want {
		return &ShapeMismatchError{Rule: rule, Want: want, Got: got}
	}

	return nil
}
