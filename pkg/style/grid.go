package style

import (
	"fmt"

	"github.com/macropower/standing/pkg/mask"
)

// Grid holds the current style of every cell in a table, identifier column
// included.
type Grid struct {
	cells []Style
	shape mask.Shape
}

// NewGrid returns an unstyled grid.
func NewGrid(shape mask.Shape) *Grid {
	shape.Rows = max(shape.Rows, 0)
	shape.Cols = max(shape.Cols, 0)

	return &Grid{
		shape: shape,
		cells: make([]Style, shape.Cells()),
	}
}

// Shape returns the grid's extent.
func (g *Grid) Shape() mask.Shape {
	return g.shape
}

// At returns the style of cell (row, col).
func (g *Grid) At(row, col int) Style {
	return g.cells[g.offset(row, col)]
}

// Set replaces the style of cell (row, col).
func (g *Grid) Set(row, col int, s Style) {
	g.cells[g.offset(row, col)] = s
}

// Overlay merges s into every cell where m is set. The mask is placed with
// its first column at grid column col0 and must fit inside the grid.
func (g *Grid) Overlay(col0 int, m *mask.Mask, s Style) error {
	ms := m.Shape()
	if ms.Rows != g.shape.Rows || col0 < 0 || col0+ms.Cols > g.shape.Cols {
		return &mask.ShapeMismatchError{
			Want: mask.Shape{Rows: g.shape.Rows, Cols: g.shape.Cols - max(col0, 0)},
			Got:  ms,
		}
	}

	for i := range ms.Rows {
		for j := range ms.Cols {
			if !m.At(i, j) {
				continue
			}

			k := g.offset(i, col0+j)
			g.cells[k] = g.cells[k].Merge(s)
		}
	}

	return nil
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	out := NewGrid(g.shape)
	for i, s := range g.cells {
		out.cells[i] = Style{}.Merge(s)
	}

	return out
}

// Equal reports whether both grids have the same shape and cell styles.
func (g *Grid) Equal(o *Grid) bool {
	if g.shape != o.shape {
		return false
	}

	for i := range g.cells {
		if !g.cells[i].Equal(o.cells[i]) {
			return false
		}
	}

	return true
}

// Resolved returns every cell with defaults applied, row by row.
func (g *Grid) Resolved() [][]Resolved {
	out := make([][]Resolved, g.shape.Rows)
	for i := range out {
		out[i] = make([]Resolved, g.shape.Cols)
		for j := range out[i] {
			out[i][j] = g.At(i, j).Resolve()
		}
	}

	return out
}

func (g *Grid) offset(row, col int) int {
	if row < 0 || row >= g.shape.Rows || col < 0 || col >= g.shape.Cols {
		panic(fmt.Sprintf("style: cell (%d, %d) out of range for %s", row, col, g.shape))
	}

	return row*g.shape.Cols + col
}
