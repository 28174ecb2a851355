package page

import (
	"image/color"
	"maps"
	"slices"
)

// Layer is one character struck into a cell.
type Layer struct {
	Char rune
	Ink  color.RGBA
}

// Grid is a sparse character grid. Each cell holds its layers in the order
// they were typed, which is also their drawing order. The zero value is an
// empty grid.
type Grid struct {
	rows map[int]map[int][]Layer
}

// Push strikes l on top of the cell at row, col.
func (g *Grid) Push(row, col int, l Layer) {
	if g.rows == nil {
		g.rows = make(map[int]map[int][]Layer)
	}
	cols := g.rows[row]
	if cols == nil {
		cols = make(map[int][]Layer)
		g.rows[row] = cols
	}
	cols[col] = append(cols[col], l)
}

// Pop removes the top layer of the cell at row, col.
func (g *Grid) Pop(row, col int) (Layer, bool) {
	cols := g.rows[row]
	layers := cols[col]
	if len(layers) == 0 {
		return Layer{}, false
	}
	top := layers[len(layers)-1]
	if len(layers) == 1 {
		delete(cols, col)
		if len(cols) == 0 {
			delete(g.rows, row)
		}
	} else {
		cols[col] = layers[:len(layers)-1]
	}
	return top, true
}

// Cell returns the layers of the cell at row, col, bottom first.
func (g *Grid) Cell(row, col int) []Layer {
	return g.rows[row][col]
}

// Rows returns the indices of non-empty rows in ascending order.
func (g *Grid) Rows() []int {
	return slices.Sorted(maps.Keys(g.rows))
}

// Cols returns the indices of non-empty cells of row in ascending order.
func (g *Grid) Cols(row int) []int {
	return slices.Sorted(maps.Keys(g.rows[row]))
}

// Len returns the number of non-empty cells.
func (g *Grid) Len() int {
	n := 0
	for _, cols := range g.rows {
		n += len(cols)
	}
	return n
}

// Clear empties the grid.
func (g *Grid) Clear() {
	clear(g.rows)
}
