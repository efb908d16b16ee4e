// Package grid implements a fixed-size rectangular board of cells. It knows
// nothing about game rules: cells are either empty or hold a value of T.
package grid

import "fmt"

// Point addresses a cell by row and column, origin at the top-left.
type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

var orthogonal = [4]Point{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// Grid is a rows x cols board. The zero value is not usable; call New.
type Grid[T comparable] struct {
	rows     int
	cols     int
	cells    []T
	occupied []bool
}

// New returns an empty rows x cols grid.
func New[T comparable](rows, cols int) *Grid[T] {
	if rows < 1 || cols < 1 {
		panic(fmt.Sprintf("grid: invalid size %dx%d", rows, cols))
	}
	return &Grid[T]{
		rows:     rows,
		cols:     cols,
		cells:    make([]T, rows*cols),
		occupied: make([]bool, rows*cols),
	}
}

func (g *Grid[T]) Rows() int { return g.rows }
func (g *Grid[T]) Cols() int { return g.cols }

// InBounds reports whether (row, col) lies on the grid.
func (g *Grid[T]) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

func (g *Grid[T]) index(row, col int) int {
	return row*g.cols + col
}

// At returns the value at (row, col). ok is false when the cell is empty or
// out of range.
func (g *Grid[T]) At(row, col int) (v T, ok bool) {
	if !g.InBounds(row, col) {
		return v, false
	}
	i := g.index(row, col)
	if !g.occupied[i] {
		return v, false
	}
	return g.cells[i], true
}

// Occupied reports whether (row, col) holds a value.
func (g *Grid[T]) Occupied(row, col int) bool {
	_, ok := g.At(row, col)
	return ok
}

// Set stores v at (row, col), replacing any previous value. It returns false
// when the position is out of range.
func (g *Grid[T]) Set(row, col int, v T) bool {
	if !g.InBounds(row, col) {
		return false
	}
	i := g.index(row, col)
	g.cells[i] = v
	g.occupied[i] = true
	return true
}

// Remove empties (row, col). It returns false when the cell was already empty
// or out of range.
func (g *Grid[T]) Remove(row, col int) bool {
	if !g.Occupied(row, col) {
		return false
	}
	i := g.index(row, col)
	var zero T
	g.cells[i] = zero
	g.occupied[i] = false
	return true
}

// Neighbors returns the in-range orthogonal neighbors of p.
func (g *Grid[T]) Neighbors(p Point) []Point {
	out := make([]Point, 0, 4)
	for _, d := range orthogonal {
		n := Point{Row: p.Row + d.Row, Col: p.Col + d.Col}
		if g.InBounds(n.Row, n.Col) {
			out = append(out, n)
		}
	}
	return out
}

// Each calls fn for every occupied cell in row-major order.
func (g *Grid[T]) Each(fn func(p Point, v T)) {
	for i, ok := range g.occupied {
		if ok {
			fn(Point{Row: i / g.cols, Col: i % g.cols}, g.cells[i])
		}
	}
}

// Count returns the number of occupied cells.
func (g *Grid[T]) Count() int {
	n := 0
	for _, ok := range g.occupied {
		if ok {
			n++
		}
	}
	return n
}

// Reset empties every cell.
func (g *Grid[T]) Reset() {
	var zero T
	for i := range g.cells {
		g.cells[i] = zero
		g.occupied[i] = false
	}
}

// Clone returns an independent copy of g.
func (g *Grid[T]) Clone() *Grid[T] {
	c := &Grid[T]{
		rows:     g.rows,
		cols:     g.cols,
		cells:    make([]T, len(g.cells)),
		occupied: make([]bool, len(g.occupied)),
	}
	copy(c.cells, g.cells)
	copy(c.occupied, g.occupied)
	return c
}

// Equal reports whether both grids have the same size and contents.
func (g *Grid[T]) Equal(o *Grid[T]) bool {
	if g.rows != o.rows || g.cols != o.cols {
		return false
	}
	for i := range g.cells {
		if g.occupied[i] != o.occupied[i] {
			return false
		}
		if g.occupied[i] && g.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}
