// Package weiqi implements the strategic layer: stone placement, capture by
// liberties, simplified suicide rejection, fortress stones and territory
// counting on a 19x19 board.
package weiqi

import (
	"fmt"

	"weixiang/pkg/core"
	"weixiang/pkg/grid"
)

// Size is the side length of the strategic board.
const Size = 19

type Kind int

const (
	Normal Kind = iota
	// Fortress stones cannot capture or be captured.
	Fortress
)

func (k Kind) String() string {
	if k == Fortress {
		return "fortress"
	}
	return "normal"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "normal", "":
		*k = Normal
	case "fortress":
		*k = Fortress
	default:
		return fmt.Errorf("unknown stone kind %q", text)
	}
	return nil
}

type Stone struct {
	Color core.Color `json:"color"`
	Kind  Kind       `json:"kind"`
}

// Placed is a stone together with its position.
type Placed struct {
	Row   int   `json:"row"`
	Col   int   `json:"col"`
	Stone Stone `json:"stone"`
}

// MoveRecord is one accepted normal stone placement.
type MoveRecord struct {
	Row   int        `json:"row"`
	Col   int        `json:"col"`
	Color core.Color `json:"color"`
}

// Outcome describes an accepted placement.
type Outcome struct {
	Captured []grid.Point
}

// CapturedCount is the number of enemy stones removed by the placement.
func (o Outcome) CapturedCount() int {
	return len(o.Captured)
}

// Board is the strategic board.
type Board struct {
	cells *grid.Grid[Stone]
}

// NewBoard returns an empty 19x19 board.
func NewBoard() *Board {
	return &Board{cells: grid.New[Stone](Size, Size)}
}

// Grid exposes the underlying cell grid for read-only comparisons.
func (b *Board) Grid() *grid.Grid[Stone] {
	return b.cells
}

// StoneAt returns the stone at (row, col); ok is false when the cell is empty
// or out of range.
func (b *Board) StoneAt(row, col int) (Stone, bool) {
	return b.cells.At(row, col)
}

// RemoveStone empties (row, col). It reports whether a stone was removed.
func (b *Board) RemoveStone(row, col int) bool {
	return b.cells.Remove(row, col)
}

func (b *Board) checkVacant(row, col int) error {
	if !b.cells.InBounds(row, col) {
		return fmt.Errorf("%w: (%d,%d)", core.ErrOutOfBounds, row, col)
	}
	if b.cells.Occupied(row, col) {
		return fmt.Errorf("%w: (%d,%d)", core.ErrOccupiedCell, row, col)
	}
	return nil
}

// PlaceStone puts a normal stone of color c at (row, col), removing every
// adjacent enemy group left without liberties. A placement that captures
// nothing and leaves its own group without liberties is rejected with
// core.ErrSuicide and the board is left untouched.
func (b *Board) PlaceStone(row, col int, c core.Color) (Outcome, error) {
	if err := b.checkVacant(row, col); err != nil {
		return Outcome{}, err
	}
	b.cells.Set(row, col, Stone{Color: c, Kind: Normal})

	var captured []grid.Point
	enemy := c.Opponent()
	for _, n := range b.cells.Neighbors(grid.Point{Row: row, Col: col}) {
		s, ok := b.cells.At(n.Row, n.Col)
		if !ok || s.Color != enemy || s.Kind != Normal {
			continue
		}
		group := b.Group(n.Row, n.Col)
		if b.Liberties(group) > 0 {
			continue
		}
		for _, p := range group {
			b.cells.Remove(p.Row, p.Col)
		}
		captured = append(captured, group...)
	}

	if len(captured) == 0 && b.Liberties(b.Group(row, col)) == 0 {
		b.cells.Remove(row, col)
		return Outcome{}, fmt.Errorf("%w: (%d,%d)", core.ErrSuicide, row, col)
	}
	return Outcome{Captured: captured}, nil
}

// PlaceFortress puts a fortress stone of color c at (row, col). Fortresses
// never capture and are never captured, so only occupancy is checked.
func (b *Board) PlaceFortress(row, col int, c core.Color) error {
	if err := b.checkVacant(row, col); err != nil {
		return err
	}
	b.cells.Set(row, col, Stone{Color: c, Kind: Fortress})
	return nil
}

// Group returns the maximal set of normal stones of the same color connected
// orthogonally to (row, col), found breadth first. Fortress stones never
// belong to a group.
func (b *Board) Group(row, col int) []grid.Point {
	start, ok := b.cells.At(row, col)
	if !ok || start.Kind != Normal {
		return nil
	}
	seen := map[grid.Point]bool{{Row: row, Col: col}: true}
	queue := []grid.Point{{Row: row, Col: col}}
	var group []grid.Point
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		group = append(group, p)
		for _, n := range b.cells.Neighbors(p) {
			if seen[n] {
				continue
			}
			s, ok := b.cells.At(n.Row, n.Col)
			if ok && s.Kind == Normal && s.Color == start.Color {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return group
}

// Liberties counts the distinct empty cells orthogonally adjacent to group.
func (b *Board) Liberties(group []grid.Point) int {
	libs := make(map[grid.Point]struct{})
	for _, p := range group {
		for _, n := range b.cells.Neighbors(p) {
			if !b.cells.Occupied(n.Row, n.Col) {
				libs[n] = struct{}{}
			}
		}
	}
	return len(libs)
}

// Center is the middle intersection of the board.
func (b *Board) Center() grid.Point {
	return grid.Point{Row: Size / 2, Col: Size / 2}
}

// CenterOccupant reports the color of the stone on the center point.
func (b *Board) CenterOccupant() (core.Color, bool) {
	c := b.Center()
	s, ok := b.cells.At(c.Row, c.Col)
	return s.Color, ok
}

// Stones lists every stone in row-major order.
func (b *Board) Stones() []Placed {
	out := make([]Placed, 0, b.cells.Count())
	b.cells.Each(func(p grid.Point, s Stone) {
		out = append(out, Placed{Row: p.Row, Col: p.Col, Stone: s})
	})
	return out
}

// Restore replaces the board contents with stones.
func (b *Board) Restore(stones []Placed) {
	b.cells.Reset()
	for _, s := range stones {
		b.cells.Set(s.Row, s.Col, s.Stone)
	}
}

// Reset empties the board.
func (b *Board) Reset() {
	b.cells.Reset()
}
