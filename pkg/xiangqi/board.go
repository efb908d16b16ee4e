// Package xiangqi implements the tactical layer: a 10x9 board with the seven
// standard piece movement patterns and battle win detection.
//
// Black holds rows 0-4 and advances toward row 9; white holds rows 5-9 and
// advances toward row 0. The river lies between rows 4 and 5.
package xiangqi

import (
	"fmt"

	"weixiang/pkg/core"
	"weixiang/pkg/grid"
)

const (
	Rows = 10
	Cols = 9
)

// Placed is a piece together with its position.
type Placed struct {
	Row   int   `json:"row"`
	Col   int   `json:"col"`
	Piece Piece `json:"piece"`
}

// State is everything needed to rebuild a board.
type State struct {
	Pieces []Placed `json:"pieces"`
	// Fielded lists the colors that put a general on the board since the
	// last clear.
	Fielded []core.Color `json:"fielded,omitempty"`
	// Joined lists the colors that put any piece on the board since the
	// last clear.
	Joined []core.Color `json:"joined,omitempty"`
}

// MoveResult describes an applied move.
type MoveResult struct {
	Piece    Piece  `json:"piece"`
	Captured *Piece `json:"captured,omitempty"`
}

type Board struct {
	cells   *grid.Grid[Piece]
	fielded [2]bool
	joined  [2]bool
}

func NewBoard() *Board {
	return &Board{cells: grid.New[Piece](Rows, Cols)}
}

// Grid exposes the underlying cells for read-only use.
func (b *Board) Grid() *grid.Grid[Piece] {
	return b.cells
}

func (b *Board) PieceAt(row, col int) (Piece, bool) {
	return b.cells.At(row, col)
}

// HomeRows returns the first and last row of c's half.
func HomeRows(c core.Color) (first, last int) {
	if c == core.White {
		return 5, 9
	}
	return 0, 4
}

// Place puts p on an empty cell.
func (b *Board) Place(row, col int, p Piece) error {
	if !b.cells.InBounds(row, col) {
		return fmt.Errorf("%w: (%d,%d)", core.ErrOutOfBounds, row, col)
	}
	if b.cells.Occupied(row, col) {
		return fmt.Errorf("%w: (%d,%d)", core.ErrOccupiedCell, row, col)
	}
	b.cells.Set(row, col, p)
	b.joined[p.Color] = true
	if p.Type == General {
		b.fielded[p.Color] = true
	}
	return nil
}

func (b *Board) Remove(row, col int) bool {
	return b.cells.Remove(row, col)
}

// Clear empties the board and forgets which colors took part.
func (b *Board) Clear() {
	b.cells.Reset()
	b.fielded = [2]bool{}
	b.joined = [2]bool{}
}

func (b *Board) Empty() bool {
	return b.cells.Count() == 0
}

func (b *Board) Pieces() []Placed {
	out := make([]Placed, 0, b.cells.Count())
	b.cells.Each(func(p grid.Point, pc Piece) {
		out = append(out, Placed{Row: p.Row, Col: p.Col, Piece: pc})
	})
	return out
}

func (b *Board) State() State {
	s := State{Pieces: b.Pieces()}
	for _, c := range core.Colors {
		if b.fielded[c] {
			s.Fielded = append(s.Fielded, c)
		}
		if b.joined[c] {
			s.Joined = append(s.Joined, c)
		}
	}
	return s
}

func (b *Board) Restore(s State) {
	b.Clear()
	for _, p := range s.Pieces {
		b.cells.Set(p.Row, p.Col, p.Piece)
		b.joined[p.Piece.Color] = true
	}
	for _, c := range s.Fielded {
		b.fielded[c] = true
	}
	for _, c := range s.Joined {
		b.joined[c] = true
	}
}

// Move applies a legal move of c's piece from -> to, removing any enemy
// piece on the destination.
func (b *Board) Move(from, to grid.Point, c core.Color) (MoveResult, error) {
	p, ok := b.cells.At(from.Row, from.Col)
	if !ok {
		return MoveResult{}, fmt.Errorf("%w: no piece at %v", core.ErrIllegalPieceMove, from)
	}
	if p.Color != c {
		return MoveResult{}, fmt.Errorf("%w: %v belongs to %s", core.ErrIllegalPieceMove, from, p.Color)
	}
	if !b.IsLegalMove(from, to, p.Type, c) {
		return MoveResult{}, fmt.Errorf("%w: %s %v -> %v", core.ErrIllegalPieceMove, p.Type, from, to)
	}
	res := MoveResult{Piece: p}
	if victim, ok := b.cells.At(to.Row, to.Col); ok {
		res.Captured = &victim
	}
	b.cells.Remove(from.Row, from.Col)
	b.cells.Set(to.Row, to.Col, p)
	return res, nil
}

// LegalMoves lists every destination the piece on from may reach.
func (b *Board) LegalMoves(from grid.Point) []grid.Point {
	p, ok := b.cells.At(from.Row, from.Col)
	if !ok {
		return nil
	}
	var out []grid.Point
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			to := grid.Point{Row: row, Col: col}
			if b.IsLegalMove(from, to, p.Type, p.Color) {
				out = append(out, to)
			}
		}
	}
	return out
}

// HasGeneral reports whether c has a general on the board.
func (b *Board) HasGeneral(c core.Color) bool {
	found := false
	b.cells.Each(func(_ grid.Point, p Piece) {
		if p.Color == c && p.Type == General {
			found = true
		}
	})
	return found
}

// CheckWinCondition reports the battle winner. A color loses once it has
// fielded a general and no longer has one on the board, or once it has
// joined the battle and has no pieces left at all.
func (b *Board) CheckWinCondition() (core.Color, bool) {
	var generals, pieces [2]int
	b.cells.Each(func(_ grid.Point, p Piece) {
		pieces[p.Color]++
		if p.Type == General {
			generals[p.Color]++
		}
	})
	for _, c := range core.Colors {
		if b.fielded[c] && generals[c] == 0 {
			return c.Opponent(), true
		}
		if b.joined[c] && pieces[c] == 0 {
			return c.Opponent(), true
		}
	}
	return 0, false
}
