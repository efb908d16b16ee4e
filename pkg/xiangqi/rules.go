package xiangqi

import (
	"weixiang/pkg/core"
	"weixiang/pkg/grid"
)

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

// IsLegalMove reports whether a piece of type t and color c may move from
// -> to on the current board. The piece on from is not consulted, so hints
// can be computed for hypothetical pieces.
func (b *Board) IsLegalMove(from, to grid.Point, t PieceType, c core.Color) bool {
	if !b.cells.InBounds(from.Row, from.Col) || !b.cells.InBounds(to.Row, to.Col) || from == to {
		return false
	}
	if dst, ok := b.cells.At(to.Row, to.Col); ok && dst.Color == c {
		return false
	}
	switch t {
	case Rook:
		return b.rook(from, to)
	case Horse:
		return b.horse(from, to)
	case Elephant:
		return b.elephant(from, to, c)
	case Advisor:
		return advisor(from, to, c)
	case General:
		return b.general(from, to, c)
	case Cannon:
		return b.cannon(from, to)
	case Soldier:
		return soldier(from, to, c)
	}
	return false
}

// between counts occupied cells strictly between two points on a line. ok
// is false when the points do not share a row or column.
func (b *Board) between(from, to grid.Point) (count int, ok bool) {
	if from.Row != to.Row && from.Col != to.Col {
		return 0, false
	}
	dr, dc := sign(to.Row-from.Row), sign(to.Col-from.Col)
	for r, c := from.Row+dr, from.Col+dc; r != to.Row || c != to.Col; r, c = r+dr, c+dc {
		if b.cells.Occupied(r, c) {
			count++
		}
	}
	return count, true
}

func (b *Board) rook(from, to grid.Point) bool {
	n, ok := b.between(from, to)
	return ok && n == 0
}

func (b *Board) horse(from, to grid.Point) bool {
	dr, dc := to.Row-from.Row, to.Col-from.Col
	switch {
	case abs(dr) == 2 && abs(dc) == 1:
		return !b.cells.Occupied(from.Row+sign(dr), from.Col)
	case abs(dr) == 1 && abs(dc) == 2:
		return !b.cells.Occupied(from.Row, from.Col+sign(dc))
	}
	return false
}

func (b *Board) elephant(from, to grid.Point, c core.Color) bool {
	dr, dc := to.Row-from.Row, to.Col-from.Col
	if abs(dr) != 2 || abs(dc) != 2 {
		return false
	}
	first, last := HomeRows(c)
	if to.Row < first || to.Row > last {
		return false
	}
	return !b.cells.Occupied(from.Row+dr/2, from.Col+dc/2)
}

// InPalace reports whether p lies in c's 3x3 palace.
func InPalace(p grid.Point, c core.Color) bool {
	if p.Col < 3 || p.Col > 5 {
		return false
	}
	if c == core.White {
		return p.Row >= 7 && p.Row <= 9
	}
	return p.Row >= 0 && p.Row <= 2
}

func advisor(from, to grid.Point, c core.Color) bool {
	return abs(to.Row-from.Row) == 1 && abs(to.Col-from.Col) == 1 && InPalace(to, c)
}

func (b *Board) general(from, to grid.Point, c core.Color) bool {
	if abs(to.Row-from.Row)+abs(to.Col-from.Col) == 1 && InPalace(to, c) {
		return true
	}
	// face-off: a general may take the enemy general along an open file
	if from.Col != to.Col {
		return false
	}
	dst, ok := b.cells.At(to.Row, to.Col)
	if !ok || dst.Type != General || dst.Color == c {
		return false
	}
	n, _ := b.between(from, to)
	return n == 0
}

func (b *Board) cannon(from, to grid.Point) bool {
	n, ok := b.between(from, to)
	if !ok {
		return false
	}
	if b.cells.Occupied(to.Row, to.Col) {
		return n == 1
	}
	return n == 0
}

// Crossed reports whether a soldier of color c standing on row has crossed
// the river.
func Crossed(row int, c core.Color) bool {
	if c == core.White {
		return row <= 4
	}
	return row >= 5
}

func forward(c core.Color) int {
	if c == core.White {
		return -1
	}
	return 1
}

func soldier(from, to grid.Point, c core.Color) bool {
	dr, dc := to.Row-from.Row, to.Col-from.Col
	if abs(dr)+abs(dc) != 1 {
		return false
	}
	if dr == forward(c) {
		return true
	}
	return dr == 0 && Crossed(from.Row, c)
}
