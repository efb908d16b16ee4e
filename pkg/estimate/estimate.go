// Package estimate asks an external engine for a territory estimate of the
// strategic board. Estimates are advisory: every failure degrades to the
// zero estimate and the caller keeps its local count.
package estimate

import (
	"context"
	"fmt"
	"strconv"

	"weixiang/pkg/core"
	"weixiang/pkg/weiqi"
)

type Move struct {
	Player string `json:"player"`
	Coord  string `json:"coord"`
}

type BoardState struct {
	Moves         []Move `json:"moves"`
	BoardSize     int    `json:"boardSize"`
	CurrentPlayer string `json:"currentPlayer,omitempty"`
}

type Request struct {
	BoardState BoardState `json:"boardState"`
}

type Territories struct {
	Black int `json:"black"`
	White int `json:"white"`
	Dame  int `json:"dame"`
}

// Tally drops the dame count.
func (t Territories) Tally() core.Tally {
	return core.Tally{Black: t.Black, White: t.White}
}

type Response struct {
	Territories Territories `json:"territories"`
}

// Estimator produces a territory estimate for a board.
type Estimator interface {
	Estimate(ctx context.Context, req Request) (Territories, error)
}

// EncodeCoord renders a position as a column letter ('A' + col, no letter
// skipped) followed by 19 - row.
func EncodeCoord(row, col int) string {
	return string(rune('A'+col)) + strconv.Itoa(weiqi.Size-row)
}

// DecodeCoord reverses EncodeCoord.
func DecodeCoord(s string) (row, col int, err error) {
	if len(s) < 2 {
		return 0, 0, fmt.Errorf("invalid coord %q", s)
	}
	col = int(s[0]) - 'A'
	n, err := strconv.Atoi(s[1:])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid coord %q: %w", s, err)
	}
	row = weiqi.Size - n
	if row < 0 || row >= weiqi.Size || col < 0 || col >= weiqi.Size {
		return 0, 0, fmt.Errorf("coord %q is off the board", s)
	}
	return row, col, nil
}

// NewRequest describes every stone on the board, fortresses included, in
// row-major order.
func NewRequest(stones []weiqi.Placed, toMove core.Color) Request {
	moves := make([]Move, 0, len(stones))
	for _, s := range stones {
		moves = append(moves, Move{Player: s.Stone.Color.String(), Coord: EncodeCoord(s.Row, s.Col)})
	}
	return Request{BoardState: BoardState{Moves: moves, BoardSize: weiqi.Size, CurrentPlayer: toMove.String()}}
}
