package game

import (
	"fmt"

	"weixiang/pkg/core"
	"weixiang/pkg/grid"
	"weixiang/pkg/xiangqi"
)

type Action string

const (
	ActStone    Action = "stone"
	ActFortress Action = "fortress"
	ActSkip     Action = "skip"
	ActSummon   Action = "summon"
	ActMove     Action = "move"
	ActEnd      Action = "end"
	ActUndo     Action = "undo"
	ActNew      Action = "new"
)

// Intent is one player request. Row/Col address the strategic cell for
// stone and fortress, and the source square for move; To is the move
// destination.
type Intent struct {
	Action Action            `json:"action"`
	Row    int               `json:"row"`
	Col    int               `json:"col"`
	To     grid.Point        `json:"to"`
	Piece  xiangqi.PieceType `json:"piece"`
}

func (in Intent) String() string {
	switch in.Action {
	case ActStone, ActFortress:
		return fmt.Sprintf("%s %d %d", in.Action, in.Row, in.Col)
	case ActSummon:
		return fmt.Sprintf("%s %s", in.Action, in.Piece)
	case ActMove:
		return fmt.Sprintf("%s %d %d %d %d", in.Action, in.Row, in.Col, in.To.Row, in.To.Col)
	}
	return string(in.Action)
}

// Entry is an accepted intent as kept in the journal.
type Entry struct {
	Seq      int        `json:"seq"`
	Intent   Intent     `json:"intent"`
	Color    core.Color `json:"color"`
	Captured int        `json:"captured"`
}

// Apply dispatches in to the matching intent method.
func (g *Game) Apply(in Intent) error {
	switch in.Action {
	case ActStone:
		return g.PlaceStone(in.Row, in.Col)
	case ActFortress:
		return g.PlaceFortress(in.Row, in.Col)
	case ActSkip:
		return g.SkipFortress()
	case ActSummon:
		return g.Summon(in.Piece)
	case ActMove:
		return g.MovePiece(grid.Point{Row: in.Row, Col: in.Col}, in.To)
	case ActEnd:
		return g.EndBattle()
	case ActUndo:
		return g.Undo()
	case ActNew:
		g.NewGame()
		return nil
	}
	return fmt.Errorf("unknown action %q", in.Action)
}
