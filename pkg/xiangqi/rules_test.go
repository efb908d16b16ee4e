package xiangqi_test

import (
	"errors"
	"testing"

	"weixiang/pkg/core"
	"weixiang/pkg/grid"
	"weixiang/pkg/xiangqi"
)

func pt(row, col int) grid.Point { return grid.Point{Row: row, Col: col} }

func place(t *testing.T, b *xiangqi.Board, row, col int, c core.Color, typ xiangqi.PieceType) {
	t.Helper()
	if err := b.Place(row, col, xiangqi.Piece{Color: c, Type: typ}); err != nil {
		t.Fatalf("failed to place %s %s at (%d,%d): %v", c, typ, row, col, err)
	}
}

type moveCase struct {
	to   grid.Point
	want bool
}

func checkMoves(t *testing.T, b *xiangqi.Board, from grid.Point, typ xiangqi.PieceType, c core.Color, cases []moveCase) {
	t.Helper()
	for _, tc := range cases {
		if got := b.IsLegalMove(from, tc.to, typ, c); got != tc.want {
			t.Fatalf("%s %s %v -> %v: got %v want %v", c, typ, from, tc.to, got, tc.want)
		}
	}
}

func TestRookBlocked(t *testing.T) {
	b := xiangqi.NewBoard()
	place(t, b, 0, 0, core.Black, xiangqi.Rook)
	place(t, b, 0, 3, core.White, xiangqi.Soldier)
	checkMoves(t, b, pt(0, 0), xiangqi.Rook, core.Black, []moveCase{
		{pt(0, 5), false},
		{pt(0, 2), true},
		{pt(0, 3), true},
		{pt(9, 0), true},
		{pt(1, 1), false},
	})
}

func TestHorseLeg(t *testing.T) {
	b := xiangqi.NewBoard()
	place(t, b, 4, 4, core.Black, xiangqi.Horse)
	place(t, b, 3, 4, core.White, xiangqi.Soldier)
	// (2,3) and (2,5) share the blocked leg at (3,4)
	checkMoves(t, b, pt(4, 4), xiangqi.Horse, core.Black, []moveCase{
		{pt(2, 3), false},
		{pt(2, 5), false},
		{pt(3, 6), true},
		{pt(5, 6), true},
		{pt(6, 3), true},
		{pt(6, 6), false},
	})
}

func TestElephantRiverAndEye(t *testing.T) {
	b := xiangqi.NewBoard()
	place(t, b, 4, 2, core.Black, xiangqi.Elephant)
	place(t, b, 3, 3, core.Black, xiangqi.Soldier)
	checkMoves(t, b, pt(4, 2), xiangqi.Elephant, core.Black, []moveCase{
		{pt(6, 4), false},
		{pt(2, 4), false},
		{pt(2, 0), true},
		{pt(6, 0), false},
	})
}

func TestAdvisorPalace(t *testing.T) {
	b := xiangqi.NewBoard()
	place(t, b, 8, 4, core.White, xiangqi.Advisor)
	checkMoves(t, b, pt(8, 4), xiangqi.Advisor, core.White, []moveCase{
		{pt(7, 3), true},
		{pt(9, 5), true},
		{pt(8, 5), false},
	})
	place(t, b, 7, 5, core.White, xiangqi.Advisor)
	checkMoves(t, b, pt(7, 5), xiangqi.Advisor, core.White, []moveCase{
		{pt(6, 6), false},
		{pt(8, 4), false},
	})
}

func TestGeneralFaceOff(t *testing.T) {
	b := xiangqi.NewBoard()
	place(t, b, 1, 4, core.Black, xiangqi.General)
	place(t, b, 8, 4, core.White, xiangqi.General)
	checkMoves(t, b, pt(1, 4), xiangqi.General, core.Black, []moveCase{
		{pt(8, 4), true},
		{pt(0, 4), true},
		{pt(1, 2), false},
		{pt(3, 4), false},
	})
	checkMoves(t, b, pt(8, 4), xiangqi.General, core.White, []moveCase{{pt(1, 4), true}})

	place(t, b, 5, 4, core.Black, xiangqi.Soldier)
	checkMoves(t, b, pt(1, 4), xiangqi.General, core.Black, []moveCase{{pt(8, 4), false}})
}

func TestCannonScreen(t *testing.T) {
	b := xiangqi.NewBoard()
	place(t, b, 2, 1, core.Black, xiangqi.Cannon)
	place(t, b, 2, 4, core.White, xiangqi.Soldier)
	place(t, b, 2, 7, core.White, xiangqi.Rook)
	checkMoves(t, b, pt(2, 1), xiangqi.Cannon, core.Black, []moveCase{
		{pt(2, 3), true},
		{pt(2, 4), false},
		{pt(2, 7), true},
		{pt(2, 5), false},
		{pt(9, 1), true},
	})
	place(t, b, 2, 5, core.Black, xiangqi.Soldier)
	checkMoves(t, b, pt(2, 1), xiangqi.Cannon, core.Black, []moveCase{{pt(2, 7), false}})
}

func TestSoldierCrossing(t *testing.T) {
	b := xiangqi.NewBoard()
	place(t, b, 3, 4, core.Black, xiangqi.Soldier)
	checkMoves(t, b, pt(3, 4), xiangqi.Soldier, core.Black, []moveCase{
		{pt(4, 4), true},
		{pt(3, 5), false},
		{pt(2, 4), false},
	})
	place(t, b, 5, 2, core.Black, xiangqi.Soldier)
	checkMoves(t, b, pt(5, 2), xiangqi.Soldier, core.Black, []moveCase{
		{pt(6, 2), true},
		{pt(5, 1), true},
		{pt(4, 2), false},
		{pt(6, 3), false},
	})
	place(t, b, 6, 6, core.White, xiangqi.Soldier)
	checkMoves(t, b, pt(6, 6), xiangqi.Soldier, core.White, []moveCase{
		{pt(5, 6), true},
		{pt(6, 7), false},
	})
	place(t, b, 4, 7, core.White, xiangqi.Soldier)
	checkMoves(t, b, pt(4, 7), xiangqi.Soldier, core.White, []moveCase{
		{pt(4, 8), true},
		{pt(5, 7), false},
	})
}

func TestSameColorDestination(t *testing.T) {
	b := xiangqi.NewBoard()
	place(t, b, 0, 0, core.Black, xiangqi.Rook)
	place(t, b, 0, 1, core.Black, xiangqi.Horse)
	if b.IsLegalMove(pt(0, 0), pt(0, 1), xiangqi.Rook, core.Black) {
		t.Fatal("capturing own piece should be illegal")
	}
	if b.IsLegalMove(pt(0, 0), pt(0, 0), xiangqi.Rook, core.Black) {
		t.Fatal("null move should be illegal")
	}
	if b.IsLegalMove(pt(0, 0), pt(-1, 0), xiangqi.Rook, core.Black) {
		t.Fatal("off-board move should be illegal")
	}
}

func TestMoveCapturesAndWins(t *testing.T) {
	b := xiangqi.NewBoard()
	place(t, b, 5, 4, core.Black, xiangqi.Soldier)
	place(t, b, 6, 4, core.White, xiangqi.General)
	if _, ok := b.CheckWinCondition(); ok {
		t.Fatal("no winner expected while both sides are intact")
	}
	if _, err := b.Move(pt(6, 4), pt(5, 4), core.Black); !errors.Is(err, core.ErrIllegalPieceMove) {
		t.Fatalf("moving the opponent's piece should fail, got %v", err)
	}
	res, err := b.Move(pt(5, 4), pt(6, 4), core.Black)
	if err != nil {
		t.Fatalf("failed to move soldier: %v", err)
	}
	if res.Captured == nil || res.Captured.Type != xiangqi.General {
		t.Fatalf("expected general capture, got %+v", res)
	}
	winner, ok := b.CheckWinCondition()
	if !ok || winner != core.Black {
		t.Fatalf("unexpected winner: %s ok=%v", winner, ok)
	}
}

func TestLegalMovesAndRestore(t *testing.T) {
	b := xiangqi.NewBoard()
	place(t, b, 0, 4, core.Black, xiangqi.General)
	moves := b.LegalMoves(pt(0, 4))
	if len(moves) != 3 {
		t.Fatalf("unexpected general moves: %v", moves)
	}

	saved := b.State()
	b.Clear()
	if !b.Empty() {
		t.Fatal("board should be empty after clear")
	}
	b.Restore(saved)
	b.Remove(0, 4)
	if winner, ok := b.CheckWinCondition(); !ok || winner != core.White {
		t.Fatalf("restored board lost fielded general: %s ok=%v", winner, ok)
	}
}

func TestLastPieceTakenWins(t *testing.T) {
	b := xiangqi.NewBoard()
	place(t, b, 5, 4, core.Black, xiangqi.Soldier)
	place(t, b, 6, 4, core.White, xiangqi.Soldier)
	if _, ok := b.CheckWinCondition(); ok {
		t.Fatal("no winner expected while both sides have pieces")
	}
	if _, err := b.Move(pt(5, 4), pt(6, 4), core.Black); err != nil {
		t.Fatalf("failed to capture soldier: %v", err)
	}
	winner, ok := b.CheckWinCondition()
	if !ok || winner != core.Black {
		t.Fatalf("taking the last piece should win: %s ok=%v", winner, ok)
	}

	saved := b.State()
	b.Clear()
	b.Restore(saved)
	if winner, ok := b.CheckWinCondition(); !ok || winner != core.Black {
		t.Fatalf("restored board forgot white joined: %s ok=%v", winner, ok)
	}
	if b.HasGeneral(core.Black) || b.HasGeneral(core.White) {
		t.Fatal("neither side should hold a general")
	}
}
