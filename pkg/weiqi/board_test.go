package weiqi_test

import (
	"errors"
	"testing"

	"weixiang/pkg/core"
	"weixiang/pkg/weiqi"
)

func mustPlace(t *testing.T, b *weiqi.Board, row, col int, c core.Color) weiqi.Outcome {
	t.Helper()
	out, err := b.PlaceStone(row, col, c)
	if err != nil {
		t.Fatalf("failed to place %s at (%d,%d): %v", c, row, col, err)
	}
	return out
}

func TestCaptureRemovesWholeGroup(t *testing.T) {
	b := weiqi.NewBoard()
	// white pair at (5,5)-(5,6), surrounded except for (5,7)
	mustPlace(t, b, 5, 5, core.White)
	mustPlace(t, b, 5, 6, core.White)
	for _, p := range [][2]int{{4, 5}, {4, 6}, {6, 5}, {6, 6}, {5, 4}} {
		mustPlace(t, b, p[0], p[1], core.Black)
	}
	out := mustPlace(t, b, 5, 7, core.Black)
	if out.CapturedCount() != 2 {
		t.Fatalf("unexpected capture count: got %d want 2", out.CapturedCount())
	}
	for _, col := range []int{5, 6} {
		if _, ok := b.StoneAt(5, col); ok {
			t.Fatalf("captured stone at (5,%d) still on board", col)
		}
	}
	if s, ok := b.StoneAt(5, 7); !ok || s.Color != core.Black {
		t.Fatalf("mover stone missing after capture: %+v ok=%v", s, ok)
	}
}

func TestCornerCapture(t *testing.T) {
	b := weiqi.NewBoard()
	mustPlace(t, b, 0, 0, core.White)
	mustPlace(t, b, 0, 1, core.Black)
	out := mustPlace(t, b, 1, 0, core.Black)
	if out.CapturedCount() != 1 {
		t.Fatalf("unexpected capture count: got %d want 1", out.CapturedCount())
	}
}

func TestSuicideRejectedBoardUnchanged(t *testing.T) {
	b := weiqi.NewBoard()
	mustPlace(t, b, 0, 1, core.Black)
	mustPlace(t, b, 1, 0, core.Black)
	before := b.Grid().Clone()

	_, err := b.PlaceStone(0, 0, core.White)
	if !errors.Is(err, core.ErrSuicide) {
		t.Fatalf("expected suicide, got %v", err)
	}
	if !b.Grid().Equal(before) {
		t.Fatal("board changed after rejected suicide")
	}
}

func TestCaptureSeparateGroups(t *testing.T) {
	b := weiqi.NewBoard()
	// two black stones sharing their last liberty at (0,1)
	mustPlace(t, b, 0, 0, core.Black)
	mustPlace(t, b, 1, 0, core.White)
	mustPlace(t, b, 1, 1, core.White)
	mustPlace(t, b, 0, 2, core.Black)
	mustPlace(t, b, 1, 2, core.White)
	mustPlace(t, b, 0, 3, core.White)

	out := mustPlace(t, b, 0, 1, core.White)
	if out.CapturedCount() != 2 {
		t.Fatalf("unexpected capture count: got %d want 2", out.CapturedCount())
	}
}

func TestOccupiedAndOutOfBounds(t *testing.T) {
	b := weiqi.NewBoard()
	mustPlace(t, b, 3, 3, core.Black)
	if _, err := b.PlaceStone(3, 3, core.White); !errors.Is(err, core.ErrOccupiedCell) {
		t.Fatalf("expected occupied cell, got %v", err)
	}
	if _, err := b.PlaceStone(19, 0, core.White); !errors.Is(err, core.ErrOutOfBounds) {
		t.Fatalf("expected out of bounds, got %v", err)
	}
	if err := b.PlaceFortress(-1, 4, core.White); !errors.Is(err, core.ErrOutOfBounds) {
		t.Fatalf("expected out of bounds for fortress, got %v", err)
	}
	if _, ok := b.StoneAt(-1, 40); ok {
		t.Fatal("out of range lookup should report empty")
	}
	if b.RemoveStone(40, 40) {
		t.Fatal("out of range remove should report false")
	}
}

func TestFortressIsNeverCaptured(t *testing.T) {
	b := weiqi.NewBoard()
	if err := b.PlaceFortress(0, 0, core.White); err != nil {
		t.Fatalf("failed to place fortress: %v", err)
	}
	mustPlace(t, b, 0, 1, core.Black)
	out := mustPlace(t, b, 1, 0, core.Black)
	if out.CapturedCount() != 0 {
		t.Fatalf("fortress should not be captured, got %d captures", out.CapturedCount())
	}
	if s, ok := b.StoneAt(0, 0); !ok || s.Kind != weiqi.Fortress {
		t.Fatalf("fortress missing: %+v ok=%v", s, ok)
	}
	if err := b.PlaceFortress(0, 1, core.White); !errors.Is(err, core.ErrOccupiedCell) {
		t.Fatalf("expected occupied cell, got %v", err)
	}
}

func TestTerritory(t *testing.T) {
	b := weiqi.NewBoard()
	if got := b.ComputeTerritory(); got != (core.Tally{}) {
		t.Fatalf("empty board territory: got %+v want zero", got)
	}

	mustPlace(t, b, 0, 1, core.Black)
	mustPlace(t, b, 1, 0, core.Black)
	mustPlace(t, b, 18, 17, core.White)
	mustPlace(t, b, 17, 18, core.White)
	got := b.ComputeTerritory()
	want := core.Tally{Black: 1, White: 1}
	if got != want {
		t.Fatalf("unexpected territory: got %+v want %+v", got, want)
	}

	// a single stone of one color borders the whole remaining region
	b.Reset()
	mustPlace(t, b, 9, 9, core.Black)
	if got := b.ComputeTerritory(); got.Black != weiqi.Size*weiqi.Size-1 || got.White != 0 {
		t.Fatalf("unexpected single stone territory: %+v", got)
	}
}

func TestFortressBordersTerritory(t *testing.T) {
	b := weiqi.NewBoard()
	if err := b.PlaceFortress(0, 1, core.White); err != nil {
		t.Fatalf("failed to place fortress: %v", err)
	}
	if err := b.PlaceFortress(1, 0, core.White); err != nil {
		t.Fatalf("failed to place fortress: %v", err)
	}
	mustPlace(t, b, 2, 2, core.Black)
	if got := b.ComputeTerritory(); got.White != 1 {
		t.Fatalf("unexpected white territory: got %d want 1", got.White)
	}
}

func TestStonesRestore(t *testing.T) {
	b := weiqi.NewBoard()
	mustPlace(t, b, 2, 3, core.Black)
	if err := b.PlaceFortress(4, 4, core.White); err != nil {
		t.Fatalf("failed to place fortress: %v", err)
	}
	saved := b.Stones()
	mustPlace(t, b, 10, 10, core.White)

	b.Restore(saved)
	if got := len(b.Stones()); got != 2 {
		t.Fatalf("unexpected stone count after restore: got %d want 2", got)
	}
	if _, ok := b.StoneAt(10, 10); ok {
		t.Fatal("stone placed after snapshot survived restore")
	}
	if c, ok := b.CenterOccupant(); ok {
		t.Fatalf("center should be empty, got %s", c)
	}
}
