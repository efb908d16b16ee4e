package game

import (
	"fmt"

	"go.uber.org/zap"

	"weixiang/pkg/battle"
	"weixiang/pkg/core"
	"weixiang/pkg/economy"
	"weixiang/pkg/grid"
	"weixiang/pkg/i18n"
	"weixiang/pkg/weiqi"
	"weixiang/pkg/xiangqi"
)

// PlaceStone plays a normal stone for the strategic turn owner. While a
// fortress placement is pending the intent places the winner's fortress
// instead.
func (g *Game) PlaceStone(row, col int) error {
	in := Intent{Action: ActStone, Row: row, Col: col}
	if g.over {
		return g.reject(in, core.ErrGameOver)
	}
	switch g.battle.Phase() {
	case battle.FortressPending:
		return g.placeFortress(in)
	case battle.Active, battle.Resolved:
		return g.reject(in, core.ErrBattleActive)
	}

	before := g.snapshot()
	c := g.turn
	out, err := g.strategic.PlaceStone(row, col, c)
	if err != nil {
		return g.reject(in, err)
	}
	g.history.Push(before)
	n := out.CapturedCount()
	g.captures.Add(c, n)
	g.moves = append(g.moves, weiqi.MoveRecord{Row: row, Col: col, Color: c})
	g.turn = c.Opponent()
	g.record(in, c, n)
	g.log.Debug("stone placed",
		zap.String("game_id", g.id),
		zap.Stringer("color", c),
		zap.Int("row", row),
		zap.Int("col", col),
		zap.Int("captured", n),
	)

	if n > 0 {
		g.status = g.printer.Sprintf(i18n.StatusCapturedKey, g.colorName(c), n)
	} else {
		g.status = g.turnStatus()
	}
	grants := g.afterStrategic()
	g.announceGrants(grants)
	g.notify(g.update(grants))
	return nil
}

// PlaceFortress places the pending fortress for the battle winner.
func (g *Game) PlaceFortress(row, col int) error {
	in := Intent{Action: ActFortress, Row: row, Col: col}
	if g.over {
		return g.reject(in, core.ErrGameOver)
	}
	if g.battle.Phase() != battle.FortressPending {
		return g.reject(in, fmt.Errorf("%w: phase is %s", core.ErrNoFortress, g.battle.Phase()))
	}
	return g.placeFortress(in)
}

func (g *Game) placeFortress(in Intent) error {
	winner, _ := g.battle.Winner()
	before := g.snapshot()
	if err := g.strategic.PlaceFortress(in.Row, in.Col, winner); err != nil {
		return g.reject(in, err)
	}
	if err := g.battle.CompleteFortress(); err != nil {
		g.strategic.RemoveStone(in.Row, in.Col)
		return g.reject(in, err)
	}
	g.history.Push(before)
	g.tactical.Clear()
	g.tacTurn = core.Black
	g.turn = g.turn.Opponent()
	in.Action = ActFortress
	g.record(in, winner, 0)
	g.log.Debug("fortress placed",
		zap.String("game_id", g.id),
		zap.Stringer("color", winner),
		zap.Int("row", in.Row),
		zap.Int("col", in.Col),
	)

	g.status = g.printer.Sprintf(i18n.StatusFortressPlacedKey, g.colorName(winner))
	grants := g.afterStrategic()
	g.notify(g.update(grants))
	return nil
}

// SkipFortress gives up the pending fortress placement and ends the battle.
func (g *Game) SkipFortress() error {
	in := Intent{Action: ActSkip}
	if g.over {
		return g.reject(in, core.ErrGameOver)
	}
	winner, _ := g.battle.Winner()
	before := g.snapshot()
	if err := g.battle.Skip(); err != nil {
		return g.reject(in, err)
	}
	g.history.Push(before)
	g.tactical.Clear()
	g.tacTurn = core.Black
	g.record(in, winner, 0)
	g.status = g.printer.Sprintf(i18n.StatusFortressSkippedKey, g.colorName(winner))
	g.notify(g.update(nil))
	return nil
}

// Summon spends a token to bring a piece of type t onto the tactical board.
// Outside a battle the strategic turn owner summons and moves first; during
// a battle the tactical turn owner summons and the summon uses up the turn.
func (g *Game) Summon(t xiangqi.PieceType) error {
	in := Intent{Action: ActSummon, Piece: t}
	if g.over {
		return g.reject(in, core.ErrGameOver)
	}
	idle := g.battle.Phase() == battle.Idle
	c := g.tacTurn
	if idle {
		c = g.turn
	}
	before := g.snapshot()
	at, err := g.battle.Summon(g.tactical, &g.tokens, t, c)
	if err != nil {
		return g.reject(in, err)
	}
	g.history.Push(before)
	if idle {
		g.tacTurn = c
	} else {
		g.tacTurn = c.Opponent()
	}
	g.record(in, c, 0)
	g.log.Debug("piece summoned",
		zap.String("game_id", g.id),
		zap.Stringer("color", c),
		zap.Stringer("piece", t),
		zap.Stringer("at", at),
		zap.Int("tokens_left", g.tokens.Get(c)),
	)
	g.status = g.printer.Sprintf(i18n.StatusSummonedKey, g.colorName(c), g.pieceName(t))
	g.notify(g.update(nil))
	return nil
}

// MovePiece moves the tactical turn owner's piece. Taking the last enemy
// general, or the last enemy piece of any kind, resolves the battle and
// opens the fortress placement.
func (g *Game) MovePiece(from, to grid.Point) error {
	in := Intent{Action: ActMove, Row: from.Row, Col: from.Col, To: to}
	if g.over {
		return g.reject(in, core.ErrGameOver)
	}
	if g.battle.Phase() != battle.Active {
		return g.reject(in, fmt.Errorf("%w: phase is %s", core.ErrNoBattle, g.battle.Phase()))
	}
	c := g.tacTurn
	before := g.snapshot()
	res, err := g.tactical.Move(from, to, c)
	if err != nil {
		return g.reject(in, err)
	}
	g.history.Push(before)
	g.tacTurn = c.Opponent()
	captured := 0
	if res.Captured != nil {
		captured = 1
	}
	g.record(in, c, captured)

	switch winner, ok := g.tactical.CheckWinCondition(); {
	case ok:
		// Resolve and GrantFortress cannot fail from Active.
		_ = g.battle.Resolve(winner)
		_ = g.battle.GrantFortress()
		g.status = g.printer.Sprintf(i18n.StatusBattleWonKey, g.colorName(winner))
		g.log.Debug("battle resolved",
			zap.String("game_id", g.id),
			zap.Stringer("winner", winner),
		)
	case res.Captured != nil:
		g.status = g.printer.Sprintf(i18n.StatusPieceTakenKey, g.colorName(c), g.pieceName(res.Captured.Type))
	default:
		g.status = g.printer.Sprintf(i18n.StatusTacticalTurnKey, g.colorName(g.tacTurn))
	}
	g.notify(g.update(nil))
	return nil
}

// EndBattle calls off the current battle from outside the tactical board.
// The tactical board is cleared, any pending fortress is forfeited and the
// strategic turn is kept. Spent tokens are not refunded.
func (g *Game) EndBattle() error {
	in := Intent{Action: ActEnd}
	if g.over {
		return g.reject(in, core.ErrGameOver)
	}
	if g.battle.Phase() == battle.Idle {
		return g.reject(in, core.ErrNoBattle)
	}
	g.history.Push(g.snapshot())
	g.battle.Deactivate()
	g.tactical.Clear()
	g.tacTurn = core.Black
	g.record(in, g.turn, 0)
	g.log.Debug("battle ended", zap.String("game_id", g.id))
	g.status = g.printer.Sprintf(i18n.StatusBattleEndedKey)
	g.notify(g.update(nil))
	return nil
}

// LegalMoves lists the destinations of the piece on from. It is empty
// outside an active battle.
func (g *Game) LegalMoves(from grid.Point) []grid.Point {
	if g.over || g.battle.Phase() != battle.Active {
		return nil
	}
	return g.tactical.LegalMoves(from)
}

// Undo restores the snapshot taken before the last accepted intent. Tokens
// come back verbatim from the snapshot.
func (g *Game) Undo() error {
	in := Intent{Action: ActUndo}
	if g.over {
		return g.reject(in, core.ErrGameOver)
	}
	s, ok := g.history.Pop()
	if !ok {
		return g.reject(in, core.ErrNoHistory)
	}
	g.restore(s)
	g.epoch++
	g.record(in, g.turn, 0)
	g.status = g.printer.Sprintf(i18n.StatusUndoKey)
	g.log.Debug("undo", zap.String("game_id", g.id), zap.Int("history", g.history.Len()))
	g.notify(g.update(nil))
	return nil
}

// NewGame resets both boards, the pools and the history under a fresh id.
func (g *Game) NewGame() {
	prev := g.id
	g.reset()
	g.log.Info("new game", zap.String("game_id", g.id), zap.String("previous", prev))
	g.notify(g.update(nil))
}

// ApplyEstimate replaces the local territory count with an external
// estimate requested at epoch. Results for an older epoch, or arriving
// after the game ended, are dropped. A failed estimate keeps the local
// count. It reports whether the estimate was applied.
func (g *Game) ApplyEstimate(epoch uint64, territory core.Tally, err error) bool {
	if g.over || epoch != g.epoch {
		g.log.Debug("stale estimate dropped",
			zap.String("game_id", g.id),
			zap.Uint64("epoch", epoch),
			zap.Uint64("current", g.epoch),
		)
		return false
	}
	if err != nil {
		g.log.Warn("territory estimate failed", zap.String("game_id", g.id), zap.Error(err))
		return false
	}
	g.territory = territory
	grants := g.mergeTokens()
	g.checkWin()
	g.announceGrants(grants)
	g.notify(g.update(grants))
	return true
}

func (g *Game) announceGrants(grants []economy.Grant) {
	if g.over || len(grants) == 0 {
		return
	}
	gr := grants[len(grants)-1]
	g.status = g.printer.Sprintf(i18n.StatusTokensGrantedKey, g.colorName(gr.Color), gr.To-gr.From)
}
