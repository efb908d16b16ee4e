// Package game orchestrates a hybrid match: it owns both boards, the token
// pools, the battle machine and the undo history, routes every player intent
// to the right rules engine and keeps turn ownership consistent across the
// two layers.
//
// A Game is not safe for concurrent use. Callers serialize intents and
// estimate results through one goroutine.
package game

import (
	"math/rand/v2"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"weixiang/pkg/battle"
	"weixiang/pkg/core"
	"weixiang/pkg/economy"
	"weixiang/pkg/i18n"
	"weixiang/pkg/weiqi"
	"weixiang/pkg/xiangqi"
)

// EstimateRequester receives a request for a territory estimate after every
// accepted strategic change. It must not block.
type EstimateRequester interface {
	RequestEstimate(epoch uint64, stones []weiqi.Placed, toMove core.Color)
}

// Observer is notified after every intent, accepted or rejected.
type Observer func(Update)

type Options struct {
	Rules     Rules
	Logger    *zap.Logger
	Observer  Observer
	Estimator EstimateRequester
	// Source drives summon placement. Nil seeds a fresh PCG.
	Source   battle.Source
	Language language.Tag
}

type Game struct {
	id        string
	rules     Rules
	log       *zap.Logger
	observer  Observer
	estimator EstimateRequester
	printer   *message.Printer

	strategic *weiqi.Board
	tactical  *xiangqi.Board
	battle    *battle.Machine
	history   *History

	territory core.Tally
	tokens    core.Tally
	captures  core.Tally
	turn      core.Color
	tacTurn   core.Color
	moves     []weiqi.MoveRecord

	epoch   uint64
	over    bool
	winner  core.Color
	status  string
	journal []Entry
}

func New(opts Options) *Game {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	src := opts.Source
	if src == nil {
		src = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	tag := opts.Language
	if tag == language.Und {
		tag = language.English
	}
	rules := opts.Rules.withDefaults()
	g := &Game{
		rules:     rules,
		log:       log,
		observer:  opts.Observer,
		estimator: opts.Estimator,
		printer:   i18n.NewPrinter(tag),
		strategic: weiqi.NewBoard(),
		tactical:  xiangqi.NewBoard(),
		battle:    battle.New(src, rules.SummonAttempts),
		history:   NewHistory(rules.HistoryCap),
	}
	g.reset()
	return g
}

func (g *Game) reset() {
	g.id = uuid.New().String()
	g.strategic.Reset()
	g.tactical.Clear()
	g.battle.Deactivate()
	g.history.Clear()
	g.territory = core.Tally{}
	g.tokens = core.Tally{Black: g.rules.StartingTokens, White: g.rules.StartingTokens}
	g.captures = core.Tally{}
	g.turn = core.Black
	g.tacTurn = core.Black
	g.moves = nil
	g.epoch++
	g.over = false
	g.winner = 0
	g.journal = nil
	g.status = g.printer.Sprintf(i18n.StatusNewGameKey)
}

func (g *Game) ID() string                { return g.id }
func (g *Game) Rules() Rules              { return g.rules }
func (g *Game) Epoch() uint64             { return g.epoch }
func (g *Game) Status() string            { return g.status }
func (g *Game) Territory() core.Tally     { return g.territory }
func (g *Game) Tokens() core.Tally        { return g.tokens }
func (g *Game) Captures() core.Tally      { return g.captures }
func (g *Game) StrategicTurn() core.Color { return g.turn }
func (g *Game) Phase() battle.Phase       { return g.battle.Phase() }
func (g *Game) Strategic() *weiqi.Board   { return g.strategic }
func (g *Game) Tactical() *xiangqi.Board  { return g.tactical }
func (g *Game) HistoryLen() int           { return g.history.Len() }
func (g *Game) Moves() []weiqi.MoveRecord { return append([]weiqi.MoveRecord(nil), g.moves...) }
func (g *Game) Journal() []Entry          { return append([]Entry(nil), g.journal...) }

// TacticalTurn returns the color to move on the tactical board; ok is false
// outside an active battle.
func (g *Game) TacticalTurn() (core.Color, bool) {
	return g.tacTurn, g.battle.Phase() == battle.Active
}

// Winner reports the game winner once the game is over.
func (g *Game) Winner() (core.Color, bool) {
	return g.winner, g.over
}

func (g *Game) snapshot() Snapshot {
	s := Snapshot{
		Strategic: StrategicState{
			Stones:    g.strategic.Stones(),
			Territory: g.territory,
			Tokens:    g.tokens,
			Captures:  g.captures,
			Turn:      g.turn,
			Moves:     g.Moves(),
		},
		Battle: g.battle.State(),
	}
	if !g.tactical.Empty() || g.battle.Phase() != battle.Idle {
		s.Tactical = &TacticalState{Board: g.tactical.State(), Turn: g.tacTurn}
	}
	return s
}

func (g *Game) restore(s Snapshot) {
	g.strategic.Restore(s.Strategic.Stones)
	g.territory = s.Strategic.Territory
	g.tokens = s.Strategic.Tokens
	g.captures = s.Strategic.Captures
	g.turn = s.Strategic.Turn
	g.moves = append([]weiqi.MoveRecord(nil), s.Strategic.Moves...)
	if s.Tactical != nil {
		g.tactical.Restore(s.Tactical.Board)
		g.tacTurn = s.Tactical.Turn
	} else {
		g.tactical.Clear()
		g.tacTurn = core.Black
	}
	g.battle.Restore(s.Battle)
}

func (g *Game) record(in Intent, c core.Color, captured int) {
	g.journal = append(g.journal, Entry{Seq: len(g.journal) + 1, Intent: in, Color: c, Captured: captured})
}

func (g *Game) colorName(c core.Color) string {
	if c == core.White {
		return g.printer.Sprintf(i18n.ColorWhiteKey)
	}
	return g.printer.Sprintf(i18n.ColorBlackKey)
}

func (g *Game) pieceName(t xiangqi.PieceType) string {
	return g.printer.Sprintf("piece." + t.String())
}

// reject reports err to the observer and returns it unchanged.
func (g *Game) reject(in Intent, err error) error {
	code := core.Code(err)
	g.status = g.printer.Sprintf(i18n.RejectPrefix + code)
	g.log.Debug("intent rejected",
		zap.String("game_id", g.id),
		zap.String("intent", in.String()),
		zap.String("reason", code),
		zap.Error(err),
	)
	u := g.update(nil)
	u.Rejected = code
	g.notify(u)
	return err
}

func (g *Game) notify(u Update) {
	if g.observer != nil {
		g.observer(u)
	}
}

// afterStrategic runs after every change to the strategic board: territory
// is recounted, tokens merged, a fresh estimate requested and the win
// threshold checked.
func (g *Game) afterStrategic() []economy.Grant {
	g.territory = g.strategic.ComputeTerritory()
	g.epoch++
	grants := g.mergeTokens()
	if g.estimator != nil {
		g.estimator.RequestEstimate(g.epoch, g.strategic.Stones(), g.turn)
	}
	g.checkWin()
	return grants
}

func (g *Game) mergeTokens() []economy.Grant {
	center, held := g.strategic.CenterOccupant()
	computed := g.rules.Economy.Compute(g.territory, g.captures, center, held)
	var grants []economy.Grant
	g.tokens, grants = economy.Merge(g.tokens, computed)
	for _, gr := range grants {
		g.log.Debug("tokens granted",
			zap.String("game_id", g.id),
			zap.Stringer("color", gr.Color),
			zap.Int("from", gr.From),
			zap.Int("to", gr.To),
		)
	}
	return grants
}

func (g *Game) checkWin() {
	if g.over {
		return
	}
	for _, c := range core.Colors {
		if g.territory.Get(c) >= g.rules.WinThreshold {
			g.over = true
			g.winner = c
			g.history.Clear()
			g.status = g.printer.Sprintf(i18n.StatusGameOverKey, g.colorName(c))
			g.log.Info("game over",
				zap.String("game_id", g.id),
				zap.Stringer("winner", c),
				zap.Int("territory", g.territory.Get(c)),
			)
			return
		}
	}
}

func (g *Game) turnStatus() string {
	return g.printer.Sprintf(i18n.StatusTurnKey, g.colorName(g.turn))
}
