// Package battle tracks the tactical engagement lifecycle:
//
//	Idle -> Active -> Resolved(winner) -> FortressPending(winner) -> Idle
//
// The machine only gates transitions. Which board accepts input in each
// phase is decided by the caller.
package battle

import (
	"fmt"

	"weixiang/pkg/core"
	"weixiang/pkg/economy"
	"weixiang/pkg/grid"
	"weixiang/pkg/xiangqi"
)

type Phase int

const (
	Idle Phase = iota
	Active
	Resolved
	FortressPending
)

var phaseNames = [...]string{"idle", "active", "resolved", "fortress_pending"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown battle phase %q", text)
}

// DefaultAttempts bounds the random search for a summon cell.
const DefaultAttempts = 100

// Source yields uniform integers in [0, n). *rand.Rand from math/rand/v2
// satisfies it.
type Source interface {
	IntN(n int) int
}

// State is the serializable form of a Machine.
type State struct {
	Phase        Phase        `json:"phase"`
	Winner       *core.Color  `json:"winner,omitempty"`
	Participants []core.Color `json:"participants,omitempty"`
}

type Machine struct {
	phase        Phase
	winner       core.Color
	participants [2]bool
	rng          Source
	attempts     int
}

// New returns an idle machine. attempts <= 0 selects DefaultAttempts.
func New(rng Source, attempts int) *Machine {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	return &Machine{rng: rng, attempts: attempts}
}

func (m *Machine) Phase() Phase { return m.phase }

// Winner returns the battle winner while Resolved or FortressPending.
func (m *Machine) Winner() (core.Color, bool) {
	if m.phase == Resolved || m.phase == FortressPending {
		return m.winner, true
	}
	return 0, false
}

// Participants lists the colors that summoned during the current battle.
func (m *Machine) Participants() []core.Color {
	var out []core.Color
	for _, c := range core.Colors {
		if m.participants[c] {
			out = append(out, c)
		}
	}
	return out
}

// Summon spends one of c's tokens to put a piece of type t on a random empty
// cell of c's home rows, then activates the battle. Nothing changes when the
// pool is empty, c already has a general on the board, or no free cell is
// found within the attempt bound.
func (m *Machine) Summon(board *xiangqi.Board, tokens *core.Tally, t xiangqi.PieceType, c core.Color) (grid.Point, error) {
	switch m.phase {
	case Resolved, FortressPending:
		return grid.Point{}, fmt.Errorf("%w: battle awaiting fortress placement", core.ErrBattleActive)
	}
	if tokens.Get(c) <= 0 {
		return grid.Point{}, fmt.Errorf("%w: %s has none", core.ErrInsufficientTokens, c)
	}
	if t == xiangqi.General && board.HasGeneral(c) {
		return grid.Point{}, fmt.Errorf("%w: %s", core.ErrDuplicateGeneral, c)
	}
	first, last := xiangqi.HomeRows(c)
	for i := 0; i < m.attempts; i++ {
		p := grid.Point{Row: first + m.rng.IntN(last-first+1), Col: m.rng.IntN(xiangqi.Cols)}
		if err := board.Place(p.Row, p.Col, xiangqi.Piece{Color: c, Type: t}); err != nil {
			continue
		}
		economy.Spend(tokens, c)
		m.phase = Active
		m.participants[c] = true
		return p, nil
	}
	return grid.Point{}, fmt.Errorf("%w: %d attempts for %s", core.ErrBoardFull, m.attempts, c)
}

// Resolve ends the active battle in favor of winner.
func (m *Machine) Resolve(winner core.Color) error {
	if m.phase != Active {
		return fmt.Errorf("%w: cannot resolve in phase %s", core.ErrNoBattle, m.phase)
	}
	m.phase = Resolved
	m.winner = winner
	return nil
}

// GrantFortress hands the resolved battle's winner a fortress placement.
func (m *Machine) GrantFortress() error {
	if m.phase != Resolved {
		return fmt.Errorf("%w: no resolved battle", core.ErrNoFortress)
	}
	m.phase = FortressPending
	return nil
}

// CompleteFortress consumes the pending placement.
func (m *Machine) CompleteFortress() error {
	if m.phase != FortressPending {
		return fmt.Errorf("%w: phase is %s", core.ErrNoFortress, m.phase)
	}
	m.reset()
	return nil
}

// Skip forfeits the pending placement.
func (m *Machine) Skip() error {
	return m.CompleteFortress()
}

// Deactivate returns to Idle from any phase.
func (m *Machine) Deactivate() {
	m.reset()
}

func (m *Machine) reset() {
	m.phase = Idle
	m.winner = 0
	m.participants = [2]bool{}
}

func (m *Machine) State() State {
	s := State{Phase: m.phase, Participants: m.Participants()}
	if w, ok := m.Winner(); ok {
		s.Winner = &w
	}
	return s
}

func (m *Machine) Restore(s State) {
	m.reset()
	m.phase = s.Phase
	if s.Winner != nil {
		m.winner = *s.Winner
	}
	for _, c := range s.Participants {
		m.participants[c] = true
	}
}
