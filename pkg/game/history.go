package game

import (
	"weixiang/pkg/battle"
	"weixiang/pkg/core"
	"weixiang/pkg/weiqi"
	"weixiang/pkg/xiangqi"
)

// StrategicState is the strategic half of a snapshot.
type StrategicState struct {
	Stones    []weiqi.Placed     `json:"stones"`
	Territory core.Tally         `json:"territory"`
	Tokens    core.Tally         `json:"tokens"`
	Captures  core.Tally         `json:"captures"`
	Turn      core.Color         `json:"turn"`
	Moves     []weiqi.MoveRecord `json:"moves"`
}

// TacticalState is the tactical half of a snapshot, absent between battles.
type TacticalState struct {
	Board xiangqi.State `json:"board"`
	Turn  core.Color    `json:"turn"`
}

// Snapshot is the full state pushed before every accepted mutation.
type Snapshot struct {
	Strategic StrategicState `json:"strategic"`
	Tactical  *TacticalState `json:"tactical"`
	Battle    battle.State   `json:"battle"`
}

// History is a bounded stack of snapshots. Pushing onto a full stack drops
// the oldest entry.
type History struct {
	limit int
	items []Snapshot
}

func NewHistory(limit int) *History {
	if limit < 1 {
		limit = 1
	}
	return &History{limit: limit, items: make([]Snapshot, 0, limit)}
}

func (h *History) Push(s Snapshot) {
	if len(h.items) == h.limit {
		copy(h.items, h.items[1:])
		h.items = h.items[:len(h.items)-1]
	}
	h.items = append(h.items, s)
}

func (h *History) Pop() (Snapshot, bool) {
	if len(h.items) == 0 {
		return Snapshot{}, false
	}
	s := h.items[len(h.items)-1]
	h.items[len(h.items)-1] = Snapshot{}
	h.items = h.items[:len(h.items)-1]
	return s, true
}

func (h *History) Len() int { return len(h.items) }

func (h *History) Clear() {
	clear(h.items)
	h.items = h.items[:0]
}
