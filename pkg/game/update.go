package game

import (
	"weixiang/pkg/battle"
	"weixiang/pkg/core"
	"weixiang/pkg/economy"
	"weixiang/pkg/weiqi"
	"weixiang/pkg/xiangqi"
)

// Update is what the rendering side receives after each intent.
type Update struct {
	GameID        string           `json:"gameId"`
	Epoch         uint64           `json:"epoch"`
	Stones        []weiqi.Placed   `json:"stones"`
	Pieces        []xiangqi.Placed `json:"pieces"`
	Territory     core.Tally       `json:"territory"`
	Tokens        core.Tally       `json:"tokens"`
	Captures      core.Tally       `json:"captures"`
	StrategicTurn core.Color       `json:"strategicTurn"`
	TacticalTurn  *core.Color      `json:"tacticalTurn,omitempty"`
	Battle        battle.State     `json:"battle"`
	Grants        []economy.Grant  `json:"grants,omitempty"`
	Status        string           `json:"status"`
	Rejected      string           `json:"rejected,omitempty"`
	Over          bool             `json:"over"`
	Winner        *core.Color      `json:"winner,omitempty"`
}

// State returns the current update without notifying anyone.
func (g *Game) State() Update {
	return g.update(nil)
}

func (g *Game) update(grants []economy.Grant) Update {
	u := Update{
		GameID:        g.id,
		Epoch:         g.epoch,
		Stones:        g.strategic.Stones(),
		Pieces:        g.tactical.Pieces(),
		Territory:     g.territory,
		Tokens:        g.tokens,
		Captures:      g.captures,
		StrategicTurn: g.turn,
		Battle:        g.battle.State(),
		Grants:        grants,
		Status:        g.status,
		Over:          g.over,
	}
	if c, ok := g.TacticalTurn(); ok {
		u.TacticalTurn = &c
	}
	if c, ok := g.Winner(); ok {
		u.Winner = &c
	}
	return u
}
