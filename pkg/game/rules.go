package game

import (
	"weixiang/pkg/battle"
	"weixiang/pkg/economy"
)

// Rules are the tunable constants of a game.
type Rules struct {
	Economy economy.Rules `json:"economy"`
	// WinThreshold is the territory a color needs to win outright.
	WinThreshold int `json:"win_threshold"`
	// HistoryCap bounds the undo stack; the oldest snapshot is evicted first.
	HistoryCap     int `json:"history_cap"`
	SummonAttempts int `json:"summon_attempts"`
	// StartingTokens seeds both pools on a new game.
	StartingTokens int `json:"starting_tokens"`
}

func DefaultRules() Rules {
	return Rules{
		Economy:        economy.DefaultRules(),
		WinThreshold:   150,
		HistoryCap:     50,
		SummonAttempts: battle.DefaultAttempts,
	}
}

// withDefaults fills every unset field from DefaultRules.
func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if r.Economy.TerritoryDivisor <= 0 {
		r.Economy.TerritoryDivisor = d.Economy.TerritoryDivisor
	}
	if r.Economy.CaptureDivisor <= 0 {
		r.Economy.CaptureDivisor = d.Economy.CaptureDivisor
	}
	if r.Economy.CenterBonus < 0 {
		r.Economy.CenterBonus = 0
	}
	if r.WinThreshold <= 0 {
		r.WinThreshold = d.WinThreshold
	}
	if r.HistoryCap <= 0 {
		r.HistoryCap = d.HistoryCap
	}
	if r.SummonAttempts <= 0 {
		r.SummonAttempts = d.SummonAttempts
	}
	if r.StartingTokens < 0 {
		r.StartingTokens = 0
	}
	return r
}
