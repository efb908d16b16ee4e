// Package economy derives tactical tokens from the strategic position.
package economy

import "weixiang/pkg/core"

// Rules holds the token formula constants.
type Rules struct {
	TerritoryDivisor int `json:"territory_divisor"`
	CaptureDivisor   int `json:"capture_divisor"`
	CenterBonus      int `json:"center_bonus"`
}

// DefaultRules returns the standard formula: one token per 8 points of
// territory, one per 5 captured stones and one for holding the center.
func DefaultRules() Rules {
	return Rules{TerritoryDivisor: 8, CaptureDivisor: 5, CenterBonus: 1}
}

// Grant records a color's pool being raised by the formula.
type Grant struct {
	Color core.Color `json:"color"`
	From  int        `json:"from"`
	To    int        `json:"to"`
}

func div(n, d int) int {
	if d <= 0 || n <= 0 {
		return 0
	}
	return n / d
}

// Compute evaluates the formula for both colors. center is the color holding
// the center intersection; it only counts when held is true.
func (r Rules) Compute(territory, captures core.Tally, center core.Color, held bool) core.Tally {
	var out core.Tally
	for _, c := range core.Colors {
		n := div(territory.Get(c), r.TerritoryDivisor) + div(captures.Get(c), r.CaptureDivisor)
		if held && center == c {
			n += r.CenterBonus
		}
		out.Set(c, n)
	}
	return out
}

// Merge raises current to computed per color and never lowers it. A Grant is
// returned for every color whose pool grew.
func Merge(current, computed core.Tally) (core.Tally, []Grant) {
	var grants []Grant
	merged := current
	for _, c := range core.Colors {
		if from, to := current.Get(c), computed.Get(c); to > from {
			merged.Set(c, to)
			grants = append(grants, Grant{Color: c, From: from, To: to})
		}
	}
	return merged, grants
}

// Spend takes one token from c's pool. It returns false, leaving the pool
// untouched, when the pool is empty.
func Spend(pool *core.Tally, c core.Color) bool {
	if pool.Get(c) <= 0 {
		return false
	}
	pool.Add(c, -1)
	return true
}
