// Package i18n holds the status message catalogs shown to players.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	ColorBlackKey = "color.black"
	ColorWhiteKey = "color.white"

	StatusTurnKey            = "status.turn"
	StatusTacticalTurnKey    = "status.tactical_turn"
	StatusCapturedKey        = "status.captured"
	StatusSummonedKey        = "status.summoned"
	StatusPieceTakenKey      = "status.piece_taken"
	StatusBattleWonKey       = "status.battle_won"
	StatusFortressPlacedKey  = "status.fortress_placed"
	StatusFortressSkippedKey = "status.fortress_skipped"
	StatusBattleEndedKey     = "status.battle_ended"
	StatusTokensGrantedKey   = "status.tokens_granted"
	StatusUndoKey            = "status.undo"
	StatusNewGameKey         = "status.new_game"
	StatusGameOverKey        = "status.game_over"

	RejectPrefix = "reject."
)

// Supported lists the catalogs in preference order.
var Supported = []language.Tag{language.English, language.SimplifiedChinese}

var matcher = language.NewMatcher(Supported)

// Match picks the closest supported tag for a BCP 47 preference string such
// as "zh-CN" or an Accept-Language header. Unknown input falls back to
// English.
func Match(pref string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(pref)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, _ := matcher.Match(tags...)
	return Supported[idx]
}

// NewPrinter returns a printer over the catalogs registered in this package.
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}
