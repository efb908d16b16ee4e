package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, ColorBlackKey, "Black")
	message.SetString(lang, ColorWhiteKey, "White")

	message.SetString(lang, StatusTurnKey, "%s to play")
	message.SetString(lang, StatusTacticalTurnKey, "Battle: %s to move")
	message.SetString(lang, StatusCapturedKey, "%s captured %d stones")
	message.SetString(lang, StatusSummonedKey, "Battle on! %s summoned a %s")
	message.SetString(lang, StatusPieceTakenKey, "%s took a %s")
	message.SetString(lang, StatusBattleWonKey, "%s won the battle and may place a fortress")
	message.SetString(lang, StatusFortressPlacedKey, "%s placed a fortress")
	message.SetString(lang, StatusFortressSkippedKey, "%s gave up the fortress")
	message.SetString(lang, StatusBattleEndedKey, "Battle called off")
	message.SetString(lang, StatusTokensGrantedKey, "%s earned %d tactical tokens")
	message.SetString(lang, StatusUndoKey, "Last move undone")
	message.SetString(lang, StatusNewGameKey, "New game started")
	message.SetString(lang, StatusGameOverKey, "%s wins! Game over.")

	message.SetString(lang, "piece.rook", "rook")
	message.SetString(lang, "piece.horse", "horse")
	message.SetString(lang, "piece.elephant", "elephant")
	message.SetString(lang, "piece.advisor", "advisor")
	message.SetString(lang, "piece.general", "general")
	message.SetString(lang, "piece.cannon", "cannon")
	message.SetString(lang, "piece.soldier", "soldier")

	message.SetString(lang, RejectPrefix+"occupied_cell", "That cell is already occupied")
	message.SetString(lang, RejectPrefix+"out_of_bounds", "That position is off the board")
	message.SetString(lang, RejectPrefix+"suicide", "Suicide is not allowed")
	message.SetString(lang, RejectPrefix+"illegal_piece_move", "That piece cannot move there")
	message.SetString(lang, RejectPrefix+"duplicate_general", "You already have a general on the board")
	message.SetString(lang, RejectPrefix+"no_tokens", "Not enough tactical tokens")
	message.SetString(lang, RejectPrefix+"board_full", "No room to summon a piece")
	message.SetString(lang, RejectPrefix+"no_history", "Nothing to undo")
	message.SetString(lang, RejectPrefix+"game_over", "The game is over, start a new one")
	message.SetString(lang, RejectPrefix+"battle_active", "Finish the battle first")
	message.SetString(lang, RejectPrefix+"no_battle", "No battle in progress")
	message.SetString(lang, RejectPrefix+"no_fortress", "No fortress to place")
	message.SetString(lang, RejectPrefix+"internal", "Something went wrong")
}
