package core

import "errors"

var (
	ErrOccupiedCell       = errors.New("cell is occupied")
	ErrOutOfBounds        = errors.New("position is out of bounds")
	ErrSuicide            = errors.New("suicide move")
	ErrIllegalPieceMove   = errors.New("illegal piece move")
	ErrDuplicateGeneral   = errors.New("general already on the board")
	ErrInsufficientTokens = errors.New("not enough tactical tokens")
	ErrBoardFull          = errors.New("no free cell to summon a piece")
	ErrNoHistory          = errors.New("nothing to undo")
	ErrGameOver           = errors.New("the game is over")
	ErrBattleActive       = errors.New("a battle is in progress")
	ErrNoBattle           = errors.New("no battle in progress")
	ErrNoFortress         = errors.New("no fortress placement pending")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrOccupiedCell, "occupied_cell"},
	{ErrOutOfBounds, "out_of_bounds"},
	{ErrSuicide, "suicide"},
	{ErrIllegalPieceMove, "illegal_piece_move"},
	{ErrDuplicateGeneral, "duplicate_general"},
	{ErrInsufficientTokens, "no_tokens"},
	{ErrBoardFull, "board_full"},
	{ErrNoHistory, "no_history"},
	{ErrGameOver, "game_over"},
	{ErrBattleActive, "battle_active"},
	{ErrNoBattle, "no_battle"},
	{ErrNoFortress, "no_fortress"},
}

// Code maps err to the stable rejection reason reported to clients.
// Errors outside the taxonomy map to "internal".
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}
