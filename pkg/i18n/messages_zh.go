package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.SimplifiedChinese

	message.SetString(lang, ColorBlackKey, "黑")
	message.SetString(lang, ColorWhiteKey, "白")

	message.SetString(lang, StatusTurnKey, "%s方回合")
	message.SetString(lang, StatusTacticalTurnKey, "战术层：%s方回合")
	message.SetString(lang, StatusCapturedKey, "%s方提子%d枚")
	message.SetString(lang, StatusSummonedKey, "战术层战斗开始！%s方召唤了%s")
	message.SetString(lang, StatusPieceTakenKey, "%s方吃掉了%s")
	message.SetString(lang, StatusBattleWonKey, "%s方赢得战斗，请放置堡垒")
	message.SetString(lang, StatusFortressPlacedKey, "%s方成功放置堡垒！")
	message.SetString(lang, StatusFortressSkippedKey, "%s方放弃放置堡垒")
	message.SetString(lang, StatusBattleEndedKey, "战斗已中止")
	message.SetString(lang, StatusTokensGrantedKey, "%s方获得%d个战术令牌")
	message.SetString(lang, StatusUndoKey, "已悔棋")
	message.SetString(lang, StatusNewGameKey, "新游戏开始")
	message.SetString(lang, StatusGameOverKey, "%s方获胜！游戏结束！")

	message.SetString(lang, "piece.rook", "车")
	message.SetString(lang, "piece.horse", "马")
	message.SetString(lang, "piece.elephant", "象")
	message.SetString(lang, "piece.advisor", "士")
	message.SetString(lang, "piece.general", "将")
	message.SetString(lang, "piece.cannon", "炮")
	message.SetString(lang, "piece.soldier", "兵")

	message.SetString(lang, RejectPrefix+"occupied_cell", "该位置已有棋子")
	message.SetString(lang, RejectPrefix+"out_of_bounds", "该位置超出棋盘")
	message.SetString(lang, RejectPrefix+"suicide", "不能自杀")
	message.SetString(lang, RejectPrefix+"illegal_piece_move", "该棋子不能移动到这里")
	message.SetString(lang, RejectPrefix+"duplicate_general", "棋盘上已有你的将帅")
	message.SetString(lang, RejectPrefix+"no_tokens", "战术令牌不足")
	message.SetString(lang, RejectPrefix+"board_full", "无法放置棋子，棋盘已满")
	message.SetString(lang, RejectPrefix+"no_history", "没有可以悔的棋")
	message.SetString(lang, RejectPrefix+"game_over", "游戏已结束，请开始新游戏")
	message.SetString(lang, RejectPrefix+"battle_active", "请先结束战斗")
	message.SetString(lang, RejectPrefix+"no_battle", "当前没有战斗")
	message.SetString(lang, RejectPrefix+"no_fortress", "没有可放置的堡垒")
	message.SetString(lang, RejectPrefix+"internal", "出现错误")
}
