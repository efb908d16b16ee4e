package xiangqi

import (
	"fmt"
	"strings"

	"weixiang/pkg/core"
)

type PieceType int

const (
	Rook PieceType = iota
	Horse
	Elephant
	Advisor
	General
	Cannon
	Soldier
)

var pieceNames = [...]string{
	Rook:     "rook",
	Horse:    "horse",
	Elephant: "elephant",
	Advisor:  "advisor",
	General:  "general",
	Cannon:   "cannon",
	Soldier:  "soldier",
}

// PieceTypes lists every type in declaration order.
var PieceTypes = []PieceType{Rook, Horse, Elephant, Advisor, General, Cannon, Soldier}

func (t PieceType) String() string {
	if t < 0 || int(t) >= len(pieceNames) {
		return fmt.Sprintf("piece(%d)", int(t))
	}
	return pieceNames[t]
}

// ParsePieceType accepts the lowercase English names used on the wire.
func ParsePieceType(s string) (PieceType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range pieceNames {
		if name == s {
			return PieceType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown piece type %q", s)
}

func (t PieceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *PieceType) UnmarshalText(text []byte) error {
	v, err := ParsePieceType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

type Piece struct {
	Color core.Color `json:"color"`
	Type  PieceType  `json:"type"`
}

func (p Piece) String() string {
	return p.Color.String() + " " + p.Type.String()
}
