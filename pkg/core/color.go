// Package core holds the vocabulary shared by both boards: player colors,
// per-color tallies and the rejection taxonomy.
package core

import (
	"fmt"
	"strings"
)

type Color int

const (
	Black Color = iota
	White
)

// Colors lists both colors in turn order.
var Colors = [2]Color{Black, White}

// Opponent returns the other color.
func (c Color) Opponent() Color {
	if c == Black {
		return White
	}
	return Black
}

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return fmt.Sprintf("color(%d)", int(c))
	}
}

// Valid reports whether c is Black or White.
func (c Color) Valid() bool {
	return c == Black || c == White
}

// ParseColor accepts "black"/"white" and the single-letter forms "b"/"w".
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "black", "b":
		return Black, nil
	case "white", "w":
		return White, nil
	}
	return 0, fmt.Errorf("unknown color %q", s)
}

func (c Color) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid color %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
