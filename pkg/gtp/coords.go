package gtp

import (
	"fmt"
	"strconv"
	"strings"
)

// Vertex converts a board position (top-left origin) to GTP notation.
// Columns run A-T skipping I; rows count up from the bottom edge.
// On a 19x19 board (18,0) is A1 and (3,15) is Q16.
func Vertex(row, col, size int) string {
	c := 'A' + rune(col)
	if col >= 8 {
		c++
	}
	return fmt.Sprintf("%c%d", c, size-row)
}

// ParseVertex converts GTP notation back to a board position.
func ParseVertex(v string, size int) (row, col int, err error) {
	v = strings.ToUpper(strings.TrimSpace(v))
	if len(v) < 2 {
		return 0, 0, fmt.Errorf("invalid vertex %q", v)
	}
	letter := v[0]
	if letter < 'A' || letter > 'Z' || letter == 'I' {
		return 0, 0, fmt.Errorf("invalid column in vertex %q", v)
	}
	col = int(letter - 'A')
	if letter > 'I' {
		col--
	}
	n, err := strconv.Atoi(v[1:])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid row in vertex %q: %w", v, err)
	}
	row = size - n
	if row < 0 || row >= size || col >= size {
		return 0, 0, fmt.Errorf("vertex %q is off a %dx%d board", v, size, size)
	}
	return row, col, nil
}
