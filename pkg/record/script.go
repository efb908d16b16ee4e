// Package record reads and writes match records: line-oriented replay
// scripts of player intents and a parquet archive of finished matches.
package record

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"weixiang/pkg/core"
	"weixiang/pkg/game"
	"weixiang/pkg/grid"
	"weixiang/pkg/xiangqi"
)

// ScriptExt is the extension CollectScripts looks for.
const ScriptExt = ".wxs"

// Step is one parsed script line.
type Step struct {
	Line   int
	Intent game.Intent
}

// Rejection is a step the game refused during Replay.
type Rejection struct {
	Line   int
	Intent game.Intent
	Code   string
}

type ReplayResult struct {
	Applied  int
	Rejected []Rejection
}

var pieceAliases = map[string]xiangqi.PieceType{
	"车": xiangqi.Rook,
	"車": xiangqi.Rook,
	"马": xiangqi.Horse,
	"馬": xiangqi.Horse,
	"象": xiangqi.Elephant,
	"相": xiangqi.Elephant,
	"士": xiangqi.Advisor,
	"仕": xiangqi.Advisor,
	"将": xiangqi.General,
	"帅": xiangqi.General,
	"帥": xiangqi.General,
	"炮": xiangqi.Cannon,
	"砲": xiangqi.Cannon,
	"兵": xiangqi.Soldier,
	"卒": xiangqi.Soldier,
}

var argCounts = map[game.Action]int{
	game.ActStone:    2,
	game.ActFortress: 2,
	game.ActSkip:     0,
	game.ActSummon:   1,
	game.ActMove:     4,
	game.ActEnd:      0,
	game.ActUndo:     0,
	game.ActNew:      0,
}

// ReadScript loads and parses the script at path.
func ReadScript(path string) ([]Step, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := decodeScript(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	steps, err := ParseScript(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return steps, nil
}

func decodeScript(data []byte) (string, error) {
	if bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		data = data[3:]
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	reader := transform.NewReader(bytes.NewReader(data), simplifiedchinese.GB18030.NewDecoder())
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(decoded) {
		return "", errors.New("failed to decode GB18030 script")
	}
	return string(decoded), nil
}

// ParseScript reads one intent per line. Blank lines and text after '#'
// are ignored.
func ParseScript(r io.Reader) ([]Step, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var steps []Step
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		in, err := parseLine(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		steps = append(steps, Step{Line: i + 1, Intent: in})
	}
	return steps, nil
}

func parseLine(fields []string) (game.Intent, error) {
	act := game.Action(strings.ToLower(fields[0]))
	want, ok := argCounts[act]
	if !ok {
		return game.Intent{}, fmt.Errorf("unknown action %q", fields[0])
	}
	args := fields[1:]
	if len(args) != want {
		return game.Intent{}, fmt.Errorf("%s takes %d arguments, got %d", act, want, len(args))
	}
	in := game.Intent{Action: act}
	switch act {
	case game.ActSummon:
		t, err := parsePiece(args[0])
		if err != nil {
			return game.Intent{}, err
		}
		in.Piece = t
		return in, nil
	case game.ActStone, game.ActFortress, game.ActMove:
		nums := make([]int, len(args))
		for i, a := range args {
			n, err := strconv.Atoi(a)
			if err != nil {
				return game.Intent{}, fmt.Errorf("bad coordinate %q", a)
			}
			nums[i] = n
		}
		in.Row, in.Col = nums[0], nums[1]
		if act == game.ActMove {
			in.To = grid.Point{Row: nums[2], Col: nums[3]}
		}
	}
	return in, nil
}

func parsePiece(s string) (xiangqi.PieceType, error) {
	if t, ok := pieceAliases[s]; ok {
		return t, nil
	}
	return xiangqi.ParsePieceType(s)
}

// FormatScript writes journal entries back in script form, one per line,
// annotated with the acting color.
func FormatScript(entries []game.Entry) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s # %d %s\n", e.Intent, e.Seq, e.Color)
	}
	return b.String()
}

// Replay feeds steps to g in order. Rejected steps are collected and do
// not stop the replay.
func Replay(g *game.Game, steps []Step) ReplayResult {
	var res ReplayResult
	for _, s := range steps {
		if err := g.Apply(s.Intent); err != nil {
			res.Rejected = append(res.Rejected, Rejection{Line: s.Line, Intent: s.Intent, Code: core.Code(err)})
			continue
		}
		res.Applied++
	}
	return res
}

// SummonSource returns the summon placement source for the script at
// position index of a run seeded with seed. The same seed and index always
// place summons on the same cells.
func SummonSource(seed uint64, index int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(index)))
}

// CollectScripts returns every script under root in lexical order.
func CollectScripts(root string) ([]string, error) {
	var files []string
	if err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ScriptExt) {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
