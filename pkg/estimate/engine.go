package estimate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"weixiang/pkg/gtp"
	"weixiang/pkg/weiqi"
)

// DefaultOwnershipCommand asks KataGo for the raw network output, which
// carries a per-point ownership map.
const DefaultOwnershipCommand = "kata-raw-nn 0"

// Commander sends one GTP command. *gtp.Session satisfies it.
type Commander interface {
	Command(ctx context.Context, line string) (gtp.Response, error)
	Alive() bool
}

// EngineEstimator sets the position up on a GTP engine and thresholds its
// ownership map.
type EngineEstimator struct {
	engine           Commander
	ownershipCommand string
	log              *zap.Logger
}

func NewEngineEstimator(engine Commander, ownershipCommand string, log *zap.Logger) *EngineEstimator {
	if ownershipCommand == "" {
		ownershipCommand = DefaultOwnershipCommand
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &EngineEstimator{engine: engine, ownershipCommand: ownershipCommand, log: log}
}

// Alive reports whether the engine process is running.
func (e *EngineEstimator) Alive() bool {
	return e.engine.Alive()
}

func (e *EngineEstimator) Estimate(ctx context.Context, req Request) (Territories, error) {
	size := req.BoardState.BoardSize
	if size == 0 {
		size = weiqi.Size
	}
	cmds := []string{fmt.Sprintf("boardsize %d", size), "clear_board"}
	for _, m := range req.BoardState.Moves {
		row, col, err := DecodeCoord(m.Coord)
		if err != nil {
			return Territories{}, err
		}
		player := "B"
		if m.Player == "white" {
			player = "W"
		}
		cmds = append(cmds, fmt.Sprintf("play %s %s", player, gtp.Vertex(row, col, size)))
	}
	for _, cmd := range cmds {
		if _, err := e.engine.Command(ctx, cmd); err != nil {
			return Territories{}, err
		}
	}
	resp, err := e.engine.Command(ctx, e.ownershipCommand)
	if err != nil {
		return Territories{}, err
	}
	t, err := ParseOwnership(resp.Text, size*size)
	if err != nil {
		return Territories{}, err
	}
	e.log.Debug("engine estimate",
		zap.Int("moves", len(req.BoardState.Moves)),
		zap.Int("black", t.Black),
		zap.Int("white", t.White),
		zap.Int("dame", t.Dame),
	)
	return t, nil
}

var errNoOwnership = errors.New("no ownership data in engine output")

// ParseOwnership finds the first field ending in "ownership" (any case) and
// reads the points values that follow it. Values below -0.5 count for
// black, above 0.5 for white, anything else is dame.
func ParseOwnership(text string, points int) (Territories, error) {
	fields := strings.Fields(text)
	start := -1
	for i, f := range fields {
		if strings.HasSuffix(strings.ToLower(f), "ownership") {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return Territories{}, errNoOwnership
	}
	var t Territories
	n := 0
	for _, f := range fields[start:] {
		if n == points {
			break
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			break
		}
		switch {
		case v < -0.5:
			t.Black++
		case v > 0.5:
			t.White++
		default:
			t.Dame++
		}
		n++
	}
	if n != points {
		return Territories{}, fmt.Errorf("ownership map has %d values, want %d", n, points)
	}
	return t, nil
}
