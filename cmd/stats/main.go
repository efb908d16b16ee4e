package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"weixiang/pkg/config"
	"weixiang/pkg/game"
	"weixiang/pkg/record"
)

type binStats struct {
	binSize     int
	count       int
	min         int
	max         int
	initialized bool
	bins        map[int]int
}

func newBinStats(binSize int) *binStats {
	return &binStats{
		binSize: binSize,
		bins:    make(map[int]int),
	}
}

func (bs *binStats) Add(value int) {
	bs.count++
	if !bs.initialized {
		bs.min = value
		bs.max = value
		bs.initialized = true
	} else {
		if value < bs.min {
			bs.min = value
		}
		if value > bs.max {
			bs.max = value
		}
	}
	binStart := (value / bs.binSize) * bs.binSize
	bs.bins[binStart]++
}

func (bs *binStats) Print(title string) {
	fmt.Printf("%s (bin size=%d):\n", title, bs.binSize)
	if bs.count > 0 {
		fmt.Printf("range: %d-%d\n", bs.min, bs.max)
	}
	keys := make([]int, 0, len(bs.bins))
	for key := range bs.bins {
		keys = append(keys, key)
	}
	sort.Ints(keys)
	for _, start := range keys {
		end := start + bs.binSize - 1
		fmt.Printf("%d-%d,%d\n", start, end, bs.bins[start])
	}
}

type summary struct {
	games    int
	failed   int
	outcomes map[string]int
	actions  map[string]int
	rejected int
	battles  int
	lengths  *binStats
	margins  *binStats
}

func newSummary(binSize int) *summary {
	return &summary{
		outcomes: make(map[string]int),
		actions:  make(map[string]int),
		lengths:  newBinStats(binSize),
		margins:  newBinStats(binSize),
	}
}

func (s *summary) Add(rec record.MatchRecord) {
	s.games++
	if rec.Winner != "" {
		s.outcomes[rec.Winner]++
	} else {
		s.outcomes[rec.Reason]++
	}
	for _, row := range rec.Intents {
		s.actions[row.Action]++
	}
	s.rejected += int(rec.RejectedCount)
	s.battles += int(rec.BattleCount)
	s.lengths.Add(int(rec.IntentCount))
	margin := int(rec.BlackTerritory - rec.WhiteTerritory)
	if margin < 0 {
		margin = -margin
	}
	s.margins.Add(margin)
}

func main() {
	scriptDir := flag.String("script-dir", "", "input directory for .wxs scripts")
	parquetPath := flag.String("parquet", "", "input parquet file")
	binSize := flag.Int("bin-size", 10, "histogram bin size")
	seed := flag.Uint64("seed", 1, "seed for summon placement, as passed to replay")
	flag.Parse()

	if *binSize <= 0 {
		fatal(fmt.Errorf("bin-size must be > 0"))
	}
	if (*scriptDir == "") == (*parquetPath == "") {
		fatal(fmt.Errorf("specify exactly one of -script-dir or -parquet"))
	}

	sum := newSummary(*binSize)
	inputIsParquet := *parquetPath != ""
	if inputIsParquet {
		records, err := record.ReadParquet(*parquetPath, 4)
		if err != nil {
			fatal(err)
		}
		for _, rec := range records {
			sum.Add(rec)
		}
	} else {
		cfg, err := config.Load("")
		if err != nil {
			fatal(err)
		}
		files, err := record.CollectScripts(*scriptDir)
		if err != nil {
			fatal(err)
		}
		if len(files) == 0 {
			fatal(fmt.Errorf("no %s files found in %s", record.ScriptExt, *scriptDir))
		}
		for i, path := range files {
			steps, err := record.ReadScript(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to parse %s: %v\n", path, err)
				sum.failed++
				continue
			}
			g := game.New(game.Options{
				Rules:    cfg.Rules(),
				Source:   record.SummonSource(*seed, i),
				Language: cfg.Tag(),
			})
			res := record.Replay(g, steps)
			sum.Add(record.NewMatchRecord(g, filepath.Base(path), len(res.Rejected)))
		}
	}

	if inputIsParquet {
		fmt.Printf("input parquet: %s\n", *parquetPath)
	} else {
		fmt.Printf("script dir: %s\n", *scriptDir)
	}
	fmt.Printf("failed files: %d\n", sum.failed)
	fmt.Printf("games: %d\n", sum.games)
	fmt.Printf("outcomes: black=%d white=%d unfinished=%d\n",
		sum.outcomes["black"], sum.outcomes["white"], sum.outcomes[record.ReasonUnfinished])
	fmt.Printf("battles: %d\n", sum.battles)
	fmt.Printf("rejected intents: %d\n", sum.rejected)
	fmt.Println("accepted intents by action:")
	actions := make([]string, 0, len(sum.actions))
	for action := range sum.actions {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	for _, action := range actions {
		fmt.Printf("%s,%d\n", action, sum.actions[action])
	}
	sum.lengths.Print("match length in intents")
	sum.margins.Print("territory margin")
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
