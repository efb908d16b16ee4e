// replay reads every .wxs script under a directory, plays each one through
// a fresh game and archives the resulting matches to a parquet file.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"

	"go.uber.org/zap"

	"weixiang/pkg/config"
	"weixiang/pkg/game"
	"weixiang/pkg/record"
)

type job struct {
	index int
	path  string
}

func main() {
	configPath := flag.String("config", "", "path to config.json (default: search upward from cwd)")
	inputDir := flag.String("input", "scripts", "input directory for .wxs scripts")
	outputPath := flag.String("output", "matches.parquet", "output parquet file")
	processNum := flag.Int("process-num", 1, "number of parallel workers")
	seed := flag.Uint64("seed", 1, "seed for summon placement")
	resume := flag.Bool("resume", false, "keep matches already in the output parquet and skip their scripts")
	verbose := flag.Bool("v", false, "log every rejected intent")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}
	log := zap.NewNop()
	if *verbose {
		if log, err = zap.NewDevelopment(); err != nil {
			fatal(err)
		}
	}
	defer log.Sync()

	files, err := record.CollectScripts(*inputDir)
	if err != nil {
		fatal(err)
	}
	if len(files) == 0 {
		fatal(fmt.Errorf("no %s files found in %s", record.ScriptExt, *inputDir))
	}

	workers := *processNum
	if workers <= 0 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}
	if dir := filepath.Dir(*outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fatal(err)
		}
	}

	outputTarget := *outputPath
	var existing []record.MatchRecord
	if *resume {
		if _, err := os.Stat(*outputPath); err == nil {
			if existing, err = record.ReadParquet(*outputPath, int64(workers)); err != nil {
				fatal(err)
			}
			outputTarget = *outputPath + ".tmp"
		}
	}
	done := make(map[string]struct{}, len(existing))
	for _, rec := range existing {
		done[rec.Source] = struct{}{}
	}

	jobs := make(chan job)
	results := make(chan record.MatchRecord, workers)
	writeErr := make(chan error, 1)
	go func() {
		writeErr <- record.WriteParquet(outputTarget, results, int64(workers))
	}()
	for _, rec := range existing {
		results <- rec
	}

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stopCh)
	stopRequested := make(chan struct{})
	go func() {
		<-stopCh
		close(stopRequested)
	}()

	var processed, failed int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				rec, err := replayFile(j, cfg, *seed, log)
				if err != nil {
					fmt.Fprintf(os.Stderr, "failed to process %s: %v\n", j.path, err)
					atomic.AddInt64(&failed, 1)
					continue
				}
				results <- rec
				atomic.AddInt64(&processed, 1)
			}
		}()
	}

enqueue:
	for i, path := range files {
		if _, ok := done[filepath.Base(path)]; ok {
			continue
		}
		select {
		case <-stopRequested:
			break enqueue
		case jobs <- job{index: i, path: path}:
		}
	}
	close(jobs)
	wg.Wait()
	close(results)
	if err := <-writeErr; err != nil {
		fatal(err)
	}
	if outputTarget != *outputPath {
		if err := os.Rename(outputTarget, *outputPath); err != nil {
			fatal(err)
		}
	}
	fmt.Printf("replayed: %d, failed: %d, kept: %d, output: %s\n",
		atomic.LoadInt64(&processed), atomic.LoadInt64(&failed), len(existing), *outputPath)
}

func replayFile(j job, cfg config.Config, seed uint64, log *zap.Logger) (record.MatchRecord, error) {
	steps, err := record.ReadScript(j.path)
	if err != nil {
		return record.MatchRecord{}, err
	}
	g := game.New(game.Options{
		Rules:    cfg.Rules(),
		Logger:   log.With(zap.String("script", j.path)),
		Source:   record.SummonSource(seed, j.index),
		Language: cfg.Tag(),
	})
	res := record.Replay(g, steps)
	for _, r := range res.Rejected {
		log.Info("intent rejected",
			zap.String("script", j.path),
			zap.Int("line", r.Line),
			zap.String("intent", r.Intent.String()),
			zap.String("reason", r.Code),
		)
	}
	return record.NewMatchRecord(g, filepath.Base(j.path), len(res.Rejected)), nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
