package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"weixiang/pkg/config"
	"weixiang/pkg/estimate"
	"weixiang/pkg/game"
	"weixiang/pkg/gtp"
	"weixiang/pkg/server"
)

func main() {
	configPath := flag.String("config", "", "path to config.json (default: search upward from cwd)")
	listen := flag.String("listen", "", "listen address (overrides config)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}

	log, err := newLogger(*debug)
	if err != nil {
		fatal(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	est, alive, closeEngine, err := buildEstimator(ctx, cfg, log)
	if err != nil {
		fatal(err)
	}
	defer closeEngine()

	opts := game.Options{
		Rules:    cfg.Rules(),
		Logger:   log.Named("game"),
		Language: cfg.Tag(),
	}
	var results <-chan estimate.Result
	if est != nil {
		dispatcher := estimate.NewDispatcher(est, cfg.EstimateTimeout(), log.Named("estimate"))
		go dispatcher.Run(ctx)
		opts.Estimator = dispatcher
		results = dispatcher.Results()
	}

	hub := server.NewHub(log.Named("hub"))
	go hub.Run(ctx.Done())
	session := server.NewSession(opts, hub, results)
	go session.Run(ctx)

	srv := server.New(server.Options{
		Session:   session,
		Hub:       hub,
		Logger:    log.Named("http"),
		Estimator: est,
		Alive:     alive,
	})

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(cfg.Listen); err != nil {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	var runErr error
	select {
	case <-sigCtx.Done():
		log.Info("shutdown signal received")
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warn("forced close failed", zap.Error(err))
	}
	cancel()
	if runErr != nil {
		log.Error("server stopped", zap.Error(runErr))
		log.Sync()
		os.Exit(1)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// buildEstimator picks the HTTP estimation service when a URL is set and
// a local GTP engine otherwise. With neither, the game keeps its local
// territory count and est is nil.
func buildEstimator(ctx context.Context, cfg config.Config, log *zap.Logger) (estimate.Estimator, func() bool, func(), error) {
	none := func() {}
	if cfg.EstimatorURL != "" {
		client := estimate.NewHTTPClient(cfg.EstimatorURL, nil)
		alive := func() bool {
			hctx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()
			h, err := client.Health(hctx)
			return err == nil && h.KatagoRunning
		}
		log.Info("using estimation service", zap.String("url", cfg.EstimatorURL))
		return client, alive, none, nil
	}
	if cfg.Engine == "" {
		log.Info("no estimator configured, using local territory count")
		return nil, nil, none, nil
	}
	path, err := cfg.EnginePath()
	if err != nil {
		return nil, nil, none, err
	}
	session, err := gtp.StartSession(ctx, gtp.Options{
		Timeout:     cfg.Liveness(),
		QuitTimeout: cfg.QuitTimeout(),
		Logger:      log.Named("gtp"),
	}, path, cfg.EngineArgs...)
	if err != nil {
		return nil, nil, none, fmt.Errorf("start engine %s: %w", path, err)
	}
	log.Info("engine started", zap.String("path", path), zap.Strings("args", cfg.EngineArgs))
	est := estimate.NewEngineEstimator(session, cfg.OwnershipCommand, log.Named("estimate"))
	closeEngine := func() {
		if err := session.Close(); err != nil {
			log.Warn("engine close failed", zap.Error(err))
		}
	}
	return est, est.Alive, closeEngine, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
