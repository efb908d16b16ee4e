package server

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"weixiang/pkg/estimate"
	"weixiang/pkg/game"
)

var ErrSessionClosed = errors.New("session closed")

type op struct {
	fn   func(*game.Game)
	done chan struct{}
}

// Session owns a Game on a single goroutine. Intents from any number of
// requests and estimate results are applied one at a time in arrival
// order.
type Session struct {
	game    *game.Game
	ops     chan op
	results <-chan estimate.Result
	log     *zap.Logger
	stopped chan struct{}
}

// NewSession builds the game from opts. Updates go to hub when it is not
// nil, and to any Observer already set in opts. results may be nil when no
// estimator is configured.
func NewSession(opts game.Options, hub *Hub, results <-chan estimate.Result) *Session {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if hub != nil {
		next := opts.Observer
		opts.Observer = func(u game.Update) {
			hub.Publish(u)
			if next != nil {
				next(u)
			}
		}
	}
	return &Session{
		game:    game.New(opts),
		ops:     make(chan op),
		results: results,
		log:     log,
		stopped: make(chan struct{}),
	}
}

// Run applies queued operations until ctx is done.
func (s *Session) Run(ctx context.Context) {
	defer close(s.stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case o := <-s.ops:
			o.fn(s.game)
			close(o.done)
		case r, ok := <-s.results:
			if !ok {
				s.results = nil
				continue
			}
			if s.game.ApplyEstimate(r.Epoch, r.Territories.Tally(), r.Err) {
				s.log.Debug("estimate applied",
					zap.String("game_id", s.game.ID()),
					zap.Uint64("epoch", r.Epoch),
					zap.Int("black", r.Territories.Black),
					zap.Int("white", r.Territories.White),
				)
			}
		}
	}
}

// Do runs fn on the session goroutine and waits for it to finish.
func (s *Session) Do(ctx context.Context, fn func(*game.Game)) error {
	o := op{fn: fn, done: make(chan struct{})}
	select {
	case s.ops <- o:
	case <-s.stopped:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	<-o.done
	return nil
}
