package gtp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout is how long the dispatcher waits for a response before it
// writes the next command anyway.
const DefaultTimeout = 100 * time.Millisecond

var (
	ErrClosed        = errors.New("engine is closed")
	ErrCommandFailed = errors.New("engine rejected command")
	ErrMalformed     = errors.New("malformed engine output")
)

type Options struct {
	// Timeout is the liveness delay between writes. A slower command keeps
	// waiting for its response; only the next write is released.
	Timeout time.Duration
	// QuitTimeout bounds the quit handshake on Close.
	QuitTimeout time.Duration
	Logger      *zap.Logger
}

type result struct {
	resp Response
	err  error
}

type call struct {
	ctx   context.Context
	line  string
	reply chan result
}

// Session serializes commands to one engine. Commands are written in
// submission order, the next one as soon as the previous is answered or the
// liveness timeout passes, and every response goes to the oldest command
// still waiting for one. How long a caller waits is bounded by its context.
type Session struct {
	send    func(string) error
	closer  io.Closer
	log     *zap.Logger
	timeout time.Duration

	queue     chan *call
	responses chan Response
	done      chan struct{}
	closeOnce sync.Once
	alive     atomic.Bool
}

// StartSession launches the engine at path and starts the dispatcher.
func StartSession(ctx context.Context, opts Options, path string, args ...string) (*Session, error) {
	engine, err := Start(ctx, opts, path, args...)
	if err != nil {
		return nil, err
	}
	return newSession(engine.Send, engine.Stdout(), engine, opts), nil
}

// NewSession runs the protocol over an existing connection: commands are
// written to w and responses read from r. closer, if non-nil, is closed by
// Close.
func NewSession(w io.Writer, r io.Reader, closer io.Closer, opts Options) *Session {
	var mu sync.Mutex
	send := func(line string) error {
		mu.Lock()
		defer mu.Unlock()
		_, err := io.WriteString(w, line+"\n")
		return err
	}
	return newSession(send, r, closer, opts)
}

func newSession(send func(string) error, r io.Reader, closer io.Closer, opts Options) *Session {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &Session{
		send:      send,
		closer:    closer,
		log:       opts.Logger,
		timeout:   opts.Timeout,
		queue:     make(chan *call),
		responses: make(chan Response, 16),
		done:      make(chan struct{}),
	}
	s.alive.Store(true)
	go s.read(NewReader(r))
	go s.dispatch()
	return s
}

// Alive reports whether the engine is still producing output and the
// session has not been closed.
func (s *Session) Alive() bool {
	return s.alive.Load()
}

func (s *Session) read(r *Reader) {
	defer close(s.responses)
	defer s.alive.Store(false)
	for {
		resp, err := r.Next()
		if errors.Is(err, ErrMalformed) {
			s.log.Debug("skipping engine output", zap.Error(err))
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Warn("engine output ended", zap.Error(err))
			}
			return
		}
		select {
		case s.responses <- resp:
		case <-s.done:
			return
		}
	}
}

// dispatch owns the list of written commands still waiting for a response.
// Between a write and its response or liveness timeout no new call is taken.
func (s *Session) dispatch() {
	responses := s.responses
	var (
		pending []*call
		wait    <-chan time.Time
		eof     bool
	)
	fail := func(err error) {
		for _, c := range pending {
			c.reply <- result{err: err}
		}
		pending = nil
	}
	for {
		queue := s.queue
		if wait != nil {
			queue = nil
		}
		select {
		case c := <-queue:
			if eof {
				c.reply <- result{err: ErrClosed}
				continue
			}
			if err := c.ctx.Err(); err != nil {
				c.reply <- result{err: err}
				continue
			}
			if err := s.send(c.line); err != nil {
				c.reply <- result{err: fmt.Errorf("send %q: %w", c.line, err)}
				continue
			}
			s.log.Debug("engine command", zap.String("command", c.line))
			pending = append(pending, c)
			wait = time.After(s.timeout)
		case resp, ok := <-responses:
			if !ok {
				fail(ErrClosed)
				responses = nil
				wait = nil
				eof = true
				continue
			}
			if len(pending) == 0 {
				s.log.Debug("unsolicited engine response", zap.String("text", resp.Text))
				continue
			}
			pending[0].reply <- result{resp: resp}
			pending = pending[1:]
			if len(pending) == 0 {
				wait = nil
			}
		case <-wait:
			s.log.Debug("engine slow to answer, releasing next command",
				zap.String("command", pending[len(pending)-1].line),
				zap.Duration("timeout", s.timeout),
				zap.Int("pending", len(pending)),
			)
			wait = nil
		case <-s.done:
			fail(ErrClosed)
			return
		}
	}
}

// Command queues line and waits for its response. A '?' response is
// returned together with an error wrapping ErrCommandFailed.
func (s *Session) Command(ctx context.Context, line string) (Response, error) {
	c := &call{ctx: ctx, line: line, reply: make(chan result, 1)}
	select {
	case s.queue <- c:
	case <-ctx.Done():
		return Response{}, ctx.Err()
	case <-s.done:
		return Response{}, ErrClosed
	}
	select {
	case r := <-c.reply:
		if r.err != nil {
			return Response{}, r.err
		}
		if !r.resp.OK {
			return r.resp, fmt.Errorf("%w: %s: %s", ErrCommandFailed, line, r.resp.Text)
		}
		return r.resp, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// Close stops the dispatcher and shuts the engine down.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.alive.Store(false)
		if s.closer != nil {
			err = s.closer.Close()
		}
	})
	return err
}
