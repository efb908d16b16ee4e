// Package gtp drives an external Go engine over the Go Text Protocol:
// newline-terminated commands on stdin, responses on stdout that start with
// '=' or '?' and end with a blank line.
package gtp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapio"
)

// DefaultQuitTimeout is how long Close waits for the engine to exit after
// quit before killing it.
const DefaultQuitTimeout = 3 * time.Second

// ErrQuitTimeout is returned by Close when the engine had to be killed.
var ErrQuitTimeout = errors.New("engine did not exit after quit")

// Engine is a running GTP engine process. Its stderr is logged line by line
// at debug level; stdout is left to the caller.
type Engine struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr *zapio.Writer
	quit   time.Duration

	mu     sync.Mutex
	closed bool
}

// Start launches the engine at path from its own directory, so engines that
// look for their model next to the binary find it.
func Start(ctx context.Context, opts Options, path string, args ...string) (*Engine, error) {
	if path == "" {
		return nil, errors.New("engine path is required")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	quit := opts.QuitTimeout
	if quit <= 0 {
		quit = DefaultQuitTimeout
	}
	stderr := &zapio.Writer{Log: log.With(zap.String("stream", "stderr")), Level: zapcore.DebugLevel}
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = filepath.Dir(path)
	cmd.Stderr = stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &Engine{cmd: cmd, stdin: stdin, stdout: stdout, stderr: stderr, quit: quit}, nil
}

func (e *Engine) Stdout() io.Reader {
	return e.stdout
}

// Send writes one command line. Lines are newline-terminated as GTP
// requires.
func (e *Engine) Send(line string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	_, err := io.WriteString(e.stdin, line)
	return err
}

// Close sends quit, closes stdin and waits for the process to exit. An
// engine still running after the quit timeout is killed and Close returns
// ErrQuitTimeout.
func (e *Engine) Close() error {
	if err := e.Send("quit"); errors.Is(err, ErrClosed) {
		return nil
	}
	e.mu.Lock()
	e.closed = true
	_ = e.stdin.Close()
	e.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- e.cmd.Wait() }()
	var err error
	select {
	case err = <-done:
	case <-time.After(e.quit):
		_ = e.cmd.Process.Kill()
		<-done
		err = fmt.Errorf("%w within %s", ErrQuitTimeout, e.quit)
	}
	_ = e.stderr.Close()
	return err
}
