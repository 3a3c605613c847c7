// Package engineproc adapts an external UCI engine binary, running as a subprocess,
// to the tournament runner's needs: handshake, option configuration, position
// synchronization, and cancellable move search. It owns the subprocess's lifecycle
// but not chess semantics -- callers pass already-validated FEN/move strings.
package engineproc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/herohde/ccmatch/pkg/protocol/uci"
	"github.com/seekerror/logw"
	"go.uber.org/atomic"
)

// Config describes how to launch and configure an engine subprocess.
type Config struct {
	Name string // logical name used in pairings and reports
	Path string // executable path
	Args []string
	Dir  string // working directory, if any

	Options map[string]string // UCI setoption name->value, applied after the handshake

	InitTimeout  time.Duration // max time to wait for uciok
	ReadyTimeout time.Duration // max time to wait for readyok
}

// Adapter drives one engine subprocess through the UCI protocol.
type Adapter struct {
	cfg Config

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	mu      sync.Mutex
	crashed atomic.Bool
	name    string
	author  string
}

// Start spawns the engine process and performs the UCI handshake, including any
// configured setoption calls and a ucinewgame/isready barrier.
func Start(ctx context.Context, cfg Config) (*Adapter, error) {
	cmd := exec.CommandContext(context.Background(), cfg.Path, cfg.Args...) // process outlives per-move contexts
	cmd.Dir = cfg.Dir

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("engineproc: stdin pipe for %v: %w", cfg.Name, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("engineproc: stdout pipe for %v: %w", cfg.Name, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("engineproc: start %v: %w", cfg.Name, err)
	}

	a := &Adapter{
		cfg:    cfg,
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
	}

	if err := a.handshake(ctx); err != nil {
		_ = a.Kill()
		return nil, err
	}
	return a, nil
}

func (a *Adapter) handshake(ctx context.Context) error {
	a.send(ctx, uci.UCI())

	timeout := a.cfg.InitTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	deadline := time.Now().Add(timeout)
	for {
		line, err := a.readLine(ctx, time.Until(deadline))
		if err != nil {
			return fmt.Errorf("engineproc: %v handshake: %w", a.cfg.Name, err)
		}
		if name, ok := uci.IDName(line); ok {
			a.name = name
		}
		if author, ok := uci.IDAuthor(line); ok {
			a.author = author
		}
		if uci.IsUCIOk(line) {
			break
		}
	}

	for name, value := range a.cfg.Options {
		a.send(ctx, uci.SetOption(name, value))
	}

	a.send(ctx, uci.NewGame())
	return a.Synchronize(ctx)
}

// Synchronize sends isready and blocks until readyok, bounding the wait with
// ReadyTimeout (default 10s).
func (a *Adapter) Synchronize(ctx context.Context) error {
	timeout := a.cfg.ReadyTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	a.send(ctx, uci.IsReady())
	deadline := time.Now().Add(timeout)
	for {
		line, err := a.readLine(ctx, time.Until(deadline))
		if err != nil {
			return fmt.Errorf("engineproc: %v isready: %w", a.cfg.Name, err)
		}
		if uci.IsReadyOk(line) {
			return nil
		}
	}
}

// Name returns the engine's advertised id name, or the configured logical name
// if the engine never replied with one.
func (a *Adapter) Name() string {
	if a.name != "" {
		return a.name
	}
	return a.cfg.Name
}

// NewGame signals the start of a new game.
func (a *Adapter) NewGame(ctx context.Context) {
	a.send(ctx, uci.NewGame())
}

// SetPosition sends the current position as startpos/FEN plus the moves played.
func (a *Adapter) SetPosition(ctx context.Context, fen string, moves []string) {
	a.send(ctx, uci.Position(fen, moves))
}

// SearchResult is the outcome of a bounded search: the best move and the last
// parsed info line observed, if any (used for adjudication scoring).
type SearchResult struct {
	BestMove string
	Ponder   string
	LastInfo uci.Info
}

// Search issues "go" with the given limits and blocks until bestmove, a protocol
// timeout, or ctx cancellation -- whichever comes first. A deadline on ctx is the
// caller's responsibility (see pkg/timecontrol); Search itself adds no slack.
func (a *Adapter) Search(ctx context.Context, limit uci.GoLimit) (SearchResult, error) {
	a.send(ctx, uci.Go(limit))

	var result SearchResult
	for {
		line, err := a.readLineCtx(ctx)
		if err != nil {
			a.crashed.Store(true)
			return result, fmt.Errorf("engineproc: %v search: %w", a.cfg.Name, err)
		}

		switch {
		case uci.IsInfo(line):
			if info, err := uci.ParseInfo(line); err == nil {
				result.LastInfo = info
			}
		case uci.IsBestMove(line):
			bm, err := uci.ParseBestMove(line)
			if err != nil {
				return result, fmt.Errorf("engineproc: %v malformed bestmove %q: %w", a.cfg.Name, line, err)
			}
			result.BestMove = bm.Move
			result.Ponder = bm.Ponder
			return result, nil
		}
	}
}

// Crashed reports whether the engine's I/O has failed (EOF, broken pipe, timeout).
func (a *Adapter) Crashed() bool {
	return a.crashed.Load()
}

// Quit asks the engine to exit gracefully, then force-kills it if it does not
// exit within the grace period.
func (a *Adapter) Quit(ctx context.Context, grace time.Duration) error {
	a.send(ctx, uci.Quit())

	done := make(chan error, 1)
	go func() { done <- a.cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-time.After(grace):
		logw.Errorf(ctx, "engineproc: %v did not quit within %v, killing", a.cfg.Name, grace)
		return a.Kill()
	}
}

// Kill forcibly terminates the subprocess.
func (a *Adapter) Kill() error {
	if a.cmd.Process == nil {
		return nil
	}
	return a.cmd.Process.Kill()
}

func (a *Adapter) send(ctx context.Context, line string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	logw.Debugf(ctx, "%v << %v", a.cfg.Name, line)
	_, _ = fmt.Fprintln(a.stdin, line)
}

type lineResult struct {
	line string
	err  error
}

// readLine reads one line with an explicit timeout, used for the handshake where
// the caller already tracks an absolute deadline.
func (a *Adapter) readLine(ctx context.Context, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = time.Millisecond
	}
	ch := a.readLineAsync()
	select {
	case r := <-ch:
		if r.err != nil {
			return "", r.err
		}
		logw.Debugf(ctx, "%v >> %v", a.cfg.Name, r.line)
		return r.line, nil
	case <-time.After(timeout):
		return "", fmt.Errorf("timeout waiting for %v", a.cfg.Name)
	}
}

// readLineCtx reads one line, cancellable via ctx. The underlying blocking read
// cannot itself be interrupted (there is no portable deadline on a pipe read), so
// on cancellation this leaks one goroutine blocked in ReadString until the engine
// writes or the process is killed; callers that cancel should also Kill the adapter.
func (a *Adapter) readLineCtx(ctx context.Context) (string, error) {
	ch := a.readLineAsync()
	select {
	case r := <-ch:
		if r.err != nil {
			return "", r.err
		}
		logw.Debugf(ctx, "%v >> %v", a.cfg.Name, r.line)
		return r.line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (a *Adapter) readLineAsync() <-chan lineResult {
	ch := make(chan lineResult, 1)
	go func() {
		line, err := a.stdout.ReadString('\n')
		ch <- lineResult{strings.TrimSpace(line), err}
	}()
	return ch
}
