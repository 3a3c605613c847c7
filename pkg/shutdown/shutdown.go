// Package shutdown implements the tournament runner's process-wide stop
// signal: SIGINT/SIGTERM (Ctrl-C, terminal close) flip a stop flag that every
// blocking wait in the system observes, and a mutex-protected registry of
// live engine subprocesses gets force-killed once the pool has drained.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/seekerror/logw"
	"go.uber.org/atomic"
)

// Killable is anything owning a subprocess that must be force-terminated if
// it is still running when the process exits, e.g. *engineproc.Adapter.
type Killable interface {
	Kill() error
}

// Manager owns the process-wide stop flag and the registry of subprocesses
// that must be reaped if still alive when shutdown completes. The zero value
// is not usable; construct with New.
type Manager struct {
	stopped atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	children map[Killable]struct{}

	onClose func()
}

// New installs a signal handler for SIGINT and SIGTERM and returns a Manager
// whose Context is canceled, and whose Stopped flag is set, the first time
// either arrives. Call Close once the tournament has wound down to release
// the signal handler.
func New() *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{ctx: ctx, cancel: cancel, children: map[Killable]struct{}{}}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig, ok := <-sigCh
		if !ok {
			return
		}
		logw.Infof(context.Background(), "shutdown: received %v, stopping", sig)
		m.Stop()
	}()

	m.onClose = func() { signal.Stop(sigCh); close(sigCh) }
	return m
}

// Stop flips the stop flag and cancels Context, if it has not already
// happened. Safe to call from a signal handler goroutine or programmatically
// (e.g. when SPRT concludes or the configured game total is reached). Idempotent.
func (m *Manager) Stop() {
	if m.stopped.CompareAndSwap(false, true) {
		m.cancel()
	}
}

// Stopped reports whether shutdown has been requested.
func (m *Manager) Stopped() bool {
	return m.stopped.Load()
}

// Context is canceled the moment shutdown is requested. Every blocking read
// in the system (engine stdout, pool task dispatch) selects on it alongside
// its own deadline.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Register adds a subprocess handle to the kill registry, returning a func to
// remove it again once the subprocess has exited normally.
func (m *Manager) Register(k Killable) (unregister func()) {
	m.mu.Lock()
	m.children[k] = struct{}{}
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.children, k)
		m.mu.Unlock()
	}
}

// KillAll force-terminates every still-registered subprocess. Called once the
// worker pool has drained after a stop, to reap anything a match driver left
// running (e.g. an engine wedged in a non-cancellable read).
func (m *Manager) KillAll() {
	m.mu.Lock()
	children := make([]Killable, 0, len(m.children))
	for k := range m.children {
		children = append(children, k)
	}
	m.mu.Unlock()

	for _, k := range children {
		if err := k.Kill(); err != nil {
			logw.Errorf(context.Background(), "shutdown: kill: %v", err)
		}
	}
}

// Close releases the signal handler. After Close, a subsequent Ctrl-C is
// handled by the Go runtime's default disposition (process exit).
func (m *Manager) Close() {
	if m.onClose != nil {
		m.onClose()
	}
}
