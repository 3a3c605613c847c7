// Package pool implements the fixed-size worker pool that drives matches
// concurrently: the scheduler feeds pairings in, a bounded number of workers
// pull and run them, and the main goroutine blocks until the pool drains.
package pool

import (
	"context"
	"sync"

	"github.com/herohde/ccmatch/pkg/affinity"
	"github.com/seekerror/logw"
	"go.uber.org/atomic"
)

// Task is one unit of work a worker executes, e.g. a single match. A Task
// receives the Core its worker consumed from the affinity manager so it can
// pin its engine subprocesses, if affinity is enabled.
type Task func(ctx context.Context, core *affinity.Core) error

// Handle lets the owner halt a task that is running, or about to run, in the pool.
type Handle interface {
	// Halt requests cancellation of this task's context. Idempotent.
	Halt()
}

// Pool runs Tasks with bounded concurrency and per-worker CPU affinity.
type Pool struct {
	concurrency int
	affinity    *affinity.Manager

	tasks chan queuedTask
	wg    sync.WaitGroup

	stopped atomic.Bool
}

type queuedTask struct {
	ctx  context.Context
	fn   Task
	done chan error
}

// New starts a pool with the given concurrency, backed by an affinity manager
// (pass affinity.NewManager(false, ...) to disable pinning).
func New(ctx context.Context, concurrency int, mgr *affinity.Manager) *Pool {
	p := &Pool{
		concurrency: concurrency,
		affinity:    mgr,
		tasks:       make(chan queuedTask),
	}

	for i := 0; i < concurrency; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	return p
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for t := range p.tasks {
		if p.stopped.Load() {
			t.done <- context.Canceled
			continue
		}

		core, err := p.affinity.Consume()
		if err != nil {
			logw.Errorf(t.ctx, "pool worker %v: affinity: %v", id, err)
			t.done <- err
			continue
		}

		err = t.fn(t.ctx, core)
		core.Release()
		t.done <- err
	}
}

// Submit enqueues a task and blocks until a worker picks it up and finishes it,
// or ctx is canceled first. Submit is safe to call from multiple goroutines,
// but the pool itself dispatches to exactly one worker at a time per Task.
func (p *Pool) Submit(ctx context.Context, fn Task) error {
	done := make(chan error, 1)
	select {
	case p.tasks <- queuedTask{ctx: ctx, fn: fn, done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop prevents any further queued task from running (already-dispatched tasks
// still complete) and closes the pool once all workers have drained.
func (p *Pool) Stop() {
	p.stopped.Store(true)
	close(p.tasks)
	p.wg.Wait()
}
