package tournament

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/herohde/ccmatch/pkg/engineproc"
	"github.com/herohde/ccmatch/pkg/shutdown"
)

// engineCache keeps engine adapters alive between games, keyed by engine
// display name, per spec.md's engine-cache ownership rule: borrow returns an
// existing idle adapter or spawns one; return either destroys it (when the
// engine's Restart flag is set, or it crashed) or keeps it for reuse.
type engineCache struct {
	cfgs map[string]EngineConfig
	sm   *shutdown.Manager

	mu    sync.Mutex
	idle  map[string][]*engineproc.Adapter
	unreg map[*engineproc.Adapter]func()
}

func newEngineCache(engines []EngineConfig, sm *shutdown.Manager) *engineCache {
	cfgs := make(map[string]EngineConfig, len(engines))
	for _, e := range engines {
		cfgs[e.Name] = e
	}
	return &engineCache{cfgs: cfgs, sm: sm, idle: map[string][]*engineproc.Adapter{}, unreg: map[*engineproc.Adapter]func(){}}
}

// borrow returns an idle adapter for name, or spawns a fresh one.
func (c *engineCache) borrow(ctx context.Context, name string) (*engineproc.Adapter, error) {
	c.mu.Lock()
	if list := c.idle[name]; len(list) > 0 {
		a := list[len(list)-1]
		c.idle[name] = list[:len(list)-1]
		c.mu.Unlock()
		return a, nil
	}
	cfg, ok := c.cfgs[name]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("tournament: unknown engine %q", name)
	}

	a, err := engineproc.Start(ctx, engineproc.Config{
		Name:         cfg.Name,
		Path:         cfg.Path,
		Args:         cfg.Args,
		Dir:          cfg.Dir,
		Options:      cfg.Options,
		InitTimeout:  cfg.InitTimeout,
		ReadyTimeout: cfg.ReadyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("tournament: spawn %v: %w", name, err)
	}
	unregister := c.sm.Register(a)
	c.mu.Lock()
	c.unreg[a] = unregister
	c.mu.Unlock()
	return a, nil
}

// release returns a borrowed adapter to the cache, or destroys it if the
// engine is configured to restart between games or the adapter crashed.
func (c *engineCache) release(name string, a *engineproc.Adapter, restart bool) {
	if restart || a.Crashed() {
		c.quit(a)
		return
	}

	c.mu.Lock()
	c.idle[name] = append(c.idle[name], a)
	c.mu.Unlock()
}

// quit gracefully terminates a and removes it from the shutdown manager's
// kill registry, since it no longer needs a forced KillAll.
func (c *engineCache) quit(a *engineproc.Adapter) {
	c.mu.Lock()
	unregister := c.unreg[a]
	delete(c.unreg, a)
	c.mu.Unlock()

	_ = a.Quit(context.Background(), 2*time.Second)
	if unregister != nil {
		unregister()
	}
}

// closeAll quits every idle adapter, used at shutdown once the pool has drained.
func (c *engineCache) closeAll() {
	c.mu.Lock()
	idle := c.idle
	c.idle = map[string][]*engineproc.Adapter{}
	c.mu.Unlock()

	for _, list := range idle {
		for _, a := range list {
			c.quit(a)
		}
	}
}
