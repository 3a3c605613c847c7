//go:build linux

package affinity

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Apply pins the calling OS thread to the Core's CPU set via sched_setaffinity.
// Callers must invoke this from the goroutine that will run the engine
// subprocess's worker loop, after calling runtime.LockOSThread.
func (c *Core) Apply() error {
	if len(c.CPUs) == 0 {
		return nil
	}

	var set unix.CPUSet
	set.Zero()
	for _, cpu := range c.CPUs {
		set.Set(cpu)
	}
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("affinity: sched_setaffinity(%v): %w", c.CPUs, err)
	}
	return nil
}
