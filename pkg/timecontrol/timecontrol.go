// Package timecontrol implements per-side chess clock arithmetic for the
// tournament runner: decrementing a side's remaining time by observed search
// latency, refilling on movestogo boundaries, and declaring time losses.
package timecontrol

import (
	"fmt"
	"time"
)

// Limit describes one side's time control, mirroring the UCI wtime/btime/
// winc/binc/movestogo vocabulary. A MovesToGo of zero means "rest of game".
// A non-zero FixedMove makes Limit a fixed-time-per-move control and all
// other fields are ignored.
type Limit struct {
	Time      time.Duration
	Increment time.Duration
	MovesToGo int
	FixedMove time.Duration
}

// Clock tracks one side's remaining time through a game.
type Clock struct {
	limit     Limit
	remaining time.Duration
	movesLeft int

	// TimeMargin is additional slack, beyond the measured remaining time, before
	// a move is declared a time loss -- absorbs engine/OS scheduling jitter.
	TimeMargin time.Duration
}

// NewClock creates a clock initialized to the limit's starting time (or the fixed
// move time, repeated every move).
func NewClock(limit Limit, margin time.Duration) *Clock {
	remaining := limit.Time
	if limit.FixedMove > 0 {
		remaining = limit.FixedMove
	}
	return &Clock{
		limit:      limit,
		remaining:  remaining,
		movesLeft:  limit.MovesToGo,
		TimeMargin: margin,
	}
}

// Remaining returns the time left on the clock, as would be reported to the
// engine as wtime/btime.
func (c *Clock) Remaining() time.Duration {
	return c.remaining
}

// MovesToGo returns the moves left until the next time control boundary, or
// zero if the control is "rest of game" or fixed-time-per-move.
func (c *Clock) MovesToGo() int {
	return c.movesLeft
}

// Deadline returns the point beyond which a move is considered a time loss:
// the remaining time, plus TimeMargin, plus a fixed 100ms allowance for
// measurement and communication overhead.
func (c *Clock) Deadline() time.Duration {
	return c.remaining + c.TimeMargin + 100*time.Millisecond
}

// Update deducts elapsed (the measured wall time the engine took to move), applies
// the increment and any movestogo refill, and reports whether the side lost on time.
// It mirrors the reference time-control update semantics: a time loss is declared
// only once the overdraft exceeds TimeMargin, after which the clock is clamped to
// zero before the increment (if any) is added.
func (c *Clock) Update(elapsed time.Duration) (lost bool) {
	if c.limit.FixedMove > 0 {
		c.remaining = c.limit.FixedMove
		return elapsed > c.limit.FixedMove+c.TimeMargin
	}

	c.remaining -= elapsed

	if c.movesLeft > 0 {
		c.movesLeft--
		if c.movesLeft == 0 {
			c.remaining += c.limit.Time
			c.movesLeft = c.limit.MovesToGo
		}
	}

	if c.remaining < -c.TimeMargin {
		c.remaining = 0
		return true
	}
	if c.remaining < 0 {
		c.remaining = 0
	}

	c.remaining += c.limit.Increment
	return false
}

func (l Limit) String() string {
	if l.FixedMove > 0 {
		return fmt.Sprintf("movetime=%v", l.FixedMove)
	}
	if l.MovesToGo > 0 {
		return fmt.Sprintf("%v+%v/%v moves", l.Time, l.Increment, l.MovesToGo)
	}
	return fmt.Sprintf("%v+%v", l.Time, l.Increment)
}
