package timecontrol_test

import (
	"testing"
	"time"

	"github.com/herohde/ccmatch/pkg/timecontrol"
	"github.com/stretchr/testify/assert"
)

func TestUpdateDeductsElapsedAndAddsIncrement(t *testing.T) {
	c := timecontrol.NewClock(timecontrol.Limit{Time: 10 * time.Second, Increment: time.Second}, 0)

	lost := c.Update(2 * time.Second)
	assert.False(t, lost)
	assert.Equal(t, 9*time.Second, c.Remaining())
}

func TestUpdateTimeLoss(t *testing.T) {
	c := timecontrol.NewClock(timecontrol.Limit{Time: time.Second}, 100*time.Millisecond)

	lost := c.Update(2 * time.Second)
	assert.True(t, lost)
	assert.Equal(t, time.Duration(0), c.Remaining())
}

func TestUpdateWithinMarginIsNotLoss(t *testing.T) {
	c := timecontrol.NewClock(timecontrol.Limit{Time: time.Second}, 500*time.Millisecond)

	lost := c.Update(1200 * time.Millisecond)
	assert.False(t, lost)
	assert.Equal(t, time.Duration(0), c.Remaining())
}

func TestMovesToGoRefill(t *testing.T) {
	c := timecontrol.NewClock(timecontrol.Limit{Time: 5 * time.Second, MovesToGo: 1}, 0)

	c.Update(time.Second)
	assert.Equal(t, 5*time.Second+4*time.Second, c.Remaining())
	assert.Equal(t, 1, c.MovesToGo())
}

func TestFixedMoveTime(t *testing.T) {
	c := timecontrol.NewClock(timecontrol.Limit{FixedMove: 500 * time.Millisecond}, 0)

	assert.False(t, c.Update(400*time.Millisecond))
	assert.Equal(t, 500*time.Millisecond, c.Remaining())
	assert.True(t, c.Update(600*time.Millisecond))
}
