package adjudicate_test

import (
	"testing"

	"github.com/herohde/ccmatch/pkg/adjudicate"
	"github.com/herohde/ccmatch/pkg/protocol/uci"
	"github.com/herohde/ccmatch/pkg/rules"
	"github.com/stretchr/testify/assert"
)

func TestDrawTracker(t *testing.T) {
	d := adjudicate.NewDrawTracker(adjudicate.DrawConfig{MoveNumber: 40, MoveCount: 2, Score: 10})

	for i := 0; i < 4; i++ {
		d.Update(uci.Score{Type: uci.Centipawns, Value: 5}, 1)
	}
	assert.True(t, d.Adjudicatable(40))
	assert.False(t, d.Adjudicatable(39))
}

func TestDrawTrackerResetsOnNoProgressBreak(t *testing.T) {
	d := adjudicate.NewDrawTracker(adjudicate.DrawConfig{MoveNumber: 0, MoveCount: 1, Score: 10})

	d.Update(uci.Score{Type: uci.Centipawns, Value: 5}, 1)
	d.Update(uci.Score{Type: uci.Centipawns, Value: 5}, 0) // capture resets the streak
	assert.False(t, d.Adjudicatable(10))
}

func TestResignTrackerTwoSided(t *testing.T) {
	r := adjudicate.NewResignTracker(adjudicate.ResignConfig{Score: 700, MoveCount: 2, TwoSided: true})

	for i := 0; i < 4; i++ {
		r.Update(uci.Score{Type: uci.Centipawns, Value: 800}, rules.White)
	}
	assert.True(t, r.Resignable())
}

func TestResignTrackerOneSided(t *testing.T) {
	r := adjudicate.NewResignTracker(adjudicate.ResignConfig{Score: 700, MoveCount: 2})

	r.Update(uci.Score{Type: uci.Centipawns, Value: -800}, rules.Black)
	r.Update(uci.Score{Type: uci.Centipawns, Value: -800}, rules.Black)
	assert.True(t, r.Resignable())

	r.Invalidate(rules.Black)
	assert.False(t, r.Resignable())
}

func TestMaxMoveTracker(t *testing.T) {
	m := adjudicate.NewMaxMoveTracker(200)
	assert.False(t, m.Adjudicatable(199))
	assert.True(t, m.Adjudicatable(200))
}
