package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestFinalFENReplaysMoves(t *testing.T) {
	m := Match{
		StartFEN: startFEN,
		Moves: []MoveData{
			{UCI: "e2e4"},
			{UCI: "e7e5"},
		},
	}
	got := FinalFEN(m)
	assert.Contains(t, got, "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR")
}

func TestFinalFENStopsAtFirstUnparsableMove(t *testing.T) {
	m := Match{
		StartFEN: startFEN,
		Moves: []MoveData{
			{UCI: "e2e4"},
			{UCI: "not-a-move"},
			{UCI: "e7e5"}, // never reached
		},
	}
	// Falls back to the position right after the last successfully applied move.
	got := FinalFEN(m)
	assert.Contains(t, got, "4P3")
	assert.NotContains(t, got, "4p3")
}

func TestFinalFENReturnsStartFENOnBadInput(t *testing.T) {
	m := Match{StartFEN: "not a fen"}
	assert.Equal(t, "not a fen", FinalFEN(m))
}

func TestMatchDurationAndPlyCount(t *testing.T) {
	m := Match{Moves: []MoveData{{UCI: "e2e4"}, {UCI: "e7e5"}, {UCI: "g1f3"}}}
	assert.Equal(t, 3, m.PlyCount())
}

func TestTerminationStrings(t *testing.T) {
	assert.Equal(t, "normal", Normal.String())
	assert.Equal(t, "time forfeit", Timeout.String())
	assert.Equal(t, "unterminated", Interrupt.String())
}
