package sink_test

import (
	"strings"
	"testing"
	"time"

	"github.com/herohde/ccmatch/pkg/match"
	"github.com/herohde/ccmatch/pkg/rules"
	"github.com/herohde/ccmatch/pkg/rules/fen"
	"github.com/herohde/ccmatch/pkg/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func foolsMateMatch(t *testing.T) match.Match {
	t.Helper()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	return match.Match{
		StartFEN:    fen.Initial,
		Start:       start,
		End:         start.Add(2 * time.Second),
		Termination: match.Normal,
		Reason:      "checkmate",
		White:       match.PlayerInfo{Name: "engineA", Color: rules.White, Outcome: match.Loss},
		Black:       match.PlayerInfo{Name: "engineB", Color: rules.Black, Outcome: match.Win},
		Moves: []match.MoveData{
			{UCI: "f2f3", Legal: true},
			{UCI: "e7e5", Legal: true},
			{UCI: "g2g4", Legal: true},
			{UCI: "d8h4", Legal: true},
		},
	}
}

func TestRenderPGNFoolsMate(t *testing.T) {
	m := foolsMateMatch(t)
	pgn := sink.RenderPGN(m, 1, sink.PGNConfig{Event: "ccmatch test", Notation: sink.SAN})

	require.Contains(t, pgn, `[Result "0-1"]`)
	require.Contains(t, pgn, `[White "engineA"]`)
	require.Contains(t, pgn, `[Black "engineB"]`)
	assert.Contains(t, pgn, "1. f3 e5 2. g4 Qh4# 0-1")
}

func TestRenderPGNNonStandardStart(t *testing.T) {
	m := foolsMateMatch(t)
	m.StartFEN = "8/8/8/8/8/8/8/4K2k w - - 0 1"
	m.Moves = nil
	m.White.Outcome, m.Black.Outcome = match.DrawResult, match.DrawResult
	m.Termination = match.Adjudication

	pgn := sink.RenderPGN(m, 1, sink.PGNConfig{})
	assert.Contains(t, pgn, `[SetUp "1"]`)
	assert.Contains(t, pgn, `[FEN "8/8/8/8/8/8/8/4K2k w - - 0 1"]`)
	assert.Contains(t, pgn, `[Result "1/2-1/2"]`)
}

func TestRenderEPD(t *testing.T) {
	m := foolsMateMatch(t)
	epd := sink.RenderEPD(m)
	assert.True(t, strings.HasPrefix(epd, "rnb1kbnr/pppp1ppp/"), epd)
	assert.Contains(t, epd, "hmvc 1;")
	assert.Contains(t, epd, "fmvn 3;")
}
