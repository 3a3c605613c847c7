package uci_test

import (
	"testing"

	"github.com/herohde/ccmatch/pkg/protocol/uci"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosition(t *testing.T) {
	assert.Equal(t, "position startpos", uci.Position("", nil))
	assert.Equal(t, "position startpos moves e2e4 e7e5", uci.Position("startpos", []string{"e2e4", "e7e5"}))
	assert.Equal(t, "position fen 8/8/8/8/8/8/8/8 w - - 0 1", uci.Position("8/8/8/8/8/8/8/8 w - - 0 1", nil))
}

func TestGo(t *testing.T) {
	assert.Equal(t, "go wtime 1000 btime 2000 winc 100 binc 200 movestogo 40",
		uci.Go(uci.GoLimit{WTime: 1000, BTime: 2000, WInc: 100, BInc: 200, MovesToGo: 40}))
	assert.Equal(t, "go movetime 500", uci.Go(uci.GoLimit{MoveTime: 500, WTime: 1000}))
	assert.Equal(t, "go infinite", uci.Go(uci.GoLimit{Infinite: true}))
}

func TestParseBestMove(t *testing.T) {
	bm, err := uci.ParseBestMove("bestmove e2e4 ponder e7e5")
	require.NoError(t, err)
	assert.Equal(t, uci.BestMove{Move: "e2e4", Ponder: "e7e5"}, bm)

	bm, err = uci.ParseBestMove("bestmove (none)")
	require.NoError(t, err)
	assert.Equal(t, "(none)", bm.Move)

	_, err = uci.ParseBestMove("info depth 1")
	assert.Error(t, err)
}

func TestParseInfo(t *testing.T) {
	info, err := uci.ParseInfo("info depth 12 seldepth 18 nodes 123456 nps 900000 score cp 34 pv e2e4 e7e5")
	require.NoError(t, err)
	assert.Equal(t, 12, info.Depth)
	assert.Equal(t, 18, info.SelDepth)
	assert.Equal(t, int64(123456), info.Nodes)
	assert.True(t, info.HasScore)
	assert.Equal(t, uci.Centipawns, info.Score.Type)
	assert.Equal(t, 34, info.Score.Value)
	assert.Equal(t, []string{"e2e4", "e7e5"}, info.PV)
}

func TestParseInfoMateScore(t *testing.T) {
	info, err := uci.ParseInfo("info depth 5 score mate -3")
	require.NoError(t, err)
	assert.Equal(t, uci.Mate, info.Score.Type)
	assert.Equal(t, -3, info.Score.Value)
}

func TestParseOption(t *testing.T) {
	opt, ok := uci.ParseOption("option name Hash type spin default 16 min 1 max 33554432")
	require.True(t, ok)
	assert.Equal(t, "Hash", opt.Name)
	assert.Equal(t, "spin", opt.Type)
	assert.Equal(t, "16", opt.Default)
}

func TestIDLines(t *testing.T) {
	name, ok := uci.IDName("id name Stockfish 16")
	require.True(t, ok)
	assert.Equal(t, "Stockfish 16", name)

	_, ok = uci.IDName("id author Foo")
	assert.False(t, ok)
}
