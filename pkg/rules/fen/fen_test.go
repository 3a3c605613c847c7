package fen_test

import (
	"testing"

	"github.com/herohde/ccmatch/pkg/rules"
	"github.com/herohde/ccmatch/pkg/rules/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEncodeRoundtrip(t *testing.T) {
	tests := []string{
		fen.Initial,
		"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
		"8/8/8/4k3/8/8/4K3/8 w - - 0 1",
	}

	for _, f := range tests {
		pos, turn, halfmove, fullmove, err := fen.Decode(f)
		require.NoError(t, err)

		got := fen.Encode(pos, turn, halfmove, fullmove)
		assert.Equal(t, f, got)
	}
}

func TestDecodeInvalid(t *testing.T) {
	_, _, _, _, err := fen.Decode("not a fen")
	assert.Error(t, err)
}

func TestPseudoLegalMovesFromInitial(t *testing.T) {
	pos, turn, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	moves := pos.PseudoLegalMoves(turn)
	assert.Equal(t, turn, rules.White)
	assert.Equal(t, 20, len(moves))
}
