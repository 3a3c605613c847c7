package rules_test

import (
	"testing"

	"github.com/herohde/ccmatch/pkg/rules"
	"github.com/herohde/ccmatch/pkg/rules/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInitialBoard(t *testing.T) *rules.Board {
	t.Helper()
	pos, turn, np, fm, err := fen.Decode(fen.Initial)
	require.NoError(t, err)
	return rules.NewBoard(rules.NewZobristTable(1), pos, turn, np, fm)
}

func push(t *testing.T, b *rules.Board, uci string) {
	t.Helper()
	m, err := rules.ParseMove(uci)
	require.NoError(t, err)

	turn := b.Turn()
	for _, legal := range b.Position().LegalMoves(turn) {
		if legal.Equals(m) {
			require.True(t, b.PushMove(legal))
			return
		}
	}
	t.Fatalf("move %v not legal in position %v", uci, b.Position())
}

func TestFoolsMate(t *testing.T) {
	b := newInitialBoard(t)

	push(t, b, "f2f3")
	push(t, b, "e7e5")
	push(t, b, "g2g4")
	push(t, b, "d8h4")

	assert.Empty(t, b.Position().LegalMoves(b.Turn()))

	result := b.AdjudicateNoLegalMoves()
	assert.Equal(t, rules.Checkmate, result.Reason)
	assert.Equal(t, rules.BlackWins, result.Outcome)
}

func TestInsufficientMaterialDraw(t *testing.T) {
	pos, err := rules.NewPosition([]rules.Placement{
		{Square: rules.E1, Color: rules.White, Piece: rules.King},
		{Square: rules.E8, Color: rules.Black, Piece: rules.King},
	}, 0, 0)
	require.NoError(t, err)
	assert.True(t, pos.HasInsufficientMaterial())
}
