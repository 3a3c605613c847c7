package sink

import (
	"strings"

	"github.com/herohde/ccmatch/pkg/rules"
)

// Notation selects how a move is rendered in a PGN move list.
type Notation int

const (
	SAN Notation = iota
	LAN
	UCI
)

// RenderMove formats m, played by turn from before, in the given notation.
// before is the position prior to the move; after is the position once
// applied, used to detect check/checkmate for SAN's +/# suffix.
func RenderMove(before *rules.Position, turn rules.Color, m rules.Move, after *rules.Position, notation Notation) string {
	switch notation {
	case UCI:
		return m.String()
	case LAN:
		return renderLAN(before, m)
	default:
		return renderSAN(before, turn, m, after)
	}
}

func renderLAN(before *rules.Position, m rules.Move) string {
	switch m.Type {
	case rules.KingSideCastle:
		return "O-O"
	case rules.QueenSideCastle:
		return "O-O-O"
	}

	_, piece, _ := before.Square(m.From)

	var sb strings.Builder
	if piece != rules.Pawn {
		sb.WriteString(strings.ToUpper(piece.String()))
	}
	sb.WriteString(m.From.String())
	if m.Capture.IsValid() {
		sb.WriteString("x")
	} else {
		sb.WriteString("-")
	}
	sb.WriteString(m.To.String())
	if m.Promotion.IsValid() {
		sb.WriteString("=")
		sb.WriteString(strings.ToUpper(m.Promotion.String()))
	}
	return sb.String()
}

func renderSAN(before *rules.Position, turn rules.Color, m rules.Move, after *rules.Position) string {
	var sb strings.Builder

	switch m.Type {
	case rules.KingSideCastle:
		sb.WriteString("O-O")
	case rules.QueenSideCastle:
		sb.WriteString("O-O-O")
	default:
		_, piece, _ := before.Square(m.From)
		capture := m.Capture.IsValid()

		if piece == rules.Pawn {
			if capture {
				sb.WriteString(m.From.String()[:1])
				sb.WriteString("x")
			}
			sb.WriteString(m.To.String())
			if m.Promotion.IsValid() {
				sb.WriteString("=")
				sb.WriteString(strings.ToUpper(m.Promotion.String()))
			}
		} else {
			sb.WriteString(strings.ToUpper(piece.String()))
			sb.WriteString(disambiguate(before, turn, piece, m))
			if capture {
				sb.WriteString("x")
			}
			sb.WriteString(m.To.String())
		}
	}

	if after.IsChecked(turn.Opponent()) {
		if len(after.LegalMoves(turn.Opponent())) == 0 {
			sb.WriteString("#")
		} else {
			sb.WriteString("+")
		}
	}
	return sb.String()
}

// disambiguate returns the minimal file/rank/square qualifier needed to
// distinguish m.From from any other same-piece move to the same target square.
func disambiguate(before *rules.Position, turn rules.Color, piece rules.Piece, m rules.Move) string {
	var sameFile, sameRank, ambiguous bool

	for _, cand := range before.LegalMoves(turn) {
		if cand.To != m.To || cand.From == m.From {
			continue
		}
		if _, p, _ := before.Square(cand.From); p != piece {
			continue
		}
		ambiguous = true
		if cand.From.File() == m.From.File() {
			sameFile = true
		}
		if cand.From.Rank() == m.From.Rank() {
			sameRank = true
		}
	}

	if !ambiguous {
		return ""
	}
	from := m.From.String()
	switch {
	case !sameFile:
		return from[:1]
	case !sameRank:
		return from[1:]
	default:
		return from
	}
}
