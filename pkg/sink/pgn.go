// Package sink implements the tournament runner's output collaborators: PGN
// and EPD game archival, the mutex-protected CRC32 append-only file writer
// both are serialized through, and the human-readable progress reporters
// (cutechess-compat and native) printed during a run.
package sink

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/herohde/ccmatch/pkg/match"
	"github.com/herohde/ccmatch/pkg/rules"
	"github.com/herohde/ccmatch/pkg/rules/fen"
)

const pgnTimestampLayout = "2006.01.02 15:04:05"

// PGNConfig controls cosmetic aspects of RenderPGN shared across an entire
// tournament run, as opposed to per-game values like the round number.
type PGNConfig struct {
	Event, Site string
	Notation    Notation
	Annotate    bool // include {eval/depth time} comments after each move
}

// RenderPGN serializes a finished Match into a single PGN game, including the
// Seven Tag Roster plus the extended tags spec.md calls for. Matches with
// Termination == Interrupt are still renderable (Result "*"); callers that
// want to skip unterminated games filter before calling RenderPGN.
func RenderPGN(m match.Match, round int, cfg PGNConfig) string {
	var sb strings.Builder

	result := pgnResult(m)
	nonStandard := m.StartFEN != fen.Initial

	writeTag(&sb, "Event", orDefault(cfg.Event, "?"))
	writeTag(&sb, "Site", orDefault(cfg.Site, "?"))
	writeTag(&sb, "Date", m.Start.Format("2006.01.02"))
	writeTag(&sb, "Round", strconv.Itoa(round))
	writeTag(&sb, "White", orDefault(m.White.Name, "?"))
	writeTag(&sb, "Black", orDefault(m.Black.Name, "?"))
	writeTag(&sb, "Result", result)

	if nonStandard {
		writeTag(&sb, "SetUp", "1")
		writeTag(&sb, "FEN", m.StartFEN)
	}
	if m.Chess960 {
		writeTag(&sb, "Variant", "Chess960")
	}

	writeTag(&sb, "PlyCount", strconv.Itoa(m.PlyCount()))
	writeTag(&sb, "GameStartTime", m.Start.UTC().Format(pgnTimestampLayout))
	writeTag(&sb, "GameEndTime", m.End.UTC().Format(pgnTimestampLayout))
	writeTag(&sb, "GameDuration", formatDuration(m.Duration()))
	writeTag(&sb, "Termination", m.Termination.String())

	sb.WriteString("\n")
	sb.WriteString(renderMoveText(m, cfg))
	sb.WriteString(" ")
	sb.WriteString(result)
	sb.WriteString("\n")

	return sb.String()
}

func writeTag(sb *strings.Builder, name, value string) {
	fmt.Fprintf(sb, "[%v %q]\n", name, value)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.3fs", d.Seconds())
}

func pgnResult(m match.Match) string {
	switch {
	case m.White.Outcome == match.Win:
		return "1-0"
	case m.Black.Outcome == match.Win:
		return "0-1"
	case m.White.Outcome == match.DrawResult:
		return "1/2-1/2"
	default:
		return "*"
	}
}

// renderMoveText replays the game to get before/after positions for SAN/check
// annotation, falling back to bare UCI for any move it cannot replay (which
// should not happen for a well-formed Match).
func renderMoveText(m match.Match, cfg PGNConfig) string {
	pos, turn, _, fullmove, err := fen.Decode(m.StartFEN)
	if err != nil {
		return renderMoveTextFallback(m)
	}

	var sb strings.Builder
	for i, md := range m.Moves {
		if turn == rules.White {
			if i > 0 {
				sb.WriteString(" ")
			}
			fmt.Fprintf(&sb, "%d.", fullmove)
		} else if i == 0 {
			fmt.Fprintf(&sb, "%d...", fullmove)
		}
		sb.WriteString(" ")

		parsed, perr := rules.ParseMove(md.UCI)
		if perr != nil {
			sb.WriteString(md.UCI)
			break
		}
		mv, ok := resolveLegalMove(pos, turn, parsed)
		if !ok {
			sb.WriteString(md.UCI)
			break
		}
		after, ok := pos.Move(turn, mv)
		if !ok {
			sb.WriteString(md.UCI)
			break
		}

		sb.WriteString(RenderMove(pos, turn, mv, after, cfg.Notation))
		if cfg.Annotate {
			sb.WriteString(annotation(md))
		}

		pos = after
		if turn == rules.Black {
			fullmove++
		}
		turn = turn.Opponent()
	}
	return sb.String()
}

// resolveLegalMove finds the fully-typed legal move matching parsed's
// From/To/Promotion: ParseMove only recovers those three fields, but
// Position.Move needs Type/Capture to apply captures, jumps, en passant and
// castling correctly.
func resolveLegalMove(pos *rules.Position, turn rules.Color, parsed rules.Move) (rules.Move, bool) {
	for _, cand := range pos.LegalMoves(turn) {
		if cand.Equals(parsed) {
			return cand, true
		}
	}
	return rules.Move{}, false
}

func annotation(md match.MoveData) string {
	var parts []string
	switch md.Score.Kind {
	case match.Centipawn:
		parts = append(parts, fmt.Sprintf("%.2f", float64(md.Score.Value)/100))
	case match.Mate:
		parts = append(parts, fmt.Sprintf("#%d", md.Score.Value))
	}
	if md.Depth > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d", md.Depth, md.SelDepth))
	}
	parts = append(parts, fmt.Sprintf("%.2fs", md.Elapsed.Seconds()))
	return " {" + strings.Join(parts, " ") + "}"
}

// renderMoveTextFallback renders bare UCI moves when the starting FEN cannot be
// replayed, so a malformed Match still produces a readable (if unannotated) game.
func renderMoveTextFallback(m match.Match) string {
	var parts []string
	for _, md := range m.Moves {
		parts = append(parts, md.UCI)
	}
	return strings.Join(parts, " ")
}
