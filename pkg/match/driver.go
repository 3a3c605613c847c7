package match

import (
	"context"
	"fmt"
	"time"

	"github.com/herohde/ccmatch/pkg/adjudicate"
	"github.com/herohde/ccmatch/pkg/engineproc"
	"github.com/herohde/ccmatch/pkg/protocol/uci"
	"github.com/herohde/ccmatch/pkg/rules"
	"github.com/herohde/ccmatch/pkg/rules/fen"
	"github.com/herohde/ccmatch/pkg/timecontrol"
)

// Opening is the starting position handed to a game: a FEN plus any forced
// prefix moves (in UCI notation) already played from it.
type Opening struct {
	FEN   string
	Moves []string
}

// Limits is one side's search bound: exactly one of Nodes, Depth, or Clock is
// meaningful, in that precedence, matching the UCI adapter's "go" builder.
type Limits struct {
	Nodes int64
	Depth int
	Clock timecontrol.Limit
}

func (l Limits) isClockBound() bool {
	return l.Nodes <= 0 && l.Depth <= 0
}

// AdjudicationConfig bundles the tournament-wide adjudication thresholds
// applied to every game.
type AdjudicationConfig struct {
	Draw     adjudicate.DrawConfig
	Resign   adjudicate.ResignConfig
	Tb       adjudicate.TbConfig
	TbProbe  adjudicate.TablebaseProbe
	MaxMoves uint32
}

// Player pairs an engine adapter with the side-specific config needed to run
// one game: its display name and search limits.
type Player struct {
	Adapter *engineproc.Adapter
	Name    string
	Limits  Limits
}

// Driver plays exactly one game to completion, producing a Match regardless
// of how it ends.
type Driver struct {
	White, Black Player
	Opening      Opening
	Chess960     bool
	Adjudication AdjudicationConfig

	// Overhead is added to each side's clock deadline, absorbing measurement
	// and scheduling jitter (see pkg/timecontrol).
	Overhead time.Duration

	// Stop is observed before every engine round trip; when closed, the game
	// ends immediately with Termination = Interrupt.
	Stop <-chan struct{}
}

type side struct {
	player Player
	clock  *timecontrol.Clock
	color  rules.Color
}

// Play runs the per-game state machine: init, opening playback, then
// ask-engine/wait-bestmove/apply-move/check-termination until the game ends.
func (d *Driver) Play(ctx context.Context) Match {
	start := time.Now()
	startFEN := openingFENOrStart(d.Opening.FEN)

	pos, turn, noprogress, fullmoves, err := fen.Decode(startFEN)
	if err != nil {
		return Match{Termination: IllegalMove, Reason: fmt.Sprintf("invalid opening FEN: %v", err), Start: start, End: time.Now()}
	}
	board := rules.NewBoard(rules.NewZobristTable(1), pos, turn, noprogress, fullmoves)

	m := Match{
		StartFEN: startFEN,
		Chess960: d.Chess960,
		Start:    start,
		White:    PlayerInfo{Name: d.White.Name, Color: rules.White},
		Black:    PlayerInfo{Name: d.Black.Name, Color: rules.Black},
	}

	white := &side{player: d.White, color: rules.White, clock: timecontrol.NewClock(d.White.Limits.Clock, d.Overhead)}
	black := &side{player: d.Black, color: rules.Black, clock: timecontrol.NewClock(d.Black.Limits.Clock, d.Overhead)}

	// (1) Opening playback: apply forced prefix moves, tagged as book moves.
	for _, uciMove := range d.Opening.Moves {
		mv, perr := rules.ParseMove(uciMove)
		if perr != nil || !board.PushMove(mv) {
			return d.decisive(m, start, Normal, IllegalMove, "opening contains an illegal prefix move", rules.Loss(rules.White))
		}
		m.Moves = append(m.Moves, MoveData{UCI: uciMove, Legal: true, Book: true})
	}

	// (2) New-game handshake for both sides.
	d.White.Adapter.NewGame(ctx)
	d.Black.Adapter.NewGame(ctx)
	if err := d.White.Adapter.Synchronize(ctx); err != nil {
		return d.decisive(m, start, Disconnect, Disconnect, "white failed isready after ucinewgame", rules.Loss(rules.White))
	}
	if err := d.Black.Adapter.Synchronize(ctx); err != nil {
		return d.decisive(m, start, Disconnect, Disconnect, "black failed isready after ucinewgame", rules.Loss(rules.Black))
	}

	drawTracker := adjudicate.NewDrawTracker(d.Adjudication.Draw)
	resignTracker := adjudicate.NewResignTracker(d.Adjudication.Resign)
	tbTracker := adjudicate.NewTbTracker(d.Adjudication.Tb, d.Adjudication.TbProbe)
	maxMoves := adjudicate.NewMaxMoveTracker(d.Adjudication.MaxMoves)

	moveStrs := append([]string{}, d.Opening.Moves...)

	// (3) Main loop.
	for {
		select {
		case <-d.Stop:
			m.Termination = Interrupt
			m.Reason = "interrupted"
			m.End = time.Now()
			return m
		default:
		}

		mover, waiting := white, black
		if board.Turn() == rules.Black {
			mover, waiting = black, white
		}

		mover.player.Adapter.SetPosition(ctx, m.StartFEN, moveStrs)

		limit := buildGoLimit(mover, waiting)
		searchCtx, cancel := d.searchContext(ctx, mover)

		clockStart := time.Now()
		result, serr := mover.player.Adapter.Search(searchCtx, limit)
		elapsed := time.Since(clockStart)
		cancel()

		if serr != nil {
			select {
			case <-d.Stop:
				m.Termination = Interrupt
				m.Reason = "interrupted"
				m.End = time.Now()
				return m
			default:
			}
			if searchCtx.Err() != nil {
				return d.decisive(m, start, Timeout, Timeout, fmt.Sprintf("%v forfeits on time", mover.player.Name), rules.Loss(mover.color))
			}
			return d.decisive(m, start, Disconnect, Disconnect, fmt.Sprintf("%v disconnected: %v", mover.player.Name, serr), rules.Loss(mover.color))
		}

		if mover.player.Limits.isClockBound() {
			if mover.clock.Update(elapsed) {
				return d.decisive(m, start, Timeout, Timeout, fmt.Sprintf("%v forfeits on time", mover.player.Name), rules.Loss(mover.color))
			}
		}

		mv, valid := validateMove(board, mover.color, result.BestMove)

		md := MoveData{
			UCI:      result.BestMove,
			Legal:    valid,
			Elapsed:  elapsed,
			Depth:    result.LastInfo.Depth,
			SelDepth: result.LastInfo.SelDepth,
			Nodes:    uint64(result.LastInfo.Nodes),
			NPS:      uint64(result.LastInfo.NPS),
			HashFull: result.LastInfo.HashFull,
			TBHits:   uint64(result.LastInfo.TBHits),
		}
		if result.LastInfo.HasScore {
			md.Score = translateScore(result.LastInfo.Score)
		}
		m.Moves = append(m.Moves, md)

		if !valid {
			return d.decisive(m, start, IllegalMove, IllegalMove, fmt.Sprintf("%v played illegal move %q", mover.player.Name, result.BestMove), rules.Loss(mover.color))
		}

		board.PushMove(mv)
		moveStrs = append(moveStrs, result.BestMove)

		if result.LastInfo.HasScore {
			drawTracker.Update(result.LastInfo.Score, board.NoProgress())
			resignTracker.Update(result.LastInfo.Score, mover.color)
		}
		plies := uint32(len(m.Moves))

		if tbTracker.Adjudicatable(board.Position(), countPieces(board.Position())) {
			return d.decisive(m, start, Adjudication, Adjudication, "adjudication: tablebases", tbTracker.Adjudicate(board.Position()))
		}
		if resignTracker.Resignable() {
			return d.decisive(m, start, Adjudication, Adjudication, "adjudication: resign", resignOutcome(d.Adjudication.Resign, resignTracker, mover.color))
		}
		if drawTracker.Adjudicatable(plies) {
			return d.decisive(m, start, Adjudication, Adjudication, "adjudication: draw by low score", rules.Draw)
		}
		if maxMoves.Adjudicatable(plies) {
			return d.decisive(m, start, Adjudication, Adjudication, "adjudication: max moves reached", rules.Draw)
		}

		if len(board.Position().LegalMoves(board.Turn())) == 0 {
			result := board.AdjudicateNoLegalMoves()
			return d.decisive(m, start, Normal, Normal, reasonString(result.Reason), result.Outcome)
		}
		if result := board.Result(); result.Reason != rules.None {
			return d.decisive(m, start, Normal, Normal, reasonString(result.Reason), result.Outcome)
		}
	}
}

func validateMove(board *rules.Board, mover rules.Color, bestmove string) (rules.Move, bool) {
	mv, err := rules.ParseMove(bestmove)
	if err != nil {
		return rules.Move{}, false
	}
	for _, cand := range board.Position().LegalMoves(mover) {
		if cand.Equals(mv) {
			return cand, true
		}
	}
	return rules.Move{}, false
}

func openingFENOrStart(f string) string {
	if f == "" {
		return fen.Initial
	}
	return f
}

func buildGoLimit(mover, waiting *side) uci.GoLimit {
	var l uci.GoLimit
	switch {
	case mover.player.Limits.Nodes > 0:
		l.Nodes = mover.player.Limits.Nodes
	case mover.player.Limits.Depth > 0:
		l.Depth = mover.player.Limits.Depth
	case mover.player.Limits.Clock.FixedMove > 0:
		l.MoveTime = int(mover.player.Limits.Clock.FixedMove / time.Millisecond)
	default:
		white, black := mover, waiting
		if mover.color == rules.Black {
			white, black = waiting, mover
		}
		l.WTime = int(white.clock.Remaining() / time.Millisecond)
		l.BTime = int(black.clock.Remaining() / time.Millisecond)
		l.WInc = int(white.player.Limits.Clock.Increment / time.Millisecond)
		l.BInc = int(black.player.Limits.Clock.Increment / time.Millisecond)
		if n := mover.clock.MovesToGo(); n > 0 {
			l.MovesToGo = n
		}
	}
	return l
}

func (d *Driver) searchContext(ctx context.Context, mover *side) (context.Context, context.CancelFunc) {
	if !mover.player.Limits.isClockBound() {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, mover.clock.Deadline())
}

func translateScore(s uci.Score) EngineScore {
	if s.Type == uci.Mate {
		return EngineScore{Kind: Mate, Value: s.Value}
	}
	return EngineScore{Kind: Centipawn, Value: s.Value}
}

func reasonString(r rules.Reason) string {
	switch r {
	case rules.Checkmate:
		return "checkmate"
	case rules.Stalemate:
		return "stalemate"
	case rules.Repetition3:
		return "draw by threefold repetition"
	case rules.Repetition5:
		return "draw by fivefold repetition"
	case rules.NoProgress:
		return "draw by fifty-move rule"
	case rules.InsufficientMaterial:
		return "draw by insufficient material"
	default:
		return "normal"
	}
}

func countPieces(pos *rules.Position) int {
	n := 0
	for sq := rules.ZeroSquare; sq < rules.NumSquares; sq++ {
		if !pos.IsEmpty(sq) {
			n++
		}
	}
	return n
}

func resignOutcome(cfg adjudicate.ResignConfig, t *adjudicate.ResignTracker, lastMover rules.Color) rules.Result {
	if cfg.TwoSided {
		return t.TwoSidedOrientation()
	}
	if color, ok := t.ResigningColor(); ok {
		return rules.Loss(color)
	}
	return rules.Loss(lastMover)
}

// decisive finalizes the Match with the given termination/outcome. reportedTerm
// is the PGN-facing Termination tag, which may differ from the internal
// termination category (e.g. a disconnect-loss is its own category).
func (d *Driver) decisive(m Match, start time.Time, reportedTerm, _ Termination, reason string, outcome rules.Result) Match {
	m.Termination = reportedTerm
	m.Reason = reason
	m.End = time.Now()

	switch outcome {
	case rules.WhiteWins:
		m.White.Outcome = Win
		m.Black.Outcome = Loss
	case rules.BlackWins:
		m.White.Outcome = Loss
		m.Black.Outcome = Win
	case rules.Draw:
		m.White.Outcome = DrawResult
		m.Black.Outcome = DrawResult
	default:
		m.White.Outcome = None
		m.Black.Outcome = None
	}
	return m
}
