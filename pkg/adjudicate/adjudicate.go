// Package adjudicate implements the trackers that let the match driver end a
// game early, without either engine resigning or reaching a natural mate:
// draw-by-low-score, resign-by-extreme-score, tablebase-WDL, and max-move-count
// adjudication. Trackers are evaluated in a fixed order after each move by the
// match driver; this package only maintains the running counters and predicates.
package adjudicate

import (
	"github.com/herohde/ccmatch/pkg/protocol/uci"
	"github.com/herohde/ccmatch/pkg/rules"
)

// DrawConfig configures DrawTracker. MoveCount <= 0 disables draw adjudication.
type DrawConfig struct {
	MoveNumber uint32 // plies before which draw adjudication never triggers
	MoveCount  int    // consecutive qualifying half-moves required, per side
	Score      int    // |cp| must be <= this threshold to count
}

// DrawTracker declares a draw once both sides' evaluations have stayed within
// Score centipawns of equality for MoveCount consecutive moves past MoveNumber.
type DrawTracker struct {
	cfg   DrawConfig
	moves int
}

func NewDrawTracker(cfg DrawConfig) *DrawTracker {
	return &DrawTracker{cfg: cfg}
}

// Update records the latest centipawn score and halfmove clock (hmvc resets the
// streak on any capture/pawn move, matching the reference no-progress counter).
func (d *DrawTracker) Update(score uci.Score, hmvc int) {
	if hmvc == 0 {
		d.moves = 0
	}
	if d.cfg.MoveCount <= 0 {
		return
	}
	if score.Type == uci.Centipawns && abs(score.Value) <= d.cfg.Score {
		d.moves++
	} else {
		d.moves = 0
	}
}

// Adjudicatable reports whether the streak has run long enough, past MoveNumber,
// to call the game a draw. Both sides must have contributed, hence the factor of 2.
func (d *DrawTracker) Adjudicatable(plies uint32) bool {
	return plies >= d.cfg.MoveNumber && d.moves >= d.cfg.MoveCount*2
}

func (d *DrawTracker) Invalidate() {
	d.moves = 0
}

// ResignConfig configures ResignTracker. MoveCount <= 0 disables resign adjudication.
type ResignConfig struct {
	Score     int // |cp| (or any forced mate) must reach this to count
	MoveCount int
	TwoSided  bool // require both engines to agree the position is lost/won
}

// ResignTracker declares a resignation once one side (or, if TwoSided, both
// sides in agreement) has evaluated the position as decisively lost for
// MoveCount consecutive moves.
type ResignTracker struct {
	cfg ResignConfig

	movesTwoSided      int
	movesOneSidedWhite int
	movesOneSidedBlack int
	whiteRelativeSign  int // sign of the most recent qualifying two-sided score, relative to White
}

func NewResignTracker(cfg ResignConfig) *ResignTracker {
	return &ResignTracker{cfg: cfg}
}

// Update records the latest score, as reported by the engine playing color.
func (r *ResignTracker) Update(score uci.Score, color rules.Color) {
	if r.cfg.MoveCount <= 0 {
		return
	}

	if r.cfg.TwoSided {
		if (score.Type == uci.Centipawns && abs(score.Value) >= r.cfg.Score) || score.Type == uci.Mate {
			r.movesTwoSided++

			val := score.Value
			if color == rules.Black {
				val = -val
			}
			switch {
			case val > 0:
				r.whiteRelativeSign = 1
			case val < 0:
				r.whiteRelativeSign = -1
			}
		} else {
			r.movesTwoSided = 0
		}
		return
	}

	counter := &r.movesOneSidedWhite
	if color == rules.Black {
		counter = &r.movesOneSidedBlack
	}
	if (score.Type == uci.Centipawns && score.Value <= -r.cfg.Score) || (score.Type == uci.Mate && score.Value < 0) {
		*counter++
	} else {
		*counter = 0
	}
}

// Resignable reports whether the threshold has been reached.
func (r *ResignTracker) Resignable() bool {
	if r.cfg.TwoSided {
		return r.movesTwoSided >= r.cfg.MoveCount*2
	}
	return r.movesOneSidedWhite >= r.cfg.MoveCount || r.movesOneSidedBlack >= r.cfg.MoveCount
}

// TwoSidedOrientation returns the decisive result implied by the most recent
// qualifying score streak in TwoSided mode: a positive White-relative score
// means White is winning and Black resigns.
func (r *ResignTracker) TwoSidedOrientation() rules.Result {
	if r.whiteRelativeSign > 0 {
		return rules.WhiteWins
	}
	return rules.BlackWins
}

// ResigningColor returns the color that has reached the resign threshold, if
// any, under one-sided configuration. Not meaningful in TwoSided mode, where
// the driver orients the result with TwoSidedOrientation instead.
func (r *ResignTracker) ResigningColor() (rules.Color, bool) {
	switch {
	case r.movesOneSidedWhite >= r.cfg.MoveCount:
		return rules.White, true
	case r.movesOneSidedBlack >= r.cfg.MoveCount:
		return rules.Black, true
	default:
		return 0, false
	}
}

func (r *ResignTracker) Invalidate(color rules.Color) {
	if r.cfg.TwoSided {
		r.movesTwoSided = 0
		return
	}
	if color == rules.Black {
		r.movesOneSidedBlack = 0
	} else {
		r.movesOneSidedWhite = 0
	}
}

// TablebaseProbe is the external, interface-only tablebase-probing collaborator:
// given a position with at most MaxPieces pieces, it returns the WDL-exact result.
// Implementations typically wrap a Syzygy probing library; none is vendored here.
type TablebaseProbe interface {
	Probe(pos *rules.Position, ignoreFiftyMove bool) (rules.Result, bool)
}

// TbConfig configures TbTracker. MaxPieces == 0 means no piece-count ceiling.
type TbConfig struct {
	MaxPieces       int
	IgnoreFiftyMove bool
}

// TbTracker adjudicates the game once the tablebase probe can return an exact
// result for the current position.
type TbTracker struct {
	cfg   TbConfig
	probe TablebaseProbe
}

func NewTbTracker(cfg TbConfig, probe TablebaseProbe) *TbTracker {
	return &TbTracker{cfg: cfg, probe: probe}
}

// Adjudicatable reports whether the position is shallow enough, piece-count wise,
// to attempt a probe and, if so, whether the probe returns an exact result.
func (t *TbTracker) Adjudicatable(pos *rules.Position, pieces int) bool {
	if t.probe == nil {
		return false
	}
	if t.cfg.MaxPieces != 0 && pieces > t.cfg.MaxPieces {
		return false
	}
	_, ok := t.probe.Probe(pos, t.cfg.IgnoreFiftyMove)
	return ok
}

// Adjudicate returns the tablebase-exact result. Only valid after Adjudicatable
// returned true for the same position.
func (t *TbTracker) Adjudicate(pos *rules.Position) rules.Result {
	result, _ := t.probe.Probe(pos, t.cfg.IgnoreFiftyMove)
	return result
}

// MaxMoveTracker adjudicates a draw once the game has run past a ply ceiling,
// guarding against engines that loop forever without making progress.
type MaxMoveTracker struct {
	maxPlies uint32
}

func NewMaxMoveTracker(maxPlies uint32) *MaxMoveTracker {
	return &MaxMoveTracker{maxPlies: maxPlies}
}

func (m *MaxMoveTracker) Adjudicatable(plies uint32) bool {
	return m.maxPlies > 0 && plies >= m.maxPlies
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
