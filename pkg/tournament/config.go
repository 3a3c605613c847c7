// Package tournament wires the scheduler, worker pool, match driver, result
// store, opening book, and output sinks into one runnable tournament: the
// top-level orchestration spec.md leaves implicit in its per-component
// descriptions.
package tournament

import (
	"time"

	"github.com/herohde/ccmatch/pkg/adjudicate"
	"github.com/herohde/ccmatch/pkg/book"
	"github.com/herohde/ccmatch/pkg/match"
	"github.com/herohde/ccmatch/pkg/sink"
	"github.com/herohde/ccmatch/pkg/stats"
	"github.com/herohde/ccmatch/pkg/timecontrol"
	"github.com/seekerror/stdlib/pkg/lang"
)

// EngineConfig is one engine's immutable configuration, shared across every
// match it plays. Name must be non-empty and unique across the tournament.
type EngineConfig struct {
	Name string
	Path string
	Dir  string
	Args []string

	Options map[string]string

	// Exactly one of Clock (nonzero Time) or FixedMove or Depth/Nodes should
	// be meaningful; see match.Limits.
	Clock     timecontrol.Limit
	FixedMove time.Duration
	Depth     int
	Nodes     int64

	Chess960 bool
	Restart  bool // destroy and respawn the adapter after every game

	InitTimeout, ReadyTimeout time.Duration
}

func (c EngineConfig) limits() match.Limits {
	return match.Limits{
		Nodes: c.Nodes,
		Depth: c.Depth,
		Clock: timecontrol.Limit{
			Time:      c.Clock.Time,
			Increment: c.Clock.Increment,
			MovesToGo: c.Clock.MovesToGo,
			FixedMove: c.FixedMove,
		},
	}
}

// BookFormat selects how OpeningBook is parsed.
type BookFormat int

const (
	NoBook BookFormat = iota
	EPDBook
	PGNBook
)

// BookConfig describes the opening book feeder, if any.
type BookConfig struct {
	Format BookFormat
	Path   string
	Plies  int // PGN only: truncate each opening line to this many half-moves
	Order  book.Order
	Seed   int64
}

// OutputConfig controls the PGN/EPD archive files and progress reporting.
type OutputConfig struct {
	PGNPath  string
	EPDPath  string
	Event    string
	Site     string
	Notation sink.Notation
	Annotate bool

	// Native selects pkg/sink.NativeReporter (multi-line, pentanomial-aware)
	// over the default cutechess-cli-compatible one-line reporter.
	Native bool
}

// Config is the tournament-wide configuration spec.md's §3 "Tournament
// configuration" describes, plus the engine roster and ambient I/O config
// this repo's Go realization needs to actually run one.
type Config struct {
	Engines []EngineConfig

	// GauntletSeeds, if nonzero, schedules a gauntlet (the first GauntletSeeds
	// engines vs. the rest); zero schedules a round-robin (every engine vs.
	// every other engine).
	GauntletSeeds int

	Rounds          int
	GamesPerPairing int // 1 or 2; 2 enables pentanomial pairing statistics
	Concurrency     int

	Adjudication adjudicate.DrawConfig
	Resign       adjudicate.ResignConfig
	Tablebase    adjudicate.TbConfig
	TbProbe      adjudicate.TablebaseProbe
	MaxMoves     uint32
	Overhead     time.Duration

	Affinity         bool
	ThreadsPerEngine int

	RatingReportInterval int // print a progress line every N completed games
	ScoreReportInterval  int
	AutosaveInterval     time.Duration

	Seed int64

	SPRT lang.Optional[stats.SPRTConfig]

	Book   BookConfig
	Output OutputConfig

	// StatePath, if set, persists/resumes the tournament's ScoreBoard and
	// games-played counter across runs (see pkg/resultstore).
	StatePath string
}
