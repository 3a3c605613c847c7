// Command ccmatch runs a concurrent chess-engine tournament: it spawns the
// configured UCI engines as subprocesses, schedules every pairing exactly
// once per round, plays games with bounded concurrency and CPU affinity,
// and reports Elo/SPRT progress as it goes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/herohde/ccmatch/pkg/adjudicate"
	"github.com/herohde/ccmatch/pkg/book"
	"github.com/herohde/ccmatch/pkg/shutdown"
	"github.com/herohde/ccmatch/pkg/sink"
	"github.com/herohde/ccmatch/pkg/stats"
	"github.com/herohde/ccmatch/pkg/timecontrol"
	"github.com/herohde/ccmatch/pkg/tournament"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

var version = build.NewVersion(1, 0, 0)

var (
	engines = engineFlags{}

	gauntletSeeds = flag.Int("gauntlet", 0, "Schedule a gauntlet with this many seed engines (0 == round-robin)")
	rounds        = flag.Int("rounds", 1, "Number of times to repeat the full pairing schedule")
	gamesPerPair  = flag.Int("games", 2, "Games per pairing, 1 or 2 (2 enables pentanomial SPRT)")
	concurrency   = flag.Int("concurrency", 1, "Number of games to run at once")

	drawMoveNumber = flag.Uint("draw-movenumber", 0, "Ply count before which draw adjudication never triggers")
	drawMoveCount  = flag.Int("draw-movecount", 0, "Consecutive low-score half-moves, per side, to adjudicate a draw (0 disables)")
	drawScore      = flag.Int("draw-score", 0, "Max |centipawns| to qualify for draw adjudication")
	resignScore    = flag.Int("resign-score", 0, "Min |centipawns| to qualify for resign adjudication")
	resignCount    = flag.Int("resign-movecount", 0, "Consecutive qualifying half-moves to adjudicate a resignation (0 disables)")
	resignTwoSided = flag.Bool("resign-twosided", false, "Require both engines to agree before adjudicating a resignation")
	maxMoves       = flag.Uint("max-moves", 0, "Ply ceiling past which the game is adjudicated a draw (0 disables)")
	overhead       = flag.Duration("overhead", 0, "Fixed per-move slack added to the time-loss threshold; not deducted from the engine's clock")

	affinity         = flag.Bool("affinity", false, "Pin concurrent games to distinct physical CPU cores")
	threadsPerEngine = flag.Int("threads-per-engine", 1, "Logical CPUs reserved per concurrent engine, for affinity grouping")

	ratingInterval = flag.Int("rating-interval", 10, "Print a progress line every N completed games (0 disables)")
	autosave       = flag.Duration("autosave", 30*time.Second, "Interval between result-store snapshots (0 disables)")
	statePath      = flag.String("state", "", "Path to persist/resume tournament results (empty disables)")

	bookPath   = flag.String("book", "", "Opening book file (EPD, or PGN with -book-format=pgn)")
	bookFormat = flag.String("book-format", "epd", "Opening book format: epd or pgn")
	bookPlies  = flag.Int("book-plies", 0, "PGN books only: truncate each opening line to this many half-moves")
	bookRandom = flag.Bool("book-random", true, "Shuffle the opening book deterministically (false deals it in file order)")
	bookSeed   = flag.Int64("book-seed", 1, "Opening book shuffle seed")

	pgnPath  = flag.String("pgn", "", "Append every game to this PGN file")
	epdPath  = flag.String("epd", "", "Append every final position to this EPD file")
	event    = flag.String("event", "ccmatch", "PGN Event tag")
	site     = flag.String("site", "?", "PGN Site tag")
	notation = flag.String("notation", "san", "PGN move notation: san, lan, or uci")
	annotate = flag.Bool("annotate", false, "Include engine score/depth comments in the PGN move list")
	native   = flag.Bool("native", false, "Use the multi-line native reporter instead of the cutechess-cli-compatible one")

	sprtElo0  = flag.Float64("sprt-elo0", 0, "SPRT H0 Elo difference")
	sprtElo1  = flag.Float64("sprt-elo1", 0, "SPRT H1 Elo difference (enables SPRT early stopping when nonzero or -sprt is set)")
	sprtAlpha = flag.Float64("sprt-alpha", 0.05, "SPRT type-I error rate")
	sprtBeta  = flag.Float64("sprt-beta", 0.05, "SPRT type-II error rate")
	sprtModel = flag.String("sprt-model", "normalized", "SPRT model: normalized, logistic, or bayesian")
	sprtOn    = flag.Bool("sprt", false, "Enable SPRT early stopping")
)

func init() {
	flag.Var(&engines, "engine", "Engine spec, repeatable. cutechess-cli syntax: "+
		`name=... cmd=... [dir=...] [tc=moves/secs+inc | st=secs] [depth=N] [nodes=N] `+
		`[option.NAME=VALUE ...] [restart] [chess960]`)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: ccmatch -engine "name=A cmd=./a" -engine "name=B cmd=./b" [options]

CCMATCH runs a concurrent chess-engine tournament over UCI subprocesses.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()
	logw.Infof(ctx, "ccmatch %v", version)

	cfg, err := buildConfig()
	if err != nil {
		logw.Exitf(ctx, "config: %v", err)
	}

	sm := shutdown.New()
	defer sm.Close()

	t, err := tournament.New(cfg, sm, os.Stdout)
	if err != nil {
		logw.Exitf(ctx, "tournament: %v", err)
	}
	if err := t.Run(ctx); err != nil {
		logw.Exitf(ctx, "tournament: %v", err)
	}
}

func buildConfig() (tournament.Config, error) {
	if len(engines.specs) < 2 {
		return tournament.Config{}, fmt.Errorf("at least 2 -engine flags are required")
	}

	notationVal, err := parseNotation(*notation)
	if err != nil {
		return tournament.Config{}, err
	}

	cfg := tournament.Config{
		Engines:         engines.specs,
		GauntletSeeds:   *gauntletSeeds,
		Rounds:          *rounds,
		GamesPerPairing: *gamesPerPair,
		Concurrency:     *concurrency,
		Adjudication: adjudicate.DrawConfig{
			MoveNumber: uint32(*drawMoveNumber),
			MoveCount:  *drawMoveCount,
			Score:      *drawScore,
		},
		Resign: adjudicate.ResignConfig{
			Score:     *resignScore,
			MoveCount: *resignCount,
			TwoSided:  *resignTwoSided,
		},
		MaxMoves:         uint32(*maxMoves),
		Overhead:         *overhead,
		Affinity:         *affinity,
		ThreadsPerEngine: *threadsPerEngine,

		RatingReportInterval: *ratingInterval,
		AutosaveInterval:     *autosave,
		StatePath:            *statePath,

		Book: tournament.BookConfig{
			Format: parseBookFormat(*bookFormat),
			Path:   *bookPath,
			Plies:  *bookPlies,
			Order:  parseBookOrder(*bookRandom),
			Seed:   *bookSeed,
		},
		Output: tournament.OutputConfig{
			PGNPath:  *pgnPath,
			EPDPath:  *epdPath,
			Event:    *event,
			Site:     *site,
			Notation: notationVal,
			Annotate: *annotate,
			Native:   *native,
		},
	}

	if *sprtOn || *sprtElo1 != 0 {
		model, err := parseSPRTModel(*sprtModel)
		if err != nil {
			return tournament.Config{}, err
		}
		cfg.SPRT = lang.Some(stats.SPRTConfig{
			Elo0:  *sprtElo0,
			Elo1:  *sprtElo1,
			Alpha: *sprtAlpha,
			Beta:  *sprtBeta,
			Model: model,
		})
	}

	return cfg, nil
}

func parseNotation(s string) (sink.Notation, error) {
	switch strings.ToLower(s) {
	case "san":
		return sink.SAN, nil
	case "lan":
		return sink.LAN, nil
	case "uci":
		return sink.UCI, nil
	default:
		return 0, fmt.Errorf("unknown -notation %q", s)
	}
}

func parseBookFormat(s string) tournament.BookFormat {
	switch strings.ToLower(s) {
	case "pgn":
		return tournament.PGNBook
	case "epd":
		return tournament.EPDBook
	default:
		return tournament.NoBook
	}
}

func parseBookOrder(random bool) book.Order {
	if random {
		return book.Random
	}
	return book.Sequential
}

func parseSPRTModel(s string) (stats.SPRTModel, error) {
	switch strings.ToLower(s) {
	case "normalized":
		return stats.Normalized, nil
	case "logistic":
		return stats.Logistic, nil
	case "bayesian":
		return stats.Bayesian, nil
	default:
		return 0, fmt.Errorf("unknown -sprt-model %q", s)
	}
}

// engineFlags accumulates repeated -engine flags into tournament.EngineConfigs.
type engineFlags struct {
	specs []tournament.EngineConfig
}

func (e *engineFlags) String() string {
	return fmt.Sprintf("%v engines", len(e.specs))
}

func (e *engineFlags) Set(spec string) error {
	cfg := tournament.EngineConfig{
		InitTimeout:  10 * time.Second,
		ReadyTimeout: 10 * time.Second,
		Options:      map[string]string{},
	}

	for _, tok := range splitEngineSpec(spec) {
		key, value, _ := strings.Cut(tok, "=")
		switch {
		case key == "name":
			cfg.Name = value
		case key == "cmd":
			cfg.Path = value
		case key == "dir":
			cfg.Dir = value
		case key == "tc":
			clock, err := parseTC(value)
			if err != nil {
				return fmt.Errorf("engine %q: %w", spec, err)
			}
			cfg.Clock = clock
		case key == "st":
			secs, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("engine %q: bad st=%v: %w", spec, value, err)
			}
			cfg.FixedMove = time.Duration(secs * float64(time.Second))
		case key == "depth":
			depth, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("engine %q: bad depth=%v: %w", spec, value, err)
			}
			cfg.Depth = depth
		case key == "nodes":
			nodes, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("engine %q: bad nodes=%v: %w", spec, value, err)
			}
			cfg.Nodes = nodes
		case key == "restart":
			cfg.Restart = true
		case key == "chess960":
			cfg.Chess960 = true
		case strings.HasPrefix(key, "option."):
			cfg.Options[strings.TrimPrefix(key, "option.")] = value
		case key == "arg":
			cfg.Args = append(cfg.Args, value)
		}
	}

	if cfg.Name == "" || cfg.Path == "" {
		return fmt.Errorf("engine %q: name and cmd are required", spec)
	}
	e.specs = append(e.specs, cfg)
	return nil
}

func splitEngineSpec(spec string) []string {
	return strings.Fields(spec)
}

// parseTC parses cutechess-cli's moves/secs+inc time control syntax, e.g.
// "40/60+0.1" (40 moves per 60s, 0.1s increment) or "60+1" (all moves).
func parseTC(s string) (timecontrol.Limit, error) {
	var movesToGo int
	rest := s
	if moves, tail, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.Atoi(moves)
		if err != nil {
			return timecontrol.Limit{}, fmt.Errorf("bad tc moves %q: %w", moves, err)
		}
		movesToGo = n
		rest = tail
	}

	secsStr, incStr, _ := strings.Cut(rest, "+")
	secs, err := strconv.ParseFloat(secsStr, 64)
	if err != nil {
		return timecontrol.Limit{}, fmt.Errorf("bad tc seconds %q: %w", secsStr, err)
	}
	var inc float64
	if incStr != "" {
		inc, err = strconv.ParseFloat(incStr, 64)
		if err != nil {
			return timecontrol.Limit{}, fmt.Errorf("bad tc increment %q: %w", incStr, err)
		}
	}

	return timecontrol.Limit{
		Time:      time.Duration(secs * float64(time.Second)),
		Increment: time.Duration(inc * float64(time.Second)),
		MovesToGo: movesToGo,
	}, nil
}
