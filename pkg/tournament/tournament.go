package tournament

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/herohde/ccmatch/pkg/affinity"
	"github.com/herohde/ccmatch/pkg/book"
	"github.com/herohde/ccmatch/pkg/match"
	"github.com/herohde/ccmatch/pkg/pool"
	"github.com/herohde/ccmatch/pkg/resultstore"
	"github.com/herohde/ccmatch/pkg/schedule"
	"github.com/herohde/ccmatch/pkg/shutdown"
	"github.com/herohde/ccmatch/pkg/sink"
	"github.com/herohde/ccmatch/pkg/stats"
	"github.com/seekerror/logw"
)

// scheduler is satisfied by both *schedule.RoundRobin and *schedule.Gauntlet.
type scheduler interface {
	Next() (schedule.Pairing, bool)
}

// Tournament wires every domain package into one runnable concurrent match
// harness, per spec.md's top-level control-flow description.
type Tournament struct {
	cfg   Config
	store *resultstore.Store
	book  *book.Book

	sm    *shutdown.Manager
	cache *engineCache

	pgn *sink.PGNSink
	epd *sink.EPDSink
	rep sink.Reporter

	out io.Writer
}

// New validates cfg and prepares a Tournament. It does not spawn any engine
// subprocess; that happens lazily, per-game, through the engine cache.
func New(cfg Config, sm *shutdown.Manager, out io.Writer) (*Tournament, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	if out == nil {
		out = os.Stdout
	}

	t := &Tournament{cfg: cfg, sm: sm, out: out}
	t.cache = newEngineCache(cfg.Engines, sm)

	var snap resultstore.Snapshot
	if cfg.StatePath != "" {
		if s, err := resultstore.Load(cfg.StatePath); err == nil {
			snap = s
			logw.Infof(context.Background(), "tournament: resumed %v games from %v", snap.GamesPlayed, cfg.StatePath)
		}
	}
	t.store = resultstore.Restore(cfg.StatePath, snap)

	bk, err := buildBook(cfg.Book, cfg.GamesPerPairing, t.store.GamesPlayed())
	if err != nil {
		return nil, err
	}
	t.book = bk

	if cfg.Output.PGNPath != "" {
		w, err := sink.OpenFileWriter(cfg.Output.PGNPath)
		if err != nil {
			return nil, fmt.Errorf("tournament: open pgn file: %w", err)
		}
		t.pgn = sink.NewPGNSink(w, sink.PGNConfig{
			Event:    cfg.Output.Event,
			Site:     cfg.Output.Site,
			Notation: cfg.Output.Notation,
			Annotate: cfg.Output.Annotate,
		})
	}
	if cfg.Output.EPDPath != "" {
		w, err := sink.OpenFileWriter(cfg.Output.EPDPath)
		if err != nil {
			return nil, fmt.Errorf("tournament: open epd file: %w", err)
		}
		t.epd = sink.NewEPDSink(w)
	}

	sprt := sprtConfig(cfg)
	if cfg.Output.Native {
		t.rep = sink.NewNativeReporter(out, sprt)
	} else {
		t.rep = sink.NewCuteChessReporter(out, sprt)
	}

	return t, nil
}

func sprtConfig(cfg Config) *stats.SPRTConfig {
	if v, ok := cfg.SPRT.V(); ok {
		return &v
	}
	return nil
}

func validate(cfg Config) error {
	if len(cfg.Engines) < 2 {
		return fmt.Errorf("tournament: need at least 2 engines, got %v", len(cfg.Engines))
	}
	seen := map[string]bool{}
	for _, e := range cfg.Engines {
		if e.Name == "" {
			return fmt.Errorf("tournament: engine with empty name")
		}
		if seen[e.Name] {
			return fmt.Errorf("tournament: duplicate engine name %q", e.Name)
		}
		seen[e.Name] = true
	}
	if cfg.GauntletSeeds < 0 || cfg.GauntletSeeds > len(cfg.Engines) {
		return fmt.Errorf("tournament: invalid gauntlet seed count %v for %v engines", cfg.GauntletSeeds, len(cfg.Engines))
	}
	if cfg.Rounds <= 0 {
		return fmt.Errorf("tournament: rounds must be positive")
	}
	if cfg.GamesPerPairing != 1 && cfg.GamesPerPairing != 2 {
		return fmt.Errorf("tournament: games-per-pairing must be 1 or 2, got %v", cfg.GamesPerPairing)
	}
	if cfg.Concurrency <= 0 {
		return fmt.Errorf("tournament: concurrency must be positive")
	}
	if v, ok := cfg.SPRT.V(); ok {
		if v.Alpha <= 0 || v.Alpha >= 1 || v.Beta <= 0 || v.Beta >= 1 || v.Alpha+v.Beta >= 1 {
			return fmt.Errorf("tournament: invalid sprt alpha/beta")
		}
		if v.Elo0 >= v.Elo1 {
			return fmt.Errorf("tournament: sprt elo0 must be less than elo1")
		}
	}
	return nil
}

func buildBook(cfg BookConfig, gamesPerPairing, playedGames int) (*book.Book, error) {
	bcfg := book.Config{
		Order:             cfg.Order,
		Seed:              cfg.Seed,
		Start:             1,
		InitialMatchCount: playedGames,
		GamesPerPair:      gamesPerPairing,
	}
	switch cfg.Format {
	case EPDBook:
		return book.NewFromEPD(cfg.Path, bcfg)
	case PGNBook:
		return book.NewFromPGN(cfg.Path, cfg.Plies, bcfg)
	default:
		return book.NewEmpty(), nil
	}
}

// Run drives the tournament to completion: every scheduled pairing is played
// exactly once (resuming mid-schedule if StatePath carried prior progress),
// or until the process-wide stop signal fires or an SPRT test concludes.
func (t *Tournament) Run(ctx context.Context) error {
	ctx = t.sm.Context()

	sched := t.newScheduler()
	totalGames := t.totalGames()

	mgr := affinity.NewManager(t.cfg.Affinity, t.cfg.ThreadsPerEngine, affinity.DetectTopology())
	p := pool.New(ctx, t.cfg.Concurrency, mgr)

	var autosaveWG sync.WaitGroup
	if t.cfg.StatePath != "" && t.cfg.AutosaveInterval > 0 {
		autosaveWG.Add(1)
		go func() {
			defer autosaveWG.Done()
			t.store.RunAutosave(ctx, t.cfg.AutosaveInterval)
		}()
	}

	var wg sync.WaitGroup
	var prevPairing = -1
	var gameInPair int

	for {
		pairing, ok := sched.Next()
		if !ok || t.sm.Stopped() {
			break
		}
		if pairing.PairingID == prevPairing {
			gameInPair++
		} else {
			gameInPair = 0
		}
		prevPairing = pairing.PairingID
		swap := gameInPair%2 == 1

		wg.Add(1)
		go func(pairing schedule.Pairing, swap bool) {
			defer wg.Done()
			if err := p.Submit(ctx, func(ctx context.Context, core *affinity.Core) error {
				return t.playAndRecord(ctx, pairing, swap, totalGames)
			}); err != nil {
				logw.Errorf(ctx, "tournament: game %v: %v", pairing.GameID, err)
			}
		}(pairing, swap)
	}

	wg.Wait()
	p.Stop()
	t.sm.Stop() // unblocks RunAutosave even when the schedule simply ran out
	autosaveWG.Wait()
	t.sm.KillAll()
	t.cache.closeAll()

	if t.cfg.StatePath != "" {
		if err := t.store.Save(); err != nil {
			logw.Errorf(ctx, "tournament: final save: %v", err)
		}
	}

	for key, e := range t.store.Entries() {
		t.rep.PrintResult(key, e)
	}
	t.rep.EndTournament()
	return nil
}

func (t *Tournament) newScheduler() scheduler {
	players := len(t.cfg.Engines)
	playedGames := t.store.GamesPlayed()
	if t.cfg.GauntletSeeds > 0 {
		return schedule.NewGauntlet(t.book, players, t.cfg.Rounds, t.cfg.GamesPerPairing, playedGames, t.cfg.GauntletSeeds)
	}
	return schedule.NewRoundRobin(t.book, players, t.cfg.Rounds, t.cfg.GamesPerPairing, playedGames)
}

func (t *Tournament) totalGames() int {
	players := len(t.cfg.Engines)
	var pairs int
	if t.cfg.GauntletSeeds > 0 {
		pairs = t.cfg.GauntletSeeds * (players - t.cfg.GauntletSeeds)
	} else {
		pairs = players * (players - 1) / 2
	}
	return pairs * t.cfg.GamesPerPairing * t.cfg.Rounds
}

// playAndRecord plays one game from a scheduled pairing and folds the result
// into the score board, persisted state, and output sinks.
func (t *Tournament) playAndRecord(ctx context.Context, pairing schedule.Pairing, swap bool, totalGames int) error {
	p1 := t.cfg.Engines[pairing.Player1]
	p2 := t.cfg.Engines[pairing.Player2]
	white, black := p1, p2
	if swap {
		white, black = p2, p1
	}

	whiteAdapter, err := t.cache.borrow(ctx, white.Name)
	if err != nil {
		return err
	}
	defer t.cache.release(white.Name, whiteAdapter, white.Restart)

	blackAdapter, err := t.cache.borrow(ctx, black.Name)
	if err != nil {
		return err
	}
	defer t.cache.release(black.Name, blackAdapter, black.Restart)

	opening := match.Opening{}
	if pairing.HasOpening {
		o := t.book.At(pairing.OpeningID)
		opening = match.Opening{FEN: o.FEN, Moves: o.Moves}
	}

	driver := &match.Driver{
		White:    match.Player{Adapter: whiteAdapter, Name: white.Name, Limits: white.limits()},
		Black:    match.Player{Adapter: blackAdapter, Name: black.Name, Limits: black.limits()},
		Opening:  opening,
		Chess960: white.Chess960 || black.Chess960,
		Adjudication: match.AdjudicationConfig{
			Draw:     t.cfg.Adjudication,
			Resign:   t.cfg.Resign,
			Tb:       t.cfg.Tablebase,
			TbProbe:  t.cfg.TbProbe,
			MaxMoves: t.cfg.MaxMoves,
		},
		Overhead: t.cfg.Overhead,
		Stop:     ctx.Done(),
	}

	t.rep.StartGame(white.Name, black.Name, pairing.GameID, totalGames)
	m := driver.Play(ctx)
	t.rep.EndGame(m, pairing.GameID, totalGames)

	score := scoreOf(m.White.Outcome)
	t.store.RecordGame(white.Name, black.Name, score)

	if t.cfg.GamesPerPairing == 2 && swap {
		// second game of the pair: fold both games into one pentanomial
		// observation, from the canonical (first-recorded) white engine's view.
		t.store.RecordPair(p1.Name, p2.Name, 1-score, score)
	}

	if t.pgn != nil {
		if err := t.pgn.Write(m, pairing.RoundID); err != nil {
			logw.Errorf(ctx, "tournament: pgn write: %v", err)
		}
	}
	if t.epd != nil {
		if err := t.epd.Write(m); err != nil {
			logw.Errorf(ctx, "tournament: epd write: %v", err)
		}
	}

	if t.cfg.RatingReportInterval > 0 && pairing.GameID%t.cfg.RatingReportInterval == 0 {
		t.rep.PrintInterval(scoreboardSnapshot(t.store), pairing.GameID, totalGames)
	}

	if sprt, ok := t.cfg.SPRT.V(); ok {
		if t.sprtConcluded(sprt) {
			t.sm.Stop()
		}
	}
	return nil
}

func (t *Tournament) sprtConcluded(cfg stats.SPRTConfig) bool {
	for _, e := range t.store.Entries() {
		var llr stats.LLR
		if t.cfg.GamesPerPairing == 2 {
			llr = stats.EvaluatePentanomial(cfg, e.Pentanomial)
		} else if cfg.Model == stats.Bayesian {
			llr = stats.EvaluateBayesian(cfg, e.WDL)
		} else {
			llr = stats.EvaluateWDL(cfg, e.WDL)
		}
		if llr.Decision != stats.Continue {
			return true
		}
	}
	return false
}

func scoreOf(o match.Outcome) float64 {
	switch o {
	case match.Win:
		return 1
	case match.DrawResult:
		return 0.5
	default:
		return 0
	}
}

// scoreboardSnapshot rebuilds a standalone *stats.ScoreBoard from the result
// store's current entries, so reporters can read it without touching the
// store's own lock.
func scoreboardSnapshot(store *resultstore.Store) *stats.ScoreBoard {
	sb := stats.NewScoreBoard()
	for key, e := range store.Entries() {
		_, pe := sb.Pair(key.White, key.Black)
		*pe = e
	}
	return sb
}
