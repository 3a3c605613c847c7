package sink

import (
	"fmt"
	"io"
	"sort"

	"github.com/herohde/ccmatch/pkg/match"
	"github.com/herohde/ccmatch/pkg/stats"
)

// Reporter is the common sink interface driven by the tournament orchestrator
// as games start, finish, and at periodic/final reporting points. Two
// implementations exist: CuteChessReporter (one-line progress, cutechess-cli
// compatible) and NativeReporter (multi-line reports with pentanomial detail).
type Reporter interface {
	StartGame(white, black string, game, total int)
	EndGame(m match.Match, game, total int)
	PrintInterval(sb *stats.ScoreBoard, completed, total int)
	PrintResult(key stats.PairKey, e stats.Entry)
	EndTournament()
}

// CuteChessReporter prints one line per game-start/game-end and a compact
// Elo+SPRT summary on each interval, matching cutechess-cli's console output.
type CuteChessReporter struct {
	w    io.Writer
	sprt *stats.SPRTConfig
}

func NewCuteChessReporter(w io.Writer, sprt *stats.SPRTConfig) *CuteChessReporter {
	return &CuteChessReporter{w: w, sprt: sprt}
}

func (r *CuteChessReporter) StartGame(white, black string, game, total int) {
	fmt.Fprintf(r.w, "Started game %d of %d (%v vs %v)\n", game, total, white, black)
}

func (r *CuteChessReporter) EndGame(m match.Match, game, total int) {
	fmt.Fprintf(r.w, "Finished game %d of %d (%v vs %v): %v {%v}\n", game, total, m.White.Name, m.Black.Name, pgnResult(m), m.Reason)
}

func (r *CuteChessReporter) PrintInterval(sb *stats.ScoreBoard, completed, total int) {
	for _, key := range sortedKeys(sb) {
		e := sb.Entries()[key]
		est := stats.EloFromWDL(e.WDL)
		fmt.Fprintf(r.w, "Score of %v vs %v: %d - %d - %d  [%.3f] %d\n",
			key.White, key.Black, e.WDL.Wins, e.WDL.Losses, e.WDL.Draws, e.WDL.Score(), e.WDL.Games())
		fmt.Fprintf(r.w, "Elo difference: %.2f +/- %.2f, nElo: %.2f +/- %.2f\n", est.Elo, est.EloErr, est.NElo, est.NEloErr)

		if r.sprt != nil {
			llr := stats.EvaluateWDL(*r.sprt, e.WDL)
			fmt.Fprintf(r.w, "LLR: %.2f (%.2f, %.2f) %v\n", llr.Value, llr.LowerBound, llr.UpperBound, sprtVerdict(llr.Decision))
		}
	}
	fmt.Fprintf(r.w, "Games played: %d of %d\n", completed, total)
}

func (r *CuteChessReporter) PrintResult(key stats.PairKey, e stats.Entry) {
	fmt.Fprintf(r.w, "Final result %v vs %v: %d - %d - %d\n", key.White, key.Black, e.WDL.Wins, e.WDL.Losses, e.WDL.Draws)
}

func (r *CuteChessReporter) EndTournament() {
	fmt.Fprintln(r.w, "Finished match")
}

// NativeReporter prints multi-line reports including the pentanomial
// breakdown, as a ccmatch-native tournament run (not constrained to mimic
// cutechess-cli's terser output).
type NativeReporter struct {
	w    io.Writer
	sprt *stats.SPRTConfig
}

func NewNativeReporter(w io.Writer, sprt *stats.SPRTConfig) *NativeReporter {
	return &NativeReporter{w: w, sprt: sprt}
}

func (r *NativeReporter) StartGame(white, black string, game, total int) {
	fmt.Fprintf(r.w, "== game %d/%d ==\n  white: %v\n  black: %v\n", game, total, white, black)
}

func (r *NativeReporter) EndGame(m match.Match, game, total int) {
	fmt.Fprintf(r.w, "== game %d/%d finished ==\n  result:      %v\n  termination: %v\n  reason:      %v\n  plies:       %d\n  duration:    %v\n",
		game, total, pgnResult(m), m.Termination, m.Reason, m.PlyCount(), m.Duration())
}

func (r *NativeReporter) PrintInterval(sb *stats.ScoreBoard, completed, total int) {
	fmt.Fprintf(r.w, "-- interval report: %d/%d games --\n", completed, total)
	for _, key := range sortedKeys(sb) {
		e := sb.Entries()[key]
		r.printPair(key, e)
	}
}

func (r *NativeReporter) PrintResult(key stats.PairKey, e stats.Entry) {
	fmt.Fprintf(r.w, "-- final result --\n")
	r.printPair(key, e)
}

func (r *NativeReporter) printPair(key stats.PairKey, e stats.Entry) {
	fmt.Fprintf(r.w, "%v vs %v\n", key.White, key.Black)
	fmt.Fprintf(r.w, "  wdl:         %d / %d / %d (%d games)\n", e.WDL.Wins, e.WDL.Draws, e.WDL.Losses, e.WDL.Games())

	wdlEst := stats.EloFromWDL(e.WDL)
	fmt.Fprintf(r.w, "  elo:         %.2f +/- %.2f\n", wdlEst.Elo, wdlEst.EloErr)
	fmt.Fprintf(r.w, "  nelo:        %.2f +/- %.2f\n", wdlEst.NElo, wdlEst.NEloErr)

	if e.Pentanomial.Pairs() > 0 {
		p := e.Pentanomial
		fmt.Fprintf(r.w, "  pentanomial: [%d, %d, %d, %d, %d, %d] (%d pairs)\n", p.LL, p.LD, p.WL, p.DD, p.WD, p.WW, p.Pairs())
		pEst := stats.EloFromPentanomial(p)
		fmt.Fprintf(r.w, "  ptnml nelo:  %.2f +/- %.2f\n", pEst.NElo, pEst.NEloErr)
	}

	if r.sprt != nil {
		var llr stats.LLR
		if e.Pentanomial.Pairs() > 0 && r.sprt.Model != stats.Bayesian {
			llr = stats.EvaluatePentanomial(*r.sprt, e.Pentanomial)
		} else if r.sprt.Model == stats.Bayesian {
			llr = stats.EvaluateBayesian(*r.sprt, e.WDL)
		} else {
			llr = stats.EvaluateWDL(*r.sprt, e.WDL)
		}
		fmt.Fprintf(r.w, "  sprt llr:    %.3f  bounds [%.3f, %.3f]  %v\n", llr.Value, llr.LowerBound, llr.UpperBound, sprtVerdict(llr.Decision))
	}
}

func (r *NativeReporter) EndTournament() {
	fmt.Fprintln(r.w, "== tournament complete ==")
}

func sprtVerdict(d stats.SPRTDecision) string {
	switch d {
	case stats.AcceptH0:
		return "H0 accepted"
	case stats.AcceptH1:
		return "H1 accepted"
	default:
		return "continue"
	}
}

func sortedKeys(sb *stats.ScoreBoard) []stats.PairKey {
	entries := sb.Entries()
	keys := make([]stats.PairKey, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}
