// Command sprt is an offline Sequential Probability Ratio Test calculator:
// given accumulated WDL or pentanomial counts, it reports the Elo estimate,
// LLR, and SPRT decision without running any games.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/herohde/ccmatch/pkg/stats"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
)

var version = build.NewVersion(1, 0, 0)

var (
	alpha = flag.Float64("alpha", 0.05, "Type-I error rate")
	beta  = flag.Float64("beta", 0.05, "Type-II error rate")
	elo0  = flag.Float64("elo0", 0, "H0 Elo difference")
	elo1  = flag.Float64("elo1", 5, "H1 Elo difference")
	model = flag.String("model", "normalized", "Model: normalized, logistic, or bayesian")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: sprt [options] <counts>

SPRT evaluates a sequential probability ratio test from accumulated results.

  WDL counts:         sprt <wins> <draws> <losses>
  Pentanomial counts: sprt <LL> <LD> <WL+DD> <WD> <WW>

Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()
	logw.Infof(ctx, "sprt %v", version)

	args := flag.Args()

	m, err := parseModel(*model)
	if err != nil {
		logw.Exitf(ctx, "%v", err)
	}
	cfg := stats.SPRTConfig{Elo0: *elo0, Elo1: *elo1, Alpha: *alpha, Beta: *beta, Model: m}

	switch len(args) {
	case 3:
		w, err := parseCounts(args)
		if err != nil {
			logw.Exitf(ctx, "%v", err)
		}
		wdl := stats.WDL{Wins: w[0], Draws: w[1], Losses: w[2]}
		report(wdl, cfg)
	case 5:
		p, err := parseCounts(args)
		if err != nil {
			logw.Exitf(ctx, "%v", err)
		}
		// The offline calculator only ever sees the WL+DD sum, since that's the
		// external interface's 5-counter shape; fold it into WL with DD left at
		// zero, which Score/Variance treat identically either way.
		penta := stats.Pentanomial{LL: p[0], LD: p[1], WL: p[2], WD: p[3], WW: p[4]}
		reportPentanomial(penta, cfg)
	default:
		flag.Usage()
		logw.Exitf(ctx, "expected 3 WDL counts or 5 pentanomial counts, got %v", len(args))
	}
}

func parseModel(s string) (stats.SPRTModel, error) {
	switch strings.ToLower(s) {
	case "normalized":
		return stats.Normalized, nil
	case "logistic":
		return stats.Logistic, nil
	case "bayesian":
		return stats.Bayesian, nil
	default:
		return 0, fmt.Errorf("unknown -model %q", s)
	}
}

func parseCounts(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("bad count %q: %w", a, err)
		}
		out[i] = n
	}
	return out, nil
}

func report(w stats.WDL, cfg stats.SPRTConfig) {
	est := stats.EloFromWDL(w)
	llr := stats.EvaluateWDL(cfg, w)
	if cfg.Model == stats.Bayesian {
		llr = stats.EvaluateBayesian(cfg, w)
	}

	fmt.Printf("WDL Statistics:\n  Wins: %v\n  Draws: %v\n  Losses: %v\n\n", w.Wins, w.Draws, w.Losses)
	printParamsAndResult(cfg, est, llr)
}

func reportPentanomial(p stats.Pentanomial, cfg stats.SPRTConfig) {
	est := stats.EloFromPentanomial(p)
	llr := stats.EvaluatePentanomial(cfg, p)

	fmt.Printf("Pentanomial Statistics:\n  LL: %v\n  LD: %v\n  WL+DD: %v\n  WD: %v\n  WW: %v\n\n",
		p.LL, p.LD, p.WL+p.DD, p.WD, p.WW)
	printParamsAndResult(cfg, est, llr)
}

func printParamsAndResult(cfg stats.SPRTConfig, est stats.EloEstimate, llr stats.LLR) {
	fmt.Printf("Parameters:\n  Alpha: %v\n  Beta:  %v\n  Elo0:  %v\n  Elo1:  %v\n  Model: %v\n\n",
		cfg.Alpha, cfg.Beta, cfg.Elo0, cfg.Elo1, modelName(cfg.Model))

	fmt.Printf("Results:\n  Normalized Elo: %.2f +/- %.2f\n  LLR: %.4f [%.4f, %.4f]\n\n",
		est.NElo, est.NEloErr, llr.Value, llr.LowerBound, llr.UpperBound)

	switch llr.Decision {
	case stats.AcceptH0:
		fmt.Println("SPRT Result: H0 accepted")
	case stats.AcceptH1:
		fmt.Println("SPRT Result: H1 accepted")
	default:
		fmt.Println("SPRT Result: continue testing")
	}
}

func modelName(m stats.SPRTModel) string {
	switch m {
	case stats.Logistic:
		return "logistic"
	case stats.Bayesian:
		return "bayesian"
	default:
		return "normalized"
	}
}
