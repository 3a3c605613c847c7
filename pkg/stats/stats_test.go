package stats_test

import (
	"math"
	"testing"

	"github.com/herohde/ccmatch/pkg/stats"
	"github.com/stretchr/testify/assert"
)

func TestWDLScore(t *testing.T) {
	w := stats.WDL{Wins: 10, Draws: 5, Losses: 5}
	assert.InDelta(t, 0.625, w.Score(), 1e-9)
	assert.Equal(t, 20, w.Games())
}

func TestEloFromWDLEvenScoreIsZero(t *testing.T) {
	e := stats.EloFromWDL(stats.WDL{Wins: 10, Draws: 0, Losses: 10})
	assert.InDelta(t, 0, e.Elo, 1e-6)
}

func TestEloFromWDLWinningSideIsPositive(t *testing.T) {
	e := stats.EloFromWDL(stats.WDL{Wins: 60, Draws: 20, Losses: 20})
	assert.Greater(t, e.Elo, 0.0)
	assert.Greater(t, e.NElo, 0.0)
}

func TestPentanomialVsWDLVarianceScalingAsymmetry(t *testing.T) {
	// The same 100 games reported two ways: both yield a nonzero nElo. The
	// pentanomial's sqrt(2*variance) scaling (vs WDL's sqrt(variance)) offsets
	// its halved sample count, so the two nElo error bars come out equal here.
	w := stats.WDL{Wins: 55, Draws: 10, Losses: 35}
	wEst := stats.EloFromWDL(w)

	p := stats.Pentanomial{WW: 30, WD: 10, WL: 3, DD: 2, LD: 3, LL: 2}
	pEst := stats.EloFromPentanomial(p)

	assert.NotZero(t, wEst.NElo)
	assert.NotZero(t, pEst.NElo)
}

// Numerical anchors below are taken from a published reference run. LLR
// and nElo are checked to within 2% relative: the anchors themselves are
// rounded to two decimals, so a tighter bound would just be fitting noise.
const anchorRelTol = 0.02

func TestSPRTLLRNumericalAnchors(t *testing.T) {
	cases := []struct {
		name    string
		model   stats.SPRTModel
		wdl     *stats.WDL
		penta   *stats.Pentanomial
		elo0    float64
		elo1    float64
		wantLLR float64
	}{
		{
			name:    "normalized/wdl",
			model:   stats.Normalized,
			wdl:     &stats.WDL{Wins: 36433, Losses: 36027, Draws: 68692},
			elo0:    0,
			elo1:    2,
			wantLLR: 0.92,
		},
		{
			name:    "normalized/wdl-negative-elo0",
			model:   stats.Normalized,
			wdl:     &stats.WDL{Wins: 10871, Losses: 10650, Draws: 20431},
			elo0:    -1.75,
			elo1:    0.25,
			wantLLR: 2.30,
		},
		{
			name:    "logistic/wdl",
			model:   stats.Logistic,
			wdl:     &stats.WDL{Wins: 21404, Losses: 21184, Draws: 40708},
			elo0:    0.5,
			elo1:    2.5,
			wantLLR: -1.57,
		},
		{
			name:    "bayesian/wdl",
			model:   stats.Bayesian,
			wdl:     &stats.WDL{Wins: 68965, Losses: 68526, Draws: 128429},
			elo0:    0,
			elo1:    2,
			wantLLR: -1.26,
		},
		{
			name:    "normalized/pentanomial",
			model:   stats.Normalized,
			penta:   &stats.Pentanomial{LL: 365, LD: 16618, WL: 36029, DD: 200, WD: 16974, WW: 390},
			elo0:    0,
			elo1:    2,
			wantLLR: 2.25,
		},
		{
			name:    "logistic/pentanomial",
			model:   stats.Logistic,
			penta:   &stats.Pentanomial{LL: 871, LD: 26175, WL: 55003, DD: 980, WD: 26678, WW: 821},
			elo0:    0,
			elo1:    2,
			wantLLR: -4.98,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := stats.SPRTConfig{Elo0: c.elo0, Elo1: c.elo1, Alpha: 0.05, Beta: 0.05, Model: c.model}

			var llr stats.LLR
			switch {
			case c.model == stats.Bayesian:
				llr = stats.EvaluateBayesian(cfg, *c.wdl)
			case c.penta != nil:
				llr = stats.EvaluatePentanomial(cfg, *c.penta)
			default:
				llr = stats.EvaluateWDL(cfg, *c.wdl)
			}

			assert.InEpsilon(t, c.wantLLR, llr.Value, anchorRelTol)
		})
	}
}

func TestEloNumericalAnchors(t *testing.T) {
	cases := []struct {
		name        string
		wdl         *stats.WDL
		penta       *stats.Pentanomial
		wantNElo    float64
		wantNEloErr float64
	}{
		{
			name:        "wdl/losing",
			wdl:         &stats.WDL{Wins: 76, Losses: 89, Draws: 123},
			wantNElo:    -20.76,
			wantNEloErr: 40.13,
		},
		{
			name:        "wdl/winning",
			wdl:         &stats.WDL{Wins: 136, Losses: 96, Draws: 111},
			wantNElo:    49.77,
			wantNEloErr: 36.77,
		},
		{
			name:        "pentanomial/winning",
			penta:       &stats.Pentanomial{LL: 34, LD: 54, WL: 31, DD: 32, WD: 64, WW: 75},
			wantNElo:    57.94,
			wantNEloErr: 28.28,
		},
		{
			name:        "pentanomial/losing",
			penta:       &stats.Pentanomial{LL: 332, LD: 433, WL: 457, DD: 41, WD: 333, WW: 334},
			wantNElo:    -9.17,
			wantNEloErr: 10.96,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var est stats.EloEstimate
			if c.penta != nil {
				est = stats.EloFromPentanomial(*c.penta)
			} else {
				est = stats.EloFromWDL(*c.wdl)
			}

			assert.InEpsilon(t, c.wantNElo, est.NElo, anchorRelTol)
			assert.InEpsilon(t, c.wantNEloErr, est.NEloErr, anchorRelTol)
		})
	}
}

func TestSPRTAcceptsH1WhenStronglyWinning(t *testing.T) {
	cfg := stats.SPRTConfig{Elo0: 0, Elo1: 10, Alpha: 0.05, Beta: 0.05, Model: stats.Logistic}
	w := stats.WDL{Wins: 200, Draws: 50, Losses: 50}

	llr := stats.EvaluateWDL(cfg, w)
	assert.Equal(t, stats.AcceptH1, llr.Decision)
}

func TestSPRTAcceptsH0WhenEvenOverManyGames(t *testing.T) {
	cfg := stats.SPRTConfig{Elo0: 0, Elo1: 10, Alpha: 0.05, Beta: 0.05, Model: stats.Logistic}
	w := stats.WDL{Wins: 10000, Draws: 5000, Losses: 10000}

	llr := stats.EvaluateWDL(cfg, w)
	assert.Equal(t, stats.AcceptH0, llr.Decision)
}

func TestSPRTContinuesWithFewGames(t *testing.T) {
	cfg := stats.SPRTConfig{Elo0: 0, Elo1: 10, Alpha: 0.05, Beta: 0.05, Model: stats.Normalized}
	w := stats.WDL{Wins: 2, Draws: 1, Losses: 1}

	llr := stats.EvaluateWDL(cfg, w)
	assert.Equal(t, stats.Continue, llr.Decision)
}

func TestBayesianLLRFavorsH1WhenLopsided(t *testing.T) {
	cfg := stats.SPRTConfig{Elo0: 0, Elo1: 10, Alpha: 0.05, Beta: 0.05, Model: stats.Bayesian}
	w := stats.WDL{Wins: 300, Draws: 100, Losses: 100}

	llr := stats.EvaluateBayesian(cfg, w)
	assert.Greater(t, llr.Value, 0.0)
}

func TestScoreBoardRecordGameSwapsWhenOrderReversed(t *testing.T) {
	sb := stats.NewScoreBoard()
	sb.RecordGame("A", "B", 1) // A (white) beats B
	sb.RecordGame("B", "A", 1) // B (white) beats A, i.e. A loses as black

	_, e := sb.Pair("A", "B")
	assert.Equal(t, 1, e.WDL.Wins)
	assert.Equal(t, 1, e.WDL.Losses)
}

func TestScoreBoardPentanomialBuckets(t *testing.T) {
	sb := stats.NewScoreBoard()
	sb.RecordPair("A", "B", 1, 1)     // A wins both colors -> WW
	sb.RecordPair("A", "B", 1, 0)     // A wins as white, loses as black -> WL
	sb.RecordPair("A", "B", 0.5, 0.5) // A draws both -> DD

	_, e := sb.Pair("A", "B")
	assert.Equal(t, 1, e.Pentanomial.WW)
	assert.Equal(t, 1, e.Pentanomial.WL)
	assert.Equal(t, 1, e.Pentanomial.DD)
	assert.Equal(t, 3, e.Pentanomial.Pairs())
}

func TestZ95Constant(t *testing.T) {
	// Sanity check the compile-time literal against the standard normal quantile.
	assert.InDelta(t, 1.959963984540054, math.Abs(math.Erfinv(0.95)*math.Sqrt2), 0.01)
}
