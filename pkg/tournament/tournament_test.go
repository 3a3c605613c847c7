package tournament

import (
	"testing"

	"github.com/herohde/ccmatch/pkg/match"
	"github.com/herohde/ccmatch/pkg/resultstore"
	"github.com/herohde/ccmatch/pkg/stats"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Engines: []EngineConfig{
			{Name: "engine-a", Path: "/bin/true"},
			{Name: "engine-b", Path: "/bin/true"},
		},
		Rounds:          1,
		GamesPerPairing: 2,
		Concurrency:     1,
	}
}

func TestValidateRejectsTooFewEngines(t *testing.T) {
	cfg := validConfig()
	cfg.Engines = cfg.Engines[:1]
	assert.Error(t, validate(cfg))
}

func TestValidateRejectsDuplicateEngineNames(t *testing.T) {
	cfg := validConfig()
	cfg.Engines[1].Name = cfg.Engines[0].Name
	assert.Error(t, validate(cfg))
}

func TestValidateRejectsEmptyEngineName(t *testing.T) {
	cfg := validConfig()
	cfg.Engines[0].Name = ""
	assert.Error(t, validate(cfg))
}

func TestValidateRejectsBadGauntletSeeds(t *testing.T) {
	cfg := validConfig()
	cfg.GauntletSeeds = len(cfg.Engines) + 1
	assert.Error(t, validate(cfg))
}

func TestValidateRejectsNonPositiveRounds(t *testing.T) {
	cfg := validConfig()
	cfg.Rounds = 0
	assert.Error(t, validate(cfg))
}

func TestValidateRejectsBadGamesPerPairing(t *testing.T) {
	cfg := validConfig()
	cfg.GamesPerPairing = 3
	assert.Error(t, validate(cfg))
}

func TestValidateRejectsNonPositiveConcurrency(t *testing.T) {
	cfg := validConfig()
	cfg.Concurrency = 0
	assert.Error(t, validate(cfg))
}

func TestValidateRejectsBadSPRTBounds(t *testing.T) {
	cfg := validConfig()
	cfg.SPRT = lang.Some(stats.SPRTConfig{Alpha: 0.05, Beta: 0.05, Elo0: 5, Elo1: 0})
	assert.Error(t, validate(cfg))

	cfg.SPRT = lang.Some(stats.SPRTConfig{Alpha: 1.5, Beta: 0.05, Elo0: 0, Elo1: 5})
	assert.Error(t, validate(cfg))
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	cfg := validConfig()
	cfg.SPRT = lang.Some(stats.SPRTConfig{Alpha: 0.05, Beta: 0.05, Elo0: 0, Elo1: 5})
	assert.NoError(t, validate(cfg))
}

func TestBuildBookNoBookIsEmpty(t *testing.T) {
	bk, err := buildBook(BookConfig{}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, bk.Size())
}

func TestTotalGamesRoundRobin(t *testing.T) {
	tr := &Tournament{cfg: Config{
		Engines:         []EngineConfig{{Name: "a"}, {Name: "b"}, {Name: "c"}},
		Rounds:          2,
		GamesPerPairing: 2,
	}}
	// 3 players round-robin -> 3 pairs, * 2 games/pairing * 2 rounds
	assert.Equal(t, 12, tr.totalGames())
}

func TestTotalGamesGauntlet(t *testing.T) {
	tr := &Tournament{cfg: Config{
		Engines:         []EngineConfig{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}},
		GauntletSeeds:   1,
		Rounds:          1,
		GamesPerPairing: 1,
	}}
	// 1 seed vs. 3 others -> 3 pairs
	assert.Equal(t, 3, tr.totalGames())
}

func TestSprtConcludedFalseWhenNoEntries(t *testing.T) {
	tr := &Tournament{cfg: Config{GamesPerPairing: 1}, store: resultstore.Restore("", resultstore.Snapshot{})}
	assert.False(t, tr.sprtConcluded(stats.SPRTConfig{Alpha: 0.05, Beta: 0.05, Elo0: 0, Elo1: 5}))
}

func TestSprtConcludedTrueOnLopsidedResult(t *testing.T) {
	store := resultstore.Restore("", resultstore.Snapshot{})
	for i := 0; i < 200; i++ {
		store.RecordGame("engine-a", "engine-b", 1)
	}
	for i := 0; i < 20; i++ {
		store.RecordGame("engine-a", "engine-b", 0)
	}
	tr := &Tournament{cfg: Config{GamesPerPairing: 1}, store: store}
	assert.True(t, tr.sprtConcluded(stats.SPRTConfig{Alpha: 0.05, Beta: 0.05, Elo0: 0, Elo1: 5}))
}

func TestScoreboardSnapshotRoundTripsEntries(t *testing.T) {
	store := resultstore.Restore("", resultstore.Snapshot{})
	store.RecordGame("engine-a", "engine-b", 1)
	store.RecordGame("engine-a", "engine-b", 0.5)

	sb := scoreboardSnapshot(store)
	key, e := sb.Pair("engine-a", "engine-b")
	assert.Equal(t, "engine-a", key.White)
	assert.Equal(t, 1, e.WDL.Wins)
	assert.Equal(t, 1, e.WDL.Draws)
}

func TestScoreOf(t *testing.T) {
	assert.Equal(t, 1.0, scoreOf(match.Win))
	assert.Equal(t, 0.5, scoreOf(match.DrawResult))
	assert.Equal(t, 0.0, scoreOf(match.None))
}
