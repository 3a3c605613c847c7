package resultstore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/herohde/ccmatch/pkg/resultstore"
	"github.com/herohde/ccmatch/pkg/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordGameIncrementsGamesPlayed(t *testing.T) {
	s := resultstore.New("")
	assert.Equal(t, 0, s.GamesPlayed())

	s.RecordGame("engineA", "engineB", 1)
	s.RecordGame("engineA", "engineB", 0)
	assert.Equal(t, 2, s.GamesPlayed())

	entries := s.Entries()
	e, ok := entries[stats.PairKey{White: "engineA", Black: "engineB"}]
	require.True(t, ok)
	assert.Equal(t, 1, e.WDL.Wins)
	assert.Equal(t, 1, e.WDL.Losses)
}

func TestSaveLoadRestoreRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resultstore.json")

	s := resultstore.New(path)
	require.NoError(t, s.SetConfig(
		map[string]any{"rounds": 2},
		map[string]any{"engineA": "path/a", "engineB": "path/b"},
	))

	s.RecordGame("engineA", "engineB", 1)
	s.RecordGame("engineA", "engineB", 0.5)
	s.RecordPair("engineA", "engineB", 1, 0.5)

	require.NoError(t, s.Save())

	snap, err := resultstore.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.GamesPlayed)
	require.Len(t, snap.Pairs, 1)
	assert.Equal(t, "engineA", snap.Pairs[0].White)
	assert.Equal(t, "engineB", snap.Pairs[0].Black)
	assert.Equal(t, 1, snap.Pairs[0].WDL.Wins)
	assert.Equal(t, 1, snap.Pairs[0].WDL.Draws)
	assert.Equal(t, 1, snap.Pairs[0].Pentanomial.WD)
	assert.Contains(t, string(snap.TournamentConfig), `"rounds":2`)
	assert.Contains(t, string(snap.EngineConfigs), `"engineA":"path/a"`)

	restored := resultstore.Restore(path, snap)
	assert.Equal(t, 2, restored.GamesPlayed())

	entries := restored.Entries()
	e, ok := entries[stats.PairKey{White: "engineA", Black: "engineB"}]
	require.True(t, ok)
	assert.Equal(t, 1, e.WDL.Wins)
	assert.Equal(t, 1, e.WDL.Draws)
	assert.Equal(t, 1, e.Pentanomial.WD)

	restored.RecordGame("engineA", "engineB", 1)
	assert.Equal(t, 3, restored.GamesPlayed())
}

func TestRunAutosaveSavesOnIntervalAndShutdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autosave.json")
	s := resultstore.New(path)
	s.RecordGame("engineA", "engineB", 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunAutosave(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunAutosave did not return after context cancellation")
	}

	snap, err := resultstore.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.GamesPlayed)
}

func TestSaveIsNoopWithEmptyPath(t *testing.T) {
	s := resultstore.New("")
	s.RecordGame("engineA", "engineB", 1)
	assert.NoError(t, s.Save())
}
