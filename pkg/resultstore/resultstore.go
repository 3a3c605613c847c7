// Package resultstore aggregates match results in memory -- wrapping
// pkg/stats.ScoreBoard with the bookkeeping a resumable tournament run needs
// -- and periodically snapshots them to a single JSON file, so an identical
// invocation can resume at exactly the number of games already played.
package resultstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/seekerror/logw"

	"github.com/herohde/ccmatch/pkg/stats"
)

// PairSnapshot is one engine pair's accumulated result, in a form that
// round-trips through JSON without requiring ScoreBoard's internal pairing
// order to be reconstructed from a single string key.
type PairSnapshot struct {
	White       string            `json:"white"`
	Black       string            `json:"black"`
	WDL         stats.WDL         `json:"wdl"`
	Pentanomial stats.Pentanomial `json:"pentanomial"`
}

// Snapshot is the single JSON document persisted to disk: tournament and
// per-engine configuration (opaque to this package -- it only round-trips
// whatever the caller handed it), how many games have completed, and the
// full pairwise stats_map.
type Snapshot struct {
	SavedAt          time.Time       `json:"saved_at"`
	GamesPlayed      int             `json:"games_played"`
	TournamentConfig json.RawMessage `json:"tournament_config,omitempty"`
	EngineConfigs    json.RawMessage `json:"engine_configs,omitempty"`
	Pairs            []PairSnapshot  `json:"pairs"`
}

// Store wraps a ScoreBoard with a path to persist to and the config blobs
// that should travel with every snapshot. Safe for concurrent use.
type Store struct {
	mu  sync.Mutex
	sb  *stats.ScoreBoard
	sb0 Snapshot // fields other than Pairs/GamesPlayed, carried across saves

	path        string
	gamesPlayed int
}

// New creates an empty store that will snapshot to path on Save/RunAutosave.
// An empty path disables persistence: Save becomes a no-op.
func New(path string) *Store {
	return &Store{sb: stats.NewScoreBoard(), path: path}
}

// SetConfig stashes the tournament-wide and per-engine configuration to be
// carried in every future snapshot, marshaled as opaque JSON so this package
// never needs to know their Go types.
func (s *Store) SetConfig(tournamentConfig, engineConfigs any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tc, err := json.Marshal(tournamentConfig)
	if err != nil {
		return fmt.Errorf("resultstore: marshal tournament config: %w", err)
	}
	ec, err := json.Marshal(engineConfigs)
	if err != nil {
		return fmt.Errorf("resultstore: marshal engine configs: %w", err)
	}
	s.sb0.TournamentConfig = tc
	s.sb0.EngineConfigs = ec
	return nil
}

// RecordGame records one decided game's result, incrementing the games-played
// counter used for resume. See stats.ScoreBoard.RecordGame for score semantics.
func (s *Store) RecordGame(white, black string, score float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sb.RecordGame(white, black, score)
	s.gamesPlayed++
}

// RecordPair records one completed game-pair's pentanomial observation. It
// does not itself touch the games-played counter; callers also call
// RecordGame once per individual game in the pair.
func (s *Store) RecordPair(engineA, engineB string, scoreAasWhite, scoreAasBlack float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sb.RecordPair(engineA, engineB, scoreAasWhite, scoreAasBlack)
}

// GamesPlayed returns the number of games recorded so far, used by the
// scheduler to resume at the corresponding pairing.
func (s *Store) GamesPlayed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gamesPlayed
}

// Entries returns a snapshot of the current per-pair stats, for reporting.
func (s *Store) Entries() map[stats.PairKey]stats.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sb.Entries()
}

// Snapshot returns the current persistable state without writing it to disk.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := s.sb0
	snap.SavedAt = time.Now()
	snap.GamesPlayed = s.gamesPlayed

	for key, e := range s.sb.Entries() {
		snap.Pairs = append(snap.Pairs, PairSnapshot{White: key.White, Black: key.Black, WDL: e.WDL, Pentanomial: e.Pentanomial})
	}
	return snap
}

// Save writes the current state to Store's path, if one was configured.
func (s *Store) Save() error {
	s.mu.Lock()
	snap := s.snapshotLocked()
	path := s.path
	s.mu.Unlock()

	if path == "" {
		return nil
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("resultstore: marshal snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("resultstore: write %v: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("resultstore: rename %v to %v: %w", tmp, path, err)
	}
	return nil
}

// Load reads a previously saved Snapshot from path.
func Load(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("resultstore: read %v: %w", path, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("resultstore: unmarshal %v: %w", path, err)
	}
	return snap, nil
}

// Restore seeds a fresh Store from a previously loaded Snapshot, so a resumed
// tournament's ScoreBoard and games-played counter reflect every game already
// played.
func Restore(path string, snap Snapshot) *Store {
	s := New(path)
	s.sb0.TournamentConfig = snap.TournamentConfig
	s.sb0.EngineConfigs = snap.EngineConfigs
	s.gamesPlayed = snap.GamesPlayed

	for _, p := range snap.Pairs {
		_, e := s.sb.Pair(p.White, p.Black)
		e.WDL = p.WDL
		e.Pentanomial = p.Pentanomial
	}
	return s
}

// RunAutosave saves every interval until ctx is canceled, then performs one
// final save before returning. Intended to run in its own goroutine, owned
// and stopped by the tournament orchestrator's context.
func (s *Store) RunAutosave(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		<-ctx.Done()
		if err := s.Save(); err != nil {
			logw.Errorf(ctx, "resultstore: final save: %v", err)
		}
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Save(); err != nil {
				logw.Errorf(ctx, "resultstore: autosave: %v", err)
			}
		case <-ctx.Done():
			if err := s.Save(); err != nil {
				logw.Errorf(ctx, "resultstore: final save: %v", err)
			}
			return
		}
	}
}
