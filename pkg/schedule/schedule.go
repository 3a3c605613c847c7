// Package schedule generates engine pairings for a tournament: round-robin
// (every engine plays every other engine) and gauntlet (a set of seed engines
// plays the rest). Both share the same pairing-enumeration state machine and
// differ only in how far player1 is allowed to advance before a round closes.
package schedule

// OpeningFetcher supplies the next opening's id for a new pairing, or false if
// the book has no openings (schedulers fetch one id per pairing, not per game).
type OpeningFetcher interface {
	FetchID() (int, bool)
}

// Pairing is one scheduled game: engine indices into the tournament's engine
// list, plus the round/pairing/game counters used for reporting and resume.
type Pairing struct {
	RoundID    int
	PairingID  int
	GameID     int
	OpeningID  int
	HasOpening bool
	Player1    int
	Player2    int
}

// base implements the shared player1/player2/games-per-pair/round state machine.
// Embedders supply player1Limit to bound how far player1 advances before a round
// is considered complete.
type base struct {
	book OpeningFetcher

	players       int
	rounds        int
	gamesPerRound int

	currentRound int
	gameCounter  int
	player1      int
	player2      int
	gamesPerPair int
	pairCounter  int
	opening      int
	hasOpening   bool

	player1Limit func(players int) int
	player2Reset int // player2's value at the start of each round
}

func newBase(book OpeningFetcher, players, rounds, games, playedGames int, player1Limit func(int) int) *base {
	b := &base{
		book:          book,
		players:       players,
		rounds:        rounds,
		gamesPerRound: games,
		gameCounter:   playedGames,
		player1:       0,
		player2:       1,
		gamesPerPair:  0,
		pairCounter:   playedGames / games,
		player1Limit:  player1Limit,
		player2Reset:  1,
	}
	b.currentRound = playedGames/games + 1
	return b
}

// Next returns the next pairing to play, or false once all rounds are exhausted.
func (b *base) Next() (Pairing, bool) {
	if b.currentRound > b.rounds {
		return Pairing{}, false
	}

	if b.gamesPerPair == 0 {
		b.opening, b.hasOpening = b.book.FetchID()
	}

	b.gameCounter++
	next := Pairing{
		RoundID:    b.currentRound,
		GameID:     b.gameCounter,
		Player1:    b.player1,
		Player2:    b.player2,
		PairingID:  b.pairCounter,
		OpeningID:  b.opening,
		HasOpening: b.hasOpening,
	}

	b.gamesPerPair++
	if b.gamesPerPair >= b.gamesPerRound {
		b.gamesPerPair = 0
		b.player2++
		b.pairCounter++

		if b.player2 >= b.players {
			b.player1++
			b.player2 = b.player1 + 1
		}

		if b.player1 >= b.player1Limit(b.players) {
			b.currentRound++
			b.player1 = 0
			b.player2 = b.player2Reset
		}
	}

	return next, true
}

// RoundRobin schedules every engine against every other engine, games-per-pair
// times, for the configured number of rounds.
type RoundRobin struct {
	*base
}

// NewRoundRobin creates a round-robin scheduler. playedGames resumes a previously
// interrupted tournament at the pairing corresponding to that many completed games.
func NewRoundRobin(book OpeningFetcher, players, rounds, games, playedGames int) *RoundRobin {
	return &RoundRobin{newBase(book, players, rounds, games, playedGames, func(players int) int {
		return players - 1
	})}
}

// Gauntlet schedules each of the first numSeeds engines against every other
// (non-seed) engine; seeds never play each other.
type Gauntlet struct {
	*base
	numSeeds int
}

// NewGauntlet creates a gauntlet scheduler with numSeeds seed engines (indices
// [0, numSeeds)) playing against the remaining engines.
func NewGauntlet(book OpeningFetcher, players, rounds, games, playedGames, numSeeds int) *Gauntlet {
	g := &Gauntlet{numSeeds: numSeeds}
	g.base = newBase(book, players, rounds, games, playedGames, func(players int) int {
		return g.numSeeds
	})
	reset := numSeeds
	if reset == 0 {
		reset = 1
	}
	g.base.player2Reset = reset
	g.base.player2 = reset // seeds never play each other: start player2 past the seed block
	return g
}
