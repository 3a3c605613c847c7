// Package book implements the opening book feeder: a deterministically
// shuffled, rotated, and rounds-truncated sequence of openings (EPD
// positions or short PGN lines) that the scheduler draws one id per pairing
// from, cycling back to the start once exhausted.
package book

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"

	"go.uber.org/atomic"
)

// Order controls whether openings are dealt in file order or shuffled.
type Order int

const (
	Sequential Order = iota
	Random
)

// Opening is one prepared starting position: either the standard start
// position (FEN == "") or an explicit FEN plus the moves already played from
// it (for PGN-sourced openings).
type Opening struct {
	FEN   string
	Moves []string
}

// Book is a fixed, ordered sequence of Openings plus a cursor that hands one
// out per call, wrapping around once exhausted.
type Book struct {
	openings []Opening
	cursor   atomic.Int64
}

// NewEmpty returns a book with no openings: every game starts from the
// standard position.
func NewEmpty() *Book {
	return &Book{}
}

// Config controls how a book is built from its source file.
type Config struct {
	Order              Order
	Seed               int64
	Rounds             int // truncate to at most this many distinct openings, 0 == no truncation
	Start              int // 1-based first opening index to start from (matches resume semantics)
	InitialMatchCount  int // games already played before this run started
	GamesPerPair       int // games scheduled per pairing, used to compute the resume offset
}

// NewFromEPD builds a book from an EPD file, one FEN per line, optionally gzip
// compressed (detected by a ".gz" suffix).
func NewFromEPD(path string, cfg Config) (*Book, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	openings := make([]Opening, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		openings = append(openings, Opening{FEN: line})
	}
	return build(openings, cfg), nil
}

// NewFromPGN builds a book from a PGN file, one opening line per game, each
// truncated to at most plies half-moves (0 == keep the whole game as an
// opening, which is unusual but allowed).
func NewFromPGN(path string, plies int, cfg Config) (*Book, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	games := parsePGNMoveLists(lines)
	openings := make([]Opening, 0, len(games))
	for _, moves := range games {
		if plies > 0 && len(moves) > plies {
			moves = moves[:plies]
		}
		openings = append(openings, Opening{Moves: moves})
	}
	return build(openings, cfg), nil
}

func build(openings []Opening, cfg Config) *Book {
	if cfg.Order == Random {
		shuffle(openings, cfg.Seed)
	}

	if n := len(openings); n > 0 {
		offset := 0
		if cfg.Start > 0 {
			offset = cfg.Start - 1
		}
		if cfg.GamesPerPair > 0 {
			offset += cfg.InitialMatchCount / cfg.GamesPerPair
		}
		rotate(openings, offset)
	}

	if cfg.Rounds > 0 && len(openings) > cfg.Rounds {
		openings = openings[:cfg.Rounds]
	}

	return &Book{openings: openings}
}

// shuffle is a seeded Fisher-Yates shuffle, matching the reference book's
// deterministic reshuffling given the same seed.
func shuffle(openings []Opening, seed int64) {
	r := rand.New(rand.NewSource(seed))
	for i := 0; i+1 < len(openings); i++ {
		j := i + r.Intn(len(openings)-i)
		openings[i], openings[j] = openings[j], openings[i]
	}
}

func rotate(openings []Opening, offset int) {
	n := len(openings)
	if n == 0 {
		return
	}
	offset = ((offset % n) + n) % n
	if offset == 0 {
		return
	}
	rotated := make([]Opening, n)
	for i := range openings {
		rotated[i] = openings[(i+offset)%n]
	}
	copy(openings, rotated)
}

// FetchID returns the next opening's index and advances the cursor, wrapping
// around once the book is exhausted. Returns false if the book has no openings.
func (b *Book) FetchID() (int, bool) {
	if len(b.openings) == 0 {
		return 0, false
	}
	idx := b.cursor.Add(1) - 1
	return int(idx % int64(len(b.openings))), true
}

// At returns the opening at idx, or the standard starting position if idx is
// out of range or the book is empty.
func (b *Book) At(idx int) Opening {
	if len(b.openings) == 0 || idx < 0 || idx >= len(b.openings) {
		return Opening{}
	}
	return b.openings[idx]
}

// Size returns the number of openings in the book.
func (b *Book) Size() int {
	return len(b.openings)
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("book: open %v: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("book: gzip %v: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// parsePGNMoveLists extracts each game's moves, stripped of move numbers and
// result markers, from a naive line-oriented PGN file: header lines (starting
// with "[") are skipped, and each remaining non-blank line is one game's
// movetext.
func parsePGNMoveLists(lines []string) [][]string {
	var games [][]string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "[") {
			continue
		}

		var moves []string
		for _, tok := range strings.Fields(line) {
			tok = strings.TrimRight(tok, ".")
			if tok == "" || isMoveNumber(tok) || isResult(tok) {
				continue
			}
			moves = append(moves, tok)
		}
		if len(moves) > 0 {
			games = append(games, moves)
		}
	}
	return games
}

func isMoveNumber(tok string) bool {
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isResult(tok string) bool {
	switch tok {
	case "1-0", "0-1", "1/2-1/2", "*":
		return true
	default:
		return false
	}
}
