// Package rules contains the chess rules library used by the tournament
// runner to validate engine moves: board representation, legal move
// generation, and position hashing. It is deliberately narrow: no search,
// no evaluation, no notation beyond pure coordinate and FEN.
package rules

import "fmt"

// Draw thresholds. A zobrist-hash collision between plies with the same turn
// can satisfy the hash equality check without being an actual repetition, so
// PushMove confirms against identicalPositionCount before declaring a draw.
const (
	repetitionDrawCount    = 3
	repetitionFivefold     = 5
	noProgressPlyLimit     = 100
)

// ply is one position reached during a game, linked to its predecessor so the
// board can unwind via PopMove and detect repetitions by walking backwards.
type ply struct {
	pos        *Position
	hash       ZobristHash
	noprogress int

	played Move // the move that led away from this ply, if it is not current
	prev   *ply
}

// Board tracks a position together with enough history (repetition counts,
// no-progress ply count, adjudicated result) to score a game correctly.
// Not safe for concurrent use.
type Board struct {
	zt          *ZobristTable
	repetitions map[ZobristHash]int

	fullmoves int
	turn      Color
	result    GameResult
	current   *ply
}

// NewBoard starts a board at pos, to move by turn, with the no-progress ply
// count and full-move number carried over from an external source (e.g. a
// FEN record).
func NewBoard(zt *ZobristTable, pos *Position, turn Color, noprogress, fullmoves int) *Board {
	start := &ply{
		pos:        pos,
		noprogress: noprogress,
		hash:       zt.Hash(pos, turn),
	}

	return &Board{
		zt:          zt,
		repetitions: map[ZobristHash]int{start.hash: 1},
		fullmoves:   fullmoves,
		turn:        turn,
		current:     start,
	}
}

// Fork branches off a new board sharing the history of plies played so far.
// The shared history must not be mutated through PopMove on the original
// board afterwards, or the fork's forward-move links go stale.
func (b *Board) Fork() *Board {
	repetitions := make(map[ZobristHash]int, len(b.repetitions))
	for hash, n := range b.repetitions {
		repetitions[hash] = n
	}

	return &Board{
		zt:          b.zt,
		repetitions: repetitions,
		fullmoves:   b.fullmoves,
		turn:        b.turn,
		result:      b.result,
		current: &ply{
			pos:        b.current.pos,
			hash:       b.current.hash,
			noprogress: b.current.noprogress,
			prev:       b.current.prev,
		},
	}
}

func (b *Board) Position() *Position {
	return b.current.pos
}

func (b *Board) Turn() Color {
	return b.turn
}

func (b *Board) NoProgress() int {
	return b.current.noprogress
}

func (b *Board) FullMoves() int {
	return b.fullmoves
}

func (b *Board) Result() GameResult {
	return b.result
}

// PushMove attempts to make a pseudo-legal move. Returns true iff legal.
func (b *Board) PushMove(m Move) bool {
	if b.result.Reason == Checkmate || b.result.Reason == Stalemate {
		return false // there are no legal moves
	} // else: ignore draws that are not always called correctly.

	next, ok := b.current.pos.Move(b.turn, m)
	if !ok {
		return false
	}

	// (1) Move is legal: link a new ply onto the history.

	next2 := &ply{
		pos:        next,
		hash:       b.zt.Hash(next, b.turn.Opponent()),
		noprogress: updateNoProgress(b.current.noprogress, m),
		prev:       b.current,
	}

	b.current.played = m
	b.current = next2

	// (2) Update board-level metadata.

	b.turn = b.turn.Opponent()
	b.repetitions[b.current.hash]++
	if b.turn == White {
		b.fullmoves++
	}

	// (3) Check whether a draw condition now applies.

	if b.repetitions[b.current.hash] >= repetitionDrawCount {
		switch actual := b.identicalPositionCount(b.current, b.turn, b.current.noprogress); {
		case actual >= repetitionFivefold:
			b.result.Outcome = Draw
			b.result.Reason = Repetition5
		case actual >= repetitionDrawCount:
			b.result.Outcome = Draw
			b.result.Reason = Repetition3
		default:
			// hash collision between non-identical positions, not a real repetition
		}
	}

	if b.current.noprogress >= noProgressPlyLimit {
		b.result.Outcome = Draw
		b.result.Reason = NoProgress
	}

	if m.Type == Capture || ((m.Type == CapturePromotion || m.Type == Promotion) && (m.Promotion == Bishop || m.Promotion == Knight)) {
		if b.current.pos.HasInsufficientMaterial() {
			b.result.Outcome = Draw
			b.result.Reason = InsufficientMaterial
		}
	}

	return true
}

func (b *Board) PopMove() (Move, bool) {
	if b.current.prev == nil {
		return Move{}, false
	}

	// (1) Update board-level metadata.

	b.turn = b.turn.Opponent()
	b.repetitions[b.current.hash]--
	b.result = GameResult{Outcome: Undecided} // a legal move was made, so not terminal
	if b.turn == Black {
		b.fullmoves--
	}

	// (2) Rewind to the previous ply.

	b.current = b.current.prev
	m := b.current.played
	b.current.played = Move{}
	return m, true
}

// AdjudicateNoLegalMoves adjudicates the position assuming no legal moves exist.
// The result is then either Mate or Stalemate.
func (b *Board) AdjudicateNoLegalMoves() GameResult {
	result := GameResult{Outcome: Draw, Reason: Stalemate}
	if b.Position().IsChecked(b.Turn()) {
		result = GameResult{Outcome: Loss(b.Turn()), Reason: Checkmate}
	}
	b.Adjudicate(result)
	return result
}

// Adjudicate the position as given.
func (b *Board) Adjudicate(result GameResult) {
	b.result = result
}

// identicalPositionCount walks back through history counting plies truly
// identical to n (same side to move and same position, not just same hash)
// up to limit steps, to confirm a repetition rather than a hash collision.
func (b *Board) identicalPositionCount(n *ply, turn Color, limit int) int {
	count := 1
	t := b.turn.Opponent()

	p := n.prev
	for i := 1; i < limit && p != nil; i++ {
		if p.hash == n.hash && t == turn && *p.pos == *n.pos {
			count++
		}
		p = p.prev
		t = t.Opponent()
	}
	return count
}

// LastMove returns the last move played, if any.
func (b *Board) LastMove() (Move, bool) {
	if b.current.prev != nil {
		return b.current.prev.played, true
	}
	return Move{}, false
}

// HasCastled reports whether c has castled at any point in the game so far.
func (b *Board) HasCastled(c Color) bool {
	t := b.turn.Opponent()

	for p := b.current.prev; p != nil; p = p.prev {
		if t == c && (p.played.Type == QueenSideCastle || p.played.Type == KingSideCastle) {
			return true
		}
		t = t.Opponent()
	}
	return false
}

func (b *Board) String() string {
	return fmt.Sprintf("board{pos=%v, turn=%v, hash=%x (%v) noprogress=%v, fullmoves=%v, result=%v}", b.current.pos, b.turn, b.current.hash, b.repetitions[b.current.hash], b.current.noprogress, b.fullmoves, b.result)
}

func updateNoProgress(old int, m Move) int {
	if m.Type != Normal {
		return 0
	}
	return old + 1
}
