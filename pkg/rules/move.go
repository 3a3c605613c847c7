package rules

import "fmt"

// MoveType classifies a move. Any type other than Normal resets the
// no-progress counter used for the fifty-move rule.
type MoveType uint8

const (
	Normal MoveType = iota
	Push             // pawn single-square advance
	Jump             // pawn two-square advance
	EnPassant
	QueenSideCastle
	KingSideCastle
	Capture
	Promotion
	CapturePromotion
)

// Move is a not-necessarily-legal move plus the metadata needed to apply and
// unapply it. Castling and en passant have no notation of their own beyond
// From/To, so Type disambiguates them.
type Move struct {
	Type      MoveType
	From, To  Square
	Promotion Piece // desired piece, set only for Promotion/CapturePromotion
	Capture   Piece // captured piece, set only for Capture/CapturePromotion/EnPassant
}

// ParseMove reads pure algebraic coordinate notation, e.g. "a2a4" or "a7a8q".
// The result carries only From/To/Promotion; a caller that needs Type and
// Capture populated must match it against a position's legal moves.
func ParseMove(str string) (Move, error) {
	runes := []rune(str)
	if len(runes) != 4 && len(runes) != 5 {
		return Move{}, fmt.Errorf("invalid move: %q", str)
	}

	from, err := ParseSquare(runes[0], runes[1])
	if err != nil {
		return Move{}, fmt.Errorf("invalid move %q: bad from-square: %w", str, err)
	}
	to, err := ParseSquare(runes[2], runes[3])
	if err != nil {
		return Move{}, fmt.Errorf("invalid move %q: bad to-square: %w", str, err)
	}
	if len(runes) == 4 {
		return Move{From: from, To: to}, nil
	}

	promo, ok := ParsePiece(runes[4])
	if !ok || promo == Pawn || promo == King {
		return Move{}, fmt.Errorf("invalid move %q: bad promotion piece", str)
	}
	return Move{From: from, To: to, Promotion: promo}, nil
}

// Equals compares the two moves' notation, ignoring Type and Capture.
func (m Move) Equals(o Move) bool {
	return m.From == o.From && m.To == o.To && m.Promotion == o.Promotion
}

func (m Move) String() string {
	if m.Promotion.IsValid() {
		return fmt.Sprintf("%v%v%v", m.From, m.To, m.Promotion)
	}
	return fmt.Sprintf("%v%v", m.From, m.To)
}
