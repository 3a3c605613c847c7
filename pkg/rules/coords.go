package rules

import "fmt"

// File is a chess board file, FileH=0 .. FileA=7. Numbering runs backwards so
// that it lines up with Square's bit order. 3 bits.
type File uint8

const (
	FileH File = iota
	FileG
	FileF
	FileE
	FileD
	FileC
	FileB
	FileA

	ZeroFile File = 0
	NumFiles File = 8
)

var fileLetter = [NumFiles]byte{'h', 'g', 'f', 'e', 'd', 'c', 'b', 'a'}

func ParseFile(r rune) (File, bool) {
	for f, ch := range fileLetter {
		if lower(r) == lower(rune(ch)) {
			return File(f), true
		}
	}
	return 0, false
}

func lower(r rune) rune {
	if 'A' <= r && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

func (f File) IsValid() bool {
	return f <= FileA
}

// V returns the file as a plain int, for use in arithmetic with Rank offsets.
func (f File) V() int {
	return int(f)
}

func (f File) String() string {
	if !f.IsValid() {
		return "?"
	}
	return string(fileLetter[f])
}

// Rank is a chess board rank, Rank1=0 .. Rank8=7. 3 bits.
type Rank uint8

const (
	Rank1 Rank = iota
	Rank2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8

	ZeroRank Rank = 0
	NumRanks Rank = 8
)

func ParseRank(r rune) (Rank, bool) {
	if r < '1' || r > '8' {
		return 0, false
	}
	return Rank(r - '1'), true
}

func (r Rank) IsValid() bool {
	return r <= Rank8
}

func (r Rank) V() int {
	return int(r)
}

func (r Rank) String() string {
	if !r.IsValid() {
		return "?"
	}
	return fmt.Sprintf("%d", r+1)
}

// Square is a bit-index into a Bitboard: H1=0, G1=1, .., A8=63. 6 bits.
//
// The file runs fastest, so a rank occupies 8 consecutive indices and the
// whole board is addressed as rank<<3 | file.
type Square uint8

const (
	ZeroSquare Square = 0
	NumSquares Square = 64
)

// Named squares for the handful of callers (castling, en passant, tests)
// that read better with a literal square than with NewSquare(file, rank).
const (
	H1 Square = iota
	G1
	F1
	E1
	D1
	C1
	B1
	A1
	H2
	G2
	F2
	E2
	D2
	C2
	B2
	A2
	H3
	G3
	F3
	E3
	D3
	C3
	B3
	A3
	H4
	G4
	F4
	E4
	D4
	C4
	B4
	A4
	H5
	G5
	F5
	E5
	D5
	C5
	B5
	A5
	H6
	G6
	F6
	E6
	D6
	C6
	B6
	A6
	H7
	G7
	F7
	E7
	D7
	C7
	B7
	A7
	H8
	G8
	F8
	E8
	D8
	C8
	B8
	A8
)

func NewSquare(f File, r Rank) Square {
	return Square(r&0x7)<<3 | Square(f&0x7)
}

func ParseSquare(f, r rune) (Square, error) {
	file, ok := ParseFile(f)
	if !ok {
		return 0, fmt.Errorf("invalid file: %v", f)
	}
	rank, ok := ParseRank(r)
	if !ok {
		return 0, fmt.Errorf("invalid rank: %v", r)
	}
	return NewSquare(file, rank), nil
}

func ParseSquareStr(str string) (Square, error) {
	runes := []rune(str)
	if len(runes) != 2 {
		return 0, fmt.Errorf("invalid square: %v", str)
	}
	return ParseSquare(runes[0], runes[1])
}

func (s Square) IsValid() bool {
	return s <= A8
}

func (s Square) File() File {
	return File(s & 0x7)
}

func (s Square) Rank() Rank {
	return Rank(s >> 3 & 0x7)
}

func (s Square) String() string {
	return fmt.Sprintf("%v%v", s.File(), s.Rank())
}
