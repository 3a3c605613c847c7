package rules

import "fmt"

// RotatedBitboard tracks the same set of occupied squares in four
// orientations at once: normal, rotated 90 degrees (files become adjacent
// bits), and the two 45-degree diagonal rotations. Sliding-piece attacks
// then reduce to a table lookup keyed by the occupancy byte on the relevant
// rank/file/diagonal, rather than a ray-trace at move-generation time.
type RotatedBitboard struct {
	rot, rot90, rot45L, rot45R Bitboard
}

func NewRotatedBitboard(bb Bitboard) RotatedBitboard {
	var r RotatedBitboard
	for sq := ZeroSquare; sq < NumSquares; sq++ {
		if bb.IsSet(sq) {
			r = r.Xor(sq)
		}
	}
	return r
}

// Mask returns the occupancy in normal orientation.
func (r RotatedBitboard) Mask() Bitboard {
	return r.rot
}

// Xor toggles sq's occupancy in all four orientations at once.
func (r RotatedBitboard) Xor(sq Square) RotatedBitboard {
	return RotatedBitboard{
		rot:    r.rot ^ BitMask(sq),
		rot90:  r.rot90 ^ BitMask(rot90Square[sq]),
		rot45L: r.rot45L ^ BitMask(rot45LSquare[sq]),
		rot45R: r.rot45R ^ BitMask(rot45RSquare[sq]),
	}
}

func (r RotatedBitboard) String() string {
	return fmt.Sprintf("%v [rot90=%v, rot45L=%v, rot45R=%v]", r.rot, r.rot90, r.rot45L, r.rot45R)
}

// occupancyStates is the number of distinct occupancy bytes on a single
// rank, file or diagonal.
const occupancyStates = 256

// rot90Square maps a square to its index after a 90 degree rotation, so that
// a file occupies 8 adjacent bits the same way a rank does in rot.
//
// 63 62 61 60 59 58 57 56          63 55 47 39 31 23 15  7
// 55 54 53 52 51 50 49 48          62 54 46 38 30 22 14  6
// 47 46 45 44 43 42 41 40 rot90 -> 61 53 45 37 29 21 13  5
// 39 38 37 36 35 34 33 32          60 52 44 36 28 20 12  4
// 31 30 29 28 27 26 25 24          59 51 43 35 27 19 11  3
// 23 22 21 20 19 18 17 16          58 50 42 34 26 18 10  2
// 15 14 13 12 11 10  9  8          57 49 41 33 25 17  9  1
//  7  6  5  4  3  2  1  0          56 48 40 32 24 16  8  0
var rot90Square = [NumSquares]Square{
	0, 8, 16, 24, 32, 40, 48, 56,
	1, 9, 17, 25, 33, 41, 49, 57,
	2, 10, 18, 26, 34, 42, 50, 58,
	3, 11, 19, 27, 35, 43, 51, 59,
	4, 12, 20, 28, 36, 44, 52, 60,
	5, 13, 21, 29, 37, 45, 53, 61,
	6, 14, 22, 30, 38, 46, 54, 62,
	7, 15, 23, 31, 39, 47, 55, 63,
}

// RookAttackboard looks up the rook's rank attacks and file attacks against
// the current occupancy and unions them.
func RookAttackboard(bb RotatedBitboard, sq Square) Bitboard {
	rankState := bb.rot >> (sq.Rank() << 3) & 0xff
	fileState := bb.rot90 >> (sq.File() << 3) & 0xff
	return rankAttacks[sq][rankState] | fileAttacks[sq][fileState]
}

var (
	rankAttacks [NumSquares][occupancyStates]Bitboard // (square, rank occupancy byte) -> attacked squares
	fileAttacks [NumSquares][occupancyStates]Bitboard // (square, file occupancy byte) -> attacked squares
)

func init() {
	// Ray-trace each direction once per (square, occupancy) pair and cache
	// the result; e.g. a rook on index 2 of a rank with occupancy -XX---X-
	// attacks -X-XXXX-, stopping at (and including) the first blocker.
	for sq := ZeroSquare; sq < NumSquares; sq++ {
		for state := EmptyBitboard; state < occupancyStates; state++ {
			tmp := EmptyBitboard
			for i := Square(sq.File()) + 1; i < 8; i++ { // right: R--->X
				tmp |= BitMask(i + Square(sq.Rank()<<3))
				if BitMask(i)&state != 0 {
					break
				}
			}
			for i := int(sq.File()) - 1; i > -1; i-- { // left: X<-R
				tmp |= BitMask(Square(i) + Square(sq.Rank()<<3))
				if BitMask(Square(i))&state != 0 {
					break
				}
			}
			rankAttacks[sq][state] = tmp
		}
	}

	for sq := ZeroSquare; sq < NumSquares; sq++ {
		for state := EmptyBitboard; state < occupancyStates; state++ {
			tmp := EmptyBitboard
			for i := Square(sq.Rank()) + 1; i < 8; i++ { // down: R-->X (rot90)
				tmp |= BitMask(Square(sq.File()) + i<<3)
				if BitMask(i)&state != 0 {
					break
				}
			}
			for i := int(sq.Rank()) - 1; i > -1; i-- { // up: X<-R (rot90)
				tmp |= BitMask(Square(sq.File()) + Square(i<<3))
				if BitMask(Square(i))&state != 0 {
					break
				}
			}
			fileAttacks[sq][state] = tmp
		}
	}
}

// rot45LSquare maps a square to its index after a clockwise 45 degree
// rotation, so that the clockwise diagonal through the square occupies
// adjacent bits.
//
// 63 62 61 60 59 58 57 56            35 42 48 53 57 60 62 63
// 55 54 53 52 51 50 49 48            27 34 41 47 52 56 59 61
// 47 46 45 44 43 42 41 40 rot45L ->  20 26 33 40 46 51 55 58
// 39 38 37 36 35 34 33 32            14 19 25 32 39 45 50 54
// 31 30 29 28 27 26 25 24             9 13 18 24 31 38 44 49
// 23 22 21 20 19 18 17 16             5  8 12 17 23 30 37 43
// 15 14 13 12 11 10  9  8             2  4  7 11 16 22 29 36
//  7  6  5  4  3  2  1  0             0  1  3  6 10 15 21 28
var rot45LSquare = [NumSquares]Square{
	28, 21, 15, 10, 6, 3, 1, 0,
	36, 29, 22, 16, 11, 7, 4, 2,
	43, 37, 30, 23, 17, 12, 8, 5,
	49, 44, 38, 31, 24, 18, 13, 9,
	54, 50, 45, 39, 32, 25, 19, 14,
	58, 55, 51, 46, 40, 33, 26, 20,
	61, 59, 56, 52, 47, 41, 34, 27,
	63, 62, 60, 57, 53, 48, 42, 35,
}

// diag45LMask/diag45LOffset collapse the diagonal's varying length into a
// fixed 256-state lookup: shift rot45L right by the offset for sq and mask
// down to that diagonal's own bits.
var diag45LMask = [NumSquares]int{
	255, 127, 63, 31, 15, 7, 3, 1,
	127, 255, 127, 63, 31, 15, 7, 3,
	63, 127, 255, 127, 63, 31, 15, 7,
	31, 63, 127, 255, 127, 63, 31, 15,
	15, 31, 63, 127, 255, 127, 63, 31,
	7, 15, 31, 63, 127, 255, 127, 63,
	3, 7, 15, 31, 63, 127, 255, 127,
	1, 3, 7, 15, 31, 63, 127, 255,
}

var diag45LOffset = [NumSquares]int{
	28, 21, 15, 10, 6, 3, 1, 0,
	36, 28, 21, 15, 10, 6, 3, 1,
	43, 36, 28, 21, 15, 10, 6, 3,
	49, 43, 36, 28, 21, 15, 10, 6,
	54, 49, 43, 36, 28, 21, 15, 10,
	58, 54, 49, 43, 36, 28, 21, 15,
	61, 58, 54, 49, 43, 36, 28, 21,
	63, 61, 58, 54, 49, 43, 36, 28,
}

// rot45RSquare is the counter-clockwise analogue of rot45LSquare.
var rot45RSquare = [NumSquares]Square{
	0, 1, 3, 6, 10, 15, 21, 28,
	2, 4, 7, 11, 16, 22, 29, 36,
	5, 8, 12, 17, 23, 30, 37, 43,
	9, 13, 18, 24, 31, 38, 44, 49,
	14, 19, 25, 32, 39, 45, 50, 54,
	20, 26, 33, 40, 46, 51, 55, 58,
	27, 34, 41, 47, 52, 56, 59, 61,
	35, 42, 48, 53, 57, 60, 62, 63,
}

var diag45RMask = [NumSquares]int{
	1, 3, 7, 15, 31, 63, 127, 255,
	3, 7, 15, 31, 63, 127, 255, 127,
	7, 15, 31, 63, 127, 255, 127, 63,
	15, 31, 63, 127, 255, 127, 63, 31,
	31, 63, 127, 255, 127, 63, 31, 15,
	63, 127, 255, 127, 63, 31, 15, 7,
	127, 255, 127, 63, 31, 15, 7, 3,
	255, 127, 63, 31, 15, 7, 3, 1,
}

var diag45ROffset = [NumSquares]int{
	0, 1, 3, 6, 10, 15, 21, 28,
	1, 3, 6, 10, 15, 21, 28, 36,
	3, 6, 10, 15, 21, 28, 36, 43,
	6, 10, 15, 21, 28, 36, 43, 49,
	10, 15, 21, 28, 36, 43, 49, 54,
	15, 21, 28, 36, 43, 49, 54, 58,
	21, 28, 36, 43, 49, 54, 58, 61,
	28, 36, 43, 49, 54, 58, 61, 63,
}

// BishopAttackboard looks up the bishop's two diagonal attack sets against
// the current occupancy and unions them.
func BishopAttackboard(bb RotatedBitboard, sq Square) Bitboard {
	diagL := int(bb.rot45L>>diag45LOffset[sq]) & diag45LMask[sq]
	diagR := int(bb.rot45R>>diag45ROffset[sq]) & diag45RMask[sq]
	return diagAttacksL[sq][diagL] | diagAttacksR[sq][diagR]
}

var (
	diagAttacksL [NumSquares][occupancyStates]Bitboard
	diagAttacksR [NumSquares][occupancyStates]Bitboard
)

func init() {
	// Ray-trace each diagonal direction, same approach as the rook tables.
	for sq := ZeroSquare; sq < NumSquares; sq++ {
		for state := EmptyBitboard; state <= Bitboard(diag45LMask[sq]); state++ {
			tmp := EmptyBitboard
			for i := 1; i < minRF(8-sq.Rank(), 8-sq.File()); i++ { // up-left: X<--B (rot45L)
				tmp |= BitMask(Square(sq.Rank().V()+i)<<3 + Square(sq.File().V()+i))
				if BitMask(Square(minRF(sq.Rank(), sq.File())+i))&state != 0 {
					break
				}
			}
			for i := 1; i < minRF(sq.Rank(), sq.File())+1; i++ { // down-right: B-->X (rot45L)
				tmp |= BitMask(Square(sq.Rank().V()-i)<<3 + Square(sq.File().V()-i))
				if BitMask(Square(minRF(sq.Rank(), sq.File())-i))&state != 0 {
					break
				}
			}
			diagAttacksL[sq][state] = tmp
		}
	}

	for sq := ZeroSquare; sq < NumSquares; sq++ {
		for state := EmptyBitboard; state <= Bitboard(diag45RMask[sq]); state++ {
			tmp := EmptyBitboard
			for i := 1; i < minRF(8-sq.Rank(), sq.File()+1); i++ { // up-right: B-->X (rot45R)
				tmp |= BitMask(Square(sq.Rank().V()+i)<<3 + Square(sq.File().V()-i))
				if BitMask(Square(minRF(sq.Rank(), 7-sq.File())+i))&state != 0 {
					break
				}
			}
			for i := 1; i < minRF(sq.Rank()+1, 8-sq.File()); i++ { // down-left: X<-R (rot45R)
				tmp |= BitMask(Square(sq.Rank().V()-i)<<3 + Square(sq.File().V()+i))
				if BitMask(Square(minRF(sq.Rank(), 7-sq.File())-i))&state != 0 {
					break
				}
			}
			diagAttacksR[sq][state] = tmp
		}
	}
}

// QueenAttackboard is the union of rook and bishop attacks, since a queen
// moves as either.
func QueenAttackboard(bb RotatedBitboard, sq Square) Bitboard {
	return RookAttackboard(bb, sq) | BishopAttackboard(bb, sq)
}

func minRF(r Rank, f File) int {
	if int(r) < int(f) {
		return int(r)
	}
	return int(f)
}
