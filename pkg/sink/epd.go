package sink

import (
	"fmt"
	"strings"

	"github.com/herohde/ccmatch/pkg/match"
	"github.com/herohde/ccmatch/pkg/rules/fen"
)

// RenderEPD serializes the final position of a finished Match as one EPD line:
// the resulting FEN's board/castling/ep fields, followed by the hmvc/fmvn
// operations spec.md §4.8 requires.
func RenderEPD(m match.Match) string {
	final := match.FinalFEN(m)
	_, _, noprogress, fullmove, err := fen.Decode(final)
	if err != nil {
		return final
	}

	fields := strings.Fields(final)
	board := strings.Join(fields[:4], " ")

	return fmt.Sprintf("%v hmvc %d; fmvn %d;", board, noprogress, fullmove)
}
