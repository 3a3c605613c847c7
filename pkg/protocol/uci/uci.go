// Package uci implements the client side of the Universal Chess Interface
// protocol: the command vocabulary a tournament runner sends to an engine
// subprocess and the replies it must parse back. It mirrors the token
// grammar of the UCI specification without imposing any I/O policy --
// callers own the transport (see pkg/engineproc).
package uci

import (
	"fmt"
	"strconv"
	"strings"
)

// Command builders. Each returns the exact line to write to the engine's stdin,
// without a trailing newline.

// UCI requests the engine identify itself and list its options.
func UCI() string {
	return "uci"
}

// IsReady requests a readyok synchronization barrier.
func IsReady() string {
	return "isready"
}

// NewGame resets engine state between games, per ucinewgame.
func NewGame() string {
	return "ucinewgame"
}

// SetOption sets a named UCI option, omitting the value clause if value is empty.
func SetOption(name, value string) string {
	if value == "" {
		return fmt.Sprintf("setoption name %v", name)
	}
	return fmt.Sprintf("setoption name %v value %v", name, value)
}

// Position sets the board either from startpos or an explicit FEN, followed by
// the moves played since, in long algebraic notation.
func Position(fen string, moves []string) string {
	var sb strings.Builder
	sb.WriteString("position ")
	if fen == "" || fen == "startpos" {
		sb.WriteString("startpos")
	} else {
		sb.WriteString("fen ")
		sb.WriteString(fen)
	}
	if len(moves) > 0 {
		sb.WriteString(" moves ")
		sb.WriteString(strings.Join(moves, " "))
	}
	return sb.String()
}

// GoLimit is the set of search limits accepted by the "go" command. A zero value
// for a numeric field omits that token; Infinite and Ponder are booleans.
type GoLimit struct {
	WTime, BTime int // remaining time, ms
	WInc, BInc   int // increment per move, ms
	MovesToGo    int
	Depth        int
	Nodes        int64
	MoveTime     int // fixed time for this move, ms
	Infinite     bool
}

// Go builds a "go" command from the given limits. Fields that are zero are omitted,
// except MoveTime/Infinite which, when set, take precedence over the clock fields.
func Go(l GoLimit) string {
	var parts []string
	parts = append(parts, "go")

	if l.Infinite {
		parts = append(parts, "infinite")
		return strings.Join(parts, " ")
	}
	if l.MoveTime > 0 {
		parts = append(parts, "movetime", strconv.Itoa(l.MoveTime))
		return strings.Join(parts, " ")
	}

	if l.WTime > 0 {
		parts = append(parts, "wtime", strconv.Itoa(l.WTime))
	}
	if l.BTime > 0 {
		parts = append(parts, "btime", strconv.Itoa(l.BTime))
	}
	if l.WInc > 0 {
		parts = append(parts, "winc", strconv.Itoa(l.WInc))
	}
	if l.BInc > 0 {
		parts = append(parts, "binc", strconv.Itoa(l.BInc))
	}
	if l.MovesToGo > 0 {
		parts = append(parts, "movestogo", strconv.Itoa(l.MovesToGo))
	}
	if l.Depth > 0 {
		parts = append(parts, "depth", strconv.Itoa(l.Depth))
	}
	if l.Nodes > 0 {
		parts = append(parts, "nodes", strconv.FormatInt(l.Nodes, 10))
	}
	return strings.Join(parts, " ")
}

// Stop aborts an ongoing search; the engine must still reply with bestmove.
func Stop() string {
	return "stop"
}

// Quit requests engine shutdown.
func Quit() string {
	return "quit"
}

// ScoreType distinguishes a centipawn evaluation from a forced mate distance.
type ScoreType int

const (
	NoScore ScoreType = iota
	Centipawns
	Mate
)

// Score is a parsed "info ... score" token.
type Score struct {
	Type  ScoreType
	Value int // centipawns, or moves-to-mate (signed; negative means mate against the side to move)
}

func (s Score) String() string {
	switch s.Type {
	case Mate:
		return fmt.Sprintf("mate %d", s.Value)
	case Centipawns:
		return fmt.Sprintf("cp %d", s.Value)
	default:
		return "none"
	}
}

// Info is a parsed "info" line. Unset numeric fields are left at zero; callers
// should consult the Has* fields set by ParseInfo to distinguish absence from zero.
type Info struct {
	Depth, SelDepth int
	Nodes           int64
	NPS             int64
	HashFull        int
	TBHits          int64
	MultiPV         int
	Score           Score
	PV              []string
	HasScore        bool
}

// ParseInfo parses a UCI "info ..." line into its component fields. Unrecognized
// tokens (currval, string, refutation, currline) are skipped without error, matching
// the UCI spec's forward-compatibility requirement that unknown tokens be ignored.
func ParseInfo(line string) (Info, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "info" {
		return Info{}, fmt.Errorf("not an info line: %q", line)
	}

	var info Info
	toks := fields[1:]
	for i := 0; i < len(toks); i++ {
		switch toks[i] {
		case "depth":
			i++
			info.Depth = atoi(toks, i)
		case "seldepth":
			i++
			info.SelDepth = atoi(toks, i)
		case "nodes":
			i++
			info.Nodes = atoi64(toks, i)
		case "nps":
			i++
			info.NPS = atoi64(toks, i)
		case "hashfull":
			i++
			info.HashFull = atoi(toks, i)
		case "tbhits":
			i++
			info.TBHits = atoi64(toks, i)
		case "multipv":
			i++
			info.MultiPV = atoi(toks, i)
		case "score":
			info.HasScore = true
			if i+1 < len(toks) {
				switch toks[i+1] {
				case "cp":
					info.Score = Score{Type: Centipawns, Value: int(atoi64(toks, i+2))}
					i += 2
				case "mate":
					info.Score = Score{Type: Mate, Value: int(atoi64(toks, i+2))}
					i += 2
				}
			}
		case "pv":
			info.PV = append([]string{}, toks[i+1:]...)
			i = len(toks)
		case "string":
			// rest of line is a free-form comment; nothing further to parse.
			i = len(toks)
		}
	}
	return info, nil
}

func atoi(toks []string, i int) int {
	if i < 0 || i >= len(toks) {
		return 0
	}
	v, _ := strconv.Atoi(toks[i])
	return v
}

func atoi64(toks []string, i int) int64 {
	if i < 0 || i >= len(toks) {
		return 0
	}
	v, _ := strconv.ParseInt(toks[i], 10, 64)
	return v
}

// BestMove is a parsed "bestmove [ponder ...]" line.
type BestMove struct {
	Move   string // "(none)" if the engine has no legal move
	Ponder string
}

// ParseBestMove parses a "bestmove" line.
func ParseBestMove(line string) (BestMove, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "bestmove" {
		return BestMove{}, fmt.Errorf("not a bestmove line: %q", line)
	}
	ret := BestMove{Move: fields[1]}
	if len(fields) >= 4 && fields[2] == "ponder" {
		ret.Ponder = fields[3]
	}
	return ret, nil
}

// IsUCIOk reports whether line is the uciok terminator of the uci handshake.
func IsUCIOk(line string) bool {
	return strings.TrimSpace(line) == "uciok"
}

// IsReadyOk reports whether line is the readyok reply to isready.
func IsReadyOk(line string) bool {
	return strings.TrimSpace(line) == "readyok"
}

// IsInfo reports whether line is an "info" line.
func IsInfo(line string) bool {
	return strings.HasPrefix(line, "info ") || line == "info"
}

// IsBestMove reports whether line is a "bestmove" line.
func IsBestMove(line string) bool {
	return strings.HasPrefix(line, "bestmove")
}

// IDName is a parsed "id name ..." line.
func IDName(line string) (string, bool) {
	const prefix = "id name "
	if strings.HasPrefix(line, prefix) {
		return strings.TrimSpace(line[len(prefix):]), true
	}
	return "", false
}

// IDAuthor is a parsed "id author ..." line.
func IDAuthor(line string) (string, bool) {
	const prefix = "id author "
	if strings.HasPrefix(line, prefix) {
		return strings.TrimSpace(line[len(prefix):]), true
	}
	return "", false
}

// Option is a parsed "option name ... type ... [default ...] [min ...] [max ...]" line.
type Option struct {
	Name    string
	Type    string
	Default string
	Min     string
	Max     string
	Vars    []string
}

// ParseOption parses an "option" line as advertised during the uci handshake.
func ParseOption(line string) (Option, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "option" {
		return Option{}, false
	}

	var opt Option
	i := 1
	for i < len(fields) {
		switch fields[i] {
		case "name":
			j := i + 1
			for j < len(fields) && fields[j] != "type" {
				j++
			}
			opt.Name = strings.Join(fields[i+1:j], " ")
			i = j
		case "type":
			if i+1 < len(fields) {
				opt.Type = fields[i+1]
			}
			i += 2
		case "default":
			if i+1 < len(fields) {
				opt.Default = fields[i+1]
			}
			i += 2
		case "min":
			if i+1 < len(fields) {
				opt.Min = fields[i+1]
			}
			i += 2
		case "max":
			if i+1 < len(fields) {
				opt.Max = fields[i+1]
			}
			i += 2
		case "var":
			if i+1 < len(fields) {
				opt.Vars = append(opt.Vars, fields[i+1])
			}
			i += 2
		default:
			i++
		}
	}
	return opt, opt.Name != ""
}
