package protocol

import "strconv"

// Minigame keywords.
const (
	kwStart       = "START"
	kwStop        = "STOP"
	kwRoundFor    = "ROUND_FOR"
	kwSquareState = "SQUARE_STATE"
	kwMoved       = "MOVED"
	kwPawnCounts  = "PAWN_COUNTS"
	kwVictoryFor  = "VICTORY_FOR"
	kwMove        = "MOVE"
	kwEnd         = "END"
)

// Color identifies one side of a board game.
type Color string

const (
	White Color = "WHITE"
	Black Color = "BLACK"
)

// Owner is the occupancy of one board square.
type Owner string

const (
	Free       Owner = "FREE"
	OwnedWhite Owner = "WHITE"
	OwnedBlack Owner = "BLACK"
)

// Square addresses one board cell by line and column.
type Square struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// MinigameEvent is an inbound minigame sub-service event. The payloads are
// opaque to the session core; only the minigame facade interprets them.
type MinigameEvent interface {
	minigameEvent()
}

// GameStart announces a new game between two peers.
type GameStart struct {
	White uint64
	Black uint64
}

// GameStop aborts the game in progress.
type GameStop struct{}

// RoundFor gives the turn to one color.
type RoundFor struct {
	Color Color
}

// SquareState reports the occupancy of one square.
type SquareState struct {
	Square Square
	Owner  Owner
}

// PieceMoved reports a confirmed move.
type PieceMoved struct {
	From Square
	To   Square
}

// PawnCounts reports the remaining pawns per side.
type PawnCounts struct {
	White int
	Black int
}

// VictoryFor declares the winning color.
type VictoryFor struct {
	Color Color
}

func (GameStart) minigameEvent()   {}
func (GameStop) minigameEvent()    {}
func (RoundFor) minigameEvent()    {}
func (SquareState) minigameEvent() {}
func (PieceMoved) minigameEvent()  {}
func (PawnCounts) minigameEvent()  {}
func (VictoryFor) minigameEvent()  {}

// ParseMinigameEvent decodes the argument tokens of a Minigame service event.
func ParseMinigameEvent(toks []string) (MinigameEvent, error) {
	if len(toks) == 0 {
		return nil, badCommand("")
	}
	keyword, rest := toks[0], toks[1:]
	a := newArgs(keyword, rest)

	var ev MinigameEvent
	switch keyword {
	case kwStart:
		ev = GameStart{White: a.Uint64("whiteUid"), Black: a.Uint64("blackUid")}
	case kwStop:
		ev = GameStop{}
	case kwRoundFor:
		ev = RoundFor{Color: Color(a.Enum("color", string(White), string(Black)))}
	case kwSquareState:
		ev = SquareState{
			Square: Square{Line: a.Int("line"), Col: a.Int("col")},
			Owner:  Owner(a.Enum("state", string(Free), string(OwnedWhite), string(OwnedBlack))),
		}
	case kwMoved:
		ev = PieceMoved{
			From: Square{Line: a.Int("fromLine"), Col: a.Int("fromCol")},
			To:   Square{Line: a.Int("toLine"), Col: a.Int("toCol")},
		}
	case kwPawnCounts:
		ev = PawnCounts{White: a.Int("white"), Black: a.Int("black")}
	case kwVictoryFor:
		ev = VictoryFor{Color: Color(a.Enum("color", string(White), string(Black)))}
	default:
		return nil, badCommand(keyword)
	}
	if err := a.End(); err != nil {
		return nil, err
	}
	return ev, nil
}

// MoveArgs builds the argument tokens of an outbound move request.
func MoveArgs(from, to Square) []string {
	return []string{
		kwMove,
		strconv.Itoa(from.Line), strconv.Itoa(from.Col),
		strconv.Itoa(to.Line), strconv.Itoa(to.Col),
	}
}

// ParseMoveArgs decodes a move request's tokens back into its coordinates.
// Servers use this shape; the client keeps it next to MoveArgs so the two
// sides of the grammar cannot drift apart.
func ParseMoveArgs(toks []string) (from, to Square, err error) {
	if len(toks) == 0 || toks[0] != kwMove {
		kw := ""
		if len(toks) > 0 {
			kw = toks[0]
		}
		return Square{}, Square{}, badCommand(kw)
	}
	a := newArgs(kwMove, toks[1:])
	from = Square{Line: a.Int("fromLine"), Col: a.Int("fromCol")}
	to = Square{Line: a.Int("toLine"), Col: a.Int("toCol")}
	if err := a.End(); err != nil {
		return Square{}, Square{}, err
	}
	return from, to, nil
}

// EndArgs builds the argument tokens of an outbound forfeit request.
func EndArgs() []string {
	return []string{kwEnd}
}
