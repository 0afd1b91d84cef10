package protocol

import "strconv"

// Lobby keywords.
const (
	kwReadyPlayer      = "READY_PLAYER"
	kwWaitingForPlayer = "WAITING_FOR_PLAYER"
	kwBeginCountdown   = "BEGIN_COUNTDOWN"
	kwEndCountdown     = "END_COUNTDOWN"
	kwPlaying          = "PLAYING"
	kwWaiting          = "WAITING"
	kwReady            = "READY"
)

// LobbyEvent is an inbound lobby sub-service event.
type LobbyEvent interface {
	lobbyEvent()
}

// ReadyPlayer announces that a peer declared itself ready.
type ReadyPlayer struct {
	UID uint64
}

// WaitingForPlayer announces that the lobby is waiting on a specific peer.
type WaitingForPlayer struct {
	UID uint64
}

// BeginCountdown starts the pre-game countdown, in milliseconds.
type BeginCountdown struct {
	Millis int
}

// EndCountdown cancels a running countdown.
type EndCountdown struct{}

// Playing announces that a game is underway.
type Playing struct{}

// Waiting announces that the lobby is idle, waiting for players.
type Waiting struct{}

func (ReadyPlayer) lobbyEvent()      {}
func (WaitingForPlayer) lobbyEvent() {}
func (BeginCountdown) lobbyEvent()   {}
func (EndCountdown) lobbyEvent()     {}
func (Playing) lobbyEvent()          {}
func (Waiting) lobbyEvent()          {}

// ParseLobbyEvent decodes the argument tokens of a Lobby service event.
func ParseLobbyEvent(toks []string) (LobbyEvent, error) {
	if len(toks) == 0 {
		return nil, badCommand("")
	}
	keyword, rest := toks[0], toks[1:]
	a := newArgs(keyword, rest)

	var ev LobbyEvent
	switch keyword {
	case kwReadyPlayer:
		ev = ReadyPlayer{UID: a.Uint64("uid")}
	case kwWaitingForPlayer:
		ev = WaitingForPlayer{UID: a.Uint64("uid")}
	case kwBeginCountdown:
		ev = BeginCountdown{Millis: a.Int("ms")}
	case kwEndCountdown:
		ev = EndCountdown{}
	case kwPlaying:
		ev = Playing{}
	case kwWaiting:
		ev = Waiting{}
	default:
		return nil, badCommand(keyword)
	}
	if err := a.End(); err != nil {
		return nil, err
	}
	return ev, nil
}

// ReadyArgs builds the argument tokens of an outbound ready declaration.
func ReadyArgs() []string {
	return []string{kwReady}
}

// BeginCountdownArgs builds the tokens of a countdown announcement; used by
// test doubles standing in for a server.
func BeginCountdownArgs(millis int) []string {
	return []string{kwBeginCountdown, strconv.Itoa(millis)}
}
