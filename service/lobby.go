package service

import (
	"fmt"

	"github.com/pawnhall/gameclient/protocol"
	"github.com/pawnhall/gameclient/stream"
)

// Phase is the lobby's coarse state as announced by the server.
type Phase int

const (
	// PhaseWaiting: the lobby is waiting for players to become ready.
	PhaseWaiting Phase = iota

	// PhaseCountdown: enough players are ready, game start is imminent.
	PhaseCountdown

	// PhasePlaying: a game is underway.
	PhasePlaying
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseCountdown:
		return "countdown"
	case PhasePlaying:
		return "playing"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Lobby is the lobby sub-service facade. Besides the raw event stream it
// tracks the current phase, which resets to waiting whenever the session
// ends.
type Lobby struct {
	port   *Port
	events *stream.Stream[protocol.LobbyEvent]
	phase  *stream.Value[Phase]
}

// NewLobby registers the Lobby sub-service on x.
func NewLobby(x *Mux) (*Lobby, error) {
	port, err := x.register(protocol.ServiceLobby, false)
	if err != nil {
		return nil, err
	}
	l := &Lobby{
		port:   port,
		events: stream.New[protocol.LobbyEvent](),
		phase:  stream.NewValue(PhaseWaiting),
	}
	port.resetHook = func() { l.phase.Set(PhaseWaiting) }
	port.Events().Subscribe(l.handle)
	return l, nil
}

// Ready declares the local player ready for the next game.
func (l *Lobby) Ready() error {
	return l.port.Send(protocol.ReadyArgs()...)
}

// Events exposes decoded lobby events.
func (l *Lobby) Events() *stream.Stream[protocol.LobbyEvent] {
	return l.events
}

// Phase exposes the current lobby phase with initial-value semantics.
func (l *Lobby) Phase() *stream.Value[Phase] {
	return l.phase
}

func (l *Lobby) handle(args []string) {
	ev, err := protocol.ParseLobbyEvent(args)
	if err != nil {
		l.port.fail(err)
		return
	}

	switch ev.(type) {
	case protocol.BeginCountdown:
		l.phase.Set(PhaseCountdown)
	case protocol.EndCountdown, protocol.Waiting:
		l.phase.Set(PhaseWaiting)
	case protocol.Playing:
		l.phase.Set(PhasePlaying)
	}
	l.events.Publish(ev)
}
