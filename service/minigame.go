package service

import (
	"github.com/pawnhall/gameclient/protocol"
	"github.com/pawnhall/gameclient/stream"
)

// Minigame is the board-game sub-service facade. Board contents are opaque
// payloads relayed to the display layer; the facade only tracks whose round
// it is so dependents can reset cleanly on disconnection.
type Minigame struct {
	port   *Port
	events *stream.Stream[protocol.MinigameEvent]
	round  *stream.Value[protocol.Color]
}

// NewMinigame registers the Minigame sub-service on x.
func NewMinigame(x *Mux) (*Minigame, error) {
	port, err := x.register(protocol.ServiceMinigame, false)
	if err != nil {
		return nil, err
	}
	g := &Minigame{
		port:   port,
		events: stream.New[protocol.MinigameEvent](),
		round:  stream.NewValue(protocol.Color("")),
	}
	port.resetHook = func() { g.round.Set("") }
	port.Events().Subscribe(g.handle)
	return g, nil
}

// Move requests moving a piece between two squares.
func (g *Minigame) Move(from, to protocol.Square) error {
	return g.port.Send(protocol.MoveArgs(from, to)...)
}

// End forfeits the game in progress.
func (g *Minigame) End() error {
	return g.port.Send(protocol.EndArgs()...)
}

// Events exposes decoded minigame events.
func (g *Minigame) Events() *stream.Stream[protocol.MinigameEvent] {
	return g.events
}

// Round exposes the color whose turn it is; empty when no game is underway.
func (g *Minigame) Round() *stream.Value[protocol.Color] {
	return g.round
}

func (g *Minigame) handle(args []string) {
	ev, err := protocol.ParseMinigameEvent(args)
	if err != nil {
		g.port.fail(err)
		return
	}

	switch ev := ev.(type) {
	case protocol.RoundFor:
		g.round.Set(ev.Color)
	case protocol.GameStop, protocol.VictoryFor:
		g.round.Set("")
	}
	g.events.Publish(ev)
}
