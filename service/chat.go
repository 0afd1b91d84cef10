package service

import (
	"github.com/pawnhall/gameclient/protocol"
	"github.com/pawnhall/gameclient/stream"
)

// Chat is the chat sub-service facade.
type Chat struct {
	port   *Port
	events *stream.Stream[protocol.ChatEvent]
}

// NewChat registers the Chat sub-service on x.
func NewChat(x *Mux) (*Chat, error) {
	port, err := x.register(protocol.ServiceChat, false)
	if err != nil {
		return nil, err
	}
	c := &Chat{port: port, events: stream.New[protocol.ChatEvent]()}
	port.Events().Subscribe(c.handle)
	return c, nil
}

// Say sends one chat message to every registered peer.
func (c *Chat) Say(text string) error {
	return c.port.Send(protocol.MessageArgs(text)...)
}

// Events exposes decoded chat events.
func (c *Chat) Events() *stream.Stream[protocol.ChatEvent] {
	return c.events
}

func (c *Chat) handle(args []string) {
	ev, err := protocol.ParseChatEvent(args)
	if err != nil {
		c.port.fail(err)
		return
	}
	c.events.Publish(ev)
}
