package service

import (
	"github.com/pawnhall/gameclient/protocol"
	"github.com/pawnhall/gameclient/stream"
)

// Status is the status-checkout sub-service facade. Unlike the other
// services it may send from the Unregistered state: a checkout asks for
// occupancy without logging in.
type Status struct {
	port   *Port
	events *stream.Stream[protocol.Availability]
}

// NewStatus registers the Status sub-service on x.
func NewStatus(x *Mux) (*Status, error) {
	port, err := x.register(protocol.ServiceStatus, true)
	if err != nil {
		return nil, err
	}
	s := &Status{port: port, events: stream.New[protocol.Availability]()}
	port.Events().Subscribe(s.handle)
	return s, nil
}

// Checkout requests the server's occupancy snapshot.
func (s *Status) Checkout() error {
	return s.port.Send(protocol.CheckoutArgs()...)
}

// Availabilities exposes decoded availability responses.
func (s *Status) Availabilities() *stream.Stream[protocol.Availability] {
	return s.events
}

func (s *Status) handle(args []string) {
	av, err := protocol.ParseStatusEvent(args)
	if err != nil {
		s.port.fail(err)
		return
	}
	s.events.Publish(av)
}
