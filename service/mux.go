package service

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pawnhall/gameclient/protocol"
	"github.com/pawnhall/gameclient/session"
	"github.com/pawnhall/gameclient/stream"
)

var (
	// ErrNotRegistered is returned by sends attempted while the session is
	// not in a state that allows them.
	ErrNotRegistered = errors.New("not registered")

	// ErrDuplicateService is returned when a service name is registered
	// twice on the same mux.
	ErrDuplicateService = errors.New("service already registered")
)

// Mux is the sub-service multiplexer. It assigns request sequence numbers,
// routes inbound service lines to the port registered under the matching
// name, and funnels protocol errors into one stream.
type Mux struct {
	machine *session.Machine

	mu    sync.Mutex
	seq   uint64
	ports map[string]*Port

	errs    *stream.Stream[error]
	cancels []func()
}

// NewMux creates a Mux bound to machine. Close releases its subscriptions.
func NewMux(machine *session.Machine) *Mux {
	x := &Mux{
		machine: machine,
		ports:   make(map[string]*Port),
		errs:    stream.New[error](),
	}
	x.cancels = append(x.cancels,
		machine.ServiceEvents().Subscribe(x.route),
		machine.States().Subscribe(x.onState),
	)
	return x
}

// Register adds a sub-service port under a unique name. The port's sends are
// gated on the session being Registered.
func (x *Mux) Register(name string) (*Port, error) {
	return x.register(name, false)
}

func (x *Mux) register(name string, allowUnregistered bool) (*Port, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, exists := x.ports[name]; exists {
		return nil, fmt.Errorf("%s: %w", name, ErrDuplicateService)
	}
	p := &Port{
		mux:               x,
		name:              name,
		allowUnregistered: allowUnregistered,
		events:            stream.New[[]string](),
	}
	x.ports[name] = p
	return p, nil
}

// Errors exposes every sub-service protocol error.
func (x *Mux) Errors() *stream.Stream[error] {
	return x.errs
}

// Close detaches the mux from its machine.
func (x *Mux) Close() {
	for _, cancel := range x.cancels {
		cancel()
	}
	x.cancels = nil
}

// onState resets per-session state when a new session begins: the sequence
// counter restarts at 0 and poisoned ports interpret again.
func (x *Mux) onState(s session.State) {
	if s != session.Unregistered {
		return
	}
	x.mu.Lock()
	x.seq = 0
	ports := make([]*Port, 0, len(x.ports))
	for _, p := range x.ports {
		p.broken = false
		ports = append(ports, p)
	}
	x.mu.Unlock()

	for _, p := range ports {
		if p.resetHook != nil {
			p.resetHook()
		}
	}
}

func (x *Mux) route(ev protocol.ServiceEvent) {
	x.mu.Lock()
	p := x.ports[ev.Service]
	broken := p != nil && p.broken
	x.mu.Unlock()

	if p == nil {
		x.errs.Publish(fmt.Errorf("%s: %w", ev.Service, protocol.ErrBadCommand))
		return
	}
	if broken {
		return
	}
	p.events.Publish(ev.Args)
}

// Port is one registered sub-service's attachment to the mux.
type Port struct {
	mux               *Mux
	name              string
	allowUnregistered bool
	resetHook         func()

	// broken is guarded by mux.mu. Once set, inbound lines for this
	// service are dropped until the next session.
	broken bool

	events *stream.Stream[[]string]
}

// Name returns the service name the port is registered under.
func (p *Port) Name() string { return p.name }

// Events exposes the raw argument tokens routed to this service.
func (p *Port) Events() *stream.Stream[[]string] { return p.events }

// Send frames args as a sequenced request for this service and transmits it.
// The sequence number is assigned in send order, shared across all services
// of the session.
func (p *Port) Send(args ...string) error {
	state := p.mux.machine.State()
	allowed := state == session.Registered ||
		(p.allowUnregistered && state == session.Unregistered)
	if !allowed {
		return fmt.Errorf("%s: %w", p.name, ErrNotRegistered)
	}

	// Sequence assignment and transmission share the lock so numbers go
	// out in send order.
	p.mux.mu.Lock()
	defer p.mux.mu.Unlock()
	seq := p.mux.seq
	p.mux.seq++
	return p.mux.machine.Send(protocol.EncodeServiceRequest(seq, p.name, args...))
}

// fail reports a grammar violation and poisons the port for the rest of the
// session.
func (p *Port) fail(err error) {
	p.mux.mu.Lock()
	p.broken = true
	p.mux.mu.Unlock()
	p.mux.errs.Publish(fmt.Errorf("%s: %w", p.name, err))
}
