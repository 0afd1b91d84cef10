package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/pawnhall/gameclient/protocol"
	"github.com/pawnhall/gameclient/stream"
	"github.com/pawnhall/gameclient/transport"
)

var (
	// ErrAlreadyConnected is returned by BeginSession while a session is
	// live.
	ErrAlreadyConnected = errors.New("already connected")

	// ErrNotConnected is returned by operations that need a live session
	// in the right state.
	ErrNotConnected = errors.New("not connected")
)

// State is the session's registration state.
type State int

const (
	// Disconnected is the initial and terminal state of every session.
	Disconnected State = iota

	// Unregistered holds between transport binding and handshake success.
	Unregistered

	// Registered holds once the server confirmed the handshake.
	Registered
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Unregistered:
		return "unregistered"
	case Registered:
		return "registered"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Machine is the session state machine. It owns at most one live
// transport.Subject, tracks the local identity and the peer set, and exposes
// transitions, peer snapshots, inbound sub-service lines and failures as
// streams.
type Machine struct {
	mu      sync.Mutex
	state   State
	gen     uint64
	subject transport.Subject
	self    *protocol.Peer
	peers   map[uint64]protocol.Peer

	states   *stream.Value[State]
	peerList *stream.Stream[[]protocol.Peer]
	events   *stream.Stream[protocol.ServiceEvent]
	errs     *stream.Stream[error]
}

// NewMachine creates a Machine in the Disconnected state.
func NewMachine() *Machine {
	return &Machine{
		state:    Disconnected,
		states:   stream.NewValue(Disconnected),
		peerList: stream.New[[]protocol.Peer](),
		events:   stream.New[protocol.ServiceEvent](),
		errs:     stream.New[error](),
	}
}

// BeginSession binds subject as the session transport and moves to
// Unregistered. It fails with ErrAlreadyConnected unless the machine is
// Disconnected. The previous session's peer set and identity are replaced
// wholesale.
func (m *Machine) BeginSession(subject transport.Subject) error {
	m.mu.Lock()
	if m.state != Disconnected {
		m.mu.Unlock()
		return ErrAlreadyConnected
	}
	m.gen++
	gen := m.gen
	m.subject = subject
	m.self = nil
	m.peers = make(map[uint64]protocol.Peer)
	m.state = Unregistered
	m.mu.Unlock()

	m.states.Set(Unregistered)
	go m.readLoop(gen, subject)
	return nil
}

// Register sends the LOGIN handshake for the given identity. It fails with
// ErrNotConnected unless the machine is Unregistered. The state does not
// change until the server answers.
func (m *Machine) Register(uid uint64, name string) error {
	m.mu.Lock()
	if m.state != Unregistered {
		m.mu.Unlock()
		return ErrNotConnected
	}
	subject := m.subject
	m.mu.Unlock()

	return subject.Send(protocol.EncodeLogin(uid, name))
}

// EndSession initiates a graceful shutdown of the live transport. The final
// Disconnected state is reached asynchronously once the transport confirms
// closure.
func (m *Machine) EndSession() error {
	m.mu.Lock()
	if m.state == Disconnected {
		m.mu.Unlock()
		return ErrNotConnected
	}
	subject := m.subject
	m.mu.Unlock()

	return subject.Close()
}

// Send transmits one raw line on the live transport. Used by the sub-service
// multiplexer; fails fast with ErrNotConnected when no session is live.
func (m *Machine) Send(line string) error {
	m.mu.Lock()
	if m.state == Disconnected {
		m.mu.Unlock()
		return ErrNotConnected
	}
	subject := m.subject
	m.mu.Unlock()

	return subject.Send(line)
}

// State reports the current session state.
func (m *Machine) State() State {
	return m.states.Get()
}

// States exposes session transitions. Subscribers receive the then-current
// state immediately, then every transition in order.
func (m *Machine) States() *stream.Value[State] {
	return m.states
}

// Self reports the local identity; ok is false before registration succeeds
// and after disconnection.
func (m *Machine) Self() (peer protocol.Peer, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.self == nil {
		return protocol.Peer{}, false
	}
	return *m.self, true
}

// Peers returns a point-in-time snapshot of the peer set, self included,
// ordered by UID.
func (m *Machine) Peers() []protocol.Peer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// PeerUpdates exposes peer-list snapshots. Snapshots are published only in
// response to RequestPeers, decoupling membership churn from subscriber cost.
func (m *Machine) PeerUpdates() *stream.Stream[[]protocol.Peer] {
	return m.peerList
}

// RequestPeers publishes a fresh peer-list snapshot to PeerUpdates
// subscribers.
func (m *Machine) RequestPeers() {
	m.mu.Lock()
	snapshot := m.snapshotLocked()
	m.mu.Unlock()
	m.peerList.Publish(snapshot)
}

// ServiceEvents exposes inbound sub-service lines for the multiplexer.
func (m *Machine) ServiceEvents() *stream.Stream[protocol.ServiceEvent] {
	return m.events
}

// Errors exposes transport failures and fatal protocol violations.
func (m *Machine) Errors() *stream.Stream[error] {
	return m.errs
}

func (m *Machine) snapshotLocked() []protocol.Peer {
	snapshot := make([]protocol.Peer, 0, len(m.peers))
	for _, p := range m.peers {
		snapshot = append(snapshot, p)
	}
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].UID < snapshot[j].UID })
	return snapshot
}

// readLoop drains one transport's inbound lines, then finalizes the session.
// gen pins it to the session it was started for.
func (m *Machine) readLoop(gen uint64, subject transport.Subject) {
	for line := range subject.Inbound() {
		m.handleLine(gen, subject, line)
	}
	m.finish(gen, subject.Err())
}

func (m *Machine) handleLine(gen uint64, subject transport.Subject, line string) {
	msg, err := protocol.ParseMessage(line)
	if err != nil {
		if !m.isCurrent(gen) {
			return
		}
		// Core-level violations (a malformed handshake included) are
		// fatal to the session.
		m.errs.Publish(fmt.Errorf("protocol violation: %w", err))
		_ = subject.Close()
		return
	}

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return
	}

	switch msg := msg.(type) {
	case protocol.Registration:
		if m.state != Unregistered {
			m.mu.Unlock()
			return
		}
		self := msg.Self
		m.self = &self
		m.peers = make(map[uint64]protocol.Peer, len(msg.Peers)+1)
		m.peers[self.UID] = self
		for _, p := range msg.Peers {
			m.peers[p.UID] = p
		}
		m.state = Registered
		m.mu.Unlock()
		m.states.Set(Registered)

	case protocol.LoggedIn:
		m.peers[msg.Peer.UID] = msg.Peer
		m.mu.Unlock()

	case protocol.LoggedOut:
		delete(m.peers, msg.UID)
		m.mu.Unlock()

	case protocol.Interrupt:
		m.mu.Unlock()
		_ = subject.Close()

	case protocol.ServiceEvent:
		m.mu.Unlock()
		m.events.Publish(msg)

	default:
		m.mu.Unlock()
	}
}

func (m *Machine) isCurrent(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen == gen
}

// finish moves the session to Disconnected after its transport has closed.
// A stale generation is a previous session's transport winding down; it must
// not touch the current session.
func (m *Machine) finish(gen uint64, reason error) {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return
	}
	m.state = Disconnected
	m.subject = nil
	m.self = nil
	m.peers = nil
	m.mu.Unlock()

	if reason != nil {
		m.errs.Publish(fmt.Errorf("transport closed: %w", reason))
	}
	m.states.Set(Disconnected)
}
