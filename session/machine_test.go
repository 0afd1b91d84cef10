package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawnhall/gameclient/protocol"
	"github.com/pawnhall/gameclient/transport"
)

// waitState blocks until the machine reaches want or the test deadline hits.
func waitState(t *testing.T, m *Machine, want State) {
	t.Helper()
	done := make(chan struct{})
	var once sync.Once
	cancel := m.States().Subscribe(func(s State) {
		if s == want {
			once.Do(func() { close(done) })
		}
	})
	defer cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for state %s (current %s)", want, m.State())
	}
}

func recvLine(t *testing.T, s transport.Subject) string {
	t.Helper()
	select {
	case line, ok := <-s.Inbound():
		require.True(t, ok, "inbound closed unexpectedly")
		return line
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for line")
		return ""
	}
}

// begin starts a session over a fresh pipe and returns the server end.
func begin(t *testing.T, m *Machine) transport.Subject {
	t.Helper()
	client, server := transport.Pipe()
	require.NoError(t, m.BeginSession(client))
	return server
}

func TestRegistrationPopulatesSelfAndPeers(t *testing.T) {
	m := NewMachine()
	server := begin(t, m)

	require.NoError(t, m.Register(7, "alice"))
	assert.Equal(t, "LOGIN 7 alice", recvLine(t, server))

	require.NoError(t, server.Send("REGISTRATION 7 alice 12 bob 15 carol"))
	waitState(t, m, Registered)

	self, ok := m.Self()
	require.True(t, ok)
	assert.Equal(t, protocol.Peer{UID: 7, Name: "alice"}, self)

	assert.Equal(t, []protocol.Peer{
		{UID: 7, Name: "alice"},
		{UID: 12, Name: "bob"},
		{UID: 15, Name: "carol"},
	}, m.Peers())
}

func TestBeginSessionWhileConnected(t *testing.T) {
	m := NewMachine()
	begin(t, m)

	other, _ := transport.Pipe()
	assert.ErrorIs(t, m.BeginSession(other), ErrAlreadyConnected)
}

func TestRegisterOutsideUnregistered(t *testing.T) {
	m := NewMachine()
	assert.ErrorIs(t, m.Register(7, "alice"), ErrNotConnected)

	server := begin(t, m)
	require.NoError(t, m.Register(7, "alice"))
	recvLine(t, server)
	require.NoError(t, server.Send("REGISTRATION 7 alice"))
	waitState(t, m, Registered)

	assert.ErrorIs(t, m.Register(7, "alice"), ErrNotConnected)
}

func TestJoinAndLeaveMaintainPeerSet(t *testing.T) {
	m := NewMachine()
	server := begin(t, m)
	require.NoError(t, m.Register(7, "alice"))
	recvLine(t, server)
	require.NoError(t, server.Send("REGISTRATION 7 alice"))
	waitState(t, m, Registered)

	require.NoError(t, server.Send("LOGGED_IN 20 eve"))
	require.Eventually(t, func() bool { return len(m.Peers()) == 2 },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, server.Send("LOGGED_OUT 20"))
	require.Eventually(t, func() bool { return len(m.Peers()) == 1 },
		2*time.Second, 10*time.Millisecond)
}

func TestPeerSnapshotsAreOnDemand(t *testing.T) {
	m := NewMachine()
	server := begin(t, m)
	require.NoError(t, m.Register(7, "alice"))
	recvLine(t, server)
	require.NoError(t, server.Send("REGISTRATION 7 alice"))
	waitState(t, m, Registered)

	var snapshots [][]protocol.Peer
	cancel := m.PeerUpdates().Subscribe(func(ps []protocol.Peer) {
		snapshots = append(snapshots, ps)
	})
	defer cancel()

	require.NoError(t, server.Send("LOGGED_IN 20 eve"))
	require.Eventually(t, func() bool { return len(m.Peers()) == 2 },
		2*time.Second, 10*time.Millisecond)

	// Membership churn alone publishes nothing.
	assert.Empty(t, snapshots)

	m.RequestPeers()
	require.Len(t, snapshots, 1)
	assert.Equal(t, []protocol.Peer{{UID: 7, Name: "alice"}, {UID: 20, Name: "eve"}}, snapshots[0])
}

func TestTransportFailureForcesDisconnected(t *testing.T) {
	m := NewMachine()

	var mu sync.Mutex
	var reported []error
	cancel := m.Errors().Subscribe(func(err error) {
		mu.Lock()
		reported = append(reported, err)
		mu.Unlock()
	})
	defer cancel()

	client, server := transport.Pipe()
	require.NoError(t, m.BeginSession(client))
	require.NoError(t, m.Register(7, "alice"))
	recvLine(t, server)
	require.NoError(t, server.Send("REGISTRATION 7 alice"))
	waitState(t, m, Registered)

	boom := errors.New("connection reset")
	transport.Fail(client, boom)
	waitState(t, m, Disconnected)

	mu.Lock()
	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], boom)
	mu.Unlock()

	_, ok := m.Self()
	assert.False(t, ok, "identity must be cleared on disconnection")
	assert.Empty(t, m.Peers())

	// Disconnection is terminal until a new session begins.
	assert.Equal(t, Disconnected, m.State())
	assert.ErrorIs(t, m.EndSession(), ErrNotConnected)
	assert.ErrorIs(t, m.Send("SERVICE REQUEST 0 Chat MESSAGE hi"), ErrNotConnected)
}

func TestInterruptTriggersGracefulClose(t *testing.T) {
	m := NewMachine()

	errc := make(chan error, 1)
	cancel := m.Errors().Subscribe(func(err error) {
		select {
		case errc <- err:
		default:
		}
	})
	defer cancel()

	server := begin(t, m)
	require.NoError(t, server.Send("INTERRUPT"))
	waitState(t, m, Disconnected)

	select {
	case err := <-errc:
		t.Fatalf("graceful close must not report an error, got %v", err)
	default:
	}
}

func TestMalformedHandshakeIsFatal(t *testing.T) {
	m := NewMachine()

	errc := make(chan error, 1)
	cancel := m.Errors().Subscribe(func(err error) {
		select {
		case errc <- err:
		default:
		}
	})
	defer cancel()

	server := begin(t, m)
	require.NoError(t, m.Register(7, "alice"))
	recvLine(t, server)
	require.NoError(t, server.Send("REGISTRATION seven alice"))

	waitState(t, m, Disconnected)
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, protocol.ErrMalformed)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a protocol violation on the error stream")
	}

	_, ok := m.Self()
	assert.False(t, ok)
}

func TestEndSessionReachesDisconnectedAsynchronously(t *testing.T) {
	m := NewMachine()
	begin(t, m)

	require.NoError(t, m.EndSession())
	waitState(t, m, Disconnected)

	// A fresh session is allowed again.
	begin(t, m)
	assert.Equal(t, Unregistered, m.State())
}

func TestServiceEventsAreForwarded(t *testing.T) {
	m := NewMachine()
	server := begin(t, m)

	events := make(chan protocol.ServiceEvent, 1)
	cancel := m.ServiceEvents().Subscribe(func(ev protocol.ServiceEvent) {
		events <- ev
	})
	defer cancel()

	require.NoError(t, server.Send("SERVICE EVENT Status AVAILABILITY 1 2"))
	select {
	case ev := <-events:
		assert.Equal(t, "Status", ev.Service)
		assert.Equal(t, []string{"AVAILABILITY", "1", "2"}, ev.Args)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for service event")
	}
}

func TestStateObservationReplaysOnlyCurrentState(t *testing.T) {
	m := NewMachine()
	begin(t, m)

	var got []State
	cancel := m.States().Subscribe(func(s State) { got = append(got, s) })
	defer cancel()

	require.Equal(t, []State{Unregistered}, got,
		"late subscribers receive the then-current state, not past transitions")
}
