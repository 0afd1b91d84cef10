package transport

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvLine(t *testing.T, s Subject) string {
	t.Helper()
	select {
	case line, ok := <-s.Inbound():
		require.True(t, ok, "inbound closed unexpectedly")
		return line
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for line")
		return ""
	}
}

func TestPipeDelivery(t *testing.T) {
	a, b := Pipe()

	require.NoError(t, a.Send("LOGIN 1 alice"))
	assert.Equal(t, "LOGIN 1 alice", recvLine(t, b))

	require.NoError(t, b.Send("REGISTRATION 1 alice"))
	assert.Equal(t, "REGISTRATION 1 alice", recvLine(t, a))
}

func TestPipeCloseTearsDownBothEnds(t *testing.T) {
	a, b := Pipe()
	require.NoError(t, a.Close())

	_, ok := <-a.Inbound()
	assert.False(t, ok)
	_, ok = <-b.Inbound()
	assert.False(t, ok)

	assert.ErrorIs(t, a.Send("x"), ErrClosed)
	assert.ErrorIs(t, b.Send("x"), ErrClosed)

	assert.NoError(t, a.Err(), "graceful close carries no reason")
	assert.NoError(t, b.Err())
}

func TestPipeFailCarriesReason(t *testing.T) {
	a, b := Pipe()
	boom := errors.New("connection reset")
	Fail(a, boom)

	_, ok := <-a.Inbound()
	assert.False(t, ok)
	assert.ErrorIs(t, a.Err(), boom)
	assert.ErrorIs(t, b.Err(), boom)
}

func TestPipeDoubleCloseIsHarmless(t *testing.T) {
	a, _ := Pipe()
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
}
