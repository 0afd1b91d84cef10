// Package transport defines the duplex text-line channel the session layer
// runs on, and an in-memory implementation of it for tests and local
// loopback use. The production implementation lives in transport/websocket.
package transport

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Send after the subject has been torn down.
var ErrClosed = errors.New("transport closed")

// Subject is one bidirectional text-line connection. The session layer owns
// exactly one Subject at a time and never opens connections itself.
//
// Inbound delivers received lines in arrival order and is closed exactly once
// when the connection ends, for any reason. After Inbound is closed, Err
// reports the close reason: nil for a graceful close, otherwise the transport
// failure.
type Subject interface {
	Send(line string) error
	Inbound() <-chan string
	Close() error
	Err() error
}

// pipeBufferSize bounds how many lines one pipe end may hold before Send
// blocks. Tests never come close; the bound only exists so a stuck reader is
// noticed instead of growing memory.
const pipeBufferSize = 64

// pipeEnd is one side of an in-memory Subject pair.
type pipeEnd struct {
	in   chan string
	peer *pipeEnd

	mu     sync.Mutex
	closed bool
	reason error
}

// Pipe returns two connected Subjects: lines sent on one arrive on the
// other's Inbound. Closing either end tears both down.
func Pipe() (Subject, Subject) {
	a := &pipeEnd{in: make(chan string, pipeBufferSize)}
	b := &pipeEnd{in: make(chan string, pipeBufferSize)}
	a.peer = b
	b.peer = a
	return a, b
}

func (p *pipeEnd) Send(line string) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrClosed
	}

	p.peer.mu.Lock()
	defer p.peer.mu.Unlock()
	if p.peer.closed {
		return ErrClosed
	}
	p.peer.in <- line
	return nil
}

func (p *pipeEnd) Inbound() <-chan string { return p.in }

func (p *pipeEnd) Close() error {
	p.teardown(nil)
	p.peer.teardown(nil)
	return nil
}

// Fail tears the pair down abnormally so tests can simulate a transport
// failure with a close reason.
func Fail(s Subject, reason error) {
	if p, ok := s.(*pipeEnd); ok {
		p.teardown(reason)
		p.peer.teardown(reason)
	}
}

func (p *pipeEnd) teardown(reason error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.reason = reason
	close(p.in)
}

func (p *pipeEnd) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reason
}
