package websocket

import (
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pawnhall/gameclient/transport"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Outbound lines buffered before Send blocks.
	sendBufferSize = 256
)

// Conn adapts a gorilla WebSocket connection into a transport.Subject. Each
// text message is one protocol line.
type Conn struct {
	ws   *websocket.Conn
	send chan string
	in   chan string
	done chan struct{}

	closeOnce sync.Once

	mu     sync.Mutex
	reason error
}

func newConn(ws *websocket.Conn) *Conn {
	c := &Conn{
		ws:   ws,
		send: make(chan string, sendBufferSize),
		in:   make(chan string),
		done: make(chan struct{}),
	}
	go c.readPump()
	go c.writePump()
	return c
}

// Send queues one outbound line.
func (c *Conn) Send(line string) error {
	select {
	case <-c.done:
		return transport.ErrClosed
	default:
	}
	select {
	case c.send <- line:
		return nil
	case <-c.done:
		return transport.ErrClosed
	}
}

// Inbound returns the channel of received lines. It is closed exactly once
// when the connection ends.
func (c *Conn) Inbound() <-chan string { return c.in }

// Close initiates a graceful shutdown. Inbound closes once the read pump
// observes the connection going away.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		deadline := time.Now().Add(writeWait)
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = c.ws.Close()
	})
	return nil
}

// Err reports the close reason once Inbound is closed: nil after a clean
// close, otherwise the transport failure.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}

// readPump is the sole reader of the connection and the sole closer of the
// inbound channel.
func (c *Conn) readPump() {
	defer close(c.in)

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			c.setReason(err)
			c.Close()
			return
		}
		for _, line := range strings.Split(string(payload), "\n") {
			if line = strings.TrimRight(line, "\r"); line != "" {
				c.in <- line
			}
		}
	}
}

// setReason records the close reason, mapping expected closes to nil.
func (c *Conn) setReason(err error) {
	select {
	case <-c.done:
		// Locally initiated close; whatever the read returned is expected.
		err = nil
	default:
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		err = nil
	}
	c.mu.Lock()
	if c.reason == nil {
		c.reason = err
	}
	c.mu.Unlock()
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case line := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				c.setReason(err)
				c.Close()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.setReason(err)
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}
