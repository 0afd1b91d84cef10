package websocket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jpillora/backoff"

	"github.com/pawnhall/gameclient/transport"
)

// ErrUnsupportedScheme reports an origin scheme that has no WebSocket
// counterpart. This is a configuration error, not a transport failure.
var ErrUnsupportedScheme = errors.New("unsupported origin scheme")

// ResolveEndpoint maps a page origin (scheme and hostname) plus a server port
// to the server's WebSocket endpoint: http becomes ws, https becomes wss.
func ResolveEndpoint(originScheme, hostname string, port int) (string, error) {
	var scheme string
	switch originScheme {
	case "http":
		scheme = "ws"
	case "https":
		scheme = "wss"
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, originScheme)
	}
	return fmt.Sprintf("%s://%s:%d/", scheme, hostname, port), nil
}

// Dial opens a WebSocket connection to endpoint and wraps it as a
// transport.Subject. A single attempt; callers that want retries use
// DialRetry.
func Dial(ctx context.Context, endpoint string) (transport.Subject, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	return newConn(ws), nil
}

// DialRetry dials endpoint with exponential backoff until it succeeds, the
// context is cancelled, or maxAttempts attempts (0 means unlimited) have
// failed.
func DialRetry(ctx context.Context, endpoint string, maxAttempts int) (transport.Subject, error) {
	b := &backoff.Backoff{
		Min:    250 * time.Millisecond,
		Max:    15 * time.Second,
		Jitter: true,
	}

	for attempt := 1; ; attempt++ {
		subject, err := Dial(ctx, endpoint)
		if err == nil {
			return subject, nil
		}
		if maxAttempts > 0 && attempt >= maxAttempts {
			return nil, err
		}
		select {
		case <-time.After(b.Duration()):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
