// Package websocket provides the production transport.Subject: a WebSocket
// connection carrying one text line per message.
//
// The websocket package implements:
//   - Client-side dialing with context support and optional retry backoff
//   - A read pump delivering inbound lines in arrival order
//   - A write pump with write deadlines and keepalive pings
//   - Endpoint resolution from a page origin and a server port
//
// Connection Lifecycle:
//
// 1. Dial resolves and opens the connection
// 2. Read and write pumps run on dedicated goroutines
// 3. Lines flow through the transport.Subject interface
// 4. Close (local or remote) drains both pumps and closes Inbound exactly once
// 5. Err reports the close reason; nil means a clean close
//
// Usage:
//
//	endpoint, err := websocket.ResolveEndpoint("http", "example.net", 35555)
//	if err != nil {
//		log.Fatal(err)
//	}
//	subject, err := websocket.Dial(ctx, endpoint)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer subject.Close()
package websocket
