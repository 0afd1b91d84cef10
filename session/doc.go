// Package session implements the registration state machine that owns the
// client's single live transport.
//
// The session package implements:
//   - The Disconnected / Unregistered / Registered state machine
//   - Exclusive ownership of one transport.Subject per session
//   - Self identity and the peer set built from server notifications
//   - Hot state observation with initial-value semantics
//   - On-demand peer-list snapshots
//   - A shared error stream for transport and protocol failures
//
// States:
//
// BeginSession binds a fresh transport and moves Disconnected to
// Unregistered. Register sends the LOGIN handshake; the machine stays
// Unregistered until the server's REGISTRATION line arrives, which populates
// the self identity and peer set and moves to Registered. Any transport
// close or error forces Disconnected, the initial and terminal state.
//
// Concurrency:
//
// The machine is safe for concurrent use. Each session carries a generation
// number: lines and closures from a previous session's transport are checked
// against the current generation and discarded, so a stale connection can
// never corrupt a newer session.
//
// Usage:
//
//	machine := session.NewMachine()
//	if err := machine.BeginSession(subject); err != nil {
//		log.Fatal(err)
//	}
//	cancel := machine.States().Subscribe(func(s session.State) {
//		log.Printf("session: %s", s)
//	})
//	defer cancel()
//	if err := machine.Register(7, "alice"); err != nil {
//		log.Fatal(err)
//	}
package session
