// Package checkout implements the servers-list status scan: a sequential,
// cancellable, timeout-bounded connect-request-disconnect cycle against each
// known server.
//
// The checkout package implements:
//   - An atomic busy gate allowing at most one scan at a time
//   - Strictly sequential per-server steps over the shared session machine
//   - A race between status response, timeout and connection failure
//   - Generation-guarded subscriptions so a superseded step's late events
//     are discarded
//   - Ordered publication of the full snapshot array
//
// Sequencing:
//
// Steps never overlap: each step ends the session it opened and waits for
// confirmed disconnection before the next server is contacted, so the shared
// session machine holds at most one live transport. Worst-case scan latency
// is the server count times the timeout; that is the accepted cost of
// keeping session ownership trivial.
//
// Timeouts:
//
// The wait bound is a pluggable Delay strategy rather than a hard-coded
// timer, so tests drive it deterministically and production uses wall-clock
// delay.
//
// Usage:
//
//	wf := checkout.New(machine, status, cfg.Origin, websocket.Dial,
//		checkout.WallClockDelay(cfg.CheckoutTimeout))
//	statuses, err := wf.Scan(ctx, cfg.Servers)
//	if err != nil {
//		log.Fatal(err) // another scan is in progress
//	}
package checkout
