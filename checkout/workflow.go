package checkout

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pawnhall/gameclient/config"
	"github.com/pawnhall/gameclient/protocol"
	"github.com/pawnhall/gameclient/service"
	"github.com/pawnhall/gameclient/session"
	"github.com/pawnhall/gameclient/stream"
	"github.com/pawnhall/gameclient/transport"
	"github.com/pawnhall/gameclient/transport/websocket"
)

// ErrScanInProgress is returned when a scan is started while another one has
// not yet published its result.
var ErrScanInProgress = errors.New("scan already in progress")

// ServerStatus is one scanned server's snapshot. Availability is nil when no
// status round-trip succeeded before the deadline; that is an expected
// outcome, not an error.
type ServerStatus struct {
	Name         string                 `json:"name"`
	Kind         string                 `json:"kind"`
	Availability *protocol.Availability `json:"availability,omitempty"`
}

// Dialer opens a transport to a resolved endpoint.
type Dialer func(ctx context.Context, endpoint string) (transport.Subject, error)

// Delay is the pluggable timeout strategy: each call starts one wait and
// returns the channel that signals its expiry.
type Delay func() <-chan time.Time

// WallClockDelay returns the production Delay, a wall-clock timer of d.
func WallClockDelay(d time.Duration) Delay {
	return func() <-chan time.Time { return time.After(d) }
}

// Workflow runs status scans over the shared session machine. During a scan
// the workflow is the machine's sole writer; the busy gate enforces that no
// second scan (or any other session use) sneaks in between steps.
type Workflow struct {
	machine *session.Machine
	status  *service.Status
	origin  config.Origin
	dial    Dialer
	delay   Delay

	scanning atomic.Bool
	gen      atomic.Uint64

	mu      sync.Mutex
	last    []ServerStatus
	results *stream.Stream[[]ServerStatus]
}

// New creates a Workflow in the idle state.
func New(machine *session.Machine, status *service.Status, origin config.Origin, dial Dialer, delay Delay) *Workflow {
	return &Workflow{
		machine: machine,
		status:  status,
		origin:  origin,
		dial:    dial,
		delay:   delay,
		results: stream.New[[]ServerStatus](),
	}
}

// Scanning reports whether a scan is in progress.
func (w *Workflow) Scanning() bool {
	return w.scanning.Load()
}

// Results exposes each completed scan's full ordered snapshot array.
func (w *Workflow) Results() *stream.Stream[[]ServerStatus] {
	return w.results
}

// Last returns a copy of the most recently published snapshot array, nil if
// no scan has completed yet.
func (w *Workflow) Last() []ServerStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.last == nil {
		return nil
	}
	out := make([]ServerStatus, len(w.last))
	copy(out, w.last)
	return out
}

// Scan checks every server in list order and returns the ordered snapshots.
// It fails with ErrScanInProgress if another scan has not yet published its
// result. The gate is a single compare-and-set: there is no suspension point
// between the check and the claim.
func (w *Workflow) Scan(ctx context.Context, servers []config.Server) ([]ServerStatus, error) {
	if !w.scanning.CompareAndSwap(false, true) {
		return nil, ErrScanInProgress
	}
	return w.scan(ctx, servers), nil
}

// Start is Scan detached onto its own goroutine; results arrive via Results.
func (w *Workflow) Start(ctx context.Context, servers []config.Server) error {
	if !w.scanning.CompareAndSwap(false, true) {
		return ErrScanInProgress
	}
	go w.scan(ctx, servers)
	return nil
}

func (w *Workflow) scan(ctx context.Context, servers []config.Server) []ServerStatus {
	results := make([]ServerStatus, 0, len(servers))
	for _, srv := range servers {
		results = append(results, w.step(ctx, srv))
	}

	w.mu.Lock()
	w.last = results
	w.mu.Unlock()

	// Release the gate before publishing so a subscriber reacting to this
	// result may immediately start the next scan.
	w.scanning.Store(false)
	w.results.Publish(results)
	return results
}

// step runs one server's connect-request-disconnect cycle. Whatever happens,
// it returns with the session machine back in Disconnected and every
// subscription it made torn down.
func (w *Workflow) step(ctx context.Context, srv config.Server) ServerStatus {
	result := ServerStatus{Name: srv.Name, Kind: srv.Kind}

	endpoint, err := websocket.ResolveEndpoint(w.origin.Scheme, w.origin.Hostname, srv.Port)
	if err != nil {
		return result
	}
	subject, err := w.dial(ctx, endpoint)
	if err != nil {
		// Synchronous connection failure: no status, move on.
		return result
	}

	if err := w.machine.BeginSession(subject); err != nil {
		_ = subject.Close()
		return result
	}

	// gen pins this step's subscriptions. A late availability or state
	// callback from this step, arriving after the step was superseded,
	// compares against the then-current generation and is discarded.
	gen := w.gen.Add(1)

	// won carries the step's winning outcome: the availability, or nil
	// for "no status" (disconnect). Capacity 1 plus the default case
	// means only the first outcome counts.
	won := make(chan *protocol.Availability, 1)

	cancelAvail := w.status.Availabilities().Subscribe(func(av protocol.Availability) {
		if w.gen.Load() != gen {
			return
		}
		select {
		case won <- &av:
		default:
		}
	})
	cancelState := w.machine.States().Subscribe(func(s session.State) {
		if w.gen.Load() != gen || s != session.Disconnected {
			return
		}
		select {
		case won <- nil:
		default:
		}
	})

	if err := w.status.Checkout(); err == nil {
		select {
		case av := <-won:
			result.Availability = av
		case <-w.delay():
			// Timeout: proceed without waiting further.
		case <-ctx.Done():
		}
	}

	// Supersede this step before dropping the subscriptions, then tear the
	// session down so the next step finds the machine free.
	w.gen.Add(1)
	cancelAvail()
	cancelState()
	w.awaitDisconnect()

	return result
}

// awaitDisconnect closes the live session, if any, and waits for the machine
// to confirm Disconnected. The wait is bounded by the delay strategy so an
// unresponsive transport cannot wedge the scan.
func (w *Workflow) awaitDisconnect() {
	done := make(chan struct{})
	var once sync.Once
	cancel := w.machine.States().Subscribe(func(s session.State) {
		if s == session.Disconnected {
			once.Do(func() { close(done) })
		}
	})
	defer cancel()

	if err := w.machine.EndSession(); errors.Is(err, session.ErrNotConnected) {
		// Already down, nothing will publish Disconnected again.
		return
	}

	select {
	case <-done:
	case <-w.delay():
	}
}
