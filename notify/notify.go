// Package notify turns reported errors into dismissible, auto-expiring
// notifications for whatever display layer is attached.
package notify

import (
	"sort"
	"sync"
	"time"

	"github.com/pawnhall/gameclient/stream"
)

// Notification is one user-visible report, keyed by a locally generated
// sequence id.
type Notification struct {
	ID   uint64    `json:"id"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Reporter collects notifications and expires them after a fixed lifetime.
// Every change publishes the current active list.
type Reporter struct {
	mu     sync.Mutex
	seq    uint64
	ttl    time.Duration
	after  func(time.Duration) <-chan time.Time
	active map[uint64]Notification

	updates *stream.Stream[[]Notification]
}

// NewReporter creates a Reporter whose notifications expire after ttl.
func NewReporter(ttl time.Duration) *Reporter {
	return &Reporter{
		ttl:     ttl,
		after:   time.After,
		active:  make(map[uint64]Notification),
		updates: stream.New[[]Notification](),
	}
}

// Report posts one notification and returns its id.
func (r *Reporter) Report(text string) uint64 {
	r.mu.Lock()
	id := r.seq
	r.seq++
	r.active[id] = Notification{ID: id, Text: text, At: time.Now()}
	expiry := r.after(r.ttl)
	r.mu.Unlock()

	r.publish()
	go func() {
		<-expiry
		r.Dismiss(id)
	}()
	return id
}

// ReportError posts err's message as a notification.
func (r *Reporter) ReportError(err error) uint64 {
	return r.Report(err.Error())
}

// Attach subscribes the reporter to an error stream. The returned function
// detaches it.
func (r *Reporter) Attach(errs *stream.Stream[error]) (cancel func()) {
	return errs.Subscribe(func(err error) { r.ReportError(err) })
}

// Dismiss removes a notification; it reports whether the id was active.
// Dismissing an already-expired id is a no-op.
func (r *Reporter) Dismiss(id uint64) bool {
	r.mu.Lock()
	_, ok := r.active[id]
	delete(r.active, id)
	r.mu.Unlock()

	if ok {
		r.publish()
	}
	return ok
}

// Active returns the current notifications in posting order.
func (r *Reporter) Active() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeLocked()
}

// Updates exposes the active list after every change.
func (r *Reporter) Updates() *stream.Stream[[]Notification] {
	return r.updates
}

func (r *Reporter) activeLocked() []Notification {
	out := make([]Notification, 0, len(r.active))
	for _, n := range r.active {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Reporter) publish() {
	r.mu.Lock()
	snapshot := r.activeLocked()
	r.mu.Unlock()
	r.updates.Publish(snapshot)
}
