package stream

import "sync"

// Stream is a hot, multi-subscriber event stream. Every subscriber receives
// every value published after it subscribed, in publish order. There is no
// replay and no buffering: delivery happens synchronously on the publisher's
// goroutine, which preserves the ordering guarantees the protocol layers
// depend on.
type Stream[T any] struct {
	mu   sync.Mutex
	next int
	subs map[int]func(T)
}

// New creates an empty stream.
func New[T any]() *Stream[T] {
	return &Stream[T]{subs: make(map[int]func(T))}
}

// Subscribe registers fn to be called for every subsequent publish. The
// returned function cancels the subscription; calling it more than once is
// harmless.
func (s *Stream[T]) Subscribe(fn func(T)) (cancel func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Publish delivers v to every current subscriber. Relative order between
// subscribers is unspecified; subscribers registered during delivery do not
// receive v.
func (s *Stream[T]) Publish(v T) {
	s.mu.Lock()
	fns := make([]func(T), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Len reports the current number of subscribers.
func (s *Stream[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Value is a Stream that additionally holds a current value. New subscribers
// immediately receive the value held at subscription time, then every later
// publish (hot observable with initial-value semantics).
type Value[T any] struct {
	mu      sync.Mutex
	current T
	stream  *Stream[T]
}

// NewValue creates a Value holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{current: initial, stream: New[T]()}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Set stores next as the current value and publishes it to all subscribers.
func (v *Value[T]) Set(next T) {
	v.mu.Lock()
	v.current = next
	v.mu.Unlock()
	v.stream.Publish(next)
}

// Subscribe registers fn and synchronously delivers the current value before
// returning. The returned function cancels the subscription.
func (v *Value[T]) Subscribe(fn func(T)) (cancel func()) {
	v.mu.Lock()
	cur := v.current
	v.mu.Unlock()
	cancel = v.stream.Subscribe(fn)
	fn(cur)
	return cancel
}
