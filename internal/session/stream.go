// Package session holds process-wide client state shared between pages.
package session

import "sync"

// Stream is a reactive cell: one writer publishes, any number of readers
// either poll Get or Subscribe for changes. Subscribers only ever see the
// latest value; a slow reader skips intermediate ones.
type Stream[T any] struct {
	mu   sync.Mutex
	val  T
	subs map[int]chan T
	next int
}

// NewStream returns a stream holding initial.
func NewStream[T any](initial T) *Stream[T] {
	return &Stream[T]{val: initial, subs: map[int]chan T{}}
}

// Get returns the current value.
func (s *Stream[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.val
}

// Set replaces the value and notifies subscribers.
func (s *Stream[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.val = v
	for _, ch := range s.subs {
		offer(ch, v)
	}
}

// Subscribe returns a channel that immediately yields the current value and
// then every later one. cancel closes the channel.
func (s *Stream[T]) Subscribe() (<-chan T, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	ch := make(chan T, 1)
	ch <- s.val
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// offer replaces whatever is buffered in ch with v. Only Set sends, under mu,
// so the send after draining never blocks.
func offer[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	ch <- v
}
